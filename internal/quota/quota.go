// Package quota answers how many characters an account may still translate
// in the current billing period.
package quota

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/valpere/transly/internal/session"
)

// ErrExceeded matches every *ExceededError.
var ErrExceeded = errors.New("character quota exceeded")

// ExceededError is returned when a request is larger than what is left of the
// quota.
type ExceededError struct {
	Remaining int
	Requested int
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("exceeds monthly limit. %d characters remaining. Please upgrade your plan.", e.Remaining)
}

func (e *ExceededError) Is(target error) bool {
	return target == ErrExceeded
}

// Source reports the remaining character allowance.
type Source interface {
	RemainingCharacters(ctx context.Context) (int, error)
}

// Check fails with *ExceededError when n is larger than the remaining quota.
func Check(ctx context.Context, src Source, n int) error {
	if src == nil {
		return nil
	}
	remaining, err := src.RemainingCharacters(ctx)
	if err != nil {
		return fmt.Errorf("character limit check failed: %w", err)
	}
	if n > remaining {
		return &ExceededError{Remaining: remaining, Requested: n}
	}
	return nil
}

// AccountFetcher loads the current user with fresh usage counters.
type AccountFetcher interface {
	Me(ctx context.Context) (*session.User, error)
}

// Account derives the quota from the backend account: monthly limit minus
// characters already used. It is fetched on every call so that usage by
// other clients is taken into account.
type Account struct {
	fetcher AccountFetcher
}

func NewAccount(f AccountFetcher) *Account {
	return &Account{fetcher: f}
}

func (a *Account) RemainingCharacters(ctx context.Context) (int, error) {
	u, err := a.fetcher.Me(ctx)
	if err != nil {
		return 0, err
	}
	remaining := u.MonthlyCharacterLimit - u.CharactersUsed
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Static is a fixed allowance, e.g. the free daily quota of a public engine.
type Static int

func (s Static) RemainingCharacters(context.Context) (int, error) {
	return int(s), nil
}

type unlimited struct{}

func (unlimited) RemainingCharacters(context.Context) (int, error) {
	return math.MaxInt, nil
}

// Unlimited never rejects a request.
var Unlimited Source = unlimited{}

// EstimateFileCharacters guesses the character count of a document before it
// is uploaded. Plain text is about one character per byte; office and PDF
// formats carry markup and compression, so half their size is used.
func EstimateFileCharacters(name string, size int64) int {
	if strings.EqualFold(filepath.Ext(name), ".txt") {
		return int(size)
	}
	return int(size / 2)
}

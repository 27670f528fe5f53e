package quota

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/transly/internal/session"
)

type fakeFetcher struct {
	user *session.User
	err  error
}

func (f fakeFetcher) Me(context.Context) (*session.User, error) {
	return f.user, f.err
}

func TestCheck_Exceeded(t *testing.T) {
	err := Check(context.Background(), Static(500), 600)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExceeded))

	var qe *ExceededError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, 500, qe.Remaining)
	assert.Equal(t, 600, qe.Requested)
	assert.Contains(t, err.Error(), "500 characters remaining")
}

func TestCheck_WithinLimit(t *testing.T) {
	assert.NoError(t, Check(context.Background(), Static(600), 600))
	assert.NoError(t, Check(context.Background(), Unlimited, 1<<30))
	assert.NoError(t, Check(context.Background(), nil, 10))
}

func TestAccount_Remaining(t *testing.T) {
	a := NewAccount(fakeFetcher{user: &session.User{MonthlyCharacterLimit: 50000, CharactersUsed: 49000}})
	n, err := a.RemainingCharacters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1000, n)
}

func TestAccount_OverusedClampsToZero(t *testing.T) {
	a := NewAccount(fakeFetcher{user: &session.User{MonthlyCharacterLimit: 10, CharactersUsed: 25}})
	n, err := a.RemainingCharacters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestAccount_FetchError(t *testing.T) {
	a := NewAccount(fakeFetcher{err: errors.New("offline")})
	err := Check(context.Background(), a, 1)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrExceeded))
	assert.Contains(t, err.Error(), "offline")
}

func TestEstimateFileCharacters(t *testing.T) {
	assert.Equal(t, 1000, EstimateFileCharacters("notes.TXT", 1000))
	assert.Equal(t, 500, EstimateFileCharacters("report.docx", 1000))
	assert.Equal(t, 500, EstimateFileCharacters("slides.pdf", 1000))
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/valpere/transly/internal/session"
)

// ErrUnauthorized matches any APIError with status 401. The client has
// already cleared the session when it is returned; the caller should ask the
// user to log in again.
var ErrUnauthorized = errors.New("not authorized, please log in")

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

type AuthResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	User        *session.User `json:"user"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type HistoryEntry struct {
	ID             int       `json:"id"`
	SessionID      string    `json:"session_id,omitempty"`
	SourceLanguage string    `json:"source_language"`
	TargetLanguage string    `json:"target_language"`
	CharacterCount int       `json:"character_count"`
	DocumentType   string    `json:"document_type,omitempty"`
	FileName       string    `json:"file_name,omitempty"`
	CreatedAt      Timestamp `json:"created_at"`
}

// Timestamp decodes the backend's date formats: HTTP dates
// ("Thu, 02 Jan 2025 03:04:05 GMT", what Flask's jsonify emits), RFC 3339,
// and ISO 8601 without a zone, read as UTC.
type Timestamp struct {
	time.Time
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", data, err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}

	if parsed, err := http.ParseTime(s); err == nil {
		t.Time = parsed
		return nil
	}
	for _, layout := range isoLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}

type subscriptionRequest struct {
	PriceID string `json:"price_id"`
	PlanID  string `json:"plan_id,omitempty"`
}

// CheckoutSession identifies a Stripe-hosted checkout page created by the
// backend. URL is only set by backends that return the hosted page address.
type CheckoutSession struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url,omitempty"`
}

type translateTextRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type translateTextResponse struct {
	TranslatedText string `json:"translatedText"`
}

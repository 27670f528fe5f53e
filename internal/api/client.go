// Package api is the HTTP client for the transly backend: authentication,
// account and usage, translation history, subscription checkout, and the
// text and document translation endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/valpere/transly/internal/session"
)

const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultTimeout = 5 * time.Minute

	maxErrorBody = 64 << 10
)

type Config struct {
	BaseURL string        `mapstructure:"base_url" json:"base_url"`
	Timeout time.Duration `mapstructure:"timeout" json:"timeout"`
	// Token, when set, is used instead of the stored session and is never
	// written to disk.
	Token string `mapstructure:"token" json:"token"`
}

type Client struct {
	baseURL string
	client  *http.Client
	session *session.Session
	log     zerolog.Logger
}

func New(cfg Config, sess *session.Session, log zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	switch {
	case cfg.Token != "":
		sess = session.FromState(session.State{Token: cfg.Token})
	case sess == nil:
		sess = session.New(nil)
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
		session: sess,
		log:     log,
	}
}

func (c *Client) Session() *session.Session {
	return c.session
}

// Login exchanges credentials for a token and stores it in the session.
func (c *Client) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/token", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", &out); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	if err := c.storeAuth(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and logs it in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/register", req, &out); err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}
	if err := c.storeAuth(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) storeAuth(out *AuthResponse) error {
	if out.AccessToken == "" {
		return fmt.Errorf("backend returned no access token")
	}
	if err := c.session.Set(session.State{Token: out.AccessToken, User: out.User}); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Logout forgets the local session. The backend keeps no server-side state
// for tokens, so nothing is sent.
func (c *Client) Logout() error {
	return c.session.Clear()
}

// Me fetches the current user with up-to-date usage counters and refreshes
// the cached profile in the session.
func (c *Client) Me(ctx context.Context) (*session.User, error) {
	var u session.User
	if err := c.doJSON(ctx, http.MethodGet, "/api/users/me", nil, &u); err != nil {
		return nil, fmt.Errorf("failed to fetch account: %w", err)
	}
	if err := c.session.SetUser(&u); err != nil {
		c.log.Warn().Err(err).Msg("Failed to cache user profile")
	}
	return &u, nil
}

func (c *Client) History(ctx context.Context, limit, offset int) ([]HistoryEntry, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var out []HistoryEntry
	if err := c.doJSON(ctx, http.MethodGet, "/api/users/history?"+q.Encode(), nil, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}
	return out, nil
}

// CreateSubscription asks the backend to open a Stripe checkout session for
// priceID.
func (c *Client) CreateSubscription(ctx context.Context, priceID, planID string) (*CheckoutSession, error) {
	var out CheckoutSession
	if err := c.doJSON(ctx, http.MethodPost, "/api/create-subscription", subscriptionRequest{PriceID: priceID, PlanID: planID}, &out); err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}
	if out.SessionID == "" {
		return nil, fmt.Errorf("backend returned no checkout session")
	}
	return &out, nil
}

// TranslateText sends one translation request. The text is not chunked.
func (c *Client) TranslateText(ctx context.Context, text, source, target string) (string, error) {
	var out translateTextResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/translate-text", translateTextRequest{Text: text, Source: source, Target: target}, &out)
	if err != nil {
		return "", err
	}
	return out.TranslatedText, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := c.newRequest(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if tok := c.session.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return req, nil
}

// send performs req and turns every non-2xx response into an *APIError.
// A 401 also clears the session.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	c.log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Str("request_id", req.Header.Get("X-Request-ID")).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("Backend request")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, body)}

	if resp.StatusCode == http.StatusUnauthorized {
		if err := c.session.Clear(); err != nil {
			c.log.Warn().Err(err).Msg("Failed to clear session after 401")
		}
	}
	return nil, apiErr
}

// errorMessage extracts a human-readable message from an error body. The
// backend answers with {"error": ...} or {"message": ...}; proxies in front
// of it may answer with plain text.
func errorMessage(status int, body []byte) string {
	if gjson.ValidBytes(body) {
		for _, key := range []string{"error", "message", "detail"} {
			if v := gjson.GetBytes(body, key); v.Exists() && v.String() != "" {
				return v.String()
			}
		}
	}
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return msg
	}
	return http.StatusText(status)
}

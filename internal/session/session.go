// Package session holds the authenticated state of a transly client: the
// bearer token issued by the backend and the user it belongs to.
//
// A Session is an explicit value passed to whoever needs it; there is no
// package-level singleton. When a Store is attached, every Set and Clear is
// written through to it.
package session

import (
	"sync"
)

// User is the account profile returned by the backend.
type User struct {
	ID                    int    `json:"id,omitempty"`
	Username              string `json:"username"`
	Email                 string `json:"email"`
	SubscriptionActive    bool   `json:"subscription_active"`
	SubscriptionPlan      string `json:"subscription_plan,omitempty"`
	MonthlyCharacterLimit int    `json:"monthly_character_limit,omitempty"`
	CharactersUsed        int    `json:"characters_used,omitempty"`
}

// State is a snapshot of a session.
type State struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

// Store persists session state between process runs.
type Store interface {
	Load() (State, error)
	Save(State) error
	Delete() error
}

type Session struct {
	mu    sync.RWMutex
	state State
	store Store
}

// New returns an empty session. store may be nil.
func New(store Store) *Session {
	return &Session{store: store}
}

// FromState returns a session holding st that is never persisted.
func FromState(st State) *Session {
	return &Session{state: st}
}

// Open returns a session initialised from store.
func Open(store Store) (*Session, error) {
	s := New(store)
	if store == nil {
		return s, nil
	}
	st, err := store.Load()
	if err != nil {
		return nil, err
	}
	s.state = st
	return s, nil
}

func (s *Session) Get() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Set(st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
	if s.store != nil {
		return s.store.Save(st)
	}
	return nil
}

// SetUser replaces the cached user profile and keeps the token.
func (s *Session) SetUser(u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.User = u
	if s.store != nil {
		return s.store.Save(s.state)
	}
	return nil
}

func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{}
	if s.store != nil {
		return s.store.Delete()
	}
	return nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

func (s *Session) LoggedIn() bool {
	return s.Token() != ""
}

package identity

import (
	"context"
	"time"
)

// Session is the server-side state of one browser: login progress, the
// backend credential and a cached profile. A browser is tied to its session
// through the session cookie.
type Session struct {
	ID           string       `json:"id"`
	Phone        string       `json:"phone,omitempty"`
	BackendToken string       `json:"backend_token,omitempty"`
	LoggedIn     bool         `json:"logged_in"`
	Login        LoginFlow    `json:"login"`
	Profile      *UserProfile `json:"profile,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// NewSession creates an anonymous session at the phone step
func NewSession(id string, requireAddress bool, now time.Time) *Session {
	return &Session{
		ID:        id,
		Login:     NewLoginFlow(requireAddress),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Authenticate records the verified phone and the backend credential
func (s *Session) Authenticate(phone, token string, now time.Time) {
	s.Phone = phone
	s.BackendToken = token
	s.LoggedIn = true
	s.UpdatedAt = now
}

// Invalidate drops the credential and returns the session to logged-out
func (s *Session) Invalidate(now time.Time) {
	s.Phone = ""
	s.BackendToken = ""
	s.LoggedIn = false
	s.Profile = nil
	s.Login = NewLoginFlow(s.Login.RequireAddress)
	s.UpdatedAt = now
}

// IsAuthenticated reports whether protected operations may run
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.LoggedIn && s.Phone != ""
}

// Touch updates the modification time
func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now
}

// SessionStore persists sessions between requests. Writes are last writer
// wins.
type SessionStore interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, session *Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
	Close() error
}

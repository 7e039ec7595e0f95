package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/albazaar/storefront/internal/domain/identity"
)

// SessionStore persists storefront sessions as JSON documents.
// Writes are last writer wins.
type SessionStore struct {
	store Store
}

// NewSessionStore creates a session store on top of store
func NewSessionStore(store Store) *SessionStore {
	return &SessionStore{store: store}
}

// Get loads a session, returning identity.ErrSessionNotFound when absent
func (s *SessionStore) Get(ctx context.Context, id string) (*identity.Session, error) {
	data, err := s.store.Get(ctx, SessionKeyPrefix+id)
	if errors.Is(err, ErrCacheMiss) {
		return nil, identity.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var session identity.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return &session, nil
}

// Save writes the whole session with a fresh ttl
func (s *SessionStore) Save(ctx context.Context, session *identity.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", session.ID, err)
	}
	return s.store.Set(ctx, SessionKeyPrefix+session.ID, data, ttl)
}

// Delete removes a session
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, SessionKeyPrefix+id)
}

// Close closes the underlying store
func (s *SessionStore) Close() error {
	return s.store.Close()
}

var _ identity.SessionStore = (*SessionStore)(nil)

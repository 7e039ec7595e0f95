package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/albazaar/storefront/internal/domain/order"
)

// JournalStore persists checkout step journals keyed by checkout ID
type JournalStore struct {
	store Store
}

// NewJournalStore creates a journal store on top of store
func NewJournalStore(store Store) *JournalStore {
	return &JournalStore{store: store}
}

// Get loads a journal, returning order.ErrCheckoutNotFound when absent
func (s *JournalStore) Get(ctx context.Context, checkoutID string) (*order.Journal, error) {
	data, err := s.store.Get(ctx, JournalKeyPrefix+checkoutID)
	if errors.Is(err, ErrCacheMiss) {
		return nil, order.ErrCheckoutNotFound
	}
	if err != nil {
		return nil, err
	}

	var journal order.Journal
	if err := json.Unmarshal(data, &journal); err != nil {
		return nil, fmt.Errorf("failed to decode checkout journal %s: %w", checkoutID, err)
	}
	return &journal, nil
}

// Save writes the journal with ttl
func (s *JournalStore) Save(ctx context.Context, journal *order.Journal, ttl time.Duration) error {
	data, err := json.Marshal(journal)
	if err != nil {
		return fmt.Errorf("failed to encode checkout journal %s: %w", journal.CheckoutID, err)
	}
	return s.store.Set(ctx, JournalKeyPrefix+journal.CheckoutID, data, ttl)
}

var _ order.JournalStore = (*JournalStore)(nil)

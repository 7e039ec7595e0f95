package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/albazaar/storefront/internal/infrastructure/cache"
)

// TokenBlacklist invalidates session tokens before they expire (on logout)
type TokenBlacklist interface {
	// AddToBlacklist adds a token's JTI to the blacklist.
	// ttl should be the remaining time until token expiration.
	AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error

	// IsBlacklisted checks if a token's JTI is in the blacklist
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// StoreTokenBlacklist implements TokenBlacklist on a cache.Store, so it is
// shared between instances whenever the store is Redis.
type StoreTokenBlacklist struct {
	store cache.Store
}

// NewStoreTokenBlacklist creates a token blacklist on top of store
func NewStoreTokenBlacklist(store cache.Store) *StoreTokenBlacklist {
	return &StoreTokenBlacklist{store: store}
}

// AddToBlacklist adds a token's JTI to the blacklist. Tokens that already
// expired need no entry.
func (b *StoreTokenBlacklist) AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.store.Set(ctx, cache.BlacklistKeyPrefix+jti, []byte("1"), ttl); err != nil {
		return fmt.Errorf("failed to add token to blacklist: %w", err)
	}
	return nil
}

// IsBlacklisted checks if a token's JTI is in the blacklist
func (b *StoreTokenBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	revoked, err := b.store.IsProcessed(ctx, cache.BlacklistKeyPrefix+jti)
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return revoked, nil
}

// Ensure StoreTokenBlacklist implements TokenBlacklist
var _ TokenBlacklist = (*StoreTokenBlacklist)(nil)

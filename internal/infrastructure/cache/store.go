// Package cache holds the storefront's short-lived state: sessions, the
// checkout guard and journal, and the catalog read-through cache. Everything
// sits on one Store, backed by Redis or by process memory.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/albazaar/storefront/internal/domain/shared"
)

// ErrCacheMiss is returned by Store.Get when the key is absent or expired
var ErrCacheMiss = errors.New("cache: key not found")

// Store is a byte-valued key/value store with TTLs that doubles as the
// idempotency store for set-if-absent guards.
type Store interface {
	shared.IdempotencyStore

	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error

	// Incr adds one to the counter at key and returns the new count and the
	// time left before the counter resets. ttl applies only when the call
	// creates the counter.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, time.Duration, error)
}

// Key prefixes for the typed stores built on a Store
const (
	SessionKeyPrefix   = "storefront:session:"
	JournalKeyPrefix   = "storefront:checkout:"
	CatalogKeyPrefix   = "storefront:catalog:"
	BlacklistKeyPrefix = "storefront:revoked:"
	GuardKeyPrefix     = "storefront:guard:"
	RateLimitKeyPrefix = "storefront:ratelimit:"
)

package shared

import (
	"context"
	"time"
)

// IdempotencyStore holds at-most-once markers with a TTL. Checkout uses it
// for the per-session submit guard and for the step journal of each
// attempt; the event layer uses it to drop repeated deliveries.
type IdempotencyStore interface {
	// MarkProcessed sets key unless it is already set. It reports whether
	// this call set it.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, key string) (bool, error)
	// Release clears key so the guarded action may run again
	Release(ctx context.Context, key string) error
	Close() error
}

// IdempotencyConfig controls delivery deduplication
type IdempotencyConfig struct {
	// TTL is how long a delivered event ID is remembered
	TTL     time.Duration
	Enabled bool
}

// DefaultIdempotencyConfig remembers event IDs for a day
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{TTL: 24 * time.Hour, Enabled: true}
}

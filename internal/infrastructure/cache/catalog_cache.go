package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
)

// CatalogCache is a read-through cache for catalog responses.
// Cache failures are logged and never fail the request.
type CatalogCache struct {
	store   Store
	ttl     time.Duration
	enabled bool
	logger  *zap.Logger
}

// NewCatalogCache creates a catalog cache. A disabled cache always loads.
func NewCatalogCache(store Store, ttl time.Duration, enabled bool, logger *zap.Logger) *CatalogCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogCache{
		store:   store,
		ttl:     ttl,
		enabled: enabled && store != nil,
		logger:  logger.Named("catalog_cache"),
	}
}

// Remember returns the cached value for key, or calls load and caches its
// result. Errors from load are returned as is and never cached.
func Remember[T any](ctx context.Context, c *CatalogCache, key string, load func(context.Context) (T, error)) (T, error) {
	if c == nil || !c.enabled {
		return load(ctx)
	}

	fullKey := CatalogKeyPrefix + key
	if data, err := c.store.Get(ctx, fullKey); err == nil {
		var cached T
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
		c.logger.Warn("discarding undecodable catalog cache entry", zap.String("key", key))
	} else if !errors.Is(err, ErrCacheMiss) {
		c.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("catalog value not cacheable", zap.String("key", key), zap.Error(err))
		return value, nil
	}
	if err := c.store.Set(ctx, fullKey, data, c.ttl); err != nil {
		c.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
	return value, nil
}

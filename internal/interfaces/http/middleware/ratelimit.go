package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/albazaar/storefront/internal/infrastructure/cache"
	"github.com/albazaar/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Counter is the part of cache.Store the rate limiter needs
type Counter interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, time.Duration, error)
}

// RateLimiter is a fixed-window limiter whose counters live in a shared
// store, so every instance behind the same Redis enforces one budget.
type RateLimiter struct {
	counter Counter
	name    string
	limit   int
	window  time.Duration
	logger  *zap.Logger
}

// NewRateLimiter creates a limiter allowing limit requests per window and
// key. name separates its counters from other limiters on the same store.
func NewRateLimiter(counter Counter, name string, limit int, window time.Duration, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{
		counter: counter,
		name:    name,
		limit:   limit,
		window:  window,
		logger:  logger,
	}
}

// Decision is the outcome of one Take
type Decision struct {
	Allowed   bool
	Remaining int
	Reset     time.Duration
}

// Take counts one request for key. When the store fails the request is
// allowed and the failure logged.
func (rl *RateLimiter) Take(ctx context.Context, key string) Decision {
	n, left, err := rl.counter.Incr(ctx, cache.RateLimitKeyPrefix+rl.name+":"+key, rl.window)
	if err != nil {
		rl.logger.Warn("Rate limit counter unavailable",
			zap.String("limiter", rl.name),
			zap.Error(err),
		)
		return Decision{Allowed: true, Remaining: rl.limit, Reset: rl.window}
	}
	if left <= 0 {
		left = rl.window
	}
	return Decision{
		Allowed:   n <= int64(rl.limit),
		Remaining: max(rl.limit-int(n), 0),
		Reset:     left,
	}
}

// RateLimit limits requests per client IP
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string {
		return c.ClientIP()
	})
}

// AuthRateLimit is the stricter limiter for the OTP request and verify
// endpoints, also keyed by client IP.
func AuthRateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return rateLimit(limiter,
		func(c *gin.Context) string { return c.ClientIP() },
		"Too many authentication attempts. Please try again later.",
	)
}

// RateLimitByKey returns a rate limiting middleware with custom key extractor
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return rateLimit(limiter, keyFunc, "Too many requests. Please try again later.")
}

func rateLimit(limiter *RateLimiter, keyFunc func(*gin.Context) string, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := limiter.Take(c.Request.Context(), keyFunc(c))

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(d.Reset)))
			AbortWithError(c, http.StatusTooManyRequests, dto.ErrCodeRateLimited, message)
			return
		}
		c.Next()
	}
}

// retryAfterSeconds rounds up so clients never retry inside the window
func retryAfterSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	return max(secs, 1)
}

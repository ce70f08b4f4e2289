package httpkit

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"leadgen_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// IntakeLimiter is a fixed-window counter backed by Redis, keyed by caller
// identity (authenticated user ID when present, client IP otherwise). Unlike
// the in-process IPRateLimiter, its state survives restarts and is shared
// across replicas.
type IntakeLimiter struct {
	client *redis.Client
	window time.Duration
	limit  int
	log    *logger.Logger
}

// NewIntakeLimiter creates a Redis-backed fixed-window limiter.
func NewIntakeLimiter(client *redis.Client, window time.Duration, limit int, log *logger.Logger) *IntakeLimiter {
	return &IntakeLimiter{client: client, window: window, limit: limit, log: log}
}

// Allow counts a hit for the caller in the current window and reports whether
// the caller is still under the limit.
func (l *IntakeLimiter) Allow(ctx context.Context, caller string) (bool, error) {
	windowStart := time.Now().Truncate(l.window).Unix()
	key := fmt.Sprintf("intake:%s:%d", caller, windowStart)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		// Expiry slightly past the window end so a slow clock never drops
		// a live counter.
		l.client.Expire(ctx, key, l.window+time.Second)
	}

	return count <= int64(l.limit), nil
}

// RateLimit returns middleware enforcing the intake limit. Redis errors fail
// open: intake availability is worth more than strict limiting.
func (l *IntakeLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := c.ClientIP()
		if userID, ok := c.Get(ContextUserIDKey); ok {
			caller = fmt.Sprintf("%v", userID)
		}

		allowed, err := l.Allow(c.Request.Context(), caller)
		if err != nil {
			if l.log != nil {
				l.log.Warn("intake limiter unavailable", "error", err)
			}
			c.Next()
			return
		}

		if !allowed {
			if l.log != nil {
				l.log.RateLimitExceeded(caller, c.Request.URL.Path)
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}

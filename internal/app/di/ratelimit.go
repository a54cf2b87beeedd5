// Package di provides dependency injection factories for creating application components.
package di

import (
	"log/slog"

	"github.com/redis/go-redis/v9"

	"social_backend/internal/platform/config"
	"social_backend/internal/platform/ratelimit"
)

// NewLimiter creates the limiter for unauthenticated endpoints.
// If Redis is available, the counter is shared across instances.
// Otherwise, it falls back to a per-process token bucket.
func NewLimiter(rdb *redis.Client, cfg config.RateLimitConfig) ratelimit.Limiter {
	if rdb != nil {
		return ratelimit.NewRedisLimiter(rdb, "ratelimit", cfg.Requests, cfg.Window)
	}
	slog.Warn("Redis unavailable, rate limiting is per instance")
	return ratelimit.NewMemoryLimiter(cfg.Requests, cfg.Window, cfg.Burst, 0)
}

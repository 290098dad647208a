package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"islandmarket/internal/models"
	"islandmarket/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// ErrNoLimiter is returned by CheckRateLimit when no Redis client is configured.
var ErrNoLimiter = errors.New("rate limiter has no redis client")

// FailPolicy defines the behavior when Redis is unavailable.
type FailPolicy int

const (
	// FailOpen lets the request through.
	FailOpen FailPolicy = iota
	// FailClosed answers 503.
	FailClosed
)

// CheckRateLimit counts one hit of id against resource and reports whether
// it is still within limit for the current window. Limiting is off when
// APP_ENV is "test" or "development".
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	switch os.Getenv("APP_ENV") {
	case "", "test", "development":
		return true, nil
	}

	if rdb == nil {
		return false, ErrNoLimiter
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)

	// EXPIRE NX runs on every hit so a key never outlives a lost TTL.
	ctx, span := observability.StartRedisSpan(ctx, "incr")
	pipe := rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	_, err := pipe.Exec(ctx)
	observability.EndSpan(span, err)
	if err != nil {
		return false, err
	}
	return incr.Val() <= int64(limit), nil
}

// RateLimit enforces limit requests per window per client IP, failing open.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name string) fiber.Handler {
	return RateLimitWithPolicy(rdb, limit, window, FailOpen, name)
}

// RateLimitWithPolicy is RateLimit with an explicit failure policy.
func RateLimitWithPolicy(rdb *redis.Client, limit int, window time.Duration, policy FailPolicy, name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resource := name
		if resource == "" {
			resource = c.Path()
		}

		allowed, err := CheckRateLimit(c.UserContext(), rdb, resource, "ip:"+c.IP(), limit, window)
		if err != nil {
			if policy == FailClosed {
				Logger.WarnContext(c.UserContext(), "rate limit unavailable, failing closed",
					slog.String("resource", resource),
					slog.String("error", err.Error()),
				)
				return models.RespondWithError(c, fiber.StatusServiceUnavailable, models.NewRateLimitError("rate limit unavailable"))
			}
			return c.Next()
		}

		if !allowed {
			return models.RespondWithError(c, fiber.StatusTooManyRequests, models.NewRateLimitError("rate limit exceeded"))
		}
		return c.Next()
	}
}

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckRateLimit_BypassedOutsideProduction(t *testing.T) {
	for _, env := range []string{"", "test", "development"} {
		t.Run("env="+env, func(t *testing.T) {
			t.Setenv("APP_ENV", env)
			allowed, err := CheckRateLimit(context.Background(), nil, "sanitize", "ip:1", 1, time.Minute)
			assert.NoError(t, err)
			assert.True(t, allowed)
		})
	}
}

func TestCheckRateLimit_NilRedis(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	allowed, err := CheckRateLimit(context.Background(), nil, "sanitize", "ip:1", 1, time.Minute)
	assert.ErrorIs(t, err, ErrNoLimiter)
	assert.False(t, allowed)
}

func TestCheckRateLimit_Window(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		allowed, err := CheckRateLimit(ctx, rdb, "sanitize", "ip:1", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, err := CheckRateLimit(ctx, rdb, "sanitize", "ip:1", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	mr.FastForward(time.Minute + time.Second)
	allowed, err = CheckRateLimit(ctx, rdb, "sanitize", "ip:1", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCheckRateLimit_RestoresMissingTTL(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	key := "rl:sanitize:ip:2"
	require.NoError(t, mr.Set(key, "5"))
	require.Zero(t, mr.TTL(key))

	allowed, err := CheckRateLimit(context.Background(), rdb, "sanitize", "ip:2", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, time.Minute, mr.TTL(key))

	mr.FastForward(time.Minute + time.Second)
	allowed, err = CheckRateLimit(context.Background(), rdb, "sanitize", "ip:2", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimitWithPolicy(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	handler := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) }

	open := fiber.New()
	open.Post("/x", RateLimit(nil, 1, time.Minute, "x"), handler)
	resp, err := open.Test(httptest.NewRequest(http.MethodPost, "/x", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	closed := fiber.New()
	closed.Post("/x", RateLimitWithPolicy(nil, 1, time.Minute, FailClosed, "x"), handler)
	resp, err = closed.Test(httptest.NewRequest(http.MethodPost, "/x", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	limited := fiber.New()
	limited.Post("/x", RateLimit(rdb, 1, time.Minute, "x"), handler)
	resp, err = limited.Test(httptest.NewRequest(http.MethodPost, "/x", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, err = limited.Test(httptest.NewRequest(http.MethodPost, "/x", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

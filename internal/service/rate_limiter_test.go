package service

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	opts, err := redis.ParseURL("redis://localhost:6379/15")
	if err != nil {
		t.Skip("Redis URL not parseable, skipping")
	}
	client := redis.NewClient(opts)
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skip("Redis not available for testing")
	}
	client.FlushDB(ctx)
	return client
}

func TestRateLimiter(t *testing.T) {
	redisClient := newTestRedisClient(t)
	defer redisClient.Close()

	ctx := context.Background()
	limiter := NewRateLimiter(redisClient)

	t.Run("allows up to the limit then denies", func(t *testing.T) {
		key := "test:gateway1"
		window := 10 * time.Second

		for i := 0; i < 3; i++ {
			allowed, _ := limiter.CheckLimit(ctx, key, 3, window)
			assert.True(t, allowed, "request %d should be allowed", i+1)
		}

		allowed, resetAt := limiter.CheckLimit(ctx, key, 3, window)
		assert.False(t, allowed)
		assert.True(t, resetAt.After(time.Now()))
	})

	t.Run("window slides", func(t *testing.T) {
		key := "test:gateway2"
		window := time.Second

		allowed, _ := limiter.CheckLimit(ctx, key, 1, window)
		assert.True(t, allowed)
		allowed, _ = limiter.CheckLimit(ctx, key, 1, window)
		assert.False(t, allowed)

		time.Sleep(1100 * time.Millisecond)

		allowed, _ = limiter.CheckLimit(ctx, key, 1, window)
		assert.True(t, allowed)
	})

	t.Run("keys are independent", func(t *testing.T) {
		window := 10 * time.Second

		allowed, _ := limiter.CheckLimit(ctx, "test:ip-a", 1, window)
		assert.True(t, allowed)
		allowed, _ = limiter.CheckLimit(ctx, "test:ip-a", 1, window)
		assert.False(t, allowed)

		allowed, _ = limiter.CheckLimit(ctx, "test:ip-b", 1, window)
		assert.True(t, allowed)
	})
}

func TestRateLimiter_FailsClosed(t *testing.T) {
	invalidClient := redis.NewClient(&redis.Options{Addr: "localhost:9999"})
	defer invalidClient.Close()

	limiter := NewRateLimiter(invalidClient)

	allowed, resetAt := limiter.CheckLimit(context.Background(), "test:key", 1, time.Minute)
	require.False(t, allowed, "redis failure must deny the request")
	require.True(t, resetAt.After(time.Now()))
}

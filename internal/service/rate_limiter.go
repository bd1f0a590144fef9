package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RateLimiter implements a sliding-window limiter on Redis sorted sets.
type RateLimiter struct {
	client *redis.Client
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client}
}

// CheckLimit reports whether one more request under key fits inside the
// window. Fails closed: a Redis error denies the request.
func (rl *RateLimiter) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Time) {
	now := time.Now()
	windowStart := now.Add(-window)

	pipe := rl.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Error().Err(err).Str("key", key).Msg("rate limiter redis error, denying request")
		return false, now.Add(window)
	}

	if countCmd.Val() >= int64(limit) {
		resetAt := now.Add(window)
		if oldest, err := rl.client.ZRangeWithScores(ctx, key, 0, 0).Result(); err == nil && len(oldest) > 0 {
			resetAt = time.Unix(0, int64(oldest[0].Score)).Add(window)
		}
		return false, resetAt
	}

	member := fmt.Sprintf("%d", now.UnixNano())
	add := rl.client.TxPipeline()
	add.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixNano()), Member: member})
	add.Expire(ctx, key, window+time.Minute)
	if _, err := add.Exec(ctx); err != nil {
		log.Error().Err(err).Str("key", key).Msg("rate limiter redis error, denying request")
		return false, now.Add(window)
	}

	return true, now.Add(window)
}

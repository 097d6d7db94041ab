package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/metric"
)

// RedisRateLimiter budgets requests per firm with a Redis sliding window.
type RedisRateLimiter struct {
	client              *redis.Client
	rateLimitRejections metric.Int64Counter
}

// NewRedisRateLimiter creates a new Redis-based rate limiter. The rejection
// counter is optional.
func NewRedisRateLimiter(client *redis.Client, rateLimitRejections metric.Int64Counter) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:              client,
		rateLimitRejections: rateLimitRejections,
	}
}

// AllowRequest checks the firm's budget for the current window.
// Returns (allowed, remaining, error).
func (rl *RedisRateLimiter) AllowRequest(ctx context.Context, firmID string, limit int, windowSeconds int) (bool, int, error) {
	now := time.Now()
	windowStart := now.Add(-time.Duration(windowSeconds) * time.Second)

	key := fmt.Sprintf("ratelimit:firm:%s", firmID)

	pipe := rl.client.Pipeline()

	// Drop entries that fell out of the sliding window, then record this
	// request and count what remains.
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart.UnixMilli()))
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: fmt.Sprintf("%d", now.UnixNano()),
	})
	countCmd := pipe.ZCount(ctx, key, "-inf", "+inf")

	// Expire at twice the window so idle firms clean themselves up.
	pipe.Expire(ctx, key, time.Duration(windowSeconds*2)*time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to execute rate limit check: %w", err)
	}

	count, err := countCmd.Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to get count: %w", err)
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	allowed := count <= int64(limit)

	if !allowed && rl.rateLimitRejections != nil {
		rl.rateLimitRejections.Add(ctx, 1)
	}

	return allowed, remaining, nil
}

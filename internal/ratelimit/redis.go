package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter implements Limiter with Redis INCR + EXPIRE. The key is
// scoped to the window start, so expiry only needs to be set on the first
// increment of each window.
type RedisLimiter struct {
	client *redis.Client
}

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client}
}

var _ Limiter = (*RedisLimiter)(nil)

func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	now := time.Now().UTC()
	start := windowStart(now, window)
	windowKey := fmt.Sprintf("ratelimit:%s:%d", key, start.Unix())

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, windowKey)
	pipe.ExpireNX(ctx, windowKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("rate limit incr: %w", err)
	}

	count := int(incr.Val())
	result := &Result{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: limit - count,
		ResetAt:   start.Add(window),
	}
	if result.Remaining < 0 {
		result.Remaining = 0
	}
	return result, nil
}

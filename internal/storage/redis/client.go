// Package redis wraps the go-redis client used for rate-limit counters and
// the candidate profile cache.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps go-redis with health checking. A nil *Client is a valid
// "Redis not configured" state.
type Client struct {
	*redis.Client
}

// New creates a Redis client from a redis:// URL. Returns (nil, nil) when
// the URL is empty, meaning Redis is not configured.
func New(ctx context.Context, url string) (*Client, error) {
	if url == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client}, nil
}

// Health checks the Redis connection.
func (c *Client) Health(ctx context.Context) error {
	if c == nil {
		return errors.New("redis not configured")
	}
	return c.Ping(ctx).Err()
}

// Close closes the connection pool.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.Client.Close()
}

// Get retrieves a cached value. A cache miss returns ("", nil).
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	if c == nil {
		return "", nil
	}
	value, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return value, err
}

// Set stores a value with a TTL.
func (c *Client) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	return c.Client.Set(ctx, key, value, ttl).Err()
}

package metrics

import (
	"context"
	"time"
)

// CacheBackend is the read-through cache surface instrumented by this
// package. Matches the candidate profile cache used by the domain services.
type CacheBackend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

type instrumentedCache struct {
	next CacheBackend
}

// InstrumentCache wraps a cache backend with hit/miss/error counters.
func InstrumentCache(next CacheBackend) CacheBackend {
	return &instrumentedCache{next: next}
}

// Get counts the lookup. An empty value with no error is a miss.
func (c *instrumentedCache) Get(ctx context.Context, key string) (string, error) {
	value, err := c.next.Get(ctx, key)
	switch {
	case err != nil:
		ProfileCacheTotal.WithLabelValues("error").Inc()
	case value == "":
		ProfileCacheTotal.WithLabelValues("miss").Inc()
	default:
		ProfileCacheTotal.WithLabelValues("hit").Inc()
	}
	return value, err
}

func (c *instrumentedCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return c.next.Set(ctx, key, value, ttl)
}

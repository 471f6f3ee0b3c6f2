package assist

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// DefaultCacheSize bounds the number of cached generations.
	DefaultCacheSize = 50
	// DefaultCacheTTL bounds how long a cached generation stays valid.
	DefaultCacheTTL = 24 * time.Hour
)

// CachedGenerator wraps a Generator with a bounded LRU+TTL cache so
// repeated identical requests within a session skip the collaborator.
// The cache is owned by whoever constructs it (one per session), not a
// package singleton.
type CachedGenerator struct {
	inner Generator
	cache *expirable.LRU[string, Response]
}

// NewCachedGenerator wraps gen with a cache of the given bounds.
// Non-positive size or ttl fall back to the defaults.
func NewCachedGenerator(gen Generator, size int, ttl time.Duration) *CachedGenerator {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedGenerator{
		inner: gen,
		cache: expirable.NewLRU[string, Response](size, nil, ttl),
	}
}

// Generate implements Generator. Only successful generations are cached.
func (c *CachedGenerator) Generate(ctx context.Context, req Request) (*Response, error) {
	key := req.Query + "\x00" + req.Schema
	if cached, ok := c.cache.Get(key); ok {
		resp := cached
		return &resp, nil
	}

	resp, err := c.inner.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, *resp)
	return resp, nil
}

// Len reports the number of live cache entries.
func (c *CachedGenerator) Len() int { return c.cache.Len() }

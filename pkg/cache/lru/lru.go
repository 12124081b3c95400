// Package lru is an in-process cache with a least recently used eviction
// policy.
package lru

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/printnow/portal/pkg/cache"
)

type entry struct {
	value   []byte
	expires time.Time
}

// Cache is a memory cache that uses a LRU cache policy.
type Cache struct {
	cache *lru.Cache[string, entry]
	ttl   time.Duration
	now   func() time.Time
}

var _ cache.Cache = (*Cache)(nil)

// NewCache returns a new Cache.
func NewCache(_ context.Context, opts ...cache.Option) (cache.Cache, error) {
	o := cache.Apply(opts...)
	if o.Size <= 0 {
		o.Size = 1
	}

	l, err := lru.New[string, entry](o.Size)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return &Cache{cache: l, ttl: o.TTL, now: time.Now}, nil
}

// Delete implements cache.Cache.
func (c *Cache) Delete(_ context.Context, key string) {
	c.cache.Remove(key)
}

// Get implements cache.Cache.
func (c *Cache) Get(_ context.Context, key string) ([]byte, bool) {
	e, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		c.cache.Remove(key)
		return nil, false
	}
	return e.value, true
}

// Set implements cache.Cache.
func (c *Cache) Set(_ context.Context, key string, val []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	e := entry{value: val}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.cache.Add(key, e)
}

// Len implements cache.Cache.
func (c *Cache) Len(_ context.Context) int64 {
	return int64(c.cache.Len())
}

// Contains implements cache.Cache.
func (c *Cache) Contains(ctx context.Context, key string) bool {
	_, ok := c.Get(ctx, key)
	return ok
}

// Package cache provides a key value cache used for session and access code
// lookups.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Option is an option for creating new cache.
type Option func(*Options)

// Options holds the settings shared by cache implementations.
type Options struct {
	Size int
	TTL  time.Duration
}

// WithSize sets the maximum number of entries, if the cache is bounded.
func WithSize(s int) Option {
	return func(o *Options) {
		o.Size = s
	}
}

// WithTTL sets the default time to live of entries.
func WithTTL(ttl time.Duration) Option {
	return func(o *Options) {
		o.TTL = ttl
	}
}

// Apply returns the options with opts applied.
func Apply(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Cache is a caching interface. A zero ttl uses the cache default.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration)
	Contains(ctx context.Context, key string) bool
	Delete(ctx context.Context, key string)
	Len(ctx context.Context) int64
}

// GetJSON reads a JSON encoded value. Undecodable entries are dropped.
func GetJSON[T any](ctx context.Context, c Cache, key string) (T, bool) {
	var v T
	if c == nil {
		return v, false
	}
	b, ok := c.Get(ctx, key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(b, &v); err != nil {
		c.Delete(ctx, key)
		return v, false
	}
	return v, true
}

// SetJSON stores a JSON encoded value.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) {
	if c == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.Set(ctx, key, b, ttl)
}

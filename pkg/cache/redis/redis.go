// Package redis is a cache shared between instances through Redis.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/printnow/portal/pkg/cache"
	"github.com/printnow/portal/pkg/config"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every cache key.
const KeyPrefix = "portal:cache:"

// Cache is a Redis cache.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

var _ cache.Cache = (*Cache)(nil)

// NewClient returns a Redis client for the configured server.
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewCache returns a new Redis cache using the redis section of the config
// found in ctx.
func NewCache(ctx context.Context, opts ...cache.Option) (cache.Cache, error) {
	cfg := config.FromContext(ctx)
	if cfg == nil {
		return nil, config.ErrNilConfig
	}

	return New(ctx, NewClient(cfg.Redis), opts...)
}

// New returns a Redis cache backed by client.
func New(ctx context.Context, client *redis.Client, opts ...cache.Option) (*Cache, error) {
	o := cache.Apply(opts...)
	c := &Cache{
		client: client,
		ttl:    o.TTL,
		logger: log.FromContext(ctx).WithPrefix("cache"),
	}

	return c, client.Ping(ctx).Err() //nolint:wrapcheck
}

// Contains implements cache.Cache.
func (r *Cache) Contains(ctx context.Context, key string) bool {
	return r.client.Exists(ctx, KeyPrefix+key).Val() == 1
}

// Delete implements cache.Cache.
func (r *Cache) Delete(ctx context.Context, key string) {
	if err := r.client.Del(ctx, KeyPrefix+key).Err(); err != nil {
		r.logger.Warn("failed to delete cache key", "key", key, "err", err)
	}
}

// Get implements cache.Cache.
func (r *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, KeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("failed to read cache key", "key", key, "err", err)
		}
		return nil, false
	}

	return val, true
}

// Len implements cache.Cache. It counts the keys of the whole database.
func (r *Cache) Len(ctx context.Context) int64 {
	return r.client.DBSize(ctx).Val()
}

// Set implements cache.Cache.
func (r *Cache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = r.ttl
	}
	if err := r.client.Set(ctx, KeyPrefix+key, val, ttl).Err(); err != nil {
		r.logger.Warn("failed to write cache key", "key", key, "err", err)
	}
}

// Close closes the underlying client.
func (r *Cache) Close() error {
	return r.client.Close() //nolint:wrapcheck
}

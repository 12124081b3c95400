// Package init registers the cache drivers.
package init

import (
	"github.com/printnow/portal/pkg/cache"
	"github.com/printnow/portal/pkg/cache/lru"
	"github.com/printnow/portal/pkg/cache/noop"
	"github.com/printnow/portal/pkg/cache/redis"
)

func init() {
	cache.Register("lru", lru.NewCache)
	cache.Register("noop", noop.NewCache)
	cache.Register("redis", redis.NewCache)
}

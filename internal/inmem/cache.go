package inmem

import (
	"context"
	"errors"
	"time"

	"github.com/allegro/bigcache"
	"github.com/leg100/lastquery/internal"
	"github.com/leg100/lastquery/internal/query"
)

const (
	// DefaultCacheTTL is the default lifetime of a cached query.
	DefaultCacheTTL = time.Hour

	// maxCleanWindow caps the interval between sweeps for expired entries.
	maxCleanWindow = time.Minute
)

var _ query.Store = (*Cache)(nil)

type (
	// Cache is a query store backed by bigcache. Entries expire after the
	// configured TTL.
	Cache struct {
		cache *bigcache.BigCache
	}

	CacheConfig struct {
		// Size is the maximum cache size in MB. 0 means unlimited.
		Size int
		TTL  time.Duration
	}
)

func NewCache(config CacheConfig) (*Cache, error) {
	defaults := bigcache.DefaultConfig(DefaultCacheTTL)

	if config.TTL != 0 {
		defaults.LifeWindow = config.TTL
	}
	// bigcache only evicts expired entries when sweeping
	defaults.CleanWindow = cleanWindow(defaults.LifeWindow)

	if config.Size != 0 {
		defaults.HardMaxCacheSize = config.Size
	}

	cache, err := bigcache.NewBigCache(defaults)
	if err != nil {
		return nil, err
	}
	return &Cache{cache: cache}, nil
}

func cleanWindow(ttl time.Duration) time.Duration {
	return min(ttl/2, maxCleanWindow)
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.cache.Get(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil, internal.ErrResourceNotFound
	}
	return val, err
}

func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	return c.cache.Set(key, value)
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	err := c.cache.Delete(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil
	}
	return err
}

// Close stops the cache's background cleanup.
func (c *Cache) Close() error {
	return c.cache.Close()
}

package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// TTLCache is a small keyed cache with time-based eviction. It exists so
// callers express "reuse this value for N minutes" as a single
// GetOrCompute call instead of hand-rolled timestamp bookkeeping.
type TTLCache struct {
	store *gocache.Cache
}

func NewTTLCache(defaultTTL, cleanupInterval time.Duration) *TTLCache {
	return &TTLCache{
		store: gocache.New(defaultTTL, cleanupInterval),
	}
}

// GetOrCompute returns the cached value for key if it is still fresh,
// otherwise runs compute, stores the result with the given ttl, and returns
// it. A compute error is returned as-is and nothing is cached.
func (c *TTLCache) GetOrCompute(key string, ttl time.Duration, compute func() (interface{}, error)) (interface{}, bool, error) {
	if v, found := c.store.Get(key); found {
		return v, true, nil
	}
	v, err := compute()
	if err != nil {
		return nil, false, err
	}
	c.store.Set(key, v, ttl)
	return v, false, nil
}

func (c *TTLCache) Set(key string, value interface{}, ttl time.Duration) {
	c.store.Set(key, value, ttl)
}

func (c *TTLCache) Get(key string) (interface{}, bool) {
	return c.store.Get(key)
}

func (c *TTLCache) Delete(key string) {
	c.store.Delete(key)
}

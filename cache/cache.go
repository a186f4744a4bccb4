// Package cache keeps registry records in memory. Records are immutable once
// written, so entries never need invalidation, only expiry to bound memory.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is a typed wrapper around go-cache.
type Cache[V any] struct {
	cache *gocache.Cache
}

func New[V any](expiration, cleanupInterval time.Duration) *Cache[V] {
	return &Cache[V]{cache: gocache.New(expiration, cleanupInterval)}
}

// Get returns the cached value for key.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	value, found := c.cache.Get(key)
	if !found {
		return zero, false
	}
	v, ok := value.(V)
	if !ok {
		return zero, false
	}
	return v, true
}

// Set stores value under key with the default expiration.
func (c *Cache[V]) Set(key string, value V) {
	c.cache.Set(key, value, gocache.DefaultExpiration)
}

func (c *Cache[V]) Len() int {
	return c.cache.ItemCount()
}

func (c *Cache[V]) Flush() {
	c.cache.Flush()
}

package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is a process-local cache backed by patrickmn/go-cache
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a cache whose entries default to defaultTTL
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{cache: gocache.New(defaultTTL, cleanupInterval)}
}

// Set stores value as JSON; a zero ttl uses the default expiration
func (c *MemoryCache) Set(_ context.Context, prefix, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	c.cache.Set(fullKey(prefix, key), data, ttl)
	return nil
}

// Get decodes the entry into dest or returns ErrCacheMiss
func (c *MemoryCache) Get(_ context.Context, prefix, key string, dest any) error {
	val, found := c.cache.Get(fullKey(prefix, key))
	if !found {
		return ErrCacheMiss
	}
	data, ok := val.([]byte)
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

// Delete removes a single entry
func (c *MemoryCache) Delete(_ context.Context, prefix, key string) error {
	c.cache.Delete(fullKey(prefix, key))
	return nil
}

// DeletePrefix removes every entry stored under prefix
func (c *MemoryCache) DeletePrefix(_ context.Context, prefix string) error {
	for k := range c.cache.Items() {
		if strings.HasPrefix(k, prefix+":") {
			c.cache.Delete(k)
		}
	}
	return nil
}

// Count returns the number of live entries
func (c *MemoryCache) Count(_ context.Context) (int64, error) {
	return int64(c.cache.ItemCount()), nil
}

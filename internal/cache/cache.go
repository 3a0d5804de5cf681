// Package cache stores short-lived JSON snapshots, such as statistics, keyed by prefix and key.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned when a key is absent or expired
var ErrCacheMiss = errors.New("cache: key not found")

// Cache is implemented by the in-memory and Redis backends
type Cache interface {
	// Set stores value as JSON under prefix:key for ttl (zero means the backend default)
	Set(ctx context.Context, prefix, key string, value any, ttl time.Duration) error

	// Get decodes the value under prefix:key into dest or returns ErrCacheMiss
	Get(ctx context.Context, prefix, key string, dest any) error

	// Delete removes one key
	Delete(ctx context.Context, prefix, key string) error

	// DeletePrefix removes every key under prefix
	DeletePrefix(ctx context.Context, prefix string) error

	// Count returns the number of stored keys
	Count(ctx context.Context) (int64, error)
}

func fullKey(prefix, key string) string {
	return prefix + ":" + key
}

// GetOrLoad returns the cached value under prefix:key, or calls load, caches its result for ttl and returns it.
// Cache failures never fail the call; they only cost a reload.
func GetOrLoad[T any](ctx context.Context, c Cache, prefix, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	var cached T
	if err := c.Get(ctx, prefix, key, &cached); err == nil {
		return cached, nil
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	_ = c.Set(ctx, prefix, key, value, ttl)
	return value, nil
}

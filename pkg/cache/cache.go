// Package cache provides byte-oriented caches for manifest fetches and
// rendered artifacts.
//
// # Backends
//
//   - [FileCache]: entries as JSON files under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for several edit servers
//   - [NullCache]: stores nothing, for --no-cache and tests
//
// All backends implement [Cache]. Keys come from a [Keyer] so that callers
// never build key strings by hand.
//
// # Usage
//
//	c, err := cache.NewFileCache(dir)
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	key := cache.NewDefaultKeyer().ManifestKey(source)
//	data, hit, err := c.Get(ctx, key)
//	if !hit {
//	    data = fetch()
//	    _ = c.Set(ctx, key, data, time.Hour)
//	}
//
// # Retry
//
// Transient failures are wrapped with [Retryable] and retried by
// [RetryWithBackoff]; any other error stops the retry loop immediately.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
//
// Get distinguishes three outcomes: a hit returns (data, true, nil), a miss
// returns (nil, false, nil), and a backend failure returns a non-nil error.
// Expired entries are misses. A ttl of 0 passed to Set means no expiration.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Package cache stores package metadata lookups between resolutions.
//
// Three backends implement [Cache]:
//
//   - [NullCache] stores nothing; used when caching is disabled.
//   - [FileCache] keeps one JSON file per key under a directory; used by the
//     CLI (~/.cache/stacksolve by default).
//   - [RedisCache] shares entries between processes through Redis; used by
//     the server when a Redis URL is configured.
//
// Keys come from a [Keyer] so that every backend lays out the same
// namespace and a format change can be rolled out by bumping
// [KeyVersion].
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key. hit is false on a miss or an expired
	// entry; err is only set for backend failures.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

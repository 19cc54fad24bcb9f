// Package cache stores measured archive sizes so repeated runs over the same
// files do not pay for the same compression twice.
//
// Three backends implement [Cache]:
//
//   - [FileCache] keeps one JSON file per entry under a local directory.
//   - [RedisCache] shares entries between machines through Redis.
//   - [NullCache] stores nothing and is used when caching is disabled.
//
// Keys come from a [Keyer]. The default keyer hashes the compression scheme,
// the ordering and a fingerprint (size and modification time) of every file,
// so editing a file invalidates every entry that included it.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored value and whether it was found. A missing or
	// expired entry is a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}

// Clearer is implemented by backends that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

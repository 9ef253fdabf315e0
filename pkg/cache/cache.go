// Package cache provides the byte-level key/value stores behind short links
// and rendered-display caching.
//
// Three backends implement [Cache]:
//   - FileCache: JSON entry files under a directory, for the CLI
//   - RedisCache: a shared Redis instance, for multi-instance servers
//   - NullCache: stores nothing, for --no-cache and tests
//
// Keys are built by a [Keyer] so that different installations can share a
// backend under separate prefixes.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the data for key. hit is false when the key is absent or
	// expired; err is reserved for backend failures.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

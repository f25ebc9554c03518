package store

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry. It is the
// persistence layer behind [Snapshots].
type Cache interface {
	// Get retrieves a value. The bool is false on a miss, including for
	// expired entries; a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero keeps the entry until deleted.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

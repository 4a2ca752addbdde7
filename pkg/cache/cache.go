// Package cache stores derived results keyed by repository state.
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache]
// for a shared server deployment, and [NullCache] to disable caching.
// Keys come from a [Keyer], which folds a repository fingerprint and the
// query options into a fixed-length hash so that any change to the
// repository or the options yields a different key.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values.
const (
	// TTLResult bounds how long a report result is reused. Results are also
	// invalidated by any change to the repository fingerprint.
	TTLResult = 24 * time.Hour
	// TTLPlan bounds how long a removal plan is reused.
	TTLPlan = time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Clear removes every entry owned by the cache.
	Clear(ctx context.Context) error
	// Close releases resources held by the backend.
	Close() error
}

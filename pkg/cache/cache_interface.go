package cache

import (
	"context"
	"time"
)

// Cache is the contract for the shared cache layer. The concrete
// implementation lives in internal/infrastructure/cache (Redis).
type Cache interface {
	// Get reads a key and unmarshals it into dest.
	// found = false means a miss; dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (found bool, err error)

	// Set stores a value with a TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes keys from the cache.
	Delete(ctx context.Context, keys ...string) error

	// DeletePattern removes every key matching a glob pattern.
	DeletePattern(ctx context.Context, pattern string) error

	// Ping verifies connectivity.
	Ping(ctx context.Context) error
}

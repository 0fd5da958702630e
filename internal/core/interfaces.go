package core

import (
	"context"
	"time"
)

// CacheRepository is the key-value store backing the result slot. The core
// defines the interface and the data layer provides implementations
// (hexagonal layout: Redis in production, an in-memory map for tests and
// Redis-less development).
type CacheRepository interface {
	// Set stores a value under key with the given TTL, overwriting any
	// previous value. A TTL of 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get retrieves the value for key. Returns nil when the key is absent
	// or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// GetDelete atomically retrieves and removes the value for key.
	// Returns nil when the key is absent or expired. The read-and-clear
	// must be a single indivisible step: two concurrent calls never both
	// observe the same value.
	GetDelete(ctx context.Context, key string) ([]byte, error)

	// Delete removes key. Returns true if a value was removed.
	Delete(ctx context.Context, key string) (bool, error)

	// Health checks connectivity to the backing store.
	Health(ctx context.Context) error
}

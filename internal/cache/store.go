package cache

import (
	"context"
	"fmt"
	"time"
)

// Store is the pluggable key-value backend underneath the memoizing cache.
// Implementations must be safe for concurrent use. A Get miss and an expired
// entry are indistinguishable to callers: both return ok == false.
type Store interface {
	// Get returns the value stored under key, or ok == false when the key
	// is absent or expired.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set stores value under key. A positive ttl bounds the entry's
	// lifetime; zero or negative means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the entry for key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Clear removes all entries.
	Clear(ctx context.Context) error

	Close() error
}

// OpenStore creates a Store for the configured backend. path is the SQLite
// database file for "sqlite" and the entry directory for "disk"; it is
// ignored for "memory".
func OpenStore(backend, path string) (Store, error) {
	switch backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(path)
	case "disk":
		return NewDiskStore(path)
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", backend)
	}
}

// Package cache stores encoded graphs behind a small key-value interface.
//
// # Backends
//
//   - [NullCache]: stores nothing, for disabled caching and tests
//   - [FileCache]: one JSON envelope per key under a directory, for the CLI
//   - [RedisCache]: a shared Redis server, for the HTTP API
//   - [BadgerCache]: an embedded Badger database, on disk or in memory
//
// All backends honour a per-entry TTL; a zero TTL never expires.
//
// # Keys
//
// A [Keyer] names the entries: graphs are stored under "graph:<name>" and
// content-addressed copies under "digest:<sha256>". [NewScopedKeyer] adds a
// namespace prefix so several stores can share one backend.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with expiry.
type Cache interface {
	// Get returns the value stored under key. A missing or expired entry is
	// reported as hit == false with a nil error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl <= 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

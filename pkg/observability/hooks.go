// Package observability carries instrumentation events out of the store and
// walker.
//
// The store and walker call the globally registered hooks on every intern,
// delete, rebalance and traversal. The defaults are no-ops. [Metrics] is the
// Prometheus implementation; the serve command registers it against its own
// registry and exposes it at /metrics.
//
// # Usage
//
// Register hooks at application startup:
//
//	m := observability.NewMetrics(prometheus.NewRegistry())
//	m.Register()
//	defer observability.Reset()
//
// Libraries call hooks to emit events:
//
//	observability.Store().OnIntern(name, created)
package observability

import (
	"sync"
	"time"
)

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from node stores.
type StoreHooks interface {
	// OnIntern records an intern call; created is false when the name was
	// already present.
	OnIntern(name string, created bool)

	// OnDelete records a node deletion.
	OnDelete(name string)

	// OnRebalance records an index rebuild.
	OnRebalance(strategy string, size int, duration time.Duration, err error)
}

// =============================================================================
// Walk Hooks
// =============================================================================

// WalkHooks receives events from graph traversals.
type WalkHooks interface {
	// OnWalk records a completed traversal.
	OnWalk(mode, family string, visited, revisits int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnIntern(string, bool)                         {}
func (NoopStoreHooks) OnDelete(string)                               {}
func (NoopStoreHooks) OnRebalance(string, int, time.Duration, error) {}

// NoopWalkHooks is a no-op implementation of WalkHooks.
type NoopWalkHooks struct{}

func (NoopWalkHooks) OnWalk(string, string, int, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	storeHooks StoreHooks = NoopStoreHooks{}
	walkHooks  WalkHooks  = NoopWalkHooks{}
	hooksMu    sync.RWMutex
)

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any store operations.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetWalkHooks registers custom walk hooks.
func SetWalkHooks(h WalkHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		walkHooks = h
	}
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Walk returns the registered walk hooks.
func Walk() WalkHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return walkHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	storeHooks = NoopStoreHooks{}
	walkHooks = NoopWalkHooks{}
}

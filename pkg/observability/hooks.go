// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about table and network mutations, edit brackets and
// snapshot store traffic.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are observers of the data model, never participants: they cannot veto
// a mutation and must not call back into the table that reported it. Use
// table listeners for that.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetDataHooks(&myDataHooks{})
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Data().OnMutation(table.Name(), "insert", row, row)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Data Hooks
// =============================================================================

// DataHooks receives events from tables and networks.
type DataHooks interface {
	// OnMutation records a structural or value change over the inclusive
	// row range [start, end]. Kind is "insert", "update" or "delete".
	OnMutation(source, kind string, start, end int)

	// OnEditComplete records the end of an edit bracket and whether the
	// registered listeners reported the result as valid.
	OnEditComplete(source string, col int, valid bool, duration time.Duration)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from snapshot store operations.
type StoreHooks interface {
	// OnSnapshotHit records a snapshot found in the store.
	OnSnapshotHit(ctx context.Context, kind string)

	// OnSnapshotMiss records a snapshot absent from the store.
	OnSnapshotMiss(ctx context.Context, kind string)

	// OnSnapshotSave records a snapshot write.
	OnSnapshotSave(ctx context.Context, kind string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopDataHooks is a no-op implementation of DataHooks.
type NoopDataHooks struct{}

func (NoopDataHooks) OnMutation(string, string, int, int)             {}
func (NoopDataHooks) OnEditComplete(string, int, bool, time.Duration) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnSnapshotHit(context.Context, string)       {}
func (NoopStoreHooks) OnSnapshotMiss(context.Context, string)      {}
func (NoopStoreHooks) OnSnapshotSave(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	dataHooks  DataHooks  = NoopDataHooks{}
	storeHooks StoreHooks = NoopStoreHooks{}
	hooksMu    sync.RWMutex
)

// SetDataHooks registers custom data hooks.
// This should be called once at application startup before any table is built.
func SetDataHooks(h DataHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		dataHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any store operations.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Data returns the registered data hooks.
func Data() DataHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return dataHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	dataHooks = NoopDataHooks{}
	storeHooks = NoopStoreHooks{}
}

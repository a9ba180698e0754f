// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about layout runs, entity-graph mutations, and snapshot
// store operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetLayoutHooks(&myLayoutHooks{})
//	    observability.SetGraphHooks(&myGraphHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Layout().OnRunStart(runID, len(elements), animate)
//	// ... engine animates ...
//	observability.Layout().OnRunStop(runID)
package observability

import "sync"

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from the layout coordinator and engine.
type LayoutHooks interface {
	// OnRunStart records a new engine invocation over the given number of
	// elements.
	OnRunStart(runID string, elements int, animate bool)

	// OnRunStop records an engine run coming to rest or being stopped.
	OnRunStop(runID string)

	// OnRunCancel records a run being superseded by a newer invocation
	// before it came to rest.
	OnRunCancel(runID string)

	// OnSeed records seed placement for newly revealed elements.
	OnSeed(count int, grouped bool)
}

// =============================================================================
// Graph Hooks
// =============================================================================

// GraphHooks receives events from entity-graph mutations and summarization.
type GraphHooks interface {
	// OnGroupCreated records a new group with its initial member count.
	OnGroupCreated(groupID string, members int)

	// OnGroupRemoved records a group being dissolved.
	OnGroupRemoved(groupID string)

	// OnAggregate records a summarization pass over one group direction.
	OnAggregate(groupID, direction string, edges int)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from snapshot store operations.
type StoreHooks interface {
	// OnHit records a store hit.
	OnHit(keyType string)

	// OnMiss records a store miss.
	OnMiss(keyType string)

	// OnSet records a store write.
	OnSet(keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnRunStart(string, int, bool) {}
func (NoopLayoutHooks) OnRunStop(string)             {}
func (NoopLayoutHooks) OnRunCancel(string)           {}
func (NoopLayoutHooks) OnSeed(int, bool)             {}

// NoopGraphHooks is a no-op implementation of GraphHooks.
type NoopGraphHooks struct{}

func (NoopGraphHooks) OnGroupCreated(string, int)      {}
func (NoopGraphHooks) OnGroupRemoved(string)           {}
func (NoopGraphHooks) OnAggregate(string, string, int) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnHit(string)      {}
func (NoopStoreHooks) OnMiss(string)     {}
func (NoopStoreHooks) OnSet(string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	layoutHooks LayoutHooks = NoopLayoutHooks{}
	graphHooks  GraphHooks  = NoopGraphHooks{}
	storeHooks  StoreHooks  = NoopStoreHooks{}
	hooksMu     sync.RWMutex
)

// SetLayoutHooks registers custom layout hooks.
// This should be called once at application startup before any layout runs.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetGraphHooks registers custom graph hooks.
// This should be called once at application startup before any graph mutation.
func SetGraphHooks(h GraphHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		graphHooks = h
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

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
}

// Graph returns the registered graph hooks.
func Graph() GraphHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return graphHooks
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
	layoutHooks = NoopLayoutHooks{}
	graphHooks = NoopGraphHooks{}
	storeHooks = NoopStoreHooks{}
}

// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about history operations, image cache activity, and
// asset garbage collection.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetHistoryHooks(&myHistoryHooks{})
//	    observability.SetAssetHooks(&myAssetHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Assets().OnLoad(ctx, id, bytes, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// History Hooks
// =============================================================================

// HistoryHooks receives events from the undo/redo manager.
type HistoryHooks interface {
	// OnExecute records a newly executed command and the resulting undo depth.
	OnExecute(cmdType string, depth int)

	// OnUndo records an undone command.
	OnUndo(cmdType string)

	// OnRedo records a redone command.
	OnRedo(cmdType string)

	// OnEvict records a command dropped from the bottom of the undo stack.
	OnEvict(cmdType string)
}

// =============================================================================
// Asset Hooks
// =============================================================================

// AssetHooks receives events from the decoded image cache.
type AssetHooks interface {
	// OnCacheHit records an acquire served from a cached entry.
	OnCacheHit(ctx context.Context, id string)

	// OnCacheMiss records an acquire that started or joined a load.
	OnCacheMiss(ctx context.Context, id string)

	// OnLoad records the completion of a storage read and decode.
	OnLoad(ctx context.Context, id string, size int, duration time.Duration, err error)

	// OnRelease records a released reference; evicted is true when the
	// entry was dropped because its count reached zero.
	OnRelease(id string, evicted bool)
}

// =============================================================================
// GC Hooks
// =============================================================================

// GCHooks receives events from the asset garbage collector.
type GCHooks interface {
	// OnCollect records the outcome of one collection run.
	OnCollect(ctx context.Context, removed, failed int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopHistoryHooks is a no-op implementation of HistoryHooks.
type NoopHistoryHooks struct{}

func (NoopHistoryHooks) OnExecute(string, int) {}
func (NoopHistoryHooks) OnUndo(string)         {}
func (NoopHistoryHooks) OnRedo(string)         {}
func (NoopHistoryHooks) OnEvict(string)        {}

// NoopAssetHooks is a no-op implementation of AssetHooks.
type NoopAssetHooks struct{}

func (NoopAssetHooks) OnCacheHit(context.Context, string)                        {}
func (NoopAssetHooks) OnCacheMiss(context.Context, string)                       {}
func (NoopAssetHooks) OnLoad(context.Context, string, int, time.Duration, error) {}
func (NoopAssetHooks) OnRelease(string, bool)                                    {}

// NoopGCHooks is a no-op implementation of GCHooks.
type NoopGCHooks struct{}

func (NoopGCHooks) OnCollect(context.Context, int, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	historyHooks HistoryHooks = NoopHistoryHooks{}
	assetHooks   AssetHooks   = NoopAssetHooks{}
	gcHooks      GCHooks      = NoopGCHooks{}
	hooksMu      sync.RWMutex
)

// SetHistoryHooks registers custom history hooks.
// This should be called once at application startup.
func SetHistoryHooks(h HistoryHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		historyHooks = h
	}
}

// SetAssetHooks registers custom asset cache hooks.
// This should be called once at application startup.
func SetAssetHooks(h AssetHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		assetHooks = h
	}
}

// SetGCHooks registers custom garbage collector hooks.
func SetGCHooks(h GCHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		gcHooks = h
	}
}

// History returns the registered history hooks.
func History() HistoryHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return historyHooks
}

// Assets returns the registered asset cache hooks.
func Assets() AssetHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return assetHooks
}

// GC returns the registered garbage collector hooks.
func GC() GCHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return gcHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	historyHooks = NoopHistoryHooks{}
	assetHooks = NoopAssetHooks{}
	gcHooks = NoopGCHooks{}
}

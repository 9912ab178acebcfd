// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries in this module emit events through small hook interfaces. The
// defaults do nothing; the command registers real implementations (see
// [NewOTelHooks]) once at startup.
//
// # Architecture
//
//   - Each event category has a hook interface
//   - Each interface has a no-op default
//   - Registration happens in main, never in libraries
//
// # Usage
//
//	func main() {
//	    hooks, _ := observability.NewOTelHooks(otel.Meter("lassoview"))
//	    observability.SetLassoHooks(hooks)
//	    observability.SetProviderHooks(hooks)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Lasso().OnGestureStart(surface)
//	// ... pointer moves ...
//	observability.Lasso().OnGestureEnd(surface, len(path), selected, time.Since(start))
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Lasso Hooks
// =============================================================================

// LassoHooks receives gesture events from lasso controllers. Gestures are
// driven by pointer input, not requests, so no context is passed.
type LassoHooks interface {
	OnGestureStart(surface string)
	// OnGestureEnd fires after the hit test of a released gesture.
	OnGestureEnd(surface string, pathLen, selected int, duration time.Duration)
	OnGestureCancel(surface string)
}

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from network layout engines.
type LayoutHooks interface {
	OnLayoutStart(ctx context.Context, engine string, nodes int)
	OnLayoutComplete(ctx context.Context, engine string, duration time.Duration, err error)
}

// =============================================================================
// Provider Hooks
// =============================================================================

// ProviderHooks receives events from the external layout provider protocol,
// on both the client and the server side.
type ProviderHooks interface {
	// OnRequest records an outgoing (client) or incoming (server) action.
	OnRequest(ctx context.Context, action string)

	// OnResponse records the completion of an action.
	OnResponse(ctx context.Context, action string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopLassoHooks is a no-op implementation of LassoHooks.
type NoopLassoHooks struct{}

func (NoopLassoHooks) OnGestureStart(string)                        {}
func (NoopLassoHooks) OnGestureEnd(string, int, int, time.Duration) {}
func (NoopLassoHooks) OnGestureCancel(string)                       {}

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnLayoutStart(context.Context, string, int)                     {}
func (NoopLayoutHooks) OnLayoutComplete(context.Context, string, time.Duration, error) {}

// NoopProviderHooks is a no-op implementation of ProviderHooks.
type NoopProviderHooks struct{}

func (NoopProviderHooks) OnRequest(context.Context, string)                        {}
func (NoopProviderHooks) OnResponse(context.Context, string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	lassoHooks    LassoHooks    = NoopLassoHooks{}
	layoutHooks   LayoutHooks   = NoopLayoutHooks{}
	providerHooks ProviderHooks = NoopProviderHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetLassoHooks registers custom lasso hooks.
func SetLassoHooks(h LassoHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		lassoHooks = h
	}
}

// SetLayoutHooks registers custom layout hooks.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetProviderHooks registers custom provider hooks.
func SetProviderHooks(h ProviderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		providerHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Lasso returns the registered lasso hooks.
func Lasso() LassoHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return lassoHooks
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
}

// Provider returns the registered provider hooks.
func Provider() ProviderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return providerHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	lassoHooks = NoopLassoHooks{}
	layoutHooks = NoopLayoutHooks{}
	providerHooks = NoopProviderHooks{}
	cacheHooks = NoopCacheHooks{}
}

// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about the marker overlay, cache operations, and manifest
// fetches.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Overlay hooks run on the render path with the overlay lock held. They must
// be fast and must not call back into the overlay.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetOverlayHooks(&myOverlayHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Overlay().OnMarkerAdded(handle, total)
//	observability.Cache().OnCacheHit(ctx, "manifest")
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Overlay Hooks
// =============================================================================

// OverlayHooks receives events from the marker overlay.
type OverlayHooks interface {
	// Registry events
	OnMarkerAdded(marker string, total int)
	OnMarkerRemoved(marker string, animated bool)

	// Drag events; phase is "start" or "end".
	OnDrag(marker, phase string)
	OnAutoRotate(marker string, pitch, yaw float64)

	// OnRenderPass records one frame of the render-sync loop.
	OnRenderPass(visible, hidden, skipped int, duration time.Duration)
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
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopOverlayHooks is a no-op implementation of OverlayHooks.
type NoopOverlayHooks struct{}

func (NoopOverlayHooks) OnMarkerAdded(string, int)                 {}
func (NoopOverlayHooks) OnMarkerRemoved(string, bool)              {}
func (NoopOverlayHooks) OnDrag(string, string)                     {}
func (NoopOverlayHooks) OnAutoRotate(string, float64, float64)     {}
func (NoopOverlayHooks) OnRenderPass(int, int, int, time.Duration) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	overlayHooks OverlayHooks = NoopOverlayHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	httpHooks    HTTPHooks    = NoopHTTPHooks{}
	hooksMu      sync.RWMutex
)

// SetOverlayHooks registers custom overlay hooks.
// This should be called once at application startup before any overlay is created.
func SetOverlayHooks(h OverlayHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		overlayHooks = h
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

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Overlay returns the registered overlay hooks.
func Overlay() OverlayHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return overlayHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	overlayHooks = NoopOverlayHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}

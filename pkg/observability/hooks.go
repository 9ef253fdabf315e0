// Package observability lets the binary observe the codec, the display
// surfaces and the cache without those packages depending on a metrics
// backend.
//
// Libraries report events through [Codec], [Render] and [Cache], which
// return no-op hooks until main registers real ones:
//
//	observability.NewLogHooks(logger).Register()
//	defer observability.Reset()
//
// Inside a library:
//
//	start := time.Now()
//	err := render()
//	observability.Render().OnRender(ctx, "html", time.Since(start), err)
//
// Hook lookups sit on the render and decode paths, so they are a single
// atomic load.
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// =============================================================================
// Codec Hooks
// =============================================================================

// CodecHooks receives events from the configuration token codec.
type CodecHooks interface {
	// OnEncode records an encoded token of size bytes.
	OnEncode(size int)

	// OnDecode records a decode attempt. ok is false when the token was
	// rejected and the default configuration substituted.
	OnDecode(size int, ok bool)
}

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives events from the display surfaces.
type RenderHooks interface {
	// OnCompose records a composed display.
	OnCompose(ctx context.Context, gridWidgets int, fixed bool)

	// OnRender records a finished render of surface ("html", "text", "terminal").
	OnRender(ctx context.Context, surface string, duration time.Duration, err error)
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

// NoopCodecHooks ignores every event. Embed it to implement only some
// methods.
type NoopCodecHooks struct{}

func (NoopCodecHooks) OnEncode(int)       {}
func (NoopCodecHooks) OnDecode(int, bool) {}

// NoopRenderHooks ignores every event.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnCompose(context.Context, int, bool)                  {}
func (NoopRenderHooks) OnRender(context.Context, string, time.Duration, error) {}

// NoopCacheHooks ignores every event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Registry
// =============================================================================

// hookSet is replaced as a whole on every registration.
type hookSet struct {
	codec  CodecHooks
	render RenderHooks
	cache  CacheHooks
}

var current atomic.Pointer[hookSet]

func init() {
	Reset()
}

// update swaps in a copy of the current set changed by fn.
func update(fn func(*hookSet)) {
	for {
		old := current.Load()
		next := *old
		fn(&next)
		if current.CompareAndSwap(old, &next) {
			return
		}
	}
}

// SetCodecHooks registers codec hooks. nil is ignored.
func SetCodecHooks(h CodecHooks) {
	if h != nil {
		update(func(s *hookSet) { s.codec = h })
	}
}

// SetRenderHooks registers render hooks. nil is ignored.
func SetRenderHooks(h RenderHooks) {
	if h != nil {
		update(func(s *hookSet) { s.render = h })
	}
}

// SetCacheHooks registers cache hooks. nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(s *hookSet) { s.cache = h })
	}
}

// Codec returns the registered codec hooks.
func Codec() CodecHooks { return current.Load().codec }

// Render returns the registered render hooks.
func Render() RenderHooks { return current.Load().render }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return current.Load().cache }

// Reset restores the no-op hooks.
func Reset() {
	current.Store(&hookSet{
		codec:  NoopCodecHooks{},
		render: NoopRenderHooks{},
		cache:  NoopCacheHooks{},
	})
}

package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug log lines.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks creates hooks that log to l.
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{logger: l.WithPrefix("obs")}
}

// Register installs h for all hook categories.
func (h *LogHooks) Register() {
	SetCodecHooks(h)
	SetRenderHooks(h)
	SetCacheHooks(h)
}

func (h *LogHooks) OnEncode(size int) {
	h.logger.Debug("token encoded", "bytes", size)
}

func (h *LogHooks) OnDecode(size int, ok bool) {
	if !ok {
		h.logger.Debug("token rejected, using default", "bytes", size)
		return
	}
	h.logger.Debug("token decoded", "bytes", size)
}

func (h *LogHooks) OnCompose(_ context.Context, gridWidgets int, fixed bool) {
	h.logger.Debug("composed", "widgets", gridWidgets, "ticker", fixed)
}

func (h *LogHooks) OnRender(_ context.Context, surface string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("render failed", "surface", surface, "duration", d, "err", err)
		return
	}
	h.logger.Debug("rendered", "surface", surface, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

var (
	_ CodecHooks  = (*LogHooks)(nil)
	_ RenderHooks = (*LogHooks)(nil)
	_ CacheHooks  = (*LogHooks)(nil)
)

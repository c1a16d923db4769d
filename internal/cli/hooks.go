package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/iamvince24/serenity-canvas/pkg/observability"
)

// logHooks forwards image cache and GC events to the debug log, so -v
// shows what a command loaded and collected.
type logHooks struct {
	logger *log.Logger
}

func (h logHooks) OnCacheHit(_ context.Context, id string) {
	h.logger.Debug("image cache hit", "id", id)
}

func (h logHooks) OnCacheMiss(_ context.Context, id string) {
	h.logger.Debug("image cache miss", "id", id)
}

func (h logHooks) OnLoad(_ context.Context, id string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("image load failed", "id", id, "err", err)
		return
	}
	h.logger.Debug("image loaded", "id", id, "bytes", size, "took", d.Round(time.Millisecond))
}

func (h logHooks) OnRelease(id string, evicted bool) {
	if evicted {
		h.logger.Debug("image evicted", "id", id)
	}
}

func (h logHooks) OnCollect(_ context.Context, removed, failed int, d time.Duration) {
	h.logger.Debug("asset gc finished", "removed", removed, "failed", failed, "took", d.Round(time.Millisecond))
}

// installHooks routes observability events to l.
func installHooks(l *log.Logger) {
	h := logHooks{logger: l}
	observability.SetAssetHooks(h)
	observability.SetGCHooks(h)
}

package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a charm logger. Successful events go to
// debug level; failures go to warn.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks creates hooks logging to logger (nil means log.Default()).
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{logger: logger.WithPrefix("hooks")}
}

func (h *LogHooks) OnCacheHit(_ context.Context, hash string) {
	h.logger.Debug("cache hit", "hash", short(hash))
}

func (h *LogHooks) OnCacheMiss(_ context.Context, hash string) {
	h.logger.Debug("cache miss", "hash", short(hash))
}

func (h *LogHooks) OnCacheStore(_ context.Context, hash string, err error) {
	if err != nil {
		h.logger.Warn("cache store failed", "hash", short(hash), "err", err)
		return
	}
	h.logger.Debug("cache store", "hash", short(hash))
}

func (h *LogHooks) OnRender(_ context.Context, template string, size float64, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("render failed", "template", template, "took", d, "err", err)
		return
	}
	h.logger.Debug("rendered", "template", template, "size", size, "took", d)
}

func (h *LogHooks) OnUpload(_ context.Context, destination string, bytes int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("upload failed", "destination", destination, "bytes", bytes, "took", d, "err", err)
		return
	}
	h.logger.Debug("uploaded", "destination", destination, "bytes", bytes, "took", d)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "took", d)
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Warn("http error", "method", method, "host", host, "path", path, "err", err)
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

var (
	_ Hooks     = (*LogHooks)(nil)
	_ HTTPHooks = (*LogHooks)(nil)
)

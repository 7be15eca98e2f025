package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// logHooks writes observability events to the debug log.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnParseStart(_ context.Context, size int) {
	h.logger.Debug("parse started", "bytes", size)
}

func (h *logHooks) OnParseComplete(_ context.Context, cells, walls int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("parse failed", "error", err, "duration", d)
		return
	}
	h.logger.Debug("parse complete", "cells", cells, "walls", walls, "duration", d)
}

func (h *logHooks) OnSolveStart(_ context.Context, nodeCount int) {
	h.logger.Debug("solve started", "cells", nodeCount)
}

func (h *logHooks) OnSolveComplete(_ context.Context, cost int, reachable bool, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("solve failed", "error", err, "duration", d)
		return
	}
	h.logger.Debug("solve complete", "reachable", reachable, "cost", cost, "duration", d)
}

func (h *logHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render started", "formats", formats)
}

func (h *logHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "formats", formats, "error", err, "duration", d)
		return
	}
	h.logger.Debug("render complete", "formats", formats, "duration", d)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *logHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "path", path, "status", status, "duration", d)
}

func (h *logHooks) OnError(_ context.Context, method, path string, err error) {
	h.logger.Debug("request failed", "method", method, "path", path, "error", err)
}

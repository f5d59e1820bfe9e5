// Package cli implements the vrtour command-line interface.
//
// The commands load a house manifest from a file or URL, walk or edit its
// rooms in a terminal panorama viewer, serve hotspot edits over HTTP and
// draw the room graph. The CLI is built on cobra and logs through
// charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - view: walk (or, with --mode edit, edit) a tour in the terminal
//   - rooms: list the rooms of a manifest
//   - graph: render the room graph to SVG, PDF or PNG
//   - serve: run the hotspot edit server
//   - cache: manage the manifest cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// installs logging observability hooks. Loggers are passed through
// context.Context.
//
// # Configuration
//
// Settings are read from a TOML file, by default config.toml in the
// user config directory (see package config). --config points elsewhere.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Loaded manifest (12ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Observability
// =============================================================================

// logHooks writes observability events to the debug log.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnMarkerAdded(marker string, total int) {
	h.logger.Debug("marker added", "marker", marker, "total", total)
}

func (h *logHooks) OnMarkerRemoved(marker string, animated bool) {
	h.logger.Debug("marker removed", "marker", marker, "animated", animated)
}

func (h *logHooks) OnDrag(marker, phase string) {
	h.logger.Debug("drag", "marker", marker, "phase", phase)
}

func (h *logHooks) OnAutoRotate(marker string, pitch, yaw float64) {
	h.logger.Debug("edge rotate", "marker", marker, "pitch", pitch, "yaw", yaw)
}

// OnRenderPass is left silent; it fires every frame.
func (h *logHooks) OnRenderPass(visible, hidden, skipped int, d time.Duration) {}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "took", d.Round(time.Millisecond))
}

func (h *logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}

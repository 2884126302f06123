package core

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record and reports itself disabled, so callers
// skip formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger installs the logger shared by the engine and its backends.
// The engine is silent until a host calls it. Nil restores the silent default.
//
// Levels in use:
//   - [slog.LevelDebug]: per-second frame stats, buffer sizes
//   - [slog.LevelInfo]: lifecycle (window, GPU strings, adapter selected)
//   - [slog.LevelWarn]: resource release problems
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

package psdrun

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled reports false so callers skip formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for psdrun. Pass nil to restore the
// default silent logger. SetLogger is safe for concurrent use.
//
// Log levels used by psdrun:
//   - [slog.LevelDebug]: surface allocation, leaf cache hits
//   - [slog.LevelInfo]: document load and release
//   - [slog.LevelWarn]: staged file cleanup failures, recovered render faults
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by psdrun.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

package sketch

import (
	"context"
	"log/slog"
	"sync/atomic"
)

type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (discard) WithAttrs([]slog.Attr) slog.Handler        { return discard{} }
func (discard) WithGroup(string) slog.Handler             { return discard{} }

var silent = slog.New(discard{})

// logger is read by the snapshot loader goroutine while the UI may be
// swapping it.
var logger atomic.Pointer[slog.Logger]

func init() { logger.Store(silent) }

// SetLogger routes sketch and backend logs to l. Nil silences them again,
// which is also the default.
//
// Debug records single events and draw calls, Info records snapshot and
// backend lifecycle, and Warn records errors the loop recovered from.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	logger.Store(l)
}

// Logger returns the logger set by SetLogger.
func Logger() *slog.Logger { return logger.Load() }

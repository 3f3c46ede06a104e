// Package watch reports changes to a snapshot file made by other programs.
//
// The parent directory is watched rather than the file itself, so the
// watch survives files being replaced by rename, which is how SaveFile and
// most editors write.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gogpu/sketch"
)

// DefaultDelay is how long a file must be quiet before a change is reported.
const DefaultDelay = 150 * time.Millisecond

// Watcher calls a function when one file is written or created.
type Watcher struct {
	fsw    *fsnotify.Watcher
	path   string
	notify func(path string)
	delay  time.Duration
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDelay sets the quiet period that coalesces bursts of writes into a
// single notification.
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// New starts watching path. notify is called from the goroutine running
// Run, once per burst of changes.
func New(path string, notify func(path string), opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	w := &Watcher{fsw: fsw, path: abs, notify: notify, delay: DefaultDelay}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Run delivers notifications until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	timer := time.NewTimer(w.delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				sketch.Logger().Debug("watch: change", slog.String("path", w.path), slog.String("op", ev.Op.String()))
				timer.Reset(w.delay)
			}

		case <-timer.C:
			sketch.Logger().Info("watch: snapshot changed on disk", slog.String("path", w.path))
			w.notify(w.path)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			sketch.Logger().Warn("watch: watcher error", slog.String("path", w.path), slog.Any("err", err))
		}
	}
}

// Close stops the watcher and makes Run return.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

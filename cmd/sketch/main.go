// Command sketch is an interactive terminal drawing program.
//
// Click to place vertices. Keys:
//
//	1-7   primitive mode (POINTS, LINES, LINE_LOOP, LINE_STRIP,
//	      TRIANGLES, TRIANGLE_STRIP, TRIANGLE_FAN)
//	c     next palette color
//	s     save the snapshot
//	o     open the snapshot
//	r     redraw
//	q     quit (also Esc, Ctrl-C)
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/gogpu/sketch"
	"github.com/gogpu/sketch/config"
	"github.com/gogpu/sketch/internal/term"
	"github.com/gogpu/sketch/internal/watch"
)

func main() {
	var (
		configPath = flag.String("config", config.DefaultPath, "config file")
		snapshot   = flag.String("snapshot", "", "snapshot file (default from config)")
		open       = flag.Bool("open", false, "load the snapshot at startup")
		watchFile  = flag.Bool("watch", false, "reload the snapshot when it changes on disk")
		logFile    = flag.String("log", "", "log file (default from config)")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *logFile != "" {
		cfg.Log.File = *logFile
	}
	if *watchFile {
		cfg.Snapshot.Watch = true
	}
	path := cfg.SnapshotFile()
	if *snapshot != "" {
		path = sketch.SnapshotPath(*snapshot)
	}

	closeLog, err := setupLogging(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeLog()

	if err := run(cfg, path, *open); err != nil {
		closeLog()
		log.Fatal(err)
	}
}

// loadConfig reads the config file. A missing file is only an error when
// it was named explicitly.
func loadConfig(path string) (*config.Config, error) {
	if path == config.DefaultPath {
		return config.LoadOrDefault(path)
	}
	return config.Load(path)
}

// setupLogging sends sketch logs to the configured file. The terminal is
// owned by the UI, so without a file logging stays off.
func setupLogging(cfg *config.Config) (func(), error) {
	path := cfg.LogFile()
	if path == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("log file: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("log file: %w", err)
	}
	sketch.SetLogger(newLogger(f, cfg.LogLevel()))
	return func() {
		sketch.SetLogger(nil)
		_ = f.Close()
	}, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func run(cfg *config.Config, path string, open bool) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("%w: %v", sketch.ErrMissingSurfaceOrContext, err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("%w: %v", sketch.ErrMissingSurfaceOrContext, err)
	}
	defer screen.Fini()
	screen.SetStyle(tcell.StyleDefault)

	canvas := term.NewCanvas(screen, cfg.BackendOptions(0, 0))
	defer canvas.Close()

	sess, err := sketch.NewSession(canvas, cfg.SessionOptions()...)
	if err != nil {
		return err
	}
	ui := term.New(screen, sess, term.Options{
		SnapshotPath: path,
		Palette:      cfg.Palette(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Snapshot.Watch {
		w, err := watch.New(path, func(p string) {
			ui.Loop().Post(sketch.SnapshotOpen{Path: p})
		})
		if err != nil {
			return err
		}
		defer w.Close()
		go func() { _ = w.Run(ctx) }()
	}
	if open {
		ui.Loop().Post(sketch.SnapshotOpen{Path: path})
	}

	sketch.Logger().Info("sketch: starting", slog.String("snapshot", path), slog.Bool("watch", cfg.Snapshot.Watch))
	err = ui.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Command sketchpng renders a snapshot file without a terminal.
//
// Usage:
//
//	sketchpng [flags] drawing.json
//
// The raster backend writes a PNG image. The trace backend prints the
// renderer calls instead, one per line.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/sketch"
	"github.com/gogpu/sketch/backend"
	_ "github.com/gogpu/sketch/backend/raster"
	_ "github.com/gogpu/sketch/backend/trace"
	_ "github.com/gogpu/sketch/backend/wgpu"
	"github.com/gogpu/sketch/config"
)

// options are the command settings after flags and config are merged.
type options struct {
	input   string
	output  string
	backend string
	width   int
	height  int
}

func main() {
	var (
		configPath = flag.String("config", config.DefaultPath, "config file")
		output     = flag.String("output", "", "output PNG file (default: input with .png)")
		backendArg = flag.String("backend", "", "backend: auto, raster, wgpu or trace (default from config)")
		width      = flag.Int("width", 0, "image width (default from config)")
		height     = flag.Int("height", 0, "image height (default from config)")
		verbose    = flag.Bool("v", false, "log to stderr")
	)
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: sketchpng [flags] drawing.json")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *verbose {
		sketch.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()})))
	}

	opts := options{
		input:   flag.Arg(0),
		output:  *output,
		backend: cfg.Render.Backend,
		width:   cfg.Canvas.Width,
		height:  cfg.Canvas.Height,
	}
	if *backendArg != "" {
		opts.backend = *backendArg
	}
	if *width > 0 {
		opts.width = *width
	}
	if *height > 0 {
		opts.height = *height
	}
	if opts.output == "" {
		opts.output = trimExt(opts.input) + ".png"
	}

	if err := render(cfg, opts, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

// pngWriter is implemented by backends that produce an image.
type pngWriter interface {
	SavePNG(path string) error
}

// render replays the snapshot through the selected backend and writes its
// output: a PNG for image backends, a call listing to w otherwise.
func render(cfg *config.Config, opts options, w io.Writer) error {
	snap, err := sketch.LoadFile(opts.input)
	if err != nil {
		return err
	}

	bopts := cfg.BackendOptions(opts.width, opts.height)
	bopts.Capacity = max(bopts.Capacity, snap.VertexCount())
	var b backend.Backend
	if opts.backend == config.BackendAuto {
		b, err = backend.Default(bopts)
	} else {
		b, err = backend.New(opts.backend, bopts)
	}
	if err != nil {
		return err
	}
	defer b.Close()

	sess, err := sketch.NewSession(b, sketch.WithCapacity(bopts.Capacity))
	if err != nil {
		return err
	}
	if err := sess.Restore(snap); err != nil {
		return err
	}

	if pw, ok := b.(pngWriter); ok {
		if err := pw.SavePNG(opts.output); err != nil {
			return fmt.Errorf("write %s: %w", opts.output, err)
		}
		sketch.Logger().Info("sketchpng: image written",
			slog.String("path", opts.output),
			slog.Int("width", opts.width),
			slog.Int("height", opts.height))
		return nil
	}
	if s, ok := b.(fmt.Stringer); ok {
		_, err := io.WriteString(w, s.String())
		return err
	}
	return errors.New("sketchpng: backend " + b.Name() + " produces no output")
}

func trimExt(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

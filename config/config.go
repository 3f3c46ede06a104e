// Package config loads sketch settings from a TOML file.
//
// A config file has five tables; every key is optional and falls back to
// the value from [Default]:
//
//	[canvas]
//	width = 800
//	height = 600
//	capacity = 100000
//	background = "white"
//
//	[draw]
//	mode = "LINE_STRIP"
//	color = "#1f77b4"
//	palette = ["black", "red", "green", "blue"]
//
//	[snapshot]
//	dir = "~/sketches"
//	name = "drawing"
//	watch = true
//
//	[log]
//	level = "debug"
//	file = "~/.cache/sketch.log"
//
//	[render]
//	backend = "auto"
//	point_size = 4
//	line_width = 1.5
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gogpu/sketch"
	"github.com/gogpu/sketch/backend"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// BackendAuto selects the best available backend.
const BackendAuto = "auto"

// DefaultPath is where the sketch command looks for its config file.
const DefaultPath = "~/.config/sketch/config.toml"

// Config holds all sketch settings.
type Config struct {
	Canvas   Canvas   `toml:"canvas"`
	Draw     Draw     `toml:"draw"`
	Snapshot Snapshot `toml:"snapshot"`
	Log      Log      `toml:"log"`
	Render   Render   `toml:"render"`
}

// Canvas describes the drawing surface.
type Canvas struct {
	// Width and Height are the surface size in pixels for headless output.
	// The terminal UI uses the terminal size instead.
	Width  int `toml:"width"`
	Height int `toml:"height"`

	// Capacity is the maximum number of vertices in a drawing.
	Capacity int `toml:"capacity"`

	// Background is a hex color or CSS color name.
	Background string `toml:"background"`
}

// Draw holds the initial drawing state.
type Draw struct {
	Mode    string   `toml:"mode"`
	Color   string   `toml:"color"`
	Palette []string `toml:"palette"`
}

// Snapshot controls where drawings are saved and loaded.
type Snapshot struct {
	Dir   string `toml:"dir"`
	Name  string `toml:"name"`
	Watch bool   `toml:"watch"` // reload when the file changes on disk
}

// Log configures the log output.
type Log struct {
	Level string `toml:"level"`
	File  string `toml:"file"` // empty disables logging
}

// Render selects and tunes the backend.
type Render struct {
	Backend   string  `toml:"backend"`
	PointSize float64 `toml:"point_size"`
	LineWidth float64 `toml:"line_width"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Canvas: Canvas{
			Width:      800,
			Height:     600,
			Capacity:   sketch.MaxVertices,
			Background: "white",
		},
		Draw: Draw{
			Mode:    sketch.Points.String(),
			Color:   "black",
			Palette: []string{"black", "red", "green", "blue", "orange", "purple"},
		},
		Snapshot: Snapshot{
			Dir:  ".",
			Name: "drawing",
		},
		Log: Log{
			Level: "info",
		},
		Render: Render{
			Backend:   BackendAuto,
			PointSize: backend.DefaultPointSize,
			LineWidth: backend.DefaultLineWidth,
		},
	}
}

// Load reads the config file at path over the defaults and validates it.
// A leading ~ in path is expanded. Unknown keys are an error.
func Load(path string) (*Config, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	sketch.Logger().Info("config: loaded", slog.String("path", path))
	return c, nil
}

// LoadOrDefault is like Load but returns the defaults when the file does
// not exist.
func LoadOrDefault(path string) (*Config, error) {
	c, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return c, err
}

// Parse decodes a TOML document over the defaults and validates it.
func Parse(data []byte) (*Config, error) {
	c := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("%w: line %d column %d: %v", ErrInvalid, row, col, derr)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Encode writes c to w as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		bad("canvas size %dx%d", c.Canvas.Width, c.Canvas.Height)
	}
	if c.Canvas.Capacity <= 0 {
		bad("canvas capacity %d", c.Canvas.Capacity)
	}
	if _, err := sketch.ParseColor(c.Canvas.Background); err != nil {
		bad("canvas background: %v", err)
	}
	if _, err := sketch.ParseMode(c.Draw.Mode); err != nil {
		bad("draw mode: %v", err)
	}
	if _, err := sketch.ParseColor(c.Draw.Color); err != nil {
		bad("draw color: %v", err)
	}
	for i, s := range c.Draw.Palette {
		if _, err := sketch.ParseColor(s); err != nil {
			bad("draw palette[%d]: %v", i, err)
		}
	}
	if c.Snapshot.Name == "" {
		bad("snapshot name is empty")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		bad("log level: %v", err)
	}
	switch c.Render.Backend {
	case BackendAuto, backend.NameRaster, backend.NameWGPU, backend.NameTrace:
	default:
		bad("render backend %q", c.Render.Backend)
	}
	if c.Render.PointSize <= 0 || c.Render.LineWidth <= 0 {
		bad("render point_size %g, line_width %g", c.Render.PointSize, c.Render.LineWidth)
	}
	return errors.Join(errs...)
}

// Mode returns the initial drawing mode.
// It must only be called on a validated config.
func (c *Config) Mode() sketch.Mode {
	m, _ := sketch.ParseMode(c.Draw.Mode)
	return m
}

// Color returns the initial drawing color.
func (c *Config) Color() sketch.Color {
	col, _ := sketch.ParseColor(c.Draw.Color)
	return col
}

// Background returns the canvas clear color.
func (c *Config) Background() sketch.Color {
	col, _ := sketch.ParseColor(c.Canvas.Background)
	return col
}

// Palette returns the colors the UI cycles through. The initial drawing
// color is always part of it.
func (c *Config) Palette() []sketch.Color {
	initial := c.Color()
	palette := []sketch.Color{initial}
	for _, s := range c.Draw.Palette {
		if col, err := sketch.ParseColor(s); err == nil && col != initial {
			palette = append(palette, col)
		}
	}
	return palette
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() slog.Level {
	l, _ := parseLevel(c.Log.Level)
	return l
}

// LogFile returns the expanded log file path, or "" when logging is off.
func (c *Config) LogFile() string {
	if c.Log.File == "" {
		return ""
	}
	p, err := homedir.Expand(c.Log.File)
	if err != nil {
		return c.Log.File
	}
	return p
}

// SnapshotFile returns the expanded path of the default snapshot file.
func (c *Config) SnapshotFile() string {
	dir, err := homedir.Expand(c.Snapshot.Dir)
	if err != nil {
		dir = c.Snapshot.Dir
	}
	return sketch.SnapshotPath(filepath.Join(dir, c.Snapshot.Name))
}

// SessionOptions returns the session options described by c.
func (c *Config) SessionOptions() []sketch.SessionOption {
	return []sketch.SessionOption{
		sketch.WithCapacity(c.Canvas.Capacity),
		sketch.WithMode(c.Mode()),
		sketch.WithColor(c.Color()),
	}
}

// BackendOptions returns backend options for a width×height surface.
func (c *Config) BackendOptions(width, height int) backend.Options {
	return backend.Options{
		Width:      width,
		Height:     height,
		Capacity:   c.Canvas.Capacity,
		Background: c.Background(),
		PointSize:  c.Render.PointSize,
		LineWidth:  c.Render.LineWidth,
	}
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(s))
	return l, err
}

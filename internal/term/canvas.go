// Package term is the terminal front end of the sketch command.
//
// The drawing is rasterized with the raster backend and shown with
// half-block cells: each character cell displays two vertically stacked
// pixels, the upper one as the foreground of '▀' and the lower one as its
// background. The bottom row of the terminal is a status line.
package term

import (
	"image"

	"github.com/gdamore/tcell/v2"
	"github.com/gogpu/sketch"
	"github.com/gogpu/sketch/backend"
	"github.com/gogpu/sketch/backend/raster"
)

// upperHalf is drawn in every canvas cell.
const upperHalf = '▀'

// statusRows is the number of terminal rows below the canvas.
const statusRows = 1

// Canvas is a backend.Backend that shows the drawing on a tcell screen.
// It follows the screen size: every frame starts by matching the raster
// to the current terminal size.
type Canvas struct {
	screen tcell.Screen
	raster *raster.Backend
	width  int // pixels
	height int // pixels
}

var _ backend.Backend = (*Canvas)(nil)

// NewCanvas creates a canvas on screen. The size fields of opts are
// ignored; the canvas takes its size from the screen.
func NewCanvas(screen tcell.Screen, opts backend.Options) *Canvas {
	opts.Width, opts.Height = PixelSize(screen.Size())
	return &Canvas{
		screen: screen,
		raster: raster.NewWithOptions(opts),
		width:  opts.Width,
		height: opts.Height,
	}
}

// PixelSize returns the canvas size in pixels for a terminal of cols×rows
// cells.
func PixelSize(cols, rows int) (width, height int) {
	return max(cols, 1), 2 * max(rows-statusRows, 1)
}

// Size returns the current canvas size in pixels.
func (c *Canvas) Size() (width, height int) { return c.width, c.height }

// Name implements backend.Backend.
func (c *Canvas) Name() string { return "term" }

// Upload implements sketch.Renderer.
func (c *Canvas) Upload(first int, positions, colors []float32) error {
	return c.raster.Upload(first, positions, colors)
}

// Clear implements sketch.Renderer.
func (c *Canvas) Clear() error {
	if w, h := PixelSize(c.screen.Size()); w != c.width || h != c.height {
		if err := c.raster.Resize(w, h); err != nil {
			return err
		}
		c.width, c.height = w, h
	}
	return c.raster.Clear()
}

// DrawPrimitives implements sketch.Renderer.
func (c *Canvas) DrawPrimitives(mode sketch.Mode, first, count int) error {
	return c.raster.DrawPrimitives(mode, first, count)
}

// Flush implements sketch.Renderer. It copies the raster to the screen.
// The caller shows the screen once the status line is drawn as well.
func (c *Canvas) Flush() error {
	if err := c.raster.Flush(); err != nil {
		return err
	}
	c.blit(c.raster.Image())
	return nil
}

// Close implements backend.Backend.
func (c *Canvas) Close() error {
	return c.raster.Close()
}

// blit draws img onto the canvas rows of the screen.
func (c *Canvas) blit(img image.Image) {
	b := img.Bounds()
	for row := 0; 2*row < c.height; row++ {
		for x := 0; x < c.width; x++ {
			top := cellColor(img, b.Min.X+x, b.Min.Y+2*row)
			bottom := cellColor(img, b.Min.X+x, b.Min.Y+2*row+1)
			style := tcell.StyleDefault.Foreground(top).Background(bottom)
			c.screen.SetContent(x, row, upperHalf, nil, style)
		}
	}
}

func cellColor(img image.Image, x, y int) tcell.Color {
	r, g, b, _ := img.At(x, y).RGBA()
	return tcell.NewRGBColor(int32(r>>8), int32(g>>8), int32(b>>8)) //nolint:gosec // 8-bit values
}

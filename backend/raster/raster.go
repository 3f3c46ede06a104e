// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package raster provides a CPU backend that rasterizes runs into a
// gg.Context.
//
// Vertices are drawn with flat color: a point is a filled disc in its
// vertex color, a line segment is stroked with the mean of its two endpoint
// colors, and a triangle is filled with the mean of its three vertex colors.
// Incomplete trailing primitives are skipped, as on a GPU.
//
// # Example
//
//	// Import to register the backend
//	import _ "github.com/gogpu/sketch/backend/raster"
//
//	// Create via registry
//	b, _ := backend.New("raster", backend.Options{Width: 800, Height: 600})
//
//	// Or create directly
//	r := raster.New(800, 600)
//	s, _ := sketch.NewSession(r)
//	...
//	r.SavePNG("drawing.png")
package raster

import (
	"fmt"
	"image"
	"io"

	"github.com/gogpu/gg"
	"github.com/gogpu/sketch"
	"github.com/gogpu/sketch/backend"
)

func init() {
	backend.Register(backend.NameRaster, func(opts backend.Options) (backend.Backend, error) {
		if opts.Width <= 0 || opts.Height <= 0 {
			return nil, fmt.Errorf("raster: invalid dimensions %dx%d", opts.Width, opts.Height)
		}
		return NewWithOptions(opts), nil
	})
}

// Backend renders runs to a pixel image using gg.Context.
// It implements backend.Backend.
type Backend struct {
	dc         *gg.Context
	width      int
	height     int
	capacity   int
	background sketch.Color
	pointSize  float64
	lineWidth  float64

	positions []float32
	colors    []float32
	closed    bool
}

var _ backend.Backend = (*Backend)(nil)

// New creates a raster backend of the given size with default options
// and a white background.
func New(width, height int) *Backend {
	return NewWithOptions(backend.Options{Width: width, Height: height, Background: sketch.White})
}

// NewWithOptions creates a raster backend from opts.
func NewWithOptions(opts backend.Options) *Backend {
	opts = opts.WithDefaults()
	return &Backend{
		dc:         gg.NewContext(opts.Width, opts.Height),
		width:      opts.Width,
		height:     opts.Height,
		capacity:   opts.Capacity,
		background: opts.Background,
		pointSize:  opts.PointSize,
		lineWidth:  opts.LineWidth,
		positions:  make([]float32, 0, sketch.PositionComponents*min(opts.Capacity, 1024)),
		colors:     make([]float32, 0, sketch.ColorComponents*min(opts.Capacity, 1024)),
	}
}

// Name implements backend.Backend.
func (b *Backend) Name() string { return backend.NameRaster }

// Width returns the raster width in pixels.
func (b *Backend) Width() int { return b.width }

// Height returns the raster height in pixels.
func (b *Backend) Height() int { return b.height }

// Upload implements sketch.Renderer.
func (b *Backend) Upload(first int, positions, colors []float32) error {
	if b.closed {
		return backend.ErrClosed
	}
	if _, err := backend.CheckUpload(first, b.mirrored(), b.capacity, positions, colors); err != nil {
		return err
	}
	b.positions = append(b.positions[:sketch.PositionComponents*first], positions...)
	b.colors = append(b.colors[:sketch.ColorComponents*first], colors...)
	return nil
}

// Clear implements sketch.Renderer.
func (b *Backend) Clear() error {
	if b.closed {
		return backend.ErrClosed
	}
	b.dc.ClearWithColor(toRGBA(b.background))
	return nil
}

// DrawPrimitives implements sketch.Renderer.
func (b *Backend) DrawPrimitives(mode sketch.Mode, first, count int) error {
	if b.closed {
		return backend.ErrClosed
	}
	if err := backend.CheckDraw(mode, first, count, b.mirrored()); err != nil {
		return err
	}
	idx := mode.Expand(first, count)
	switch mode.VerticesPerPrimitive() {
	case 1:
		return b.drawPoints(idx)
	case 2:
		return b.drawLines(idx)
	default:
		return b.drawTriangles(idx)
	}
}

// Flush implements sketch.Renderer. Rasterization is immediate, so there
// is nothing to submit.
func (b *Backend) Flush() error {
	if b.closed {
		return backend.ErrClosed
	}
	return nil
}

// Close implements backend.Backend.
func (b *Backend) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	return b.dc.Close()
}

// Resize changes the raster size. Mirrored vertices are kept; call
// Session.Render afterwards to redraw at the new size.
func (b *Backend) Resize(width, height int) error {
	if err := b.dc.Resize(width, height); err != nil {
		return err
	}
	b.width, b.height = width, height
	return nil
}

// Image returns the rendered image.
func (b *Backend) Image() image.Image {
	return b.dc.Image()
}

// EncodePNG writes the rendered image as PNG to w.
func (b *Backend) EncodePNG(w io.Writer) error {
	return b.dc.EncodePNG(w)
}

// SavePNG saves the rendered image to a PNG file.
func (b *Backend) SavePNG(path string) error {
	return b.dc.SavePNG(path)
}

func (b *Backend) mirrored() int {
	return len(b.positions) / sketch.PositionComponents
}

// pixel returns vertex i in raster pixel coordinates.
func (b *Backend) pixel(i int) (x, y float64) {
	p := b.positions[sketch.PositionComponents*i:]
	return sketch.ToPixel([2]float32{p[0], p[1]}, float64(b.width), float64(b.height))
}

func (b *Backend) color(i int) sketch.Color {
	c := b.colors[sketch.ColorComponents*i:]
	return sketch.Color{c[0], c[1], c[2]}
}

func (b *Backend) drawPoints(idx []int) error {
	r := b.pointSize / 2
	for _, i := range idx {
		x, y := b.pixel(i)
		b.setColor(b.color(i))
		b.dc.DrawPoint(x, y, r)
		if err := b.dc.Fill(); err != nil {
			return fmt.Errorf("raster: fill point %d: %w", i, err)
		}
	}
	return nil
}

func (b *Backend) drawLines(idx []int) error {
	b.dc.SetLineWidth(b.lineWidth)
	for k := 0; k+1 < len(idx); k += 2 {
		i, j := idx[k], idx[k+1]
		x0, y0 := b.pixel(i)
		x1, y1 := b.pixel(j)
		b.setColor(sketch.Average(b.color(i), b.color(j)))
		b.dc.MoveTo(x0, y0)
		b.dc.LineTo(x1, y1)
		if err := b.dc.Stroke(); err != nil {
			return fmt.Errorf("raster: stroke segment %d-%d: %w", i, j, err)
		}
	}
	return nil
}

func (b *Backend) drawTriangles(idx []int) error {
	for k := 0; k+2 < len(idx); k += 3 {
		i, j, l := idx[k], idx[k+1], idx[k+2]
		x0, y0 := b.pixel(i)
		x1, y1 := b.pixel(j)
		x2, y2 := b.pixel(l)
		b.setColor(sketch.Average(b.color(i), b.color(j), b.color(l)))
		b.dc.MoveTo(x0, y0)
		b.dc.LineTo(x1, y1)
		b.dc.LineTo(x2, y2)
		b.dc.ClosePath()
		if err := b.dc.Fill(); err != nil {
			return fmt.Errorf("raster: fill triangle %d-%d-%d: %w", i, j, l, err)
		}
	}
	return nil
}

func (b *Backend) setColor(c sketch.Color) {
	b.dc.SetRGB(float64(c[0]), float64(c[1]), float64(c[2]))
}

func toRGBA(c sketch.Color) gg.RGBA {
	return gg.RGB(float64(c[0]), float64(c[1]), float64(c[2]))
}

package sketch

import (
	"fmt"

	"github.com/chewxy/math32"
)

// ToNDC maps a click at surface-local pixel (x, y) on a w×h surface to
// normalized device coordinates. Pixel space has its origin at the top-left
// with Y down; NDC has its origin at the center with Y up:
//
//	(0, 0)     -> (-1,  1)
//	(w/2, h/2) -> ( 0,  0)
//	(w, h)     -> ( 1, -1)
//
// Points outside the surface map outside [-1, 1] and are not clamped.
func ToNDC(x, y, w, h float32) ([2]float32, error) {
	if !finite(w) || !finite(h) || w <= 0 || h <= 0 {
		return [2]float32{}, fmt.Errorf("%w: surface size %gx%g", ErrInvalidSurface, w, h)
	}
	if !finite(x) || !finite(y) {
		return [2]float32{}, fmt.Errorf("%w: click at (%g, %g)", ErrInvalidSurface, x, y)
	}
	return [2]float32{2*x/w - 1, 1 - 2*y/h}, nil
}

// ToPixel is the inverse of ToNDC. Backends use it to place vertices on a
// raster of w×h pixels.
func ToPixel(ndc [2]float32, w, h float64) (x, y float64) {
	return (float64(ndc[0]) + 1) * w / 2, (1 - float64(ndc[1])) * h / 2
}

func finite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}

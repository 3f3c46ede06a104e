package sketch

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// Color is a flat RGB vertex color with each component in [0, 1].
type Color [3]float32

// Common colors.
var (
	Black = Color{0, 0, 0}
	White = Color{1, 1, 1}
	Red   = Color{1, 0, 0}
	Green = Color{0, 1, 0}
	Blue  = Color{0, 0, 1}
)

// RGB creates a color from float64 components, clamping each to [0, 1].
func RGB(r, g, b float64) Color {
	return Color{clamp01(r), clamp01(g), clamp01(b)}
}

// ParseColor parses a hex color ("#rgb" or "#rrggbb") or a CSS color name
// such as "orange".
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Color{}, fmt.Errorf("%w: empty string", ErrInvalidColor)
	}
	if s[0] == '#' {
		c, err := colorful.Hex(s)
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q: %v", ErrInvalidColor, s, err)
		}
		return RGB(c.R, c.G, c.B), nil
	}
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return RGB(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255), nil
	}
	return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
}

// MustParseColor is like ParseColor but panics on error.
func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex returns the color as "#rrggbb".
func (c Color) Hex() string {
	return colorful.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2])}.Clamped().Hex()
}

// Lerp blends c toward other by t.
func (c Color) Lerp(other Color, t float32) Color {
	return Color{
		c[0] + (other[0]-c[0])*t,
		c[1] + (other[1]-c[1])*t,
		c[2] + (other[2]-c[2])*t,
	}
}

// Average returns the component-wise mean of colors.
// Returns Black for an empty list.
func Average(colors ...Color) Color {
	if len(colors) == 0 {
		return Black
	}
	var sum Color
	for _, c := range colors {
		sum[0] += c[0]
		sum[1] += c[1]
		sum[2] += c[2]
	}
	n := float32(len(colors))
	return Color{sum[0] / n, sum[1] / n, sum[2] / n}
}

func clamp01(v float64) float32 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return float32(v)
}

package backend

import (
	"errors"
	"fmt"

	"github.com/gogpu/sketch"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered or cannot be created on this system.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrClosed is returned by operations on a closed backend.
	ErrClosed = errors.New("backend: closed")

	// ErrOutOfRange is returned when a draw or upload addresses vertices
	// the backend has not mirrored, or more than it can hold.
	ErrOutOfRange = errors.New("backend: vertex range out of bounds")
)

// Backend is a sketch.Renderer that can be selected by name.
type Backend interface {
	sketch.Renderer

	// Name returns the backend identifier (e.g., "raster", "wgpu").
	Name() string

	// Close releases all backend resources.
	// The backend must not be used after Close.
	Close() error
}

// Options configures backend creation. Backends ignore fields they do
// not use.
type Options struct {
	// Width and Height are the surface size in pixels.
	Width, Height int

	// Capacity is the number of vertices the backend mirrors.
	// Zero selects sketch.MaxVertices.
	Capacity int

	// Background is the clear color.
	Background sketch.Color

	// PointSize is the diameter of a drawn point in pixels.
	// Zero selects DefaultPointSize.
	PointSize float64

	// LineWidth is the stroke width of drawn lines in pixels.
	// Zero selects DefaultLineWidth.
	LineWidth float64

	// Provider supplies the GPU device for GPU backends. It is typically a
	// gpucontext.DeviceProvider that also exposes HAL handles.
	Provider any
}

// Defaults for Options fields left at zero.
const (
	DefaultPointSize = 4.0
	DefaultLineWidth = 1.5
)

// WithDefaults returns o with zero fields replaced by their defaults.
func (o Options) WithDefaults() Options {
	if o.Capacity <= 0 {
		o.Capacity = sketch.MaxVertices
	}
	if o.PointSize <= 0 {
		o.PointSize = DefaultPointSize
	}
	if o.LineWidth <= 0 {
		o.LineWidth = DefaultLineWidth
	}
	return o
}

// CheckUpload validates an upload of positions and colors at first against
// a mirror currently holding mirrored of capacity vertices, and returns the
// number of vertices in the upload.
func CheckUpload(first, mirrored, capacity int, positions, colors []float32) (int, error) {
	if len(positions)%sketch.PositionComponents != 0 || len(colors)%sketch.ColorComponents != 0 {
		return 0, fmt.Errorf("%w: partial vertex in upload", ErrOutOfRange)
	}
	n := len(positions) / sketch.PositionComponents
	if n != len(colors)/sketch.ColorComponents {
		return 0, fmt.Errorf("%w: %d positions but %d colors", ErrOutOfRange, n, len(colors)/sketch.ColorComponents)
	}
	if first < 0 || first > mirrored || first+n > capacity {
		return 0, fmt.Errorf("%w: upload of %d at %d, mirror holds %d of %d", ErrOutOfRange, n, first, mirrored, capacity)
	}
	return n, nil
}

// CheckDraw validates a draw of count vertices at first against a mirror
// holding mirrored vertices.
func CheckDraw(mode sketch.Mode, first, count, mirrored int) error {
	if !mode.Valid() {
		return sketch.ErrInvalidMode
	}
	if first < 0 || count < 0 || first+count > mirrored {
		return fmt.Errorf("%w: draw of %d at %d, mirror holds %d", ErrOutOfRange, count, first, mirrored)
	}
	return nil
}

package sketch

import "fmt"

// MaxVertices is the default vertex capacity of a GeometryStore and of the
// GPU buffers that mirror it.
const MaxVertices = 100000

// Components per vertex in the position and color arrays.
const (
	PositionComponents = 2
	ColorComponents    = 3
)

// GeometryStore holds vertex positions and colors in two parallel flat
// arrays allocated once at their full capacity. Vertices are only ever
// appended; the arrays are never truncated or reordered except by LoadAll,
// which replaces their contents wholesale.
//
// GeometryStore is not safe for concurrent use.
type GeometryStore struct {
	positions []float32 // len 2*capacity
	colors    []float32 // len 3*capacity
	count     int
	capacity  int
}

// NewGeometryStore creates a store that holds up to capacity vertices.
// A capacity <= 0 selects MaxVertices.
func NewGeometryStore(capacity int) *GeometryStore {
	if capacity <= 0 {
		capacity = MaxVertices
	}
	return &GeometryStore{
		positions: make([]float32, PositionComponents*capacity),
		colors:    make([]float32, ColorComponents*capacity),
		capacity:  capacity,
	}
}

// Count returns the number of vertices appended so far.
func (s *GeometryStore) Count() int {
	return s.count
}

// Cap returns the maximum number of vertices the store can hold.
func (s *GeometryStore) Cap() int {
	return s.capacity
}

// Append writes a vertex at the current write offset and returns its index.
// It fails with ErrCapacityExceeded when the store is full, leaving the
// store unchanged.
func (s *GeometryStore) Append(pos [2]float32, col Color) (int, error) {
	if s.count == s.capacity {
		return 0, fmt.Errorf("%w: store holds %d vertices", ErrCapacityExceeded, s.capacity)
	}
	i := s.count
	copy(s.positions[PositionComponents*i:], pos[:])
	copy(s.colors[ColorComponents*i:], col[:])
	s.count++
	return i, nil
}

// Vertex returns the position and color of vertex i.
// It panics if i is out of range.
func (s *GeometryStore) Vertex(i int) ([2]float32, Color) {
	if i < 0 || i >= s.count {
		panic(fmt.Sprintf("sketch: vertex index %d out of range [0,%d)", i, s.count))
	}
	p := s.positions[PositionComponents*i:]
	c := s.colors[ColorComponents*i:]
	return [2]float32{p[0], p[1]}, Color{c[0], c[1], c[2]}
}

// Positions returns the used prefix of the position array.
// The slice aliases the store and must not be modified.
func (s *GeometryStore) Positions() []float32 {
	n := PositionComponents * s.count
	return s.positions[:n:n]
}

// Colors returns the used prefix of the color array.
// The slice aliases the store and must not be modified.
func (s *GeometryStore) Colors() []float32 {
	n := ColorComponents * s.count
	return s.colors[:n:n]
}

// ExportAll returns copies of the used prefixes of the position and color
// arrays, of length 2*Count() and 3*Count().
func (s *GeometryStore) ExportAll() (positions, colors []float32) {
	positions = append(make([]float32, 0, PositionComponents*s.count), s.Positions()...)
	colors = append(make([]float32, 0, ColorComponents*s.count), s.Colors()...)
	return positions, colors
}

// LoadAll replaces the store contents with the given arrays. Everything is
// validated before the store is touched: on error the previous contents
// remain in place.
func (s *GeometryStore) LoadAll(positions, colors []float32) error {
	n, err := vertexCount(positions, colors)
	if err != nil {
		return err
	}
	if n > s.capacity {
		return fmt.Errorf("%w: snapshot holds %d vertices, capacity is %d", ErrCapacityExceeded, n, s.capacity)
	}
	copy(s.positions, positions)
	copy(s.colors, colors)
	s.count = n
	return nil
}

// vertexCount returns the number of vertices described by a pair of flat
// arrays, or ErrMalformedSnapshot if their lengths are inconsistent.
func vertexCount(positions, colors []float32) (int, error) {
	if len(positions)%PositionComponents != 0 {
		return 0, fmt.Errorf("%w: position array length %d is not a multiple of %d",
			ErrMalformedSnapshot, len(positions), PositionComponents)
	}
	if len(colors)%ColorComponents != 0 {
		return 0, fmt.Errorf("%w: color array length %d is not a multiple of %d",
			ErrMalformedSnapshot, len(colors), ColorComponents)
	}
	np := len(positions) / PositionComponents
	nc := len(colors) / ColorComponents
	if np != nc {
		return 0, fmt.Errorf("%w: %d positions but %d colors", ErrMalformedSnapshot, np, nc)
	}
	return np, nil
}

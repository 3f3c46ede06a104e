package sketch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/gputypes"
)

// Mode is the primitive topology used to interpret a run of vertices.
// The numeric values match the OpenGL enums so that snapshots written
// with numeric tags decode to the same mode.
type Mode uint32

const (
	Points        Mode = iota // POINTS
	Lines                     // LINES
	LineLoop                  // LINE_LOOP
	LineStrip                 // LINE_STRIP
	Triangles                 // TRIANGLES
	TriangleStrip             // TRIANGLE_STRIP
	TriangleFan               // TRIANGLE_FAN

	modeCount
)

// modeNames maps Mode values to their string representation.
var modeNames = [...]string{
	Points:        "POINTS",
	Lines:         "LINES",
	LineLoop:      "LINE_LOOP",
	LineStrip:     "LINE_STRIP",
	Triangles:     "TRIANGLES",
	TriangleStrip: "TRIANGLE_STRIP",
	TriangleFan:   "TRIANGLE_FAN",
}

// Modes returns all primitive modes in enum order.
func Modes() []Mode {
	modes := make([]Mode, 0, modeCount)
	for m := Points; m < modeCount; m++ {
		modes = append(modes, m)
	}
	return modes
}

// String returns the string representation of a Mode.
func (m Mode) String() string {
	if m.Valid() {
		return modeNames[m]
	}
	return "Mode(" + strconv.FormatUint(uint64(m), 10) + ")"
}

// Valid reports whether m is one of the seven primitive modes.
func (m Mode) Valid() bool {
	return m < modeCount
}

// ParseMode parses a mode name such as "LINE_STRIP", "line_strip" or
// "GL_LINE_STRIP", or its numeric GL value such as "3".
func ParseMode(s string) (Mode, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	name = strings.TrimPrefix(name, "GL_")
	for m, n := range modeNames {
		if n == name {
			return Mode(m), nil
		}
	}
	if v, err := strconv.ParseUint(name, 10, 32); err == nil && Mode(v).Valid() {
		return Mode(v), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, uint32(m))
	}
	return []byte(modeNames[m]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	v, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// VerticesPerPrimitive returns how many vertices one primitive of the
// expanded list topology consumes: 1 for points, 2 for the line modes and
// 3 for the triangle modes.
func (m Mode) VerticesPerPrimitive() int {
	switch m {
	case Points:
		return 1
	case Lines, LineLoop, LineStrip:
		return 2
	default:
		return 3
	}
}

// Topology returns the GPU primitive topology for m. The second result is
// false for LINE_LOOP and TRIANGLE_FAN, which have no WebGPU equivalent;
// the returned topology is then the list form that Expand produces.
func (m Mode) Topology() (gputypes.PrimitiveTopology, bool) {
	switch m {
	case Points:
		return gputypes.PrimitiveTopologyPointList, true
	case Lines:
		return gputypes.PrimitiveTopologyLineList, true
	case LineStrip:
		return gputypes.PrimitiveTopologyLineStrip, true
	case LineLoop:
		return gputypes.PrimitiveTopologyLineList, false
	case Triangles:
		return gputypes.PrimitiveTopologyTriangleList, true
	case TriangleStrip:
		return gputypes.PrimitiveTopologyTriangleStrip, true
	default:
		return gputypes.PrimitiveTopologyTriangleList, false
	}
}

// Expand returns the vertex indices of count vertices starting at first,
// rewritten as a point, line or triangle list. Incomplete trailing
// primitives are dropped, matching how a GPU assembles them.
//
// For example, a TRIANGLE_FAN of 4 vertices starting at 10 expands to
// [10 11 12 10 12 13].
func (m Mode) Expand(first, count int) []int {
	if count <= 0 {
		return nil
	}
	var idx []int
	switch m {
	case Points:
		idx = make([]int, count)
		for i := range idx {
			idx[i] = first + i
		}
	case Lines:
		n := count &^ 1
		idx = make([]int, n)
		for i := range idx {
			idx[i] = first + i
		}
	case LineStrip, LineLoop:
		if count < 2 {
			return nil
		}
		idx = make([]int, 0, 2*count)
		for i := 0; i+1 < count; i++ {
			idx = append(idx, first+i, first+i+1)
		}
		if m == LineLoop {
			idx = append(idx, first+count-1, first)
		}
	case Triangles:
		n := count - count%3
		idx = make([]int, n)
		for i := range idx {
			idx[i] = first + i
		}
	case TriangleStrip:
		if count < 3 {
			return nil
		}
		idx = make([]int, 0, 3*(count-2))
		for i := 2; i < count; i++ {
			// Odd triangles swap their first two vertices to keep winding.
			if i%2 == 0 {
				idx = append(idx, first+i-2, first+i-1, first+i)
			} else {
				idx = append(idx, first+i-1, first+i-2, first+i)
			}
		}
	case TriangleFan:
		if count < 3 {
			return nil
		}
		idx = make([]int, 0, 3*(count-2))
		for i := 2; i < count; i++ {
			idx = append(idx, first, first+i-1, first+i)
		}
	}
	return idx
}

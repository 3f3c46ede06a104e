package sketch

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestModeString(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{Points, "POINTS"},
		{Lines, "LINES"},
		{LineLoop, "LINE_LOOP"},
		{LineStrip, "LINE_STRIP"},
		{Triangles, "TRIANGLES"},
		{TriangleStrip, "TRIANGLE_STRIP"},
		{TriangleFan, "TRIANGLE_FAN"},
		{Mode(9), "Mode(9)"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("Mode(%d).String() = %q, want %q", uint32(tt.mode), got, tt.want)
		}
	}
	if n := len(Modes()); n != 7 {
		t.Errorf("len(Modes()) = %d, want 7", n)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"POINTS", Points},
		{"line_strip", LineStrip},
		{"GL_TRIANGLE_FAN", TriangleFan},
		{" Triangles ", Triangles},
		{"2", LineLoop},
		{"5", TriangleStrip},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if err != nil {
			t.Errorf("ParseMode(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "QUADS", "7", "-1", "GL_"} {
		if _, err := ParseMode(bad); !errors.Is(err, ErrInvalidMode) {
			t.Errorf("ParseMode(%q) error = %v, want ErrInvalidMode", bad, err)
		}
	}
}

func TestModeText(t *testing.T) {
	for _, m := range Modes() {
		text, err := m.MarshalText()
		if err != nil {
			t.Fatalf("%v.MarshalText() error = %v", m, err)
		}
		var got Mode
		if err := got.UnmarshalText(text); err != nil || got != m {
			t.Errorf("UnmarshalText(%q) = %v, %v, want %v", text, got, err, m)
		}
	}
	if _, err := Mode(11).MarshalText(); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("Mode(11).MarshalText() error = %v, want ErrInvalidMode", err)
	}
}

func TestModeTopology(t *testing.T) {
	tests := []struct {
		mode   Mode
		want   gputypes.PrimitiveTopology
		native bool
	}{
		{Points, gputypes.PrimitiveTopologyPointList, true},
		{Lines, gputypes.PrimitiveTopologyLineList, true},
		{LineLoop, gputypes.PrimitiveTopologyLineList, false},
		{LineStrip, gputypes.PrimitiveTopologyLineStrip, true},
		{Triangles, gputypes.PrimitiveTopologyTriangleList, true},
		{TriangleStrip, gputypes.PrimitiveTopologyTriangleStrip, true},
		{TriangleFan, gputypes.PrimitiveTopologyTriangleList, false},
	}
	for _, tt := range tests {
		got, native := tt.mode.Topology()
		if got != tt.want || native != tt.native {
			t.Errorf("%v.Topology() = %v, %v, want %v, %v", tt.mode, got, native, tt.want, tt.native)
		}
	}
}

func TestModeExpand(t *testing.T) {
	tests := []struct {
		mode  Mode
		first int
		count int
		want  []int
	}{
		{Points, 2, 3, []int{2, 3, 4}},
		{Lines, 0, 5, []int{0, 1, 2, 3}},
		{LineStrip, 1, 3, []int{1, 2, 2, 3}},
		{LineStrip, 0, 1, nil},
		{LineLoop, 0, 3, []int{0, 1, 1, 2, 2, 0}},
		{Triangles, 0, 7, []int{0, 1, 2, 3, 4, 5}},
		{TriangleStrip, 0, 5, []int{0, 1, 2, 2, 1, 3, 2, 3, 4}},
		{TriangleFan, 10, 4, []int{10, 11, 12, 10, 12, 13}},
		{TriangleFan, 0, 2, nil},
		{Points, 0, 0, nil},
	}
	for _, tt := range tests {
		got := tt.mode.Expand(tt.first, tt.count)
		if !slices.Equal(got, tt.want) {
			t.Errorf("%v.Expand(%d, %d) = %v, want %v", tt.mode, tt.first, tt.count, got, tt.want)
		}
		if len(got)%tt.mode.VerticesPerPrimitive() != 0 {
			t.Errorf("%v.Expand(%d, %d) has a partial primitive", tt.mode, tt.first, tt.count)
		}
	}
}

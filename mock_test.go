package sketch

import "fmt"

// mockCall is one call recorded by mockRenderer.
type mockCall struct {
	op    string
	mode  Mode
	first int
	count int
}

func (c mockCall) String() string {
	if c.op == "draw" {
		return fmt.Sprintf("draw(%v, %d, %d)", c.mode, c.first, c.count)
	}
	return fmt.Sprintf("%s(%d, %d)", c.op, c.first, c.count)
}

// mockRenderer records every call and mirrors uploaded vertices.
type mockRenderer struct {
	positions []float32
	colors    []float32
	calls     []mockCall

	uploadErr error
	drawErr   error
	flushErr  error
}

func (m *mockRenderer) Upload(first int, positions, colors []float32) error {
	if m.uploadErr != nil {
		return m.uploadErr
	}
	m.positions = append(m.positions[:PositionComponents*first], positions...)
	m.colors = append(m.colors[:ColorComponents*first], colors...)
	m.calls = append(m.calls, mockCall{op: "upload", first: first, count: len(positions) / PositionComponents})
	return nil
}

func (m *mockRenderer) Clear() error {
	m.calls = append(m.calls, mockCall{op: "clear"})
	return nil
}

func (m *mockRenderer) DrawPrimitives(mode Mode, first, count int) error {
	if m.drawErr != nil {
		return m.drawErr
	}
	m.calls = append(m.calls, mockCall{op: "draw", mode: mode, first: first, count: count})
	return nil
}

func (m *mockRenderer) Flush() error {
	if m.flushErr != nil {
		return m.flushErr
	}
	m.calls = append(m.calls, mockCall{op: "flush"})
	return nil
}

// lastFrame returns the draw calls issued since the last clear.
func (m *mockRenderer) lastFrame() []mockCall {
	var frame []mockCall
	for _, c := range m.calls {
		switch c.op {
		case "clear":
			frame = frame[:0]
		case "draw":
			frame = append(frame, c)
		}
	}
	return frame
}

// count returns how many calls of op were recorded.
func (m *mockRenderer) count(op string) int {
	n := 0
	for _, c := range m.calls {
		if c.op == op {
			n++
		}
	}
	return n
}

// newTestSession creates a session on a fresh mockRenderer.
func newTestSession(opts ...SessionOption) (*Session, *mockRenderer) {
	r := &mockRenderer{}
	s, err := NewSession(r, opts...)
	if err != nil {
		panic(err)
	}
	return s, r
}

// click returns a VertexPlaced at (x, y) on a 100x100 surface.
func click(x, y float32) VertexPlaced {
	return VertexPlaced{X: x, Y: y, Width: 100, Height: 100}
}

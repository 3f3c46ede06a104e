// Package trace provides a backend that records renderer calls instead of
// drawing. It keeps a full vertex mirror so that tests can check what a
// GPU would have been asked to draw.
//
// Import it for its side effect to register the "trace" backend:
//
//	import _ "github.com/gogpu/sketch/backend/trace"
package trace

import (
	"fmt"
	"strings"

	"github.com/gogpu/sketch"
	"github.com/gogpu/sketch/backend"
)

func init() {
	backend.Register(backend.NameTrace, func(opts backend.Options) (backend.Backend, error) {
		return New(opts.Capacity), nil
	})
}

// Op identifies a recorded renderer call.
type Op uint8

const (
	OpUpload Op = iota
	OpClear
	OpDraw
	OpFlush
)

var opNames = [...]string{
	OpUpload: "Upload",
	OpClear:  "Clear",
	OpDraw:   "Draw",
	OpFlush:  "Flush",
}

// String returns the string representation of an Op.
func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "Unknown"
}

// Call is one recorded renderer call. Mode is set for OpDraw; First and
// Count are set for OpDraw and OpUpload.
type Call struct {
	Op    Op
	Mode  sketch.Mode
	First int
	Count int
}

// String formats the call as it appears in a trace dump.
func (c Call) String() string {
	switch c.Op {
	case OpDraw:
		return fmt.Sprintf("Draw(%s, %d, %d)", c.Mode, c.First, c.Count)
	case OpUpload:
		return fmt.Sprintf("Upload(%d, %d)", c.First, c.Count)
	}
	return c.Op.String() + "()"
}

// Recorder is a backend.Backend that records every call.
type Recorder struct {
	calls     []Call
	positions []float32
	colors    []float32
	capacity  int
	closed    bool
}

var _ backend.Backend = (*Recorder)(nil)

// New creates a recorder mirroring up to capacity vertices.
// A capacity <= 0 selects sketch.MaxVertices.
func New(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = sketch.MaxVertices
	}
	return &Recorder{capacity: capacity}
}

// Name implements backend.Backend.
func (r *Recorder) Name() string { return backend.NameTrace }

// Upload implements sketch.Renderer.
func (r *Recorder) Upload(first int, positions, colors []float32) error {
	if r.closed {
		return backend.ErrClosed
	}
	n, err := backend.CheckUpload(first, r.Mirrored(), r.capacity, positions, colors)
	if err != nil {
		return err
	}
	r.positions = append(r.positions[:sketch.PositionComponents*first], positions...)
	r.colors = append(r.colors[:sketch.ColorComponents*first], colors...)
	r.calls = append(r.calls, Call{Op: OpUpload, First: first, Count: n})
	return nil
}

// Clear implements sketch.Renderer.
func (r *Recorder) Clear() error {
	if r.closed {
		return backend.ErrClosed
	}
	r.calls = append(r.calls, Call{Op: OpClear})
	return nil
}

// DrawPrimitives implements sketch.Renderer.
func (r *Recorder) DrawPrimitives(mode sketch.Mode, first, count int) error {
	if r.closed {
		return backend.ErrClosed
	}
	if err := backend.CheckDraw(mode, first, count, r.Mirrored()); err != nil {
		return err
	}
	r.calls = append(r.calls, Call{Op: OpDraw, Mode: mode, First: first, Count: count})
	return nil
}

// Flush implements sketch.Renderer.
func (r *Recorder) Flush() error {
	if r.closed {
		return backend.ErrClosed
	}
	r.calls = append(r.calls, Call{Op: OpFlush})
	return nil
}

// Close implements backend.Backend.
func (r *Recorder) Close() error {
	r.closed = true
	return nil
}

// Mirrored returns the number of vertices uploaded so far.
func (r *Recorder) Mirrored() int {
	return len(r.positions) / sketch.PositionComponents
}

// Positions returns the mirrored position array.
func (r *Recorder) Positions() []float32 { return r.positions }

// Colors returns the mirrored color array.
func (r *Recorder) Colors() []float32 { return r.colors }

// Calls returns a copy of all recorded calls.
func (r *Recorder) Calls() []Call {
	return append([]Call(nil), r.calls...)
}

// Draws returns the draw calls of the most recent frame, that is, those
// recorded after the last Clear.
func (r *Recorder) Draws() []Call {
	var draws []Call
	for i := len(r.calls) - 1; i >= 0; i-- {
		c := r.calls[i]
		if c.Op == OpClear {
			break
		}
		if c.Op == OpDraw {
			draws = append(draws, c)
		}
	}
	for i, j := 0, len(draws)-1; i < j; i, j = i+1, j-1 {
		draws[i], draws[j] = draws[j], draws[i]
	}
	return draws
}

// Count returns how many calls of op were recorded.
func (r *Recorder) Count(op Op) int {
	n := 0
	for _, c := range r.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Reset discards recorded calls but keeps the vertex mirror.
func (r *Recorder) Reset() {
	r.calls = r.calls[:0]
}

// String dumps the recorded calls, one per line.
func (r *Recorder) String() string {
	var sb strings.Builder
	for _, c := range r.calls {
		sb.WriteString(c.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

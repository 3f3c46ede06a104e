package sketch

import "fmt"

// Renderer is the rendering collaborator a Session draws through.
//
// A Renderer keeps its own mirror of the geometry store (for a GPU backend,
// two vertex buffers of fixed capacity). The session keeps the mirror
// current with Upload and then replays the run ledger with Clear and one
// DrawPrimitives call per run, followed by Flush.
//
// Renderers are used from a single goroutine.
type Renderer interface {
	// Upload writes vertices [first, first+n) into the mirror, where n is
	// len(positions)/2 == len(colors)/3. Uploads never leave gaps: first is
	// at most the number of vertices already mirrored.
	Upload(first int, positions, colors []float32) error

	// Clear resets the drawable surface to its background.
	Clear() error

	// DrawPrimitives draws count mirrored vertices starting at first,
	// using mode as the primitive topology.
	DrawPrimitives(mode Mode, first, count int) error

	// Flush completes the frame. For CPU renderers this is typically a
	// no-op; GPU renderers submit their command buffers here.
	Flush() error
}

// RenderAll clears r and issues one DrawPrimitives call per run, in order,
// each starting where the previous run ended. It returns the final offset,
// which equals the sum of all run lengths.
//
// RenderAll only reads runs; calling it repeatedly with unchanged state
// produces identical draw calls.
func RenderAll(r Renderer, runs []Run) (int, error) {
	if err := r.Clear(); err != nil {
		return 0, fmt.Errorf("clear: %w", err)
	}
	start := 0
	for i, run := range runs {
		if err := r.DrawPrimitives(run.Mode, start, run.Length); err != nil {
			return start, fmt.Errorf("draw run %d (%v at %d): %w", i, run, start, err)
		}
		start += run.Length
	}
	if err := r.Flush(); err != nil {
		return start, fmt.Errorf("flush: %w", err)
	}
	return start, nil
}

package sketch

// Event is an input to the session's event loop.
type Event interface {
	event()
}

// VertexPlaced is a click at surface-local pixel (X, Y) on a surface of
// Width×Height pixels.
type VertexPlaced struct {
	X, Y          float32
	Width, Height float32
}

// ModeSelected changes the drawing mode for subsequent vertices.
type ModeSelected struct {
	Mode Mode
}

// ColorSelected changes the drawing color for subsequent vertices.
type ColorSelected struct {
	Color Color
}

// SnapshotRequested saves the current drawing to Path
// (.json is appended when missing).
type SnapshotRequested struct {
	Path string
}

// SnapshotOpen starts loading the snapshot at Path in the background.
// Completion arrives as a SnapshotLoaded event.
type SnapshotOpen struct {
	Path string
}

// SnapshotLoaded carries the result of a background load. On success the
// drawing is replaced by Snapshot; on failure Err is reported and the
// drawing is left as it was.
type SnapshotLoaded struct {
	Path     string
	Snapshot Snapshot
	Err      error
}

// Redraw re-renders the drawing without changing it.
type Redraw struct{}

// Quit stops the loop.
type Quit struct{}

func (VertexPlaced) event()      {}
func (ModeSelected) event()      {}
func (ColorSelected) event()     {}
func (SnapshotRequested) event() {}
func (SnapshotOpen) event()      {}
func (SnapshotLoaded) event()    {}
func (Redraw) event()            {}
func (Quit) event()              {}

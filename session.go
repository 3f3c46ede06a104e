package sketch

import (
	"fmt"
	"log/slog"
	"math"
)

// Session owns the drawing state: the geometry store, the run ledger, the
// renderer that mirrors them, and the current drawing mode and color.
//
// Every mutating method keeps the invariant
//
//	Ledger().TotalVertices() == Store().Count()
//
// and leaves the state untouched when it returns an error.
//
// Session is not safe for concurrent use. Drive it from one goroutine,
// typically through a Loop.
type Session struct {
	store    *GeometryStore
	ledger   *RunLedger
	renderer Renderer
	mode     Mode
	color    Color
}

// NewSession creates an empty session drawing through r.
// It returns ErrMissingSurfaceOrContext if r is nil.
func NewSession(r Renderer, opts ...SessionOption) (*Session, error) {
	if r == nil {
		return nil, ErrMissingSurfaceOrContext
	}
	o := defaultSessionOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Session{
		store:    NewGeometryStore(o.capacity),
		ledger:   NewRunLedger(),
		renderer: r,
		mode:     o.mode,
		color:    o.color,
	}, nil
}

// Store returns the session's geometry store. Callers must not mutate it.
func (s *Session) Store() *GeometryStore { return s.store }

// Ledger returns the session's run ledger. Callers must not mutate it.
func (s *Session) Ledger() *RunLedger { return s.ledger }

// Renderer returns the renderer the session draws through.
func (s *Session) Renderer() Renderer { return s.renderer }

// Mode returns the current drawing mode.
func (s *Session) Mode() Mode { return s.mode }

// Color returns the current drawing color.
func (s *Session) Color() Color { return s.color }

// SetMode changes the mode used for subsequently placed vertices.
func (s *Session) SetMode(m Mode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidMode, uint32(m))
	}
	s.mode = m
	return nil
}

// SetColor changes the color used for subsequently placed vertices.
func (s *Session) SetColor(c Color) {
	s.color = c
}

// PlaceVertex maps a click to NDC, appends it with the current color,
// records it in the run ledger under the current mode, mirrors it to the
// renderer and redraws. It returns the new vertex index.
//
// The store append runs before the ledger update so that a full store
// rejects the vertex without touching either.
func (s *Session) PlaceVertex(ev VertexPlaced) (int, error) {
	pos, err := ToNDC(ev.X, ev.Y, ev.Width, ev.Height)
	if err != nil {
		return 0, err
	}
	idx, err := s.store.Append(pos, s.color)
	if err != nil {
		return 0, err
	}
	if s.ledger.RecordVertex(s.mode) {
		Logger().Debug("sketch: run opened", slog.String("mode", s.mode.String()), slog.Int("runs", s.ledger.Len()))
	}
	Logger().Debug("sketch: vertex placed",
		slog.Int("index", idx),
		slog.Float64("x", float64(pos[0])),
		slog.Float64("y", float64(pos[1])),
		slog.String("color", s.color.Hex()))

	p := s.store.Positions()[PositionComponents*idx:]
	c := s.store.Colors()[ColorComponents*idx:]
	if err := s.renderer.Upload(idx, p, c); err != nil {
		return idx, fmt.Errorf("upload vertex %d: %w", idx, err)
	}
	return idx, s.Render()
}

// Render redraws the whole drawing from the run ledger. It returns
// ErrLedgerMismatch if the runs do not cover exactly the stored vertices.
func (s *Session) Render() error {
	end, err := RenderAll(s.renderer, s.ledger.runs)
	if err != nil {
		return err
	}
	if end != s.store.Count() {
		return fmt.Errorf("%w: runs cover %d vertices, store holds %d", ErrLedgerMismatch, end, s.store.Count())
	}
	return nil
}

// Snapshot captures the current drawing.
func (s *Session) Snapshot() Snapshot {
	positions, colors := s.store.ExportAll()
	return Snapshot{
		Runs:      s.ledger.Runs(),
		Positions: positions,
		Colors:    colors,
	}
}

// Restore replaces the drawing with snap and redraws it. The snapshot is
// fully validated first. If it is rejected, or the renderer fails to take
// the new drawing, the previous drawing is kept.
func (s *Session) Restore(snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	prev := s.Snapshot()
	if err := s.replace(snap); err != nil {
		return err
	}
	if err := s.Sync(); err != nil {
		// prev came from this session, so it always fits back in.
		_ = s.replace(prev)
		if rerr := s.Sync(); rerr != nil {
			Logger().Warn("sketch: redraw of previous drawing failed", slog.Any("err", rerr))
		}
		return err
	}
	Logger().Info("sketch: drawing restored", slog.Int("vertices", s.store.Count()), slog.Int("runs", s.ledger.Len()))
	return nil
}

// replace loads snap into the store and ledger. On error neither changes.
func (s *Session) replace(snap Snapshot) error {
	if _, err := validateRuns(snap.Runs, math.MaxInt); err != nil {
		return err
	}
	if err := s.store.LoadAll(snap.Positions, snap.Colors); err != nil {
		return err
	}
	// Cannot fail: the runs were checked above.
	return s.ledger.ReplaceAll(snap.Runs)
}

// Sync re-uploads every stored vertex to the renderer and redraws.
// Use it after replacing the renderer's surface.
func (s *Session) Sync() error {
	if n := s.store.Count(); n > 0 {
		if err := s.renderer.Upload(0, s.store.Positions(), s.store.Colors()); err != nil {
			return fmt.Errorf("upload %d vertices: %w", n, err)
		}
	}
	return s.Render()
}

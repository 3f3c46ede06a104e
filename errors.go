package sketch

import "errors"

// Errors returned by the drawing core. Callers match them with errors.Is;
// most are returned wrapped with additional context.
var (
	// ErrCapacityExceeded is returned when an append would grow the
	// geometry store past its fixed capacity. The store is left unchanged.
	ErrCapacityExceeded = errors.New("sketch: vertex capacity exceeded")

	// ErrMalformedSnapshot is returned when a snapshot fails structural
	// validation. The in-memory drawing is left unchanged.
	ErrMalformedSnapshot = errors.New("sketch: malformed snapshot")

	// ErrMissingSurfaceOrContext is returned at startup when no rendering
	// collaborator is available.
	ErrMissingSurfaceOrContext = errors.New("sketch: missing drawing surface or rendering context")

	// ErrInvalidSurface is returned when a click cannot be mapped because
	// the surface dimensions or coordinates are unusable.
	ErrInvalidSurface = errors.New("sketch: invalid surface geometry")

	// ErrInvalidMode is returned for an unrecognized primitive mode.
	ErrInvalidMode = errors.New("sketch: invalid primitive mode")

	// ErrInvalidColor is returned when a color string cannot be parsed.
	ErrInvalidColor = errors.New("sketch: invalid color")

	// ErrLedgerMismatch is returned by a render pass whose run lengths do
	// not add up to the stored vertex count.
	ErrLedgerMismatch = errors.New("sketch: run ledger does not match vertex count")

	// ErrLoadInFlight is returned when editing or a second load is
	// attempted while a snapshot load has not completed.
	ErrLoadInFlight = errors.New("sketch: snapshot load in progress")
)

package sketch

// SessionOption configures a Session during creation.
//
// Example:
//
//	s, err := sketch.NewSession(renderer,
//	    sketch.WithMode(sketch.LineStrip),
//	    sketch.WithColor(sketch.Red),
//	)
type SessionOption func(*sessionOptions)

// sessionOptions holds optional configuration for Session creation.
type sessionOptions struct {
	capacity int
	mode     Mode
	color    Color
}

// defaultSessionOptions returns the default session options.
func defaultSessionOptions() sessionOptions {
	return sessionOptions{
		capacity: MaxVertices,
		mode:     Points,
		color:    Black,
	}
}

// WithCapacity sets the vertex capacity of the session's geometry store.
// Values <= 0 select MaxVertices.
func WithCapacity(n int) SessionOption {
	return func(o *sessionOptions) {
		o.capacity = n
	}
}

// WithMode sets the initial drawing mode. Invalid modes are ignored.
func WithMode(m Mode) SessionOption {
	return func(o *sessionOptions) {
		if m.Valid() {
			o.mode = m
		}
	}
}

// WithColor sets the initial drawing color.
func WithColor(c Color) SessionOption {
	return func(o *sessionOptions) {
		o.color = c
	}
}

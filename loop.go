package sketch

import (
	"context"
	"fmt"
	"log/slog"
)

// defaultQueueSize is the default capacity of the loop's event queue.
const defaultQueueSize = 64

// Loop runs a Session as a single actor: events posted from any goroutine
// are handled one at a time, to completion, on the goroutine that calls Run.
// Snapshot loads are the only asynchronous step; while one is in flight,
// placing vertices and starting another load fail with ErrLoadInFlight.
type Loop struct {
	sess     *Session
	events   chan Event
	done     chan struct{}
	ctx      context.Context
	observe  func(Event, error)
	loading  bool
	lastPath string
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithObserver registers fn to be called after every handled event with
// the event and its error, if any. Errors are recoverable: the loop keeps
// running. UIs use the observer to report errors and refresh status.
func WithObserver(fn func(Event, error)) LoopOption {
	return func(l *Loop) {
		l.observe = fn
	}
}

// WithQueueSize sets the capacity of the event queue.
func WithQueueSize(n int) LoopOption {
	return func(l *Loop) {
		if n > 0 {
			l.events = make(chan Event, n)
		}
	}
}

// NewLoop creates a loop driving s.
func NewLoop(s *Session, opts ...LoopOption) *Loop {
	l := &Loop{
		sess:   s,
		events: make(chan Event, defaultQueueSize),
		done:   make(chan struct{}),
		ctx:    context.Background(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Session returns the session driven by l.
func (l *Loop) Session() *Session { return l.sess }

// Loading reports whether a snapshot load is in flight.
func (l *Loop) Loading() bool { return l.loading }

// SnapshotPath returns the path of the last snapshot saved or loaded.
func (l *Loop) SnapshotPath() string { return l.lastPath }

// Post queues ev for handling. It blocks while the queue is full and
// returns false if the loop has stopped.
func (l *Loop) Post(ev Event) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.events <- ev:
		return true
	case <-l.done:
		return false
	}
}

// Run handles events until ctx is done or a Quit event arrives.
// It must be called at most once.
func (l *Loop) Run(ctx context.Context) error {
	l.ctx = ctx
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-l.events:
			if _, ok := ev.(Quit); ok {
				return nil
			}
			err := l.Dispatch(ev)
			if err != nil {
				Logger().Warn("sketch: event failed", slog.String("event", fmt.Sprintf("%T", ev)), slog.Any("err", err))
			}
			if l.observe != nil {
				l.observe(ev, err)
			}
		}
	}
}

// Dispatch handles a single event synchronously on the calling goroutine.
// Run calls it for every queued event; tests and embedders may call it
// directly as long as they do not also run the loop.
func (l *Loop) Dispatch(ev Event) error {
	switch ev := ev.(type) {
	case VertexPlaced:
		if l.loading {
			return ErrLoadInFlight
		}
		_, err := l.sess.PlaceVertex(ev)
		return err

	case ModeSelected:
		return l.sess.SetMode(ev.Mode)

	case ColorSelected:
		l.sess.SetColor(ev.Color)
		return nil

	case SnapshotRequested:
		path, err := SaveFile(ev.Path, l.sess.Snapshot())
		if err != nil {
			return err
		}
		l.lastPath = path
		return nil

	case SnapshotOpen:
		if l.loading {
			return ErrLoadInFlight
		}
		l.loading = true
		LoadAsync(l.ctx, ev.Path, func(res SnapshotLoaded) { l.Post(res) })
		return nil

	case SnapshotLoaded:
		l.loading = false
		if ev.Err != nil {
			return ev.Err
		}
		if err := l.sess.Restore(ev.Snapshot); err != nil {
			return fmt.Errorf("restore %s: %w", ev.Path, err)
		}
		l.lastPath = ev.Path
		return nil

	case Redraw:
		return l.sess.Render()

	case Quit:
		return nil
	}
	return fmt.Errorf("sketch: unhandled event %T", ev)
}

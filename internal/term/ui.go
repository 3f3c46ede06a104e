package term

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/gogpu/sketch"
)

// Options configures a UI.
type Options struct {
	// SnapshotPath is the file written by 's' and read by 'o'.
	SnapshotPath string

	// Palette is the list of colors 'c' cycles through.
	Palette []sketch.Color
}

// UI connects a tcell screen to a sketch event loop: terminal input is
// translated into sketch events, and every handled event refreshes the
// status line.
type UI struct {
	screen  tcell.Screen
	loop    *sketch.Loop
	path    string
	palette []sketch.Color

	// Owned by the input goroutine.
	paletteIdx int
	buttons    tcell.ButtonMask

	// Owned by the loop goroutine.
	message string
}

// New creates a UI for sess, which normally draws through a Canvas on the
// same screen.
func New(screen tcell.Screen, sess *sketch.Session, opts Options) *UI {
	u := &UI{
		screen:  screen,
		path:    opts.SnapshotPath,
		palette: opts.Palette,
	}
	if len(u.palette) == 0 {
		u.palette = []sketch.Color{sess.Color()}
	}
	u.loop = sketch.NewLoop(sess, sketch.WithObserver(u.observe))
	return u
}

// Loop returns the event loop. Other goroutines may Post to it.
func (u *UI) Loop() *sketch.Loop { return u.loop }

// Run reads terminal input and runs the event loop until the user quits
// or ctx is done. The caller owns the screen and must Fini it afterwards.
func (u *UI) Run(ctx context.Context) error {
	u.screen.EnableMouse()
	go u.pollInput()
	u.loop.Post(sketch.Redraw{})
	return u.loop.Run(ctx)
}

// pollInput forwards terminal events until the screen is finalized or the
// loop stops.
func (u *UI) pollInput() {
	for {
		ev := u.screen.PollEvent()
		if ev == nil {
			return
		}
		se, ok := u.translate(ev)
		if !ok {
			continue
		}
		if !u.loop.Post(se) {
			return
		}
	}
}

// translate maps a terminal event to a sketch event.
func (u *UI) translate(ev tcell.Event) (sketch.Event, bool) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		u.screen.Sync()
		return sketch.Redraw{}, true

	case *tcell.EventMouse:
		prev := u.buttons
		u.buttons = ev.Buttons()
		// Only the press edge places a vertex; holding the button does not.
		if u.buttons&tcell.Button1 == 0 || prev&tcell.Button1 != 0 {
			return nil, false
		}
		col, row := ev.Position()
		cols, rows := u.screen.Size()
		if row >= rows-statusRows {
			return nil, false
		}
		w, h := PixelSize(cols, rows)
		return sketch.VertexPlaced{
			X:      float32(col) + 0.5,
			Y:      float32(2*row) + 1,
			Width:  float32(w),
			Height: float32(h),
		}, true

	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return sketch.Quit{}, true
		case tcell.KeyRune:
			return u.runeEvent(ev.Rune())
		}
	}
	return nil, false
}

func (u *UI) runeEvent(r rune) (sketch.Event, bool) {
	switch {
	case r >= '1' && r < '1'+rune(len(sketch.Modes())):
		return sketch.ModeSelected{Mode: sketch.Modes()[r-'1']}, true
	case r == 'c':
		u.paletteIdx = (u.paletteIdx + 1) % len(u.palette)
		return sketch.ColorSelected{Color: u.palette[u.paletteIdx]}, true
	case r == 's':
		return sketch.SnapshotRequested{Path: u.path}, true
	case r == 'o':
		return sketch.SnapshotOpen{Path: sketch.SnapshotPath(u.path)}, true
	case r == 'r':
		return sketch.Redraw{}, true
	case r == 'q':
		return sketch.Quit{}, true
	}
	return nil, false
}

// observe runs on the loop goroutine after every event.
func (u *UI) observe(ev sketch.Event, err error) {
	if err != nil {
		u.message = err.Error()
	} else {
		switch ev.(type) {
		case sketch.SnapshotRequested:
			u.message = "saved " + filepath.Base(u.loop.SnapshotPath())
		case sketch.SnapshotLoaded:
			u.message = "loaded " + filepath.Base(u.loop.SnapshotPath())
		case sketch.VertexPlaced:
			u.message = ""
		}
	}
	u.drawStatus()
	u.screen.Show()
}

// StatusText returns the status line text.
func (u *UI) StatusText() string {
	s := u.loop.Session()
	text := fmt.Sprintf(" %-14s %s  %d/%d vertices  %d runs",
		s.Mode(), s.Color().Hex(), s.Store().Count(), s.Store().Cap(), s.Ledger().Len())
	if u.loop.Loading() {
		text += "  loading…"
	}
	if u.message != "" {
		text += "  | " + u.message
	}
	return text
}

// drawStatus draws the status line on the last screen row, with a swatch
// of the current color in the first cell.
func (u *UI) drawStatus() {
	cols, rows := u.screen.Size()
	if rows < 1 {
		return
	}
	y := rows - 1
	style := tcell.StyleDefault.Reverse(true)
	text := []rune(u.StatusText())
	for x := range cols {
		r := ' '
		if x < len(text) {
			r = text[x]
		}
		u.screen.SetContent(x, y, r, nil, style)
	}
	swatch := tcell.StyleDefault.Background(tcellColor(u.loop.Session().Color()))
	u.screen.SetContent(0, y, ' ', nil, swatch)
}

func tcellColor(c sketch.Color) tcell.Color {
	return tcell.NewRGBColor(int32(255*c[0]+0.5), int32(255*c[1]+0.5), int32(255*c[2]+0.5))
}

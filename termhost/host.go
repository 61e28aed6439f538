// Package termhost runs a codeboard engine in a terminal through tcell.
// Shapes are rasterized to cell backgrounds, text is written as runes and
// terminal key presses become a key down immediately followed by a key up.
package termhost

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/codeboardgames/codeboard"
)

// frameInterval is the ticker period driving the frame clock (~60 FPS).
const frameInterval = 16 * time.Millisecond

// Clock is a codeboard.FrameClock flushed by the host's ticker.
type Clock struct {
	codeboard.FrameQueue
	start time.Time
}

// Now returns milliseconds since the host was created.
func (c *Clock) Now() float64 {
	return float64(time.Since(c.start)) / float64(time.Millisecond)
}

// Host couples a tcell screen with a codeboard engine.
type Host struct {
	Clock  *Clock
	Canvas *Canvas

	screen tcell.Screen
	mouse  mouseState
	log    *zap.Logger
}

// New wraps an initialised screen. The canvas keeps the configured pixel
// size and maps it onto however many cells the terminal has.
func New(screen tcell.Screen, cfg codeboard.WindowConfig, log *zap.Logger) *Host {
	if log == nil {
		log = zap.NewNop()
	}
	return &Host{
		Clock:  &Clock{start: time.Now()},
		Canvas: NewCanvas(screen, float64(cfg.Width), float64(cfg.Height)),
		screen: screen,
		log:    log,
	}
}

// NewScreen creates and initialises a terminal screen with mouse and focus
// reporting enabled.
func NewScreen() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()
	screen.EnableFocus()
	screen.HideCursor()
	return screen, nil
}

// Run starts the engine and serves frames and input until ctx is done or
// the user presses Ctrl-C. The screen is finalised on return.
func (h *Host) Run(ctx context.Context, e *codeboard.Engine) error {
	defer h.screen.Fini()

	events := make(chan tcell.Event, 100)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	e.Start()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !h.handle(e.Stack(), ev) {
				return nil
			}
		case <-ticker.C:
			h.frame()
		}
	}
}

// frame flushes one pending frame and shows the result.
func (h *Host) frame() {
	if h.Clock.Pending() == 0 {
		return
	}
	h.Canvas.begin()
	h.Clock.Flush(h.Clock.Now())
	if d := h.Canvas.Depth(); d != 0 {
		h.log.Warn("unbalanced renderer save", zap.Int("depth", d))
	}
	h.screen.Show()
}

// handle routes one terminal event. Reports false when the host should
// exit.
func (h *Host) handle(s *codeboard.SceneStack, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyCtrlC {
			return false
		}
		ke, ok := keyEvent(ev)
		if !ok {
			return true
		}
		s.KeyDown(ke)
		s.KeyUp(ke)
	case *tcell.EventMouse:
		col, row := ev.Position()
		x, y := h.Canvas.CellToCanvas(col, row)
		for _, me := range h.mouse.events(ev, x, y) {
			s.Mouse(me)
		}
	case *tcell.EventFocus:
		if ev.Focused {
			s.Focus()
		} else {
			s.Blur()
		}
	case *tcell.EventResize:
		h.screen.Sync()
		h.Canvas.resize()
	}
	return true
}

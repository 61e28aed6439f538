// Package ebitenhost runs a codeboard engine in an ebiten window. Ebiten's
// Update drives the frame clock and input; Draw replays what the scene
// stack drew during the last frame.
package ebitenhost

import (
	"fmt"
	"io/fs"
	"path"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"go.uber.org/zap"

	"github.com/codeboardgames/codeboard"
)

// Clock is a codeboard.FrameClock flushed once per ebiten tick.
type Clock struct {
	codeboard.FrameQueue
	start time.Time
}

// NewClock returns a clock whose zero is now.
func NewClock() *Clock { return &Clock{start: time.Now()} }

// Now returns milliseconds since the clock was created.
func (c *Clock) Now() float64 {
	return float64(time.Since(c.start)) / float64(time.Millisecond)
}

// Host owns the ebiten-side state for one engine. Create it before the
// engine so its Clock and Renderer can be passed to codeboard.NewEngine.
type Host struct {
	Clock    *Clock
	Renderer *Recorder

	cfg     codeboard.WindowConfig
	images  map[string]*ebiten.Image
	input   *inputReader
	focused bool
	engine  *codeboard.Engine
	log     *zap.Logger
}

// New creates a host for the given window settings.
func New(cfg codeboard.WindowConfig, log *zap.Logger) *Host {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Host{
		Clock:    NewClock(),
		Renderer: NewRecorder(float64(cfg.Width), float64(cfg.Height)),
		cfg:      cfg,
		images:   make(map[string]*ebiten.Image),
		input:    newInputReader(),
		focused:  true,
		log:      log,
	}
	h.Renderer.sizes = h.imageSize
	return h
}

func (h *Host) imageSize(name string) (float64, float64, bool) {
	img, ok := h.images[name]
	if !ok {
		return 0, 0, false
	}
	b := img.Bounds()
	return float64(b.Dx()), float64(b.Dy()), true
}

// RegisterImage makes img drawable under name.
func (h *Host) RegisterImage(name string, img *ebiten.Image) {
	h.images[name] = img
}

// LoadImages registers every PNG in fsys matching pattern under its base
// name without extension.
func (h *Host) LoadImages(fsys fs.FS, pattern string) error {
	matches, err := fs.Glob(fsys, pattern)
	if err != nil {
		return fmt.Errorf("ebitenhost: glob %q: %w", pattern, err)
	}
	for _, p := range matches {
		img, _, err := ebitenutil.NewImageFromFileSystem(fsys, p)
		if err != nil {
			return fmt.Errorf("ebitenhost: load %s: %w", p, err)
		}
		name := path.Base(p)
		name = name[:len(name)-len(path.Ext(name))]
		h.RegisterImage(name, img)
		h.log.Debug("image loaded", zap.String("name", name))
	}
	return nil
}

// Run opens the window and blocks until it closes.
func (h *Host) Run(e *codeboard.Engine) error {
	h.engine = e
	scale := h.cfg.Scale
	if scale <= 0 {
		scale = 1
	}
	ebiten.SetWindowTitle(h.cfg.Title)
	ebiten.SetWindowSize(int(float64(h.cfg.Width)*scale), int(float64(h.cfg.Height)*scale))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	e.Start()
	return ebiten.RunGame(h)
}

// Update implements ebiten.Game.
func (h *Host) Update() error {
	s := h.engine.Stack()

	focused := ebiten.IsFocused()
	if focused != h.focused {
		h.focused = focused
		if focused {
			s.Focus()
		} else {
			s.Blur()
		}
	}

	h.input.poll(s)

	if h.Clock.Pending() > 0 {
		h.Renderer.Reset()
		h.Clock.Flush(h.Clock.Now())
	}
	return nil
}

// Draw implements ebiten.Game.
func (h *Host) Draw(screen *ebiten.Image) {
	h.Renderer.replay(screen, h.images)
	if h.Renderer.Depth() != 0 {
		h.log.Warn("unbalanced renderer save", zap.Int("depth", h.Renderer.Depth()))
	}
}

// Layout implements ebiten.Game. The canvas keeps its configured size and
// ebiten scales it to the window.
func (h *Host) Layout(_, _ int) (int, int) {
	return h.cfg.Width, h.cfg.Height
}

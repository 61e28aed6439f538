package codeboard

import (
	"fmt"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// recordingRenderer records draw calls and tracks save/restore nesting.
type recordingRenderer struct {
	NopRenderer
	calls    []string
	depth    int
	maxDepth int
	saves    int
}

func newRecordingRenderer() *recordingRenderer {
	return &recordingRenderer{NopRenderer: NopRenderer{Width: 800, Height: 600}}
}

func (r *recordingRenderer) Save() {
	r.saves++
	r.depth++
	r.maxDepth = max(r.maxDepth, r.depth)
}

func (r *recordingRenderer) Restore() { r.depth-- }

func (r *recordingRenderer) Translate(x, y float64) {
	r.calls = append(r.calls, fmt.Sprintf("translate %g,%g", x, y))
}

func (r *recordingRenderer) FillScreen(Color) { r.calls = append(r.calls, "fill") }

func (r *recordingRenderer) DrawRect(x, y, w, h float64, s Style) {
	r.calls = append(r.calls, "rect")
}

func (r *recordingRenderer) DrawCircle(x, y, radius float64, s Style) {
	r.calls = append(r.calls, "circle")
}

func (r *recordingRenderer) DrawPolygon(points []Vec2, s Style) {
	r.calls = append(r.calls, "polygon")
}

func (r *recordingRenderer) DrawText(text string, x, y float64, s TextStyle) {
	r.calls = append(r.calls, "text "+text)
}

func (r *recordingRenderer) DrawImage(name string, x, y float64, s ImageStyle) {
	r.calls = append(r.calls, "image "+name)
}

// draws returns the recorded calls that are not transforms.
func (r *recordingRenderer) draws() []string {
	var out []string
	for _, c := range r.calls {
		if len(c) < 9 || c[:9] != "translate" {
			out = append(out, c)
		}
	}
	return out
}

type fakeHandle struct {
	source  string
	paused  bool
	stopped bool
}

func (h *fakeHandle) Pause()     { h.paused = true }
func (h *fakeHandle) Play()      { h.paused = false }
func (h *fakeHandle) Stop()      { h.stopped = true }
func (h *fakeHandle) Done() bool { return h.stopped }

type fakeAudio struct {
	sounds []*fakeHandle
	music  []*fakeHandle
	err    error
}

func (a *fakeAudio) PlaySound(source string, _ SoundOptions) (AudioHandle, error) {
	if a.err != nil {
		return nil, a.err
	}
	h := &fakeHandle{source: source}
	a.sounds = append(a.sounds, h)
	return h, nil
}

func (a *fakeAudio) PlayMusic(source string, _ SoundOptions) (AudioHandle, error) {
	if a.err != nil {
		return nil, a.err
	}
	h := &fakeHandle{source: source}
	a.music = append(a.music, h)
	return h, nil
}

type recordingStore struct {
	events []EntityEvent
}

func (s *recordingStore) EmitEvent(ev EntityEvent) { s.events = append(s.events, ev) }

func (s *recordingStore) kinds() []EntityEventKind {
	out := make([]EntityEventKind, len(s.events))
	for i, ev := range s.events {
		out[i] = ev.Kind
	}
	return out
}

func observedLogger(level zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core), logs
}

// newTestEngine returns a started engine on a manual clock. Frames are 100ms
// apart in these tests, under the default 250ms delta clamp.
func newTestEngine(t *testing.T, opts EngineOptions) (*Engine, *ManualClock) {
	t.Helper()
	clock := NewManualClock()
	opts.Clock = clock
	if opts.Renderer == nil {
		opts.Renderer = NopRenderer{Width: 800, Height: 600}
	}
	e := NewEngine(opts)
	e.Start()
	return e, clock
}

package codeboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStack(opts StackOptions) (*SceneStack, *ManualClock) {
	clock := NewManualClock()
	opts.Clock = clock
	s := NewSceneStack(opts)
	return s, clock
}

func TestNewStackIsPaused(t *testing.T) {
	s, clock := newTestStack(StackOptions{})
	assert.True(t, s.IsPaused())
	assert.True(t, s.Global().IsPaused())
	assert.Equal(t, GlobalLayerID, s.Global().ID())
	assert.Equal(t, -1, s.Global().Position())
	assert.Same(t, s.Global(), s.Current())
	assert.Zero(t, clock.Pending())

	s.Start()
	assert.False(t, s.IsPaused())
	assert.Equal(t, 1, clock.Pending())
}

func TestPushPopPairing(t *testing.T) {
	s, _ := newTestStack(StackOptions{})
	s.Start()
	game := s.Push(NewLayer(LayerOptions{ID: "game"}))
	assert.False(t, game.IsPaused())
	assert.Equal(t, 0, game.Position())

	menu := s.Push(NewLayer(LayerOptions{ID: "menu"}))
	assert.True(t, game.IsPaused())
	assert.False(t, menu.IsPaused())
	assert.Same(t, menu, s.Current())
	assert.Equal(t, 1, menu.Position())

	var removed []string
	s.OnRemove(func(l *Layer) { removed = append(removed, l.ID()) })

	assert.Same(t, menu, s.Pop())
	assert.True(t, menu.IsPaused())
	assert.Nil(t, menu.Stack())
	assert.False(t, game.IsPaused())
	assert.Same(t, game, s.Current())

	assert.Same(t, game, s.Pop())
	assert.Nil(t, s.Pop())
	assert.Same(t, s.Global(), s.Current())
	assert.Equal(t, []string{"menu", "game"}, removed)
}

func TestPushMisuse(t *testing.T) {
	s, _ := newTestStack(StackOptions{})
	assert.Panics(t, func() { s.Push(nil) })
	l := s.Push(NewLayer(LayerOptions{}))
	assert.Panics(t, func() { s.Push(l) })
}

func TestRemoveDeepLayer(t *testing.T) {
	s, _ := newTestStack(StackOptions{})
	a := s.Push(NewLayer(LayerOptions{ID: "a"}))
	b := s.Push(NewLayer(LayerOptions{ID: "b"}))
	c := s.Push(NewLayer(LayerOptions{ID: "c"}))
	closed := false
	a.OnRemove = func(*Layer) { closed = true }

	s.Remove(a)
	assert.True(t, closed)
	assert.Equal(t, []*Layer{b, c}, s.Layers())
	assert.Equal(t, 0, b.Position())
	assert.Equal(t, 1, c.Position())
	assert.True(t, b.IsPaused())

	s.Remove(s.Global())
	s.Remove(NewLayer(LayerOptions{}))
	assert.Equal(t, 2, s.Len())

	s.Remove(c)
	assert.False(t, b.IsPaused())
}

func TestOnlyGlobalAndTopTick(t *testing.T) {
	s, clock := newTestStack(StackOptions{})
	game := s.Push(NewLayer(LayerOptions{}))
	s.Start()
	clock.Run(2, 100)
	menu := s.Push(NewLayer(LayerOptions{}))
	clock.Run(3, 100)

	assert.Equal(t, uint64(5), s.Global().Ticks())
	assert.Equal(t, uint64(2), game.Ticks())
	assert.Equal(t, uint64(3), menu.Ticks())
}

func TestFrameOrder(t *testing.T) {
	s, clock := newTestStack(StackOptions{})
	game := s.Push(NewLayer(LayerOptions{}))
	var order []string
	s.Global().OnUpdate = func(*Layer, float64) { order = append(order, "global update") }
	game.OnUpdate = func(*Layer, float64) { order = append(order, "game update") }
	s.Global().OnDraw = func(*Layer, Renderer) { order = append(order, "global draw") }
	game.OnDraw = func(*Layer, Renderer) { order = append(order, "game draw") }
	s.Global().BindKeyDown("KeyA", func() { order = append(order, "injected") })
	s.Injector().InjectKeyDown("KeyA", "a")

	s.Start()
	clock.Tick(16)
	assert.Equal(t, []string{"injected", "global update", "game update", "global draw", "game draw"}, order)
	assert.Equal(t, 1, clock.Pending())
}

func TestFrameDelta(t *testing.T) {
	s, clock := newTestStack(StackOptions{MaxDelta: 0.25})
	var got []float64
	s.Global().OnUpdate = func(_ *Layer, dt float64) { got = append(got, dt) }
	s.Start()

	clock.Tick(100)
	clock.Tick(1000)
	s.Frame(clock.Now() - 50) // timestamps going backwards count as zero
	assert.Equal(t, []float64{0.1, 0.25, 0}, got)
}

func TestPauseCascadeHasNoBacklog(t *testing.T) {
	s, clock := newTestStack(StackOptions{})
	bottom := s.Push(NewLayer(LayerOptions{}))
	top := s.Push(NewLayer(LayerOptions{}))
	fired := 0
	top.ScheduleTask(func() { fired++ }, TaskOptions{Time: time.Second, Loop: true})
	s.Start()
	clock.Run(5, 100)

	s.Pause()
	assert.True(t, s.Global().IsPaused())
	assert.True(t, top.IsPaused())
	assert.True(t, bottom.IsPaused())
	assert.Zero(t, clock.Pending())
	assert.False(t, clock.Tick(60_000))

	s.Resume()
	assert.False(t, top.IsPaused())
	assert.True(t, bottom.IsPaused(), "only the top resumes")
	clock.Tick(100)
	assert.InDelta(t, 0.6, top.Async().Now(), 1e-9)
	assert.Zero(t, fired)
	clock.Run(4, 100)
	assert.Equal(t, 1, fired)
}

func TestTogglePauseAndShortcuts(t *testing.T) {
	s, _ := newTestStack(StackOptions{})
	s.Shortcuts.Bind("Escape", s.TogglePause)
	s.Start()

	s.KeyDown(KeyEvent{Code: "Escape"})
	assert.True(t, s.IsPaused())
	s.KeyDown(KeyEvent{Code: "Escape"})
	assert.False(t, s.IsPaused())
}

func TestInputSkipsPausedLayers(t *testing.T) {
	s, _ := newTestStack(StackOptions{})
	bottom := s.Push(NewLayer(LayerOptions{}))
	top := s.Push(NewLayer(LayerOptions{}))
	s.Start()

	var got []string
	bottom.OnKey = func(*Layer, KeyEvent) { got = append(got, "bottom") }
	top.OnKey = func(*Layer, KeyEvent) { got = append(got, "top") }
	s.Global().OnKey = func(*Layer, KeyEvent) { got = append(got, "global") }
	top.OnMouse = func(_ *Layer, ev MouseEvent) { got = append(got, ev.Kind.String()) }

	s.KeyDown(KeyEvent{Code: "KeyX"})
	assert.Equal(t, []string{"global", "top"}, got)
	assert.True(t, s.Input().Pressed("KeyX"))
	s.KeyUp(KeyEvent{Code: "KeyX"})
	assert.False(t, s.Input().Pressed("KeyX"))

	got = nil
	s.Mouse(MouseEvent{Kind: MouseDown, CanvasX: 3, CanvasY: 4})
	assert.Equal(t, []string{"down"}, got)
	assert.True(t, s.Input().ButtonPressed(MouseButtonLeft))
	assert.Equal(t, 3.0, s.Input().MouseX)
}

func TestBlurAndFocus(t *testing.T) {
	s, _ := newTestStack(StackOptions{})
	s.Start()
	s.KeyDown(KeyEvent{Code: "ArrowLeft"})
	s.Blur()
	assert.True(t, s.IsPaused())
	assert.False(t, s.Input().Pressed("ArrowLeft"))
	s.Focus()
	assert.False(t, s.IsPaused())
}

func TestFrameSurvivesLayerPanic(t *testing.T) {
	log, logs := observedLogger(zap.ErrorLevel)
	s, clock := newTestStack(StackOptions{Log: log})
	game := s.Push(NewLayer(LayerOptions{Log: log}))
	game.OnUpdate = func(*Layer, float64) { panic("layer bug") }
	drawn := 0
	game.OnDraw = func(*Layer, Renderer) { drawn++ }
	s.Start()

	clock.Run(3, 16)
	assert.Equal(t, 3, drawn)
	assert.Equal(t, 1, clock.Pending())
	assert.Equal(t, 3, logs.FilterMessage("handler panicked").Len())
}

func TestStackEntities(t *testing.T) {
	s, _ := newTestStack(StackOptions{})
	game := s.Push(NewLayer(LayerOptions{}))
	g := s.Global().Spawn(NewEntity("Rock"))
	r := game.Spawn(NewEntity("Rock"))
	game.Spawn(NewEntity("Coin"))

	assert.Equal(t, []*Entity{g, r}, s.Entities("Rock"))
	assert.Len(t, s.Entities(""), 3)
}

func TestAudioWaitsForInteraction(t *testing.T) {
	audio := &fakeAudio{}
	s, _ := newTestStack(StackOptions{Audio: audio})
	game := s.Push(NewLayer(LayerOptions{}))
	s.Start()

	game.PlaySoundEffect("blip", SoundOptions{})
	game.PlayMusic("theme", SoundOptions{})
	assert.Empty(t, audio.sounds)
	assert.Empty(t, audio.music)
	assert.False(t, s.Interacted())

	s.Mouse(MouseEvent{Kind: MouseMove})
	assert.False(t, s.Interacted())
	s.Mouse(MouseEvent{Kind: MouseDown})
	assert.True(t, s.Interacted())
	require.Len(t, audio.music, 1)
	assert.Equal(t, "theme", audio.music[0].source)
	assert.Empty(t, audio.sounds, "effects before interaction are dropped")

	game.PlaySoundEffect("blip", SoundOptions{})
	require.Len(t, audio.sounds, 1)

	s.Pause()
	assert.True(t, audio.sounds[0].paused)
	assert.True(t, audio.music[0].paused)
	s.Resume()
	assert.False(t, audio.sounds[0].paused)
	assert.False(t, audio.music[0].paused)

	game.PlayMusic("boss", SoundOptions{})
	assert.True(t, audio.music[0].stopped)
	assert.Equal(t, "boss", audio.music[1].source)
}

func TestSoundOnPausedLayerStartsPaused(t *testing.T) {
	audio := &fakeAudio{}
	s, _ := newTestStack(StackOptions{Audio: audio})
	game := s.Push(NewLayer(LayerOptions{}))
	s.Start()
	s.KeyDown(KeyEvent{Code: "Space"})

	game.Pause()
	game.PlaySoundEffect("blip", SoundOptions{})
	require.Len(t, audio.sounds, 1)
	assert.True(t, audio.sounds[0].paused)

	game.Async().StopAudio()
	assert.True(t, audio.sounds[0].stopped)
}

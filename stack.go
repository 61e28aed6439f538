package codeboard

import (
	"go.uber.org/zap"
)

// FrameHandle identifies a pending frame request.
type FrameHandle uint64

// FrameClock is the host's display-refresh primitive. RequestFrame arranges
// for fn to be called once, on the next frame, with a monotonically
// increasing timestamp in milliseconds. Hosts: see ManualClock and packages
// ebitenhost and termhost.
type FrameClock interface {
	RequestFrame(fn func(timestamp float64)) FrameHandle
	CancelFrame(h FrameHandle)
	Now() float64
}

// StackOptions configures a SceneStack.
type StackOptions struct {
	Clock    FrameClock
	Renderer Renderer
	Input    *InputState
	Audio    AudioPlayer
	// MaxDelta clamps a single frame's delta in seconds, so a long stall
	// (debugger, suspended laptop) does not fast-forward the game. Zero
	// disables the clamp.
	MaxDelta float64
	// Stats, when set, receives per-frame timings.
	Stats *FrameStats
	// Events, when set, receives entity lifecycle events.
	Events EventStore
	Log    *zap.Logger
}

// SceneStack is the layer manager: an ordered stack of layers plus the
// always-resident global layer. It owns the frame loop, routes input, and
// cascades pause and resume.
//
// Only the global layer and the top of the stack ever tick; deeper layers
// stay paused until they are on top again. A new stack is paused: call Start
// to request the first frame.
type SceneStack struct {
	global *Layer
	layers []*Layer

	paused     bool
	last       float64
	hasLast    bool
	frame      FrameHandle
	pending    bool
	interacted bool

	clock    FrameClock
	renderer Renderer
	input    *InputState
	audio    AudioPlayer
	maxDelta float64
	stats    *FrameStats
	events   EventStore

	// Shortcuts fire on key down before any layer sees the event, even while
	// the stack is paused. Bind pause toggles here.
	Shortcuts KeyBindings

	injector Injector
	replay   *Replay

	onRemove []func(l *Layer)
	log      *zap.Logger
}

// NewSceneStack creates a paused stack with its global layer.
func NewSceneStack(opts StackOptions) *SceneStack {
	log := orNop(opts.Log)
	s := &SceneStack{
		paused:    true,
		clock:     opts.Clock,
		renderer:  opts.Renderer,
		input:     opts.Input,
		audio:     opts.Audio,
		maxDelta:  opts.MaxDelta,
		stats:     opts.Stats,
		events:    opts.Events,
		Shortcuts: make(KeyBindings),
		log:       log,
	}
	if s.input == nil {
		s.input = NewInputState()
	}
	if s.renderer == nil {
		s.renderer = NopRenderer{}
	}
	s.global = NewLayer(LayerOptions{ID: GlobalLayerID, Log: log})
	s.attach(s.global, -1)
	s.global.Pause()
	return s
}

func (s *SceneStack) attach(l *Layer, position int) {
	l.position = position
	l.stack = s
	l.async.SetAudio(s.audio, s.Interacted)
}

// Global returns the global layer.
func (s *SceneStack) Global() *Layer { return s.global }

// Current returns the top of the stack, or the global layer when nothing has
// been pushed.
func (s *SceneStack) Current() *Layer {
	if top := s.top(); top != nil {
		return top
	}
	return s.global
}

func (s *SceneStack) top() *Layer {
	if len(s.layers) == 0 {
		return nil
	}
	return s.layers[len(s.layers)-1]
}

// Layers returns a snapshot of the pushed layers, bottom first.
func (s *SceneStack) Layers() []*Layer {
	return append([]*Layer(nil), s.layers...)
}

// Len returns the number of pushed layers (the global layer not included).
func (s *SceneStack) Len() int { return len(s.layers) }

// Input returns the shared input state.
func (s *SceneStack) Input() *InputState { return s.input }

// Renderer returns the renderer frames draw through.
func (s *SceneStack) Renderer() Renderer { return s.renderer }

// SetRenderer replaces the renderer frames draw through.
func (s *SceneStack) SetRenderer(r Renderer) { s.renderer = r }

// Push pauses the current top, places l above it and resumes l. Panics if l
// is nil or already on a stack.
func (s *SceneStack) Push(l *Layer) *Layer {
	if l == nil {
		panic("codeboard: cannot push a nil layer")
	}
	if l.stack != nil {
		panic("codeboard: layer is already on a stack")
	}
	if top := s.top(); top != nil {
		top.Pause()
	}
	s.attach(l, len(s.layers))
	s.layers = append(s.layers, l)
	l.Resume()
	s.log.Debug("layer pushed", zap.String("layer", l.id), zap.Int("position", l.position))
	return l
}

// Pop removes the top layer, pauses it, resumes the layer below and notifies
// removal listeners. Returns nil when nothing is pushed.
func (s *SceneStack) Pop() *Layer {
	l := s.top()
	if l == nil {
		return nil
	}
	s.layers[len(s.layers)-1] = nil
	s.layers = s.layers[:len(s.layers)-1]
	l.Pause()
	if top := s.top(); top != nil {
		top.Resume()
	}
	s.removed(l)
	return l
}

// Remove takes l off the stack wherever it is. Removing the top behaves like
// Pop; a deeper layer is already paused and is simply dropped. Layers not on
// this stack are ignored.
func (s *SceneStack) Remove(l *Layer) {
	if l == nil || l.stack != s || l == s.global {
		return
	}
	if l == s.top() {
		s.Pop()
		return
	}
	for i, c := range s.layers {
		if c != l {
			continue
		}
		copy(s.layers[i:], s.layers[i+1:])
		s.layers[len(s.layers)-1] = nil
		s.layers = s.layers[:len(s.layers)-1]
		for j := i; j < len(s.layers); j++ {
			s.layers[j].position = j
		}
		l.Pause()
		s.removed(l)
		return
	}
}

func (s *SceneStack) removed(l *Layer) {
	l.stack = nil
	s.log.Debug("layer removed", zap.String("layer", l.id))
	if l.OnRemove != nil {
		guard(s.log, "layer remove", l.id, func() { l.OnRemove(l) })
	}
	for _, fn := range s.onRemove {
		guard(s.log, "stack remove", l.id, func() { fn(l) })
	}
}

// Injector returns the stack's synthetic input queue.
func (s *SceneStack) Injector() *Injector { return &s.injector }

// SetReplay attaches a replay script, stepped at the start of every frame.
// Nil detaches it.
func (s *SceneStack) SetReplay(r *Replay) { s.replay = r }

// Replay returns the attached replay, or nil.
func (s *SceneStack) Replay() *Replay { return s.replay }

// SetEventStore routes entity lifecycle events to store. Nil stops them.
func (s *SceneStack) SetEventStore(store EventStore) { s.events = store }

// OnRemove registers fn to be called with every layer removed from the stack.
func (s *SceneStack) OnRemove(fn func(l *Layer)) {
	s.onRemove = append(s.onRemove, fn)
}

// IsPaused reports whether the whole stack is paused.
func (s *SceneStack) IsPaused() bool { return s.paused }

// Start resumes the stack and requests the first frame.
func (s *SceneStack) Start() { s.Resume() }

// Pause cancels the pending frame and pauses the global layer and every
// pushed layer.
func (s *SceneStack) Pause() {
	if s.paused {
		return
	}
	s.paused = true
	s.cancelFrame()
	s.global.Pause()
	for _, l := range s.Layers() {
		l.Pause()
	}
	s.log.Debug("stack paused")
}

// Resume resets the frame timestamp baseline, resumes the global layer and
// the top of the stack, and requests a frame.
func (s *SceneStack) Resume() {
	if !s.paused {
		return
	}
	s.paused = false
	s.hasLast = false
	if s.clock != nil {
		s.last, s.hasLast = s.clock.Now(), true
	}
	s.global.Resume()
	if top := s.top(); top != nil {
		top.Resume()
	}
	s.requestFrame()
	s.log.Debug("stack resumed")
}

// TogglePause pauses a running stack or resumes a paused one.
func (s *SceneStack) TogglePause() {
	if s.paused {
		s.Resume()
	} else {
		s.Pause()
	}
}

func (s *SceneStack) requestFrame() {
	if s.clock == nil || s.pending {
		return
	}
	s.frame = s.clock.RequestFrame(s.Frame)
	s.pending = true
}

func (s *SceneStack) cancelFrame() {
	if s.clock == nil || !s.pending {
		return
	}
	s.clock.CancelFrame(s.frame)
	s.pending = false
}

// Frame runs one frame at the given timestamp (milliseconds): update then
// draw, each to the global layer and then the top of the stack, skipping
// paused layers. It then requests the next frame. Hosts call it through
// their FrameClock; tests may call it directly.
func (s *SceneStack) Frame(timestamp float64) {
	s.pending = false
	if s.paused {
		return
	}
	dt := 0.0
	if s.hasLast {
		dt = (timestamp - s.last) / 1000
	}
	s.last, s.hasLast = timestamp, true
	if dt < 0 {
		dt = 0
	}
	if s.maxDelta > 0 && dt > s.maxDelta {
		dt = s.maxDelta
	}

	if s.replay != nil {
		s.replay.step(s)
	}
	s.injector.step(s)

	global, current := s.global, s.top()
	s.stats.beginUpdate()
	s.updateLayer(global, dt)
	if current != nil {
		s.updateLayer(current, dt)
	}
	s.stats.beginDraw()
	s.drawLayer(global)
	if current != nil {
		s.drawLayer(current)
	}
	s.stats.endFrame(s, dt)

	if !s.paused {
		s.requestFrame()
	}
}

func (s *SceneStack) updateLayer(l *Layer, dt float64) {
	if l.paused {
		return
	}
	guard(s.log, "layer", l.id, func() { l.Update(dt) })
}

func (s *SceneStack) drawLayer(l *Layer) {
	if l.paused {
		return
	}
	guard(s.log, "layer", l.id, func() { l.Draw(s.renderer) })
}

// propagate hands an event to the global layer and then the top of the
// stack, skipping paused layers.
func (s *SceneStack) propagate(fn func(l *Layer)) {
	global, current := s.global, s.top()
	if !global.paused {
		fn(global)
	}
	if current != nil && !current.paused {
		fn(current)
	}
}

// KeyDown records a pressed key and routes the event.
func (s *SceneStack) KeyDown(ev KeyEvent) {
	ev.Down = true
	s.input.applyKey(ev)
	s.interact()
	s.Shortcuts.dispatch(ev.Code)
	s.propagate(func(l *Layer) { l.Key(ev) })
}

// KeyUp records a released key and routes the event.
func (s *SceneStack) KeyUp(ev KeyEvent) {
	ev.Down = false
	s.input.applyKey(ev)
	s.propagate(func(l *Layer) { l.Key(ev) })
}

// Mouse records the pointer and routes the event. X and Y are overwritten
// per layer with world coordinates.
func (s *SceneStack) Mouse(ev MouseEvent) {
	s.input.applyMouse(ev)
	if ev.Kind == MouseDown {
		s.interact()
	}
	ev.X, ev.Y = ev.CanvasX, ev.CanvasY
	s.propagate(func(l *Layer) { l.Mouse(ev) })
}

// Blur handles the host losing focus: held keys are released and the stack
// pauses.
func (s *SceneStack) Blur() {
	s.input.releaseAll()
	s.Pause()
}

// Focus handles the host regaining focus.
func (s *SceneStack) Focus() {
	s.Resume()
}

// Interacted reports whether the user has pressed a key or mouse button yet.
// Audio stays suppressed until then.
func (s *SceneStack) Interacted() bool { return s.interacted }

func (s *SceneStack) interact() {
	if s.interacted {
		return
	}
	s.interacted = true
	s.log.Debug("first interaction")
	s.propagate((*Layer).pageInteract)
}

// Entities returns the entities of group ("" for all) in the global layer
// followed by those of the current layer.
func (s *SceneStack) Entities(group string) []*Entity {
	all := s.global.Entities(group)
	if top := s.top(); top != nil {
		all = append(all, top.Entities(group)...)
	}
	return all
}

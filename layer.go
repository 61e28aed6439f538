package codeboard

import (
	"time"

	"go.uber.org/zap"
)

// tickTolerance absorbs nanosecond rounding when float frame deltas are
// converted for the fixed-tick accumulator, so deltas that sum to exactly
// n*TickRate always produce n ticks.
const tickTolerance = time.Microsecond

// LayerOptions configures a new Layer.
type LayerOptions struct {
	// ID names the layer. Empty means a fresh id.
	ID string
	// TickRate switches the layer to fixed-step updates of this size. Zero
	// forwards the raw frame delta once per frame.
	TickRate time.Duration
	// DeltaMod scales every delta the layer receives (slow motion, fast
	// forward). Zero means 1.
	DeltaMod float64
	// Camera, when set, positions the layer's entities.
	Camera *Camera
	// ScaleX and ScaleY scale the layer's world drawing. Zero means 1.
	ScaleX, ScaleY float64
	// Background fills the canvas before the layer draws, when set.
	Background Color
	Log        *zap.Logger
}

// Layer is an independently pausable scene: a UI root, a SpatialRegistry of
// entities and an AsyncManager of tasks and lerps. A layer only receives
// ticks, draws and input while it is unpaused and either the global layer or
// the top of its SceneStack.
type Layer struct {
	id       string
	position int
	paused   bool

	ui       *Element
	registry *SpatialRegistry
	async    *AsyncManager
	emitters []*ParticleEmitter

	TickRate   time.Duration
	DeltaMod   float64
	Camera     *Camera
	ScaleX     float64
	ScaleY     float64
	Background Color

	keyDown KeyBindings
	keyUp   KeyBindings

	// Per-layer callbacks (nil by default)
	OnUpdate func(l *Layer, dt float64)
	OnDraw   func(l *Layer, r Renderer)
	OnKey    func(l *Layer, ev KeyEvent)
	OnMouse  func(l *Layer, ev MouseEvent)
	OnPause  func(l *Layer)
	OnResume func(l *Layer)
	// OnRemove fires after the layer has been removed from its stack.
	OnRemove func(l *Layer)

	acc   time.Duration
	ticks uint64
	stack *SceneStack
	log   *zap.Logger
}

// NewLayer creates an unattached layer.
func NewLayer(opts LayerOptions) *Layer {
	log := orNop(opts.Log)
	return &Layer{
		id:         idOr(opts.ID),
		ui:         NewRoot(),
		registry:   NewSpatialRegistry(log),
		async:      NewAsyncManager(log),
		TickRate:   opts.TickRate,
		DeltaMod:   opts.DeltaMod,
		Camera:     opts.Camera,
		ScaleX:     opts.ScaleX,
		ScaleY:     opts.ScaleY,
		Background: opts.Background,
		keyDown:    make(KeyBindings),
		keyUp:      make(KeyBindings),
		log:        log,
	}
}

// ID returns the layer's identifier.
func (l *Layer) ID() string { return l.id }

// Position returns the layer's index in its stack: -1 for the global layer,
// 0 for the bottom of the stack.
func (l *Layer) Position() int { return l.position }

// IsPaused reports whether the layer is paused.
func (l *Layer) IsPaused() bool { return l.paused }

// UI returns the layer's root UI element.
func (l *Layer) UI() *Element { return l.ui }

// Registry returns the layer's entity registry.
func (l *Layer) Registry() *SpatialRegistry { return l.registry }

// Async returns the layer's task scheduler.
func (l *Layer) Async() *AsyncManager { return l.async }

// Stack returns the stack the layer is on, or nil.
func (l *Layer) Stack() *SceneStack { return l.stack }

// Ticks returns how many update propagations the layer has run.
func (l *Layer) Ticks() uint64 { return l.ticks }

// Spawn spawns e into this layer.
func (l *Layer) Spawn(e *Entity) *Entity {
	e.Spawn(l)
	return e
}

// Entities returns a snapshot of the layer's entities in group ("" for all).
func (l *Layer) Entities(group string) []*Entity {
	return l.registry.Entities(group)
}

// ScheduleTask schedules fn on the layer's AsyncManager.
func (l *Layer) ScheduleTask(fn func(), opts TaskOptions) string {
	return l.async.Schedule(fn, opts)
}

// PlaySoundEffect plays a sound that pauses with this layer.
func (l *Layer) PlaySoundEffect(source string, opts SoundOptions) {
	l.async.PlaySoundEffect(source, opts)
}

// PlayMusic replaces the layer's music track.
func (l *Layer) PlayMusic(source string, opts SoundOptions) {
	l.async.PlayMusic(source, opts)
}

// BindKeyDown runs fn whenever the key with the given code is pressed while
// the layer is active.
func (l *Layer) BindKeyDown(code string, fn func()) { l.keyDown.Bind(code, fn) }

// BindKeyUp runs fn whenever the key with the given code is released while
// the layer is active.
func (l *Layer) BindKeyUp(code string, fn func()) { l.keyUp.Bind(code, fn) }

// UnbindKey removes both bindings for code.
func (l *Layer) UnbindKey(code string) {
	l.keyDown.Unbind(code)
	l.keyUp.Unbind(code)
}

// Update advances the layer by dt seconds. With a TickRate, dt is
// accumulated and the layer runs as many fixed steps as fit; otherwise it
// runs a single step of dt.
func (l *Layer) Update(dt float64) {
	if l.DeltaMod != 0 {
		dt *= l.DeltaMod
	}
	if l.TickRate <= 0 {
		l.tick(dt)
		return
	}
	l.acc += seconds(dt)
	step := l.TickRate.Seconds()
	for l.acc+tickTolerance >= l.TickRate {
		l.acc -= l.TickRate
		l.tick(step)
		if l.paused {
			// A handler paused the layer mid-frame; the rest of the
			// accumulated time waits for resume.
			return
		}
	}
}

// tick runs one update propagation: layer hook, UI, tasks and lerps,
// entities, particles, camera.
func (l *Layer) tick(dt float64) {
	l.ticks++
	if l.OnUpdate != nil {
		guard(l.log, "layer update", l.id, func() { l.OnUpdate(l, dt) })
	}
	guard(l.log, "ui update", l.id, func() { l.ui.Update(dt) })
	l.async.Update(dt)
	l.registry.Update(dt)
	for _, em := range l.emitters {
		em.update(dt)
	}
	if l.Camera != nil {
		l.Camera.update(dt)
	}
}

// Draw draws the layer inside a save/restore bracket: background and layer
// hook, then the entities through the camera, then the UI in screen space.
func (l *Layer) Draw(r Renderer) {
	Scoped(r, func() {
		if !l.Background.IsZero() {
			r.FillScreen(l.Background)
		}
		if l.OnDraw != nil {
			guard(l.log, "layer draw", l.id, func() {
				Scoped(r, func() { l.OnDraw(l, r) })
			})
		}
		Scoped(r, func() {
			if sx, sy := l.scale(); sx != 1 || sy != 1 {
				r.Scale(sx, sy)
			}
			if l.Camera != nil {
				l.Camera.Apply(r)
			}
			l.registry.Draw(r)
			for _, em := range l.emitters {
				em.draw(r)
			}
		})
		guard(l.log, "ui draw", l.id, func() { l.ui.Draw(r) })
	})
}

func (l *Layer) scale() (float64, float64) {
	sx, sy := l.ScaleX, l.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return sx, sy
}

// ScreenToWorld converts canvas coordinates into this layer's world space.
func (l *Layer) ScreenToWorld(x, y float64) (float64, float64) {
	sx, sy := l.scale()
	x, y = x/sx, y/sy
	if l.Camera != nil {
		return l.Camera.ScreenToWorld(x, y)
	}
	return x, y
}

// Pause freezes the layer's tasks, lerps and sounds and raises OnPause.
// Entities are untouched; they stop ticking because the layer is skipped.
func (l *Layer) Pause() {
	if l.paused {
		return
	}
	l.paused = true
	l.async.Pause()
	if l.OnPause != nil {
		guard(l.log, "layer pause", l.id, func() { l.OnPause(l) })
	}
}

// Resume re-arms the layer's tasks with their remaining time and raises
// OnResume.
func (l *Layer) Resume() {
	if !l.paused {
		return
	}
	l.paused = false
	l.async.Resume()
	if l.OnResume != nil {
		guard(l.log, "layer resume", l.id, func() { l.OnResume(l) })
	}
}

// Key routes a keyboard event: key bindings, layer hook, UI, entities.
func (l *Layer) Key(ev KeyEvent) {
	guard(l.log, "layer key", l.id, func() {
		if ev.Down {
			l.keyDown.dispatch(ev.Code)
		} else {
			l.keyUp.dispatch(ev.Code)
		}
		if l.OnKey != nil {
			l.OnKey(l, ev)
		}
		l.ui.Key(ev)
	})
	l.registry.Key(ev)
}

// Mouse routes a mouse event: layer hook and UI in canvas coordinates, then
// entities with X/Y converted to world coordinates.
func (l *Layer) Mouse(ev MouseEvent) {
	guard(l.log, "layer mouse", l.id, func() {
		if l.OnMouse != nil {
			l.OnMouse(l, ev)
		}
		l.ui.Mouse(ev)
	})
	ev.X, ev.Y = l.ScreenToWorld(ev.CanvasX, ev.CanvasY)
	l.registry.Mouse(ev)
}

// pageInteract replays audio that was waiting for the first interaction.
func (l *Layer) pageInteract() {
	l.async.PageInteract()
}

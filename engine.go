package codeboard

import (
	"fmt"
	"io"
	"slices"

	"go.uber.org/zap"
)

// Scope selects which layer a scheduling call targets.
type Scope uint8

const (
	ScopeCurrent Scope = iota // the top of the stack (global when empty)
	ScopeGlobal               // the global layer
)

// EngineOptions configures NewEngine. Every field is optional.
type EngineOptions struct {
	Config   *Config
	Clock    FrameClock
	Renderer Renderer
	Audio    AudioPlayer
	Events   EventStore
	Log      *zap.Logger
}

// Engine is the context every game component is threaded through: the
// scene stack, input state, audio, configuration, logger and canvas size.
// Several engines may coexist; nothing is shared between them.
type Engine struct {
	cfg   *Config
	stack *SceneStack
	log   *zap.Logger
	stats *FrameStats

	defs map[string]*EntityDef
	base []EntityOption

	width, height float64
}

// NewEngine builds an engine with its global layer and a default "game"
// layer pushed. The stack starts paused; call Start.
func NewEngine(opts EngineOptions) *Engine {
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	log := orNop(opts.Log)

	e := &Engine{
		cfg:    cfg,
		log:    log,
		defs:   make(map[string]*EntityDef),
		width:  float64(cfg.Window.Width),
		height: float64(cfg.Window.Height),
	}
	if cfg.Debug.Enabled {
		e.stats = NewFrameStats(log)
		e.stats.Interval = cfg.Debug.StatsInterval
	}
	audio := opts.Audio
	if !cfg.Audio.Enabled {
		audio = nil
	}
	e.stack = NewSceneStack(StackOptions{
		Clock:    opts.Clock,
		Renderer: opts.Renderer,
		Audio:    audio,
		MaxDelta: cfg.Loop.MaxDelta.Seconds(),
		Stats:    e.stats,
		Events:   opts.Events,
		Log:      log,
	})

	if bg, err := cfg.Game.BackgroundColor(); err == nil {
		e.stack.Global().Background = bg
	} else {
		log.Warn("ignoring background color", zap.Error(err))
	}
	if cfg.Game.PixelPerfect {
		e.base = append(e.base, WithPixelPerfect(true))
	}

	e.stack.Push(e.NewLayer(LayerOptions{
		ID:       DefaultLayerID,
		TickRate: cfg.Loop.TickRate,
		DeltaMod: cfg.Loop.DeltaMod,
	}))
	if cfg.Debug.ShowFPS {
		NewFPSCounter(e.stack.Global(), 4, 4)
	}
	return e
}

// Config returns the engine configuration.
func (e *Engine) Config() *Config { return e.cfg }

// Log returns the engine logger.
func (e *Engine) Log() *zap.Logger { return e.log }

// Stack returns the scene stack.
func (e *Engine) Stack() *SceneStack { return e.stack }

// Input returns the shared input state.
func (e *Engine) Input() *InputState { return e.stack.Input() }

// Stats returns the frame statistics, or nil when debugging is off.
func (e *Engine) Stats() *FrameStats { return e.stats }

// Size returns the canvas size in pixels.
func (e *Engine) Size() (w, h float64) { return e.width, e.height }

// Global returns the global layer.
func (e *Engine) Global() *Layer { return e.stack.Global() }

// Current returns the top of the stack, or the global layer.
func (e *Engine) Current() *Layer { return e.stack.Current() }

// NewLayer creates a layer that logs through the engine's logger.
func (e *Engine) NewLayer(opts LayerOptions) *Layer {
	if opts.Log == nil {
		opts.Log = e.log
	}
	return NewLayer(opts)
}

// Push pushes l onto the stack.
func (e *Engine) Push(l *Layer) *Layer { return e.stack.Push(l) }

// Pop pops the top layer.
func (e *Engine) Pop() *Layer { return e.stack.Pop() }

// Start resumes the stack and requests the first frame.
func (e *Engine) Start() { e.stack.Start() }

// Pause pauses the whole stack.
func (e *Engine) Pause() { e.stack.Pause() }

// Resume resumes the whole stack.
func (e *Engine) Resume() { e.stack.Resume() }

// TogglePause flips the stack between paused and running.
func (e *Engine) TogglePause() { e.stack.TogglePause() }

// IsPaused reports whether the stack is paused.
func (e *Engine) IsPaused() bool { return e.stack.IsPaused() }

func (e *Engine) layer(scope Scope) *Layer {
	if scope == ScopeGlobal {
		return e.stack.Global()
	}
	return e.stack.Current()
}

func scopeOf(global bool) Scope {
	if global {
		return ScopeGlobal
	}
	return ScopeCurrent
}

// ScheduleTask schedules fn on the current layer, or on the global layer
// when opts.Global is set, and returns the task id.
func (e *Engine) ScheduleTask(fn func(), opts TaskOptions) string {
	return e.layer(scopeOf(opts.Global)).ScheduleTask(fn, opts)
}

// ClearTask cancels the task with id in the given scope. Unknown ids are
// ignored.
func (e *Engine) ClearTask(id string, scope Scope) {
	e.layer(scope).async.ClearTask(id)
}

// FindTask returns the task with id in the given scope, or nil.
func (e *Engine) FindTask(id string, scope Scope) *Task {
	return e.layer(scope).async.FindTask(id)
}

// PlaySoundEffect plays a one-shot sound on the current (or global) layer.
func (e *Engine) PlaySoundEffect(source string, opts SoundOptions) {
	e.layer(scopeOf(opts.Global)).PlaySoundEffect(source, opts)
}

// PlayMusic plays a music track on the current (or global) layer.
func (e *Engine) PlayMusic(source string, opts SoundOptions) {
	e.layer(scopeOf(opts.Global)).PlayMusic(source, opts)
}

// NewEntity creates a constructed entity carrying the engine's base
// options.
func (e *Engine) NewEntity(group string, opts ...EntityOption) *Entity {
	ent := NewEntity(group)
	for _, opt := range slices.Concat(e.base, opts) {
		opt(ent)
	}
	return ent
}

// Spawn spawns ent into the current layer.
func (e *Engine) Spawn(ent *Entity) *Entity {
	return e.stack.Current().Spawn(ent)
}

// Entities returns the entities of group ("" for all) in the global and
// current layers.
func (e *Engine) Entities(group string) []*Entity {
	return e.stack.Entities(group)
}

// RegisterEntity defines an entity kind. Registering a name again replaces
// the earlier definition.
func (e *Engine) RegisterEntity(name string, defaults []EntityOption, subtypes map[string][]EntityOption) *EntityDef {
	if name == "" {
		panic("codeboard: entity kind needs a name")
	}
	d := &EntityDef{
		name:     name,
		base:     e.base,
		defaults: defaults,
		subtypes: make(map[string][]EntityOption, len(subtypes)),
		engine:   e,
	}
	for sub, opts := range subtypes {
		d.subtypes[sub] = opts
	}
	e.defs[name] = d
	e.log.Debug("entity kind registered", zap.String("kind", name), zap.Int("subtypes", len(subtypes)))
	return d
}

// EntityDef returns the registered kind with the given name, or nil.
func (e *Engine) EntityDef(name string) *EntityDef { return e.defs[name] }

// RegisterEntitySpecs registers every kind in a YAML entity file. Kinds are
// registered in name order.
func (e *Engine) RegisterEntitySpecs(r io.Reader) ([]*EntityDef, error) {
	specs, err := LoadEntityDefs(r)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	slices.Sort(names)

	defs := make([]*EntityDef, 0, len(names))
	for _, name := range names {
		spec := specs[name]
		defaults, err := spec.Defaults.Options()
		if err != nil {
			return nil, fmt.Errorf("entity %s defaults: %w", name, err)
		}
		subtypes := make(map[string][]EntityOption, len(spec.Subtypes))
		for sub, s := range spec.Subtypes {
			opts, err := s.Options()
			if err != nil {
				return nil, fmt.Errorf("entity %s subtype %s: %w", name, sub, err)
			}
			subtypes[sub] = opts
		}
		defs = append(defs, e.RegisterEntity(name, defaults, subtypes))
	}
	return defs, nil
}

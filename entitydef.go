package codeboard

import (
	"fmt"
	"io"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// EntityOption sets fields on an entity under construction.
type EntityOption func(e *Entity)

// WithPosition places the entity.
func WithPosition(x, y float64) EntityOption {
	return func(e *Entity) { e.X, e.Y = x, y }
}

// WithSize sets the entity's diameter.
func WithSize(size float64) EntityOption {
	return func(e *Entity) { e.Size = size }
}

// WithVelocity sets heading (radians) and speed (pixels per second).
func WithVelocity(direction, speed float64) EntityOption {
	return func(e *Entity) { e.Velocity = Velocity{Direction: direction, Speed: speed} }
}

// WithSpeed sets the speed, keeping the heading.
func WithSpeed(speed float64) EntityOption {
	return func(e *Entity) { e.Velocity.Speed = speed }
}

// WithAcceleration sets acceleration and the speed cap.
func WithAcceleration(accel, maxSpeed float64) EntityOption {
	return func(e *Entity) { e.Acceleration, e.MaxSpeed = accel, maxSpeed }
}

// WithColor sets the fill color.
func WithColor(c Color) EntityOption {
	return func(e *Entity) { e.Color = c }
}

// WithShape sets the drawn shape.
func WithShape(s Shape) EntityOption {
	return func(e *Entity) { e.Shape = s }
}

// WithImage draws the named image instead of a shape.
func WithImage(name string) EntityOption {
	return func(e *Entity) { e.Image = name }
}

// WithCollision sets the groups the entity scans for collisions.
func WithCollision(groups ...string) EntityOption {
	return func(e *Entity) { e.CollisionGroups = slices.Clone(groups) }
}

// WithLifespan despawns the entity d after it spawns.
func WithLifespan(d time.Duration) EntityOption {
	return func(e *Entity) { e.Lifespan = d }
}

// WithHP sets HP and MaxHP.
func WithHP(hp float64) EntityOption {
	return func(e *Entity) { e.HP, e.MaxHP = hp, hp }
}

// WithStatic pins the entity on the chosen axes.
func WithStatic(x, y bool) EntityOption {
	return func(e *Entity) { e.StaticX, e.StaticY = x, y }
}

// WithPixelPerfect snaps the entity to pixel centres every tick.
func WithPixelPerfect(on bool) EntityOption {
	return func(e *Entity) { e.PixelPerfect = on }
}

// WithData sets a free-form gameplay field.
func WithData(key string, v any) EntityOption {
	return func(e *Entity) { e.Data[key] = v }
}

// EntityDef is a registered entity kind: a group name, default fields and a
// table of subtypes. Fields are merged in a fixed order, each later step
// overriding the earlier ones: engine base, defaults, subtype, per-spawn
// overrides.
type EntityDef struct {
	name     string
	base     []EntityOption
	defaults []EntityOption
	subtypes map[string][]EntityOption
	engine   *Engine
}

// Name returns the kind's name, which is also its entities' group.
func (d *EntityDef) Name() string { return d.name }

// Subtypes returns the registered subtype names, sorted.
func (d *EntityDef) Subtypes() []string {
	names := make([]string, 0, len(d.subtypes))
	for name := range d.subtypes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// AddSubtype registers (or replaces) a subtype.
func (d *EntityDef) AddSubtype(name string, opts ...EntityOption) {
	d.subtypes[name] = opts
}

// New builds a constructed entity of the given subtype without spawning it.
// An unknown subtype gets just the defaults.
func (d *EntityDef) New(subtype string, overrides ...EntityOption) *Entity {
	e := NewEntity(d.name)
	e.Subtype = subtype
	for _, steps := range [][]EntityOption{d.base, d.defaults, d.subtypes[subtype], overrides} {
		for _, opt := range steps {
			opt(e)
		}
	}
	e.Group = d.name
	return e
}

// Spawn builds an entity and spawns it into the engine's current layer.
func (d *EntityDef) Spawn(subtype string, overrides ...EntityOption) *Entity {
	return d.SpawnIn(d.engine.Current(), subtype, overrides...)
}

// SpawnIn builds an entity and spawns it into l.
func (d *EntityDef) SpawnIn(l *Layer, subtype string, overrides ...EntityOption) *Entity {
	e := d.New(subtype, overrides...)
	e.Spawn(l)
	return e
}

// ForEvery runs fn for every live entity of this kind in the global and
// current layers.
func (d *EntityDef) ForEvery(fn func(e *Entity)) {
	for _, e := range d.engine.Entities(d.name) {
		if e.Spawned() {
			fn(e)
		}
	}
}

// ForEverySubtype runs fn for every live entity of this kind and subtype.
func (d *EntityDef) ForEverySubtype(subtype string, fn func(e *Entity)) {
	d.ForEvery(func(e *Entity) {
		if e.Subtype == subtype {
			fn(e)
		}
	})
}

// EntitySpec is the data-file form of a set of entity fields. Unset fields
// leave whatever an earlier merge step chose.
type EntitySpec struct {
	Size         *float64       `yaml:"size"`
	Speed        *float64       `yaml:"speed"`
	Direction    *float64       `yaml:"direction"` // radians
	Acceleration *float64       `yaml:"acceleration"`
	MaxSpeed     *float64       `yaml:"max_speed"`
	Color        string         `yaml:"color"`
	Shape        string         `yaml:"shape"`
	Image        string         `yaml:"image"`
	Collides     []string       `yaml:"collides"`
	Lifespan     *time.Duration `yaml:"lifespan"`
	HP           *float64       `yaml:"hp"`
	NeededXP     *float64       `yaml:"needed_xp"`
	StaticX      *bool          `yaml:"static_x"`
	StaticY      *bool          `yaml:"static_y"`
	PixelPerfect *bool          `yaml:"pixel_perfect"`
	Rotate       *bool          `yaml:"rotate"`
	Data         map[string]any `yaml:"data"`
}

// Options converts the spec into entity options.
func (s EntitySpec) Options() ([]EntityOption, error) {
	var opts []EntityOption
	setF := func(p *float64, field func(e *Entity) *float64) {
		if p != nil {
			v := *p
			opts = append(opts, func(e *Entity) { *field(e) = v })
		}
	}
	setB := func(p *bool, field func(e *Entity) *bool) {
		if p != nil {
			v := *p
			opts = append(opts, func(e *Entity) { *field(e) = v })
		}
	}

	setF(s.Size, func(e *Entity) *float64 { return &e.Size })
	setF(s.Speed, func(e *Entity) *float64 { return &e.Velocity.Speed })
	setF(s.Direction, func(e *Entity) *float64 { return &e.Velocity.Direction })
	setF(s.Acceleration, func(e *Entity) *float64 { return &e.Acceleration })
	setF(s.MaxSpeed, func(e *Entity) *float64 { return &e.MaxSpeed })
	setF(s.NeededXP, func(e *Entity) *float64 { return &e.NeededXP })
	setB(s.StaticX, func(e *Entity) *bool { return &e.StaticX })
	setB(s.StaticY, func(e *Entity) *bool { return &e.StaticY })
	setB(s.PixelPerfect, func(e *Entity) *bool { return &e.PixelPerfect })
	setB(s.Rotate, func(e *Entity) *bool { return &e.Rotate })

	if s.HP != nil {
		opts = append(opts, WithHP(*s.HP))
	}
	if s.Color != "" {
		c, err := HexColor(s.Color)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithColor(c))
	}
	if s.Shape != "" {
		opts = append(opts, WithShape(ParseShape(s.Shape)))
	}
	if s.Image != "" {
		opts = append(opts, WithImage(s.Image))
	}
	if s.Collides != nil {
		opts = append(opts, WithCollision(s.Collides...))
	}
	if s.Lifespan != nil {
		opts = append(opts, WithLifespan(*s.Lifespan))
	}
	for k, v := range s.Data {
		opts = append(opts, WithData(k, v))
	}
	return opts, nil
}

// EntityKindSpec is the data-file form of one entity kind.
type EntityKindSpec struct {
	Defaults EntitySpec            `yaml:"defaults"`
	Subtypes map[string]EntitySpec `yaml:"subtypes"`
}

type entityDefsFile struct {
	Entities map[string]EntityKindSpec `yaml:"entities"`
}

// LoadEntityDefs decodes entity kinds from YAML:
//
//	entities:
//	  Asteroid:
//	    defaults: {size: 40, speed: 60, color: "#888888", shape: circle}
//	    subtypes:
//	      small: {size: 20, speed: 120}
func LoadEntityDefs(r io.Reader) (map[string]EntityKindSpec, error) {
	var f entityDefsFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("parse entity defs: %w", err)
	}
	return f.Entities, nil
}

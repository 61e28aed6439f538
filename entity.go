package codeboard

import (
	"math"
	"time"
)

// DefaultGroup is the group of entities created without one.
const DefaultGroup = "Entity"

type entityState uint8

const (
	entityConstructed entityState = iota
	entitySpawned
	entityDespawned
)

// Entity is a spawned game object: a position, a size, a velocity, collision
// group membership and lifecycle hooks.
//
// An entity moves through three states: constructed, spawned (registered in
// exactly one layer's SpatialRegistry and ticked every active frame) and
// despawned (terminal). Despawn is idempotent.
type Entity struct {
	// Identity
	ID      string
	Group   string
	Subtype string

	// Motion
	X, Y         float64
	Size         float64
	Velocity     Velocity
	Acceleration float64 // speed gained per second
	MaxSpeed     float64 // caps accelerated speed when positive
	StaticX      bool
	StaticY      bool
	PixelPerfect bool

	// CollisionGroups lists the groups this entity scans for overlaps every
	// update. Overlaps raise OnCollide.
	CollisionGroups []string

	// Lifespan despawns the entity automatically this long after it spawns.
	Lifespan time.Duration

	// Appearance
	Shape          Shape
	Color          Color
	Image          string
	Rotate         bool // rotate to face the velocity direction
	RotationOffset float64
	FlipX, FlipY   bool
	Hidden         bool

	// Stats
	HP, MaxHP    float64
	Level        int
	XP, NeededXP float64

	// Data holds free-form gameplay fields.
	Data map[string]any

	// Hooks (nil by default; zero cost when unused)
	OnSpawn    func(e *Entity)
	OnUpdate   func(e *Entity, dt float64)
	OnCollide  func(e, other *Entity)
	OnDespawn  func(e *Entity)
	OnDraw     func(e *Entity, r Renderer)
	OnLevelUp  func(e *Entity)
	OnKey      func(e *Entity, ev KeyEvent)
	OnMouse    func(e *Entity, ev MouseEvent)
	OnMouseHit func(e *Entity, ev MouseEvent) // mouse events landing on the entity

	layer    *Layer
	state    entityState
	lifeTask string
	bucket   string // group the registry filed the entity under
}

// NewEntity creates a constructed (not yet spawned) entity in the given
// group. An empty group means DefaultGroup.
func NewEntity(group string) *Entity {
	if group == "" {
		group = DefaultGroup
	}
	return &Entity{
		ID:    NewID(),
		Group: group,
		Color: ColorWhite,
		Data:  make(map[string]any),
	}
}

// Layer returns the layer the entity was spawned into, or nil.
func (e *Entity) Layer() *Layer { return e.layer }

// Spawned reports whether the entity is currently registered and ticking.
func (e *Entity) Spawned() bool { return e.state == entitySpawned }

// Despawned reports whether the entity has been despawned.
func (e *Entity) Despawned() bool { return e.state == entityDespawned }

// LifeTaskID returns the id of the lifespan task, if one is armed.
func (e *Entity) LifeTaskID() string { return e.lifeTask }

// Spawn registers the entity into the layer's SpatialRegistry, raises
// OnSpawn and arms the lifespan task. Spawning an entity that has already
// been spawned (or despawned) does nothing. Panics if l is nil.
func (e *Entity) Spawn(l *Layer) {
	if l == nil {
		panic("codeboard: cannot spawn into a nil layer")
	}
	if e.state != entityConstructed {
		return
	}
	if e.Group == "" {
		e.Group = DefaultGroup
	}
	if e.ID == "" {
		e.ID = NewID()
	}
	if e.Acceleration != 0 && e.MaxSpeed == 0 && e.Velocity.Speed > 0 {
		e.MaxSpeed = e.Velocity.Speed
	}
	if e.HP != 0 && e.MaxHP == 0 {
		e.MaxHP = e.HP
	}

	e.layer = l
	e.state = entitySpawned
	l.registry.Add(e)
	l.emit(EntitySpawned, e, nil)
	if e.OnSpawn != nil {
		e.OnSpawn(e)
	}
	if e.Lifespan > 0 && e.state == entitySpawned {
		e.lifeTask = l.async.Schedule(e.Despawn, TaskOptions{Time: e.Lifespan})
	}
}

// Despawn cancels the lifespan task, removes the entity from its registry and
// raises OnDespawn. Calling it again, or on an entity that never spawned, does
// nothing.
func (e *Entity) Despawn() {
	if e.state != entitySpawned {
		return
	}
	e.state = entityDespawned
	if e.lifeTask != "" {
		e.layer.async.ClearTask(e.lifeTask)
		e.lifeTask = ""
	}
	e.layer.registry.Remove(e)
	e.layer.emit(EntityDespawned, e, nil)
	if e.OnDespawn != nil {
		e.OnDespawn(e)
	}
}

// Update advances the entity by dt seconds: acceleration, the OnUpdate hook,
// velocity integration, pixel snapping and the collision scan.
func (e *Entity) Update(dt float64) {
	if e.state != entitySpawned {
		return
	}
	if e.Acceleration != 0 {
		speed := math.Max(e.Velocity.Speed+e.Acceleration*dt, 0)
		if e.MaxSpeed > 0 {
			speed = math.Min(speed, e.MaxSpeed)
		}
		e.Velocity.Speed = speed
	}
	if e.OnUpdate != nil {
		e.OnUpdate(e, dt)
		if e.state != entitySpawned {
			return
		}
	}
	if e.Velocity.Speed != 0 {
		if !e.StaticX {
			e.X += math.Cos(e.Velocity.Direction) * e.Velocity.Speed * dt
		}
		if !e.StaticY {
			e.Y += math.Sin(e.Velocity.Direction) * e.Velocity.Speed * dt
		}
	}
	if e.PixelPerfect {
		e.X = snapPixel(e.X)
		e.Y = snapPixel(e.Y)
	}
	if len(e.CollisionGroups) > 0 {
		e.checkCollisions()
	}
}

// snapPixel rounds v to the nearest pixel centre.
func snapPixel(v float64) float64 {
	return math.Round(v-0.5) + 0.5
}

// checkCollisions raises OnCollide for every member of the scanned groups
// within (e.Size + other.Size) / 2, never for the entity itself.
func (e *Entity) checkCollisions() {
	reg := e.layer.registry
	for _, group := range e.CollisionGroups {
		reg.visit(group, func(other *Entity) bool {
			if group == e.Group && other.ID == e.ID {
				return true
			}
			if DistanceTo(e, other) <= (e.Size+other.Size)/2 {
				e.layer.emit(EntityCollided, e, other)
				e.Collide(other)
			}
			return e.state == entitySpawned
		})
		if e.state != entitySpawned {
			return
		}
	}
}

// Collide raises OnCollide with other.
func (e *Entity) Collide(other *Entity) {
	if e.OnCollide != nil {
		e.OnCollide(e, other)
	}
}

// Draw renders the entity at its position inside a save/restore bracket:
// its image or shape, then the OnDraw hook in entity-local coordinates.
func (e *Entity) Draw(r Renderer) {
	if e.state != entitySpawned || e.Hidden {
		return
	}
	Scoped(r, func() {
		r.Translate(e.X, e.Y)
		if e.Rotate {
			r.Rotate(e.Velocity.Direction + math.Pi/2 + e.RotationOffset)
		}
		half := e.Size / 2
		if e.Image != "" {
			Scoped(r, func() {
				r.Scale(flipSign(e.FlipX), flipSign(e.FlipY))
				r.DrawImage(e.Image, -half, -half, ImageStyle{Width: e.Size, Height: e.Size, Alpha: 1})
			})
		} else {
			drawShape(r, e.Shape, half, Style{Fill: e.Color})
		}
		if e.OnDraw != nil {
			e.OnDraw(e, r)
		}
	})
}

func flipSign(flip bool) float64 {
	if flip {
		return -1
	}
	return 1
}

func drawShape(r Renderer, shape Shape, half float64, s Style) {
	switch shape {
	case ShapeCircle:
		r.DrawCircle(0, 0, half, s)
	case ShapeTriangle:
		r.DrawPolygon([]Vec2{{0, -half}, {-half, half}, {half, half}}, s)
	case ShapeArrow:
		r.DrawPolygon([]Vec2{{0, -half}, {-half, half}, {0, half / 2}, {half, half}}, s)
	default:
		r.DrawRect(-half, -half, half*2, half*2, s)
	}
}

// DistanceTo returns the distance to another entity.
func (e *Entity) DistanceTo(other *Entity) float64 {
	return DistanceTo(e, other)
}

// AngleTowards points the entity's velocity at other.
func (e *Entity) AngleTowards(other *Entity) {
	e.Velocity.Direction = AngleTo(e, other)
}

// Do runs fn against the entity.
func (e *Entity) Do(fn func(e *Entity)) {
	fn(e)
}

// AddXP adds experience and levels the entity up for every NeededXP
// accumulated. With NeededXP unset, experience just accumulates.
func (e *Entity) AddXP(amount float64) {
	e.XP += amount
	if e.NeededXP <= 0 {
		return
	}
	for e.XP >= e.NeededXP {
		e.XP -= e.NeededXP
		e.LevelUp()
	}
}

// LevelUp increments Level and raises OnLevelUp.
func (e *Entity) LevelUp() {
	e.Level++
	if e.OnLevelUp != nil {
		e.OnLevelUp(e)
	}
}

func (e *Entity) key(ev KeyEvent) {
	if e.OnKey != nil {
		e.OnKey(e, ev)
	}
}

func (e *Entity) mouse(ev MouseEvent) {
	if e.OnMouse != nil {
		e.OnMouse(e, ev)
	}
	if e.OnMouseHit != nil && e.state == entitySpawned && DetectCircle(e.X, e.Y, e.Size/2, ev.X, ev.Y) {
		e.OnMouseHit(e, ev)
	}
}

package codeboard

// EntityEventKind identifies an entity lifecycle event.
type EntityEventKind uint8

const (
	EntitySpawned   EntityEventKind = iota // the entity joined a registry
	EntityDespawned                        // the entity left its registry for good
	EntityCollided                         // the entity's collision scan hit Other
)

var entityEventNames = [...]string{"spawned", "despawned", "collided"}

func (k EntityEventKind) String() string {
	if int(k) < len(entityEventNames) {
		return entityEventNames[k]
	}
	return "unknown"
}

// EntityEvent describes an entity lifecycle change. Other fields are only set
// for EntityCollided.
type EntityEvent struct {
	Kind       EntityEventKind
	Layer      string
	EntityID   string
	Group      string
	Subtype    string
	X, Y       float64
	OtherID    string
	OtherGroup string
}

// EventStore receives entity lifecycle events from every layer on a stack.
// See package ecs for an adapter that publishes them into a Donburi world.
type EventStore interface {
	EmitEvent(ev EntityEvent)
}

func (l *Layer) emit(kind EntityEventKind, e, other *Entity) {
	if l.stack == nil || l.stack.events == nil {
		return
	}
	ev := EntityEvent{
		Kind:     kind,
		Layer:    l.id,
		EntityID: e.ID,
		Group:    e.Group,
		Subtype:  e.Subtype,
		X:        e.X,
		Y:        e.Y,
	}
	if other != nil {
		ev.OtherID, ev.OtherGroup = other.ID, other.Group
	}
	l.stack.events.EmitEvent(ev)
}

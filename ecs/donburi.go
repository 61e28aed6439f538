package ecs

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"

	"github.com/codeboardgames/codeboard"
)

// EntityEventType is the Donburi event type carrying codeboard entity
// lifecycle events.
var EntityEventType = events.NewEventType[codeboard.EntityEvent]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EventStore backed by a Donburi world. Events
// are queued on EntityEventType until the world processes them.
func NewDonburiStore(world donburi.World) codeboard.EventStore {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(ev codeboard.EntityEvent) {
	EntityEventType.Publish(s.world, ev)
}

// Counter is a ready-made subscriber that tallies events per group and kind.
// It is handy for HUDs and tests.
type Counter struct {
	counts map[string]map[codeboard.EntityEventKind]int
}

// NewCounter subscribes a Counter to world.
func NewCounter(world donburi.World) *Counter {
	c := &Counter{counts: make(map[string]map[codeboard.EntityEventKind]int)}
	EntityEventType.Subscribe(world, c.handle)
	return c
}

func (c *Counter) handle(_ donburi.World, ev codeboard.EntityEvent) {
	m := c.counts[ev.Group]
	if m == nil {
		m = make(map[codeboard.EntityEventKind]int)
		c.counts[ev.Group] = m
	}
	m[ev.Kind]++
}

// Count returns how many events of kind were processed for group.
func (c *Counter) Count(group string, kind codeboard.EntityEventKind) int {
	return c.counts[group][kind]
}

// Alive returns spawns minus despawns processed for group.
func (c *Counter) Alive(group string) int {
	return c.Count(group, codeboard.EntitySpawned) - c.Count(group, codeboard.EntityDespawned)
}

package codeboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityEventsReachStore(t *testing.T) {
	store := &recordingStore{}
	e, _ := newTestEngine(t, EngineOptions{Events: store})

	rock := NewEntity("Rock")
	rock.Size = 10
	rock.X = 5
	e.Spawn(rock)
	ship := NewEntity("Ship")
	ship.Size = 10
	ship.Subtype = "scout"
	ship.CollisionGroups = []string{"Rock"}
	e.Spawn(ship)

	ship.Update(0.016)
	rock.Despawn()
	rock.Despawn()

	require.Equal(t, []EntityEventKind{EntitySpawned, EntitySpawned, EntityCollided, EntityDespawned}, store.kinds())
	spawned := store.events[1]
	assert.Equal(t, DefaultLayerID, spawned.Layer)
	assert.Equal(t, ship.ID, spawned.EntityID)
	assert.Equal(t, "scout", spawned.Subtype)
	assert.Empty(t, spawned.OtherID)

	hit := store.events[2]
	assert.Equal(t, "Ship", hit.Group)
	assert.Equal(t, rock.ID, hit.OtherID)
	assert.Equal(t, "Rock", hit.OtherGroup)
	assert.Equal(t, 5.0, store.events[3].X)
}

func TestEntityEventsWithoutStore(t *testing.T) {
	l := NewLayer(LayerOptions{})
	assert.NotPanics(t, func() {
		l.Spawn(NewEntity("A")).Despawn()
	})

	s, _ := newTestStack(StackOptions{})
	game := s.Push(NewLayer(LayerOptions{}))
	store := &recordingStore{}
	s.SetEventStore(store)
	game.Spawn(NewEntity("A"))
	s.SetEventStore(nil)
	game.Spawn(NewEntity("A"))
	assert.Len(t, store.events, 1)
}

func TestEntityEventKindString(t *testing.T) {
	assert.Equal(t, "spawned", EntitySpawned.String())
	assert.Equal(t, "collided", EntityCollided.String())
	assert.Equal(t, "unknown", EntityEventKind(7).String())
}

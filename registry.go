package codeboard

import "go.uber.org/zap"

// SpatialRegistry is a layer's entity store: one bucket per group name,
// created lazily on first insert.
//
// Every propagation pass iterates a snapshot of each bucket in descending
// index order and skips entities that despawned before their turn, so
// handlers may spawn and despawn freely. Entities added during a pass are
// first visited by the next pass.
type SpatialRegistry struct {
	buckets map[string][]*Entity
	order   []string // group names in first-registration order
	count   int

	log  *zap.Logger
	bufs [][]*Entity
}

// NewSpatialRegistry creates an empty registry. The logger may be nil.
func NewSpatialRegistry(log *zap.Logger) *SpatialRegistry {
	return &SpatialRegistry{
		buckets: make(map[string][]*Entity),
		log:     orNop(log),
	}
}

// Add inserts e into the bucket for e.Group. The entity stays in that bucket
// until removed, even if its Group field changes. Panics if e is nil.
func (r *SpatialRegistry) Add(e *Entity) {
	if e == nil {
		panic("codeboard: cannot add a nil entity")
	}
	bucket, ok := r.buckets[e.Group]
	if !ok {
		r.order = append(r.order, e.Group)
	}
	r.buckets[e.Group] = append(bucket, e)
	e.bucket = e.Group
	r.count++
}

// Remove deletes the entity with e's id from the bucket it was added to.
// Entities the registry does not hold are ignored.
func (r *SpatialRegistry) Remove(e *Entity) {
	if e == nil {
		return
	}
	bucket := r.buckets[e.bucket]
	for i := len(bucket) - 1; i >= 0; i-- {
		if bucket[i].ID != e.ID {
			continue
		}
		copy(bucket[i:], bucket[i+1:])
		bucket[len(bucket)-1] = nil
		r.buckets[e.bucket] = bucket[:len(bucket)-1]
		r.count--
		return
	}
}

// Entities returns a snapshot of the given group, or of every group
// concatenated in registration order when group is "".
func (r *SpatialRegistry) Entities(group string) []*Entity {
	if group != "" {
		return append([]*Entity(nil), r.buckets[group]...)
	}
	all := make([]*Entity, 0, r.count)
	for _, g := range r.order {
		all = append(all, r.buckets[g]...)
	}
	return all
}

// Find returns the registered entity with the given id, or nil.
func (r *SpatialRegistry) Find(id string) *Entity {
	for _, g := range r.order {
		for _, e := range r.buckets[g] {
			if e.ID == id {
				return e
			}
		}
	}
	return nil
}

// Len returns the number of registered entities.
func (r *SpatialRegistry) Len() int { return r.count }

// Groups returns the names of groups that currently have members, in
// first-registration order.
func (r *SpatialRegistry) Groups() []string {
	groups := make([]string, 0, len(r.order))
	for _, g := range r.order {
		if len(r.buckets[g]) > 0 {
			groups = append(groups, g)
		}
	}
	return groups
}

// Update ticks every registered entity by dt seconds.
func (r *SpatialRegistry) Update(dt float64) {
	r.propagate("update", func(e *Entity) { e.Update(dt) })
}

// Draw draws every registered entity.
func (r *SpatialRegistry) Draw(rd Renderer) {
	r.propagate("draw", func(e *Entity) { e.Draw(rd) })
}

// Key routes a keyboard event to every registered entity.
func (r *SpatialRegistry) Key(ev KeyEvent) {
	r.propagate("key", func(e *Entity) { e.key(ev) })
}

// Mouse routes a mouse event (in world coordinates) to every registered
// entity.
func (r *SpatialRegistry) Mouse(ev MouseEvent) {
	r.propagate("mouse", func(e *Entity) { e.mouse(ev) })
}

// DespawnAll despawns every registered entity.
func (r *SpatialRegistry) DespawnAll() {
	r.propagate("despawn", (*Entity).Despawn)
}

// ForEach calls fn for every registered entity of group ("" for all), with
// the same snapshot rules as propagation.
func (r *SpatialRegistry) ForEach(group string, fn func(e *Entity)) {
	visit := func(e *Entity) bool { fn(e); return true }
	if group != "" {
		r.visit(group, visit)
		return
	}
	for i, n := 0, len(r.order); i < n; i++ {
		r.visit(r.order[i], visit)
	}
}

// propagate runs fn for every entity behind a per-entity panic boundary.
// Groups registered during the pass are left for the next one.
func (r *SpatialRegistry) propagate(event string, fn func(e *Entity)) {
	for i, n := 0, len(r.order); i < n; i++ {
		r.visit(r.order[i], func(e *Entity) bool {
			guard(r.log, "entity "+event, e.ID, func() { fn(e) })
			return true
		})
	}
}

// visit walks a snapshot of group in descending index order, skipping
// entities that are no longer spawned. fn returns false to stop early.
func (r *SpatialRegistry) visit(group string, fn func(e *Entity) bool) {
	bucket := r.buckets[group]
	if len(bucket) == 0 {
		return
	}
	snap := append(r.borrow(), bucket...)
	defer r.giveBack(snap)
	for i := len(snap) - 1; i >= 0; i-- {
		e := snap[i]
		if e.state != entitySpawned {
			continue
		}
		if !fn(e) {
			return
		}
	}
}

// borrow hands out a reusable snapshot buffer. Passes nest (a collision scan
// runs inside an update pass), so buffers are kept on a small stack.
func (r *SpatialRegistry) borrow() []*Entity {
	if n := len(r.bufs); n > 0 {
		b := r.bufs[n-1]
		r.bufs = r.bufs[:n-1]
		return b[:0]
	}
	return nil
}

func (r *SpatialRegistry) giveBack(b []*Entity) {
	clear(b)
	r.bufs = append(r.bufs, b[:0])
}

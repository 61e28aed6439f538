package codeboard

import (
	"math"
	"math/rand/v2"
	"time"
)

// defaultFrameTime is how long each frame of an animated particle shape is
// shown when EmitterConfig.FrameTime is unset.
const defaultFrameTime = 100 * time.Millisecond

// Range is a closed interval sampled uniformly.
type Range struct {
	Min, Max float64
}

func (r Range) random(rng *rand.Rand) float64 {
	if r.Min == r.Max {
		return r.Min
	}
	if rng == nil {
		return r.Min + rand.Float64()*(r.Max-r.Min)
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// ParticleShape is one frame of a pixel-grid particle, row by row. Zero cells
// are transparent; a cell of n draws with palette color n-1.
type ParticleShape [][]uint8

// SquareShape returns a solid n by n shape in the first palette color.
func SquareShape(n int) ParticleShape {
	s := make(ParticleShape, n)
	for y := range s {
		s[y] = make([]uint8, n)
		for x := range s[y] {
			s[y][x] = 1
		}
	}
	return s
}

// particle is per-particle simulation state, pooled by ParticleEmitter.
type particle struct {
	x, y      float64
	heading   float64
	speed     float64
	theta     float64
	spin      float64
	life      float64 // remaining seconds
	maxLife   float64
	frame     int
	frameLeft float64
}

// EmitterConfig controls how an emitter spawns and moves its particles.
type EmitterConfig struct {
	// MaxParticles is the pool size. New particles are dropped when full.
	// Zero means 128.
	MaxParticles int
	// EmitRate is particles spawned per second while the emitter is active.
	EmitRate float64
	// Lifetime is the range of particle lifetimes in seconds. Non-positive
	// samples become one second.
	Lifetime Range
	// Speed is the initial speed range in pixels per second.
	Speed Range
	// Angle is the range of emission headings in radians.
	Angle Range
	// Spin is the range of rotation speeds in radians per second.
	Spin Range
	// Turn bends every particle's heading by this many radians per second.
	Turn float64
	// Accel changes every particle's speed by this much per second.
	Accel float64
	// Gravity is a constant acceleration in pixels per second squared.
	Gravity Vec2

	// Frames animate the particle shape; empty draws a single pixel.
	Frames []ParticleShape
	// FrameTime is how long each frame shows. Zero means 100ms.
	FrameTime time.Duration
	// PixelSize is the side of one shape cell in pixels. Zero means 1.
	PixelSize float64
	// Palette holds the colors shape cells refer to. Empty means white.
	Palette []Color
	// EndColor, when set, tints every cell towards it over the lifetime.
	EndColor Color
	// Fade ramps alpha down to zero over the lifetime.
	Fade bool

	// Seed makes emission reproducible when non-zero.
	Seed uint64
}

// ParticleEmitter spawns short-lived pixel particles at (X, Y). Emitters are
// owned by a layer: they advance with its ticks, freeze when it pauses and
// draw in its world space above its entities.
type ParticleEmitter struct {
	X, Y float64

	config    EmitterConfig
	particles []particle
	alive     int
	emitAccum float64
	active    bool
	rng       *rand.Rand
	layer     *Layer
}

// NewParticleEmitter creates an inactive emitter with a preallocated pool.
func NewParticleEmitter(x, y float64, cfg EmitterConfig) *ParticleEmitter {
	n := cfg.MaxParticles
	if n <= 0 {
		n = 128
	}
	e := &ParticleEmitter{
		X:         x,
		Y:         y,
		config:    cfg,
		particles: make([]particle, n),
	}
	if cfg.Seed != 0 {
		e.rng = rand.New(rand.NewPCG(cfg.Seed, cfg.Seed>>1|1))
	}
	return e
}

// Start begins continuous emission at EmitRate.
func (e *ParticleEmitter) Start() { e.active = true }

// Stop ends continuous emission. Live particles play out.
func (e *ParticleEmitter) Stop() { e.active = false }

// Reset stops emission and kills every live particle.
func (e *ParticleEmitter) Reset() {
	e.active = false
	e.alive = 0
	e.emitAccum = 0
}

// IsActive reports whether the emitter is emitting continuously.
func (e *ParticleEmitter) IsActive() bool { return e.active }

// AliveCount returns the number of live particles.
func (e *ParticleEmitter) AliveCount() int { return e.alive }

// Config returns the emitter's config for live tuning.
func (e *ParticleEmitter) Config() *EmitterConfig { return &e.config }

// Layer returns the layer the emitter is attached to, or nil.
func (e *ParticleEmitter) Layer() *Layer { return e.layer }

// Emit spawns up to n particles at once.
func (e *ParticleEmitter) Emit(n int) {
	for range n {
		if e.alive == len(e.particles) {
			return
		}
		e.spawn()
	}
}

func (e *ParticleEmitter) frameTime() float64 {
	if e.config.FrameTime > 0 {
		return e.config.FrameTime.Seconds()
	}
	return defaultFrameTime.Seconds()
}

// update advances every live particle by dt seconds, swap-removing the dead,
// then emits at EmitRate.
func (e *ParticleEmitter) update(dt float64) {
	cfg := &e.config
	gx, gy := cfg.Gravity.X*dt, cfg.Gravity.Y*dt
	frames := len(cfg.Frames)

	i := 0
	for i < e.alive {
		p := &e.particles[i]
		p.life -= dt
		if p.life <= 0 {
			e.alive--
			e.particles[i] = e.particles[e.alive]
			continue
		}
		p.heading += cfg.Turn * dt
		p.speed += cfg.Accel * dt
		vx := math.Cos(p.heading)*p.speed + gx
		vy := math.Sin(p.heading)*p.speed + gy
		if gx != 0 || gy != 0 {
			p.heading, p.speed = math.Atan2(vy, vx), math.Hypot(vx, vy)
		}
		p.x += vx * dt
		p.y += vy * dt
		p.theta += p.spin * dt
		if frames > 1 {
			p.frameLeft -= dt
			for p.frameLeft <= 0 {
				p.frameLeft += e.frameTime()
				p.frame = (p.frame + 1) % frames
			}
		}
		i++
	}

	if e.active && cfg.EmitRate > 0 {
		e.emitAccum += cfg.EmitRate * dt
		for e.emitAccum >= 1 {
			e.emitAccum--
			if e.alive < len(e.particles) {
				e.spawn()
			}
		}
	}
}

// spawn initialises the particle at slot e.alive.
func (e *ParticleEmitter) spawn() {
	cfg := &e.config
	p := &e.particles[e.alive]
	*p = particle{
		x:         e.X,
		y:         e.Y,
		heading:   cfg.Angle.random(e.rng),
		speed:     cfg.Speed.random(e.rng),
		spin:      cfg.Spin.random(e.rng),
		life:      cfg.Lifetime.random(e.rng),
		frameLeft: e.frameTime(),
	}
	if p.life <= 0 {
		p.life = 1
	}
	p.maxLife = p.life
	e.alive++
}

func (e *ParticleEmitter) draw(r Renderer) {
	cfg := &e.config
	size := cfg.PixelSize
	if size <= 0 {
		size = 1
	}
	for i := range e.alive {
		p := &e.particles[i]
		t := 1 - p.life/p.maxLife
		Scoped(r, func() {
			r.Translate(p.x, p.y)
			if p.theta != 0 {
				r.Rotate(p.theta)
			}
			if len(cfg.Frames) == 0 {
				r.DrawRect(-size/2, -size/2, size, size, Style{Fill: e.color(1, t)})
				return
			}
			shape := cfg.Frames[p.frame%len(cfg.Frames)]
			if len(shape) == 0 {
				return
			}
			ox := (float64(len(shape[0])) - 1) / 2
			oy := (float64(len(shape)) - 1) / 2
			for y, row := range shape {
				for x, v := range row {
					if v == 0 {
						continue
					}
					cx := (float64(x) - ox - 0.5) * size
					cy := (float64(y) - oy - 0.5) * size
					r.DrawRect(cx, cy, size, size, Style{Fill: e.color(v, t)})
				}
			}
		})
	}
}

// color resolves palette entry v at lifetime progress t.
func (e *ParticleEmitter) color(v uint8, t float64) Color {
	c := ColorWhite
	if n := len(e.config.Palette); n > 0 {
		c = e.config.Palette[min(int(v)-1, n-1)]
	}
	if !e.config.EndColor.IsZero() {
		c = c.Lerp(e.config.EndColor, t)
	}
	if e.config.Fade {
		c.A *= 1 - t
	}
	return c
}

// AddEmitter attaches em to the layer. An emitter attached elsewhere moves.
func (l *Layer) AddEmitter(em *ParticleEmitter) *ParticleEmitter {
	if em.layer == l {
		return em
	}
	if em.layer != nil {
		em.layer.RemoveEmitter(em)
	}
	em.layer = l
	l.emitters = append(l.emitters, em)
	return em
}

// RemoveEmitter detaches em. Emitters on other layers are ignored.
func (l *Layer) RemoveEmitter(em *ParticleEmitter) {
	if em.layer != l {
		return
	}
	for i, c := range l.emitters {
		if c == em {
			copy(l.emitters[i:], l.emitters[i+1:])
			l.emitters[len(l.emitters)-1] = nil
			l.emitters = l.emitters[:len(l.emitters)-1]
			break
		}
	}
	em.layer = nil
}

// Emitters returns a snapshot of the layer's emitters.
func (l *Layer) Emitters() []*ParticleEmitter {
	return append([]*ParticleEmitter(nil), l.emitters...)
}

package codeboard

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixed(v float64) Range { return Range{Min: v, Max: v} }

func TestEmitCapsAtPool(t *testing.T) {
	em := NewParticleEmitter(0, 0, EmitterConfig{MaxParticles: 5})
	em.Emit(10)
	assert.Equal(t, 5, em.AliveCount())
	assert.Len(t, NewParticleEmitter(0, 0, EmitterConfig{}).particles, 128)
}

func TestParticleLifetime(t *testing.T) {
	em := NewParticleEmitter(0, 0, EmitterConfig{Lifetime: fixed(0.5)})
	em.Emit(3)
	em.update(0.3)
	assert.Equal(t, 3, em.AliveCount())
	em.update(0.3)
	assert.Zero(t, em.AliveCount())

	unset := NewParticleEmitter(0, 0, EmitterConfig{})
	unset.Emit(1)
	unset.update(0.9)
	assert.Equal(t, 1, unset.AliveCount(), "a zero lifetime lasts one second")
	unset.update(0.2)
	assert.Zero(t, unset.AliveCount())
}

func TestEmitRateAccumulates(t *testing.T) {
	em := NewParticleEmitter(0, 0, EmitterConfig{EmitRate: 10, Lifetime: fixed(5)})
	em.update(0.5)
	assert.Zero(t, em.AliveCount(), "inactive emitters only burst")

	em.Start()
	assert.True(t, em.IsActive())
	em.update(0.1)
	assert.Equal(t, 1, em.AliveCount())
	em.update(0.25)
	assert.Equal(t, 3, em.AliveCount())

	em.Stop()
	em.update(1)
	assert.Equal(t, 3, em.AliveCount())

	em.Start()
	em.Reset()
	assert.False(t, em.IsActive())
	assert.Zero(t, em.AliveCount())
}

func TestParticleMotion(t *testing.T) {
	tests := []struct {
		name  string
		cfg   EmitterConfig
		steps int
		wantX float64
		wantY float64
	}{
		{"straight", EmitterConfig{}, 1, 50, 0},
		{"accel", EmitterConfig{Accel: -100}, 1, 25, 0},
		{"turn", EmitterConfig{Turn: math.Pi}, 1, 0, 50},
		{"gravity", EmitterConfig{Gravity: Vec2{Y: 100}}, 2, 100, 75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.Speed = fixed(100)
			cfg.Lifetime = fixed(10)
			em := NewParticleEmitter(0, 0, cfg)
			em.Emit(1)
			for range tt.steps {
				em.update(0.5)
			}
			p := em.particles[0]
			assert.InDelta(t, tt.wantX, p.x, 1e-9)
			assert.InDelta(t, tt.wantY, p.y, 1e-9)
		})
	}
}

func TestParticleSpinAndFrames(t *testing.T) {
	em := NewParticleEmitter(0, 0, EmitterConfig{
		Lifetime:  fixed(10),
		Spin:      fixed(2),
		Frames:    []ParticleShape{SquareShape(1), SquareShape(2), SquareShape(3)},
		FrameTime: 100 * time.Millisecond,
	})
	em.Emit(1)
	em.update(0.1)
	assert.Equal(t, 1, em.particles[0].frame)
	em.update(0.25)
	assert.Equal(t, 0, em.particles[0].frame, "frames wrap around")
	assert.InDelta(t, 0.7, em.particles[0].theta, 1e-9)
}

func TestParticleDraw(t *testing.T) {
	plus := ParticleShape{{0, 1, 0}, {1, 2, 1}, {0, 1, 0}}
	em := NewParticleEmitter(0, 0, EmitterConfig{Lifetime: fixed(1), Frames: []ParticleShape{plus}, PixelSize: 2})
	em.Emit(2)
	r := newRecordingRenderer()
	em.draw(r)
	assert.Len(t, r.draws(), 10)
	assert.Zero(t, r.depth)
	assert.Equal(t, 2, r.saves)

	dot := NewParticleEmitter(0, 0, EmitterConfig{Lifetime: fixed(1)})
	dot.Emit(3)
	r = newRecordingRenderer()
	dot.draw(r)
	assert.Equal(t, []string{"rect", "rect", "rect"}, r.draws())
}

func TestParticleColor(t *testing.T) {
	red, blue := Color{1, 0, 0, 1}, Color{0, 0, 1, 1}
	em := NewParticleEmitter(0, 0, EmitterConfig{Palette: []Color{red, blue}})
	assert.Equal(t, blue, em.color(2, 0))
	assert.Equal(t, blue, em.color(9, 0), "out of range cells use the last color")

	em.Config().EndColor = ColorBlack
	em.Config().Fade = true
	assert.Equal(t, Color{0.5, 0, 0, 0.5}, em.color(1, 0.5))

	assert.Equal(t, ColorWhite, NewParticleEmitter(0, 0, EmitterConfig{}).color(1, 0.3))
}

func TestSeededEmittersMatch(t *testing.T) {
	cfg := EmitterConfig{Speed: Range{0, 100}, Angle: Range{0, 2 * math.Pi}, Lifetime: Range{1, 2}, Seed: 42}
	a, b := NewParticleEmitter(0, 0, cfg), NewParticleEmitter(0, 0, cfg)
	a.Emit(5)
	b.Emit(5)
	assert.Equal(t, a.particles, b.particles)

	cfg.Seed = 43
	c := NewParticleEmitter(0, 0, cfg)
	c.Emit(5)
	assert.NotEqual(t, a.particles, c.particles)
}

func TestEmitterLayerMembership(t *testing.T) {
	a, b := NewLayer(LayerOptions{}), NewLayer(LayerOptions{})
	em := a.AddEmitter(NewParticleEmitter(0, 0, EmitterConfig{}))
	assert.Same(t, a, em.Layer())

	b.AddEmitter(em)
	b.AddEmitter(em)
	assert.Empty(t, a.Emitters())
	assert.Len(t, b.Emitters(), 1)
	assert.Same(t, b, em.Layer())

	a.RemoveEmitter(em)
	assert.Same(t, b, em.Layer())
	b.RemoveEmitter(em)
	assert.Nil(t, em.Layer())
	assert.Empty(t, b.Emitters())
}

func TestEmittersFreezeWithTheirLayer(t *testing.T) {
	s, clock := newTestStack(StackOptions{})
	game := s.Push(NewLayer(LayerOptions{}))
	em := game.AddEmitter(NewParticleEmitter(0, 0, EmitterConfig{Lifetime: fixed(0.5)}))
	s.Start()
	clock.Tick(100)
	em.Emit(1)

	s.Push(NewLayer(LayerOptions{}))
	clock.Run(10, 100)
	assert.Equal(t, 1, em.AliveCount())

	s.Pop()
	clock.Run(6, 100)
	assert.Zero(t, em.AliveCount())
}

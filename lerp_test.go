package codeboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanema/gween/ease"
)

func TestStartLerpReportsProgress(t *testing.T) {
	m := NewAsyncManager(nil)
	var progress []float64
	l := m.StartLerp(func(p float64) { progress = append(progress, p) }, time.Second, nil)

	m.Update(0.5)
	require.Len(t, progress, 1)
	assert.InDelta(t, 0.5, progress[0], 1e-3)
	assert.False(t, l.Done)

	m.Update(0.6)
	assert.Equal(t, 1.0, progress[1])
	assert.True(t, l.Done)
	assert.Empty(t, m.Lerps())

	m.Update(1)
	assert.Len(t, progress, 2)
}

func TestPropertyLerpWithEasing(t *testing.T) {
	m := NewAsyncManager(nil)
	v := 0.0
	m.PropertyLerp(&v, 10, 20, time.Second, ease.InQuad)
	m.Update(0.5)
	assert.InDelta(t, 12.5, v, 1e-3)
	m.Update(0.5)
	assert.Equal(t, 20.0, v)
}

func TestColorLerp(t *testing.T) {
	m := NewAsyncManager(nil)
	var c Color
	m.ColorLerp(func(got Color) { c = got }, ColorBlack, ColorWhite, time.Second, nil)
	m.Update(0.5)
	assert.InDelta(t, 0.5, c.R, 1e-3)
	assert.Equal(t, 1.0, c.A)
}

func TestLerpCancel(t *testing.T) {
	m := NewAsyncManager(nil)
	calls := 0
	l := m.StartLerp(func(float64) { calls++ }, time.Second, nil)
	m.Update(0.1)
	l.Cancel()
	m.Update(0.1)
	assert.Equal(t, 1, calls)
	assert.Empty(t, m.Lerps())
}

func TestPositionLerpStopsOnDespawn(t *testing.T) {
	l := NewLayer(LayerOptions{})
	e := l.Spawn(NewEntity("Mover"))
	lerp := l.Async().PositionLerp(e, 100, 50, time.Second, nil)

	l.Async().Update(0.5)
	assert.InDelta(t, 50, e.X, 1e-3)
	assert.InDelta(t, 25, e.Y, 1e-3)

	e.Despawn()
	l.Async().Update(0.25)
	assert.InDelta(t, 50, e.X, 1e-3)
	assert.True(t, lerp.Done)
	assert.Empty(t, l.Async().Lerps())
}

func TestStartLerpNilPanics(t *testing.T) {
	m := NewAsyncManager(nil)
	assert.Panics(t, func() { m.StartLerp(nil, time.Second, nil) })
}

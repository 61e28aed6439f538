package codeboard

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Lerp drives a callback with eased progress in [0, 1] over a duration of
// layer time. Lerps are owned by an AsyncManager and advance in its Update,
// so they freeze with their layer.
type Lerp struct {
	tween *gween.Tween
	apply func(progress float64)
	// Done is set once progress has reached 1.
	Done bool

	manager *AsyncManager
}

// update advances the lerp by dt seconds and hands the eased progress to the
// callback.
func (l *Lerp) update(dt float64) {
	if l.Done {
		return
	}
	val, finished := l.tween.Update(float32(dt))
	progress := float64(val)
	if finished {
		progress = 1
	}
	l.apply(clamp(progress, 0, 1))
	if finished {
		l.Done = true
	}
}

// Cancel stops the lerp where it is. No further progress is reported.
func (l *Lerp) Cancel() {
	l.Done = true
	if l.manager != nil {
		l.manager.removeLerp(l)
	}
}

// StartLerp registers a lerp on the manager that reports eased progress to fn
// each update for the given duration. A nil easing function means linear.
func (m *AsyncManager) StartLerp(fn func(progress float64), duration time.Duration, easing ease.TweenFunc) *Lerp {
	if fn == nil {
		panic("codeboard: cannot start a lerp with a nil func")
	}
	if easing == nil {
		easing = ease.Linear
	}
	l := &Lerp{
		tween: gween.New(0, 1, float32(duration.Seconds()), easing),
		apply: fn,
	}
	m.addLerp(l)
	return l
}

// PropertyLerp animates *field from start to end.
func (m *AsyncManager) PropertyLerp(field *float64, start, end float64, duration time.Duration, easing ease.TweenFunc) *Lerp {
	return m.StartLerp(func(p float64) { *field = Interpolate(start, end, p) }, duration, easing)
}

// ColorLerp animates a color from start to end, handing each intermediate
// color to fn.
func (m *AsyncManager) ColorLerp(fn func(Color), start, end Color, duration time.Duration, easing ease.TweenFunc) *Lerp {
	return m.StartLerp(func(p float64) { fn(start.Lerp(end, p)) }, duration, easing)
}

// PositionLerp moves an entity from where it is now to (toX, toY). The lerp
// stops early if the entity despawns.
func (m *AsyncManager) PositionLerp(e *Entity, toX, toY float64, duration time.Duration, easing ease.TweenFunc) *Lerp {
	fromX, fromY := e.X, e.Y
	var l *Lerp
	l = m.StartLerp(func(p float64) {
		if e.Despawned() {
			l.Cancel()
			return
		}
		e.X = Interpolate(fromX, toX, p)
		e.Y = Interpolate(fromY, toY, p)
	}, duration, easing)
	return l
}

package codeboard

import "math"

// signEpsilon treats tiny components left over from trig round-off as zero.
const signEpsilon = 1e-10

// Velocity is a polar velocity: a heading in radians (0 = +X, clockwise on a
// Y-down canvas) and a speed in pixels per second.
type Velocity struct {
	Direction float64
	Speed     float64
}

// VelocityXY builds a Velocity from Cartesian components.
func VelocityXY(vx, vy float64) Velocity {
	return Velocity{Direction: math.Atan2(vy, vx), Speed: math.Hypot(vx, vy)}
}

// X returns the horizontal component.
func (v Velocity) X() float64 {
	return v.Speed * math.Cos(v.Direction)
}

// Y returns the vertical component.
func (v Velocity) Y() float64 {
	return v.Speed * math.Sin(v.Direction)
}

// XY returns both Cartesian components.
func (v Velocity) XY() (float64, float64) {
	return v.X(), v.Y()
}

// SetX replaces the horizontal component, keeping the vertical one.
func (v *Velocity) SetX(vx float64) {
	*v = VelocityXY(vx, v.Y())
}

// SetY replaces the vertical component, keeping the horizontal one.
func (v *Velocity) SetY(vy float64) {
	*v = VelocityXY(v.X(), vy)
}

// XSign returns -1, 0 or 1 for the horizontal component.
func (v Velocity) XSign() int {
	return sign(v.X())
}

// YSign returns -1, 0 or 1 for the vertical component.
func (v Velocity) YSign() int {
	return sign(v.Y())
}

func sign(f float64) int {
	switch {
	case math.Abs(f) < signEpsilon:
		return 0
	case f < 0:
		return -1
	default:
		return 1
	}
}

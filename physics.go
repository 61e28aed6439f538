package codeboard

import "math"

// DetectRect reports whether (px, py) lies inside the rectangle at (x, y) with
// size w by h. Edges count as inside.
func DetectRect(x, y, w, h, px, py float64) bool {
	return px >= x && px <= x+w && py >= y && py <= y+h
}

// DetectCircle reports whether (px, py) lies inside or on the circle.
func DetectCircle(x, y, r, px, py float64) bool {
	dx, dy := x-px, y-py
	return dx*dx+dy*dy <= r*r
}

// DetectCone reports whether (px, py) lies inside a circular sector centred at
// (x, y), facing direction, spanning arc radians, out to radius.
func DetectCone(x, y, direction, arc, radius, px, py float64) bool {
	if !DetectCircle(x, y, radius, px, py) {
		return false
	}
	diff := math.Atan2(py-y, px-x) - direction
	diff = math.Mod(diff+math.Pi, 2*math.Pi)
	if diff < 0 {
		diff += 2 * math.Pi
	}
	return math.Abs(diff-math.Pi) <= arc/2
}

// DistanceTo returns the distance between the centres of two entities.
func DistanceTo(a, b *Entity) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// AngleTo returns the heading from a towards b.
func AngleTo(a, b *Entity) float64 {
	return math.Atan2(b.Y-a.Y, b.X-a.X)
}

// DetectEntity reports whether two entities are within radius of each other.
// A non-positive radius uses the mean of their sizes, the same test the
// collision scan uses.
func DetectEntity(a, b *Entity, radius float64) bool {
	if radius <= 0 {
		radius = (a.Size + b.Size) / 2
	}
	return DistanceTo(a, b) <= radius
}

// OutOfBounds reports whether e is further than padding outside a width by
// height playfield. A negative padding uses the entity's size.
func OutOfBounds(e *Entity, width, height, padding float64) bool {
	if padding < 0 {
		padding = e.Size
	}
	return e.Y < -padding || e.Y > height+padding ||
		e.X < -padding || e.X > width+padding
}

// BoxCollide treats solid as an immovable square and pushes other out along
// each overlapping axis it is moving into, zeroing that velocity component.
// Intended as an OnCollide hook for walls.
func BoxCollide(solid, other *Entity) {
	half := solid.Size / 2
	oh := other.Size / 2
	left, right := solid.X-half, solid.X+half
	top, bottom := solid.Y-half, solid.Y+half

	xOverlap := right > other.X-oh && left < other.X+oh
	yOverlap := bottom > other.Y-oh && top < other.Y+oh

	if xOverlap {
		switch other.Velocity.XSign() {
		case 1:
			other.X = left - oh
			other.Velocity.SetX(0)
		case -1:
			other.X = right + oh
			other.Velocity.SetX(0)
		}
	}
	if yOverlap {
		switch other.Velocity.YSign() {
		case 1:
			other.Y = top - oh
			other.Velocity.SetY(0)
		case -1:
			other.Y = bottom + oh
			other.Velocity.SetY(0)
		}
	}
}

// MovementDirection reads WASD and arrow keys from the input state and
// returns the heading they describe, or ok=false when no direction is held.
// With cardinal set, diagonals collapse to the vertical axis.
func MovementDirection(in *InputState, cardinal bool) (dir float64, ok bool) {
	left := in.Pressed("ArrowLeft") || in.Pressed("KeyA")
	right := in.Pressed("ArrowRight") || in.Pressed("KeyD")
	up := in.Pressed("ArrowUp") || in.Pressed("KeyW")
	down := in.Pressed("ArrowDown") || in.Pressed("KeyS")

	if left && right {
		left, right = false, false
	}
	if up && down {
		up, down = false, false
	}

	switch {
	case !cardinal && up && left:
		return -3 * math.Pi / 4, true
	case !cardinal && up && right:
		return -math.Pi / 4, true
	case !cardinal && down && left:
		return 3 * math.Pi / 4, true
	case !cardinal && down && right:
		return math.Pi / 4, true
	case up:
		return -math.Pi / 2, true
	case down:
		return math.Pi / 2, true
	case left:
		return math.Pi, true
	case right:
		return 0, true
	}
	return 0, false
}

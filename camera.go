package codeboard

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// scrollAnim holds active scroll-to tweens for camera X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Camera is a layer's view into world space. When a layer has a camera, its
// entities are drawn translated so that (X, Y) lands on the canvas centre.
// The UI root is never affected.
type Camera struct {
	// X and Y are the world-space position the camera centers on.
	X, Y float64
	// Zoom is the scale factor (1 = no zoom). Zero is treated as 1.
	Zoom float64
	// Rotation is the camera rotation in radians (clockwise).
	Rotation float64
	// PixelPerfect rounds the camera offset to whole pixels to avoid
	// sub-pixel shimmer.
	PixelPerfect bool

	// BoundsEnabled clamps the camera position so the visible area stays
	// within Bounds.
	BoundsEnabled bool
	Bounds        Rect

	followTarget  *Entity
	followOffsetX float64
	followOffsetY float64
	followLerp    float64

	scrollTween *scrollAnim

	// canvas size seen at the last Apply, used for bounds and conversions
	viewW, viewH float64
}

// NewCamera creates a camera centred on (x, y).
func NewCamera(x, y float64) *Camera {
	return &Camera{X: x, Y: y, Zoom: 1}
}

// Follow makes the camera track an entity with the given offset and lerp
// factor. A lerp of 1 snaps immediately; lower values give smoother
// following. Following stops once the entity despawns.
func (c *Camera) Follow(e *Entity, offsetX, offsetY, lerp float64) {
	c.followTarget = e
	c.followOffsetX = offsetX
	c.followOffsetY = offsetY
	c.followLerp = lerp
}

// Unfollow stops tracking the current target.
func (c *Camera) Unfollow() {
	c.followTarget = nil
}

// Following returns the entity being tracked, or nil.
func (c *Camera) Following() *Entity { return c.followTarget }

// ScrollTo animates the camera to the given world position over duration
// seconds of layer time.
func (c *Camera) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	if easeFn == nil {
		easeFn = ease.Linear
	}
	c.followTarget = nil
	c.scrollTween = &scrollAnim{
		tweenX: gween.New(float32(c.X), float32(x), duration, easeFn),
		tweenY: gween.New(float32(c.Y), float32(y), duration, easeFn),
	}
}

// Scrolling reports whether a ScrollTo animation is in progress.
func (c *Camera) Scrolling() bool { return c.scrollTween != nil }

// SetBounds enables camera bounds clamping.
func (c *Camera) SetBounds(bounds Rect) {
	c.BoundsEnabled = true
	c.Bounds = bounds
}

// ClearBounds disables camera bounds clamping.
func (c *Camera) ClearBounds() {
	c.BoundsEnabled = false
}

// update advances follow, scroll and bounds clamping. Called once per layer
// tick.
func (c *Camera) update(dt float64) {
	if t := c.followTarget; t != nil {
		if t.Despawned() {
			c.followTarget = nil
		} else {
			c.X += (t.X + c.followOffsetX - c.X) * c.followLerp
			c.Y += (t.Y + c.followOffsetY - c.Y) * c.followLerp
		}
	}

	if s := c.scrollTween; s != nil {
		if !s.doneX {
			val, done := s.tweenX.Update(float32(dt))
			c.X = float64(val)
			s.doneX = done
		}
		if !s.doneY {
			val, done := s.tweenY.Update(float32(dt))
			c.Y = float64(val)
			s.doneY = done
		}
		if s.doneX && s.doneY {
			c.scrollTween = nil
		}
	}

	if c.BoundsEnabled {
		c.clampToBounds()
	}
}

func (c *Camera) zoom() float64 {
	if c.Zoom == 0 {
		return 1
	}
	return c.Zoom
}

// clampToBounds restricts camera position so the visible area stays within
// Bounds. Before the first Apply the canvas size is unknown and only the
// centre is clamped.
func (c *Camera) clampToBounds() {
	halfW := c.viewW / (2 * c.zoom())
	halfH := c.viewH / (2 * c.zoom())

	minX := c.Bounds.X + halfW
	maxX := c.Bounds.X + c.Bounds.Width - halfW
	minY := c.Bounds.Y + halfH
	maxY := c.Bounds.Y + c.Bounds.Height - halfH

	// If bounds are smaller than the visible area, center the camera.
	if minX > maxX {
		c.X = c.Bounds.X + c.Bounds.Width/2
	} else {
		c.X = clamp(c.X, minX, maxX)
	}
	if minY > maxY {
		c.Y = c.Bounds.Y + c.Bounds.Height/2
	} else {
		c.Y = clamp(c.Y, minY, maxY)
	}
}

// offset returns the translation that maps the camera position to the canvas
// centre, rounded when PixelPerfect is set.
func (c *Camera) offset(w, h float64) (float64, float64) {
	x, y := w/2, h/2
	if c.PixelPerfect {
		return math.Round(x), math.Round(y)
	}
	return x, y
}

func (c *Camera) position() (float64, float64) {
	if c.PixelPerfect {
		return math.Round(c.X), math.Round(c.Y)
	}
	return c.X, c.Y
}

// Apply composes the view transform onto r:
// Translate(centre) * Scale(zoom) * Rotate(-rotation) * Translate(-X, -Y).
func (c *Camera) Apply(r Renderer) {
	c.viewW, c.viewH = r.Size()
	ox, oy := c.offset(c.viewW, c.viewH)
	px, py := c.position()
	r.Translate(ox, oy)
	if z := c.zoom(); z != 1 {
		r.Scale(z, z)
	}
	if c.Rotation != 0 {
		r.Rotate(-c.Rotation)
	}
	r.Translate(-px, -py)
}

// SetViewport records the canvas size without drawing, so conversions work
// before the first frame.
func (c *Camera) SetViewport(w, h float64) {
	c.viewW, c.viewH = w, h
}

// WorldToScreen converts world coordinates to canvas coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	ox, oy := c.offset(c.viewW, c.viewH)
	px, py := c.position()
	dx, dy := rotate(wx-px, wy-py, -c.Rotation)
	z := c.zoom()
	return ox + dx*z, oy + dy*z
}

// ScreenToWorld converts canvas coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	ox, oy := c.offset(c.viewW, c.viewH)
	px, py := c.position()
	z := c.zoom()
	dx, dy := rotate((sx-ox)/z, (sy-oy)/z, c.Rotation)
	return px + dx, py + dy
}

// VisibleBounds returns the axis-aligned world-space rectangle the camera
// can see.
func (c *Camera) VisibleBounds() Rect {
	x0, y0 := c.ScreenToWorld(0, 0)
	x1, y1 := c.ScreenToWorld(c.viewW, 0)
	x2, y2 := c.ScreenToWorld(c.viewW, c.viewH)
	x3, y3 := c.ScreenToWorld(0, c.viewH)

	minX := math.Min(math.Min(x0, x1), math.Min(x2, x3))
	minY := math.Min(math.Min(y0, y1), math.Min(y2, y3))
	maxX := math.Max(math.Max(x0, x1), math.Max(x2, x3))
	maxY := math.Max(math.Max(y0, y1), math.Max(y2, y3))

	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

func rotate(x, y, theta float64) (float64, float64) {
	if theta == 0 {
		return x, y
	}
	sin, cos := math.Sincos(theta)
	return x*cos - y*sin, x*sin + y*cos
}

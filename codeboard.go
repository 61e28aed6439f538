package codeboard

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// Common colors.
var (
	ColorWhite       = Color{1, 1, 1, 1}
	ColorBlack       = Color{0, 0, 0, 1}
	ColorTransparent = Color{}
)

// IsZero reports whether c is the zero value (fully transparent black). Style
// fields use the zero Color to mean "not set".
func (c Color) IsZero() bool {
	return c == Color{}
}

// RGBA8 returns the color as 8-bit channels.
func (c Color) RGBA8() (r, g, b, a uint8) {
	return channel8(c.R), channel8(c.G), channel8(c.B), channel8(c.A)
}

func channel8(v float64) uint8 {
	return uint8(math.Round(clamp(v, 0, 1) * 255))
}

// Hex formats the color as "#rrggbb", dropping alpha.
func (c Color) Hex() string {
	r, g, b, _ := c.RGBA8()
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// Lerp returns the color t of the way from c to to, per channel.
func (c Color) Lerp(to Color, t float64) Color {
	return Color{
		R: Interpolate(c.R, to.R, t),
		G: Interpolate(c.G, to.G, t),
		B: Interpolate(c.B, to.B, t),
		A: Interpolate(c.A, to.A, t),
	}
}

// HexColor parses "#rgb", "#rrggbb" or "#rrggbbaa" (the leading hash is
// optional).
func HexColor(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 && len(h) != 8 {
		return Color{}, fmt.Errorf("codeboard: invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("codeboard: invalid hex color %q: %w", s, err)
	}
	a := uint64(255)
	if len(h) == 8 {
		a = v & 0xff
		v >>= 8
	}
	return Color{
		R: float64((v>>16)&0xff) / 255,
		G: float64((v>>8)&0xff) / 255,
		B: float64(v&0xff) / 255,
		A: float64(a) / 255,
	}, nil
}

// MustHexColor is like HexColor but panics on malformed input. Intended for
// color literals in game code.
func MustHexColor(s string) Color {
	c, err := HexColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Vec2 is a 2D vector used for positions, offsets and sizes.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return DetectRect(r.X, r.Y, r.Width, r.Height, x, y)
}

// Shape selects how an entity without an image is drawn.
type Shape uint8

const (
	ShapeRect     Shape = iota // filled square of side Size
	ShapeCircle                // filled circle of diameter Size
	ShapeTriangle              // isosceles triangle pointing up
	ShapeArrow                 // arrowhead pointing up
)

var shapeNames = map[string]Shape{
	"rect":     ShapeRect,
	"square":   ShapeRect,
	"circle":   ShapeCircle,
	"triangle": ShapeTriangle,
	"arrow":    ShapeArrow,
}

// ParseShape maps a shape name ("rect", "circle", "triangle", "arrow") to a
// Shape. Unknown names fall back to ShapeRect.
func ParseShape(name string) Shape {
	return shapeNames[strings.ToLower(name)]
}

// Interpolate returns the value progress of the way from start to end.
func Interpolate(start, end, progress float64) float64 {
	return start + progress*(end-start)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

package ebitenhost

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/codeboardgames/codeboard"
)

// circleSegments is the number of edges used to approximate a circle.
const circleSegments = 32

type commandKind uint8

const (
	cmdFill commandKind = iota
	cmdTriangles
	cmdText
	cmdImage
)

// command is one recorded draw call, already transformed to screen space.
type command struct {
	kind  commandKind
	color codeboard.Color
	verts []ebiten.Vertex
	inds  []uint16
	text  string
	x, y  float64
	name  string
	geo   ebiten.GeoM
	alpha float64
}

// Recorder implements codeboard.Renderer by recording commands. The scene
// stack draws into it during Update; Game.Draw replays the commands onto the
// screen. Tessellation happens at record time so the transform stack is
// never consulted during replay.
type Recorder struct {
	geo   ebiten.GeoM
	stack []ebiten.GeoM
	cmds  []command

	width, height float64
	sizes         func(name string) (w, h float64, ok bool)
}

// NewRecorder creates a recorder for a canvas of the given size.
func NewRecorder(width, height float64) *Recorder {
	return &Recorder{width: width, height: height}
}

// Reset drops every recorded command and the transform stack.
func (r *Recorder) Reset() {
	r.geo.Reset()
	r.stack = r.stack[:0]
	clear(r.cmds)
	r.cmds = r.cmds[:0]
}

// Len returns the number of recorded commands.
func (r *Recorder) Len() int { return len(r.cmds) }

// Depth returns the number of unmatched Save calls.
func (r *Recorder) Depth() int { return len(r.stack) }

func (r *Recorder) Save() { r.stack = append(r.stack, r.geo) }

func (r *Recorder) Restore() {
	if len(r.stack) == 0 {
		return
	}
	r.geo = r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
}

// prepend applies m before the current transform, so later calls act in the
// local coordinate space.
func (r *Recorder) prepend(m ebiten.GeoM) {
	m.Concat(r.geo)
	r.geo = m
}

func (r *Recorder) Translate(x, y float64) {
	var m ebiten.GeoM
	m.Translate(x, y)
	r.prepend(m)
}

func (r *Recorder) Scale(sx, sy float64) {
	var m ebiten.GeoM
	m.Scale(sx, sy)
	r.prepend(m)
}

func (r *Recorder) Rotate(theta float64) {
	var m ebiten.GeoM
	m.Rotate(theta)
	r.prepend(m)
}

// Size returns the canvas size.
func (r *Recorder) Size() (float64, float64) { return r.width, r.height }

func (r *Recorder) FillScreen(c codeboard.Color) {
	r.cmds = append(r.cmds, command{kind: cmdFill, color: c})
}

func (r *Recorder) DrawRect(x, y, w, h float64, s codeboard.Style) {
	s = s.Resolved()
	pts := []codeboard.Vec2{{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}}
	r.shape(pts, s)
}

func (r *Recorder) DrawCircle(x, y, radius float64, s codeboard.Style) {
	s = s.Resolved()
	pts := make([]codeboard.Vec2, circleSegments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / circleSegments
		pts[i] = codeboard.Vec2{X: x + radius*math.Cos(a), Y: y + radius*math.Sin(a)}
	}
	r.shape(pts, s)
}

func (r *Recorder) DrawPolygon(points []codeboard.Vec2, s codeboard.Style) {
	if len(points) < 3 {
		return
	}
	r.shape(points, s.Resolved())
}

func (r *Recorder) shape(pts []codeboard.Vec2, s codeboard.Style) {
	if !s.Fill.IsZero() {
		verts, inds := fan(pts, r.geo, s.Fill)
		r.cmds = append(r.cmds, command{kind: cmdTriangles, verts: verts, inds: inds})
	}
	if !s.Stroke.IsZero() && s.StrokeWidth > 0 {
		verts, inds := outline(pts, s.StrokeWidth, r.geo, s.Stroke)
		r.cmds = append(r.cmds, command{kind: cmdTriangles, verts: verts, inds: inds})
	}
}

// DrawText records text at the transformed anchor. Only translation
// applies; the debug font is fixed size.
func (r *Recorder) DrawText(text string, x, y float64, s codeboard.TextStyle) {
	sx, sy := r.geo.Apply(x, y)
	switch s.Align {
	case codeboard.TextAlignCenter:
		sx -= float64(len(text)*debugGlyphWidth) / 2
	case codeboard.TextAlignRight:
		sx -= float64(len(text) * debugGlyphWidth)
	}
	r.cmds = append(r.cmds, command{kind: cmdText, text: text, x: sx, y: sy, color: s.Color})
}

// debugGlyphWidth is the advance of ebitenutil's debug font.
const debugGlyphWidth = 6

func (r *Recorder) DrawImage(name string, x, y float64, s codeboard.ImageStyle) {
	var m ebiten.GeoM
	if r.sizes != nil && (s.Width > 0 || s.Height > 0) {
		if iw, ih, ok := r.sizes(name); ok && iw > 0 && ih > 0 {
			sx, sy := 1.0, 1.0
			if s.Width > 0 {
				sx = s.Width / iw
			}
			if s.Height > 0 {
				sy = s.Height / ih
			}
			m.Scale(sx, sy)
		}
	}
	m.Translate(x, y)
	m.Concat(r.geo)
	alpha := s.Alpha
	if alpha == 0 {
		alpha = 1
	}
	r.cmds = append(r.cmds, command{kind: cmdImage, name: name, geo: m, alpha: alpha})
}

func vertex(geo ebiten.GeoM, x, y float64, c codeboard.Color) ebiten.Vertex {
	dx, dy := geo.Apply(x, y)
	// Premultiplied, as DrawTriangles expects.
	return ebiten.Vertex{
		DstX:   float32(dx),
		DstY:   float32(dy),
		SrcX:   1,
		SrcY:   1,
		ColorR: float32(c.R * c.A),
		ColorG: float32(c.G * c.A),
		ColorB: float32(c.B * c.A),
		ColorA: float32(c.A),
	}
}

// fan triangulates a convex polygon around its first point.
func fan(pts []codeboard.Vec2, geo ebiten.GeoM, c codeboard.Color) ([]ebiten.Vertex, []uint16) {
	verts := make([]ebiten.Vertex, len(pts))
	for i, p := range pts {
		verts[i] = vertex(geo, p.X, p.Y, c)
	}
	inds := make([]uint16, 0, 3*(len(pts)-2))
	for i := 1; i < len(pts)-1; i++ {
		inds = append(inds, 0, uint16(i), uint16(i+1))
	}
	return verts, inds
}

// outline builds one quad per closed-polygon edge, centred on the edge.
func outline(pts []codeboard.Vec2, width float64, geo ebiten.GeoM, c codeboard.Color) ([]ebiten.Vertex, []uint16) {
	verts := make([]ebiten.Vertex, 0, 4*len(pts))
	inds := make([]uint16, 0, 6*len(pts))
	half := width / 2
	for i, a := range pts {
		b := pts[(i+1)%len(pts)]
		dx, dy := b.X-a.X, b.Y-a.Y
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*half, dx/l*half
		base := uint16(len(verts))
		verts = append(verts,
			vertex(geo, a.X+nx, a.Y+ny, c),
			vertex(geo, b.X+nx, b.Y+ny, c),
			vertex(geo, a.X-nx, a.Y-ny, c),
			vertex(geo, b.X-nx, b.Y-ny, c),
		)
		inds = append(inds, base, base+1, base+2, base+1, base+3, base+2)
	}
	return verts, inds
}

func toRGBA(c codeboard.Color) color.RGBA {
	r, g, b, a := c.RGBA8()
	af := c.A
	return color.RGBA{R: uint8(float64(r) * af), G: uint8(float64(g) * af), B: uint8(float64(b) * af), A: a}
}

var whiteSubImage *ebiten.Image

// white returns a source image for solid-colour triangles. The inner pixel
// of a 3x3 image avoids edge bleeding.
func white() *ebiten.Image {
	if whiteSubImage == nil {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		whiteSubImage = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return whiteSubImage
}

// replay draws every recorded command onto dst.
func (r *Recorder) replay(dst *ebiten.Image, images map[string]*ebiten.Image) {
	for i := range r.cmds {
		cmd := &r.cmds[i]
		switch cmd.kind {
		case cmdFill:
			dst.Fill(toRGBA(cmd.color))
		case cmdTriangles:
			if len(cmd.inds) == 0 {
				continue
			}
			var op ebiten.DrawTrianglesOptions
			op.AntiAlias = true
			dst.DrawTriangles(cmd.verts, cmd.inds, white(), &op)
		case cmdText:
			ebitenutil.DebugPrintAt(dst, cmd.text, int(cmd.x), int(cmd.y))
		case cmdImage:
			img, ok := images[cmd.name]
			if !ok {
				continue
			}
			var op ebiten.DrawImageOptions
			op.GeoM = cmd.geo
			op.ColorScale.ScaleAlpha(float32(cmd.alpha))
			dst.DrawImage(img, &op)
		}
	}
}

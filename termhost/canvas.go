package termhost

import (
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/codeboardgames/codeboard"
)

// Canvas implements codeboard.Renderer on a tcell screen. The canvas keeps
// its pixel size; each terminal cell covers a block of pixels and is filled
// when its centre lies inside a shape.
type Canvas struct {
	screen tcell.Screen
	m      affine
	stack  []affine

	width, height float64
	cols, rows    int
}

// NewCanvas creates a canvas of width x height pixels on screen.
func NewCanvas(screen tcell.Screen, width, height float64) *Canvas {
	c := &Canvas{screen: screen, m: identity, width: width, height: height}
	c.resize()
	return c
}

func (c *Canvas) resize() {
	c.cols, c.rows = c.screen.Size()
}

// begin resets the transform and picks up terminal resizes.
func (c *Canvas) begin() {
	c.m = identity
	c.stack = c.stack[:0]
	c.resize()
}

// Depth returns the number of unmatched Save calls.
func (c *Canvas) Depth() int { return len(c.stack) }

func (c *Canvas) Save() { c.stack = append(c.stack, c.m) }

func (c *Canvas) Restore() {
	if len(c.stack) == 0 {
		return
	}
	c.m = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
}

func (c *Canvas) Translate(x, y float64) { c.m = mul(c.m, translation(x, y)) }
func (c *Canvas) Scale(sx, sy float64)   { c.m = mul(c.m, scaling(sx, sy)) }
func (c *Canvas) Rotate(theta float64)   { c.m = mul(c.m, rotation(theta)) }

// Size returns the canvas size in pixels.
func (c *Canvas) Size() (float64, float64) { return c.width, c.height }

func (c *Canvas) cellW() float64 { return c.width / float64(max(c.cols, 1)) }
func (c *Canvas) cellH() float64 { return c.height / float64(max(c.rows, 1)) }

// cellOf returns the cell containing canvas pixel (x, y).
func (c *Canvas) cellOf(x, y float64) (int, int) {
	return int(math.Floor(x / c.cellW())), int(math.Floor(y / c.cellH()))
}

// centre returns the canvas pixel at the centre of cell (col, row).
func (c *Canvas) centre(col, row int) (float64, float64) {
	return (float64(col) + 0.5) * c.cellW(), (float64(row) + 0.5) * c.cellH()
}

// CellToCanvas converts a terminal cell to canvas pixels.
func (c *Canvas) CellToCanvas(col, row int) (float64, float64) { return c.centre(col, row) }

func rgb(col codeboard.Color) tcell.Color {
	r, g, b, _ := col.RGBA8()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func (c *Canvas) FillScreen(col codeboard.Color) {
	c.screen.Fill(' ', tcell.StyleDefault.Background(rgb(col)))
}

func (c *Canvas) paint(col, row int, bg tcell.Color) {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return
	}
	c.screen.SetContent(col, row, ' ', nil, tcell.StyleDefault.Background(bg))
}

func (c *Canvas) DrawRect(x, y, w, h float64, s codeboard.Style) {
	c.shape([]codeboard.Vec2{{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}}, s.Resolved())
}

func (c *Canvas) DrawCircle(x, y, r float64, s codeboard.Style) {
	const segments = 24
	pts := make([]codeboard.Vec2, segments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / segments
		pts[i] = codeboard.Vec2{X: x + r*math.Cos(a), Y: y + r*math.Sin(a)}
	}
	c.shape(pts, s.Resolved())
}

func (c *Canvas) DrawPolygon(points []codeboard.Vec2, s codeboard.Style) {
	if len(points) < 3 {
		return
	}
	c.shape(points, s.Resolved())
}

// shape fills and strokes a polygon given in local coordinates.
func (c *Canvas) shape(local []codeboard.Vec2, s codeboard.Style) {
	pts := make([]codeboard.Vec2, len(local))
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i, p := range local {
		x, y := c.m.apply(p.X, p.Y)
		pts[i] = codeboard.Vec2{X: x, Y: y}
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	stroke := !s.Stroke.IsZero() && s.StrokeWidth > 0
	half := 0.0
	if stroke {
		// A stroke is at least one cell wide so it stays visible.
		half = math.Max(s.StrokeWidth*c.m.scale()/2, math.Max(c.cellW(), c.cellH())/2)
	}

	c0, r0 := c.cellOf(minX-half, minY-half)
	c1, r1 := c.cellOf(maxX+half, maxY+half)
	for row := max(r0, 0); row <= min(r1, c.rows-1); row++ {
		for col := max(c0, 0); col <= min(c1, c.cols-1); col++ {
			px, py := c.centre(col, row)
			switch {
			case stroke && edgeDistance(pts, px, py) <= half:
				c.paint(col, row, rgb(s.Stroke))
			case !s.Fill.IsZero() && inside(pts, px, py):
				c.paint(col, row, rgb(s.Fill))
			}
		}
	}
}

// inside is the even-odd point-in-polygon test.
func inside(pts []codeboard.Vec2, x, y float64) bool {
	in := false
	for i, j := 0, len(pts)-1; i < len(pts); j, i = i, i+1 {
		a, b := pts[i], pts[j]
		if (a.Y > y) != (b.Y > y) && x < (b.X-a.X)*(y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}

// edgeDistance returns the distance from (x, y) to the polygon outline.
func edgeDistance(pts []codeboard.Vec2, x, y float64) float64 {
	best := math.Inf(1)
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		best = math.Min(best, segmentDistance(a, b, x, y))
	}
	return best
}

func segmentDistance(a, b codeboard.Vec2, x, y float64) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	t := 0.0
	if l2 > 0 {
		t = math.Max(0, math.Min(1, ((x-a.X)*dx+(y-a.Y)*dy)/l2))
	}
	return math.Hypot(x-(a.X+t*dx), y-(a.Y+t*dy))
}

// DrawText writes text starting at the cell under the transformed anchor,
// keeping each cell's background.
func (c *Canvas) DrawText(text string, x, y float64, s codeboard.TextStyle) {
	ax, ay := c.m.apply(x, y)
	col, row := c.cellOf(ax, ay)
	runes := []rune(text)
	switch s.Align {
	case codeboard.TextAlignCenter:
		col -= len(runes) / 2
	case codeboard.TextAlignRight:
		col -= len(runes)
	}
	fg := tcell.ColorWhite
	if !s.Color.IsZero() {
		fg = rgb(s.Color)
	}
	if row < 0 || row >= c.rows {
		return
	}
	for i, r := range runes {
		cx := col + i
		if cx < 0 || cx >= c.cols {
			continue
		}
		_, _, st, _ := c.screen.GetContent(cx, row)
		c.screen.SetContent(cx, row, r, nil, st.Foreground(fg))
	}
}

// DrawImage shades the image's bounds. Terminals cannot show pixels, so an
// image without an explicit size covers a single cell.
func (c *Canvas) DrawImage(name string, x, y float64, s codeboard.ImageStyle) {
	w, h := s.Width, s.Height
	if w <= 0 {
		w = c.cellW()
	}
	if h <= 0 {
		h = c.cellH()
	}
	x0, y0 := c.m.apply(x, y)
	x1, y1 := c.m.apply(x+w, y+h)
	c0, r0 := c.cellOf(math.Min(x0, x1), math.Min(y0, y1))
	c1, r1 := c.cellOf(math.Max(x0, x1)-1e-9, math.Max(y0, y1)-1e-9)
	for row := max(r0, 0); row <= min(r1, c.rows-1); row++ {
		for col := max(c0, 0); col <= min(c1, c.cols-1); col++ {
			_, _, st, _ := c.screen.GetContent(col, row)
			c.screen.SetContent(col, row, '▒', nil, st)
		}
	}
}

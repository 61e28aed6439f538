package codeboard

// Style describes how a shape is filled and stroked. Zero colors mean "not
// set"; the hover variants replace their base while the pointer is over a UI
// element.
type Style struct {
	Fill         Color
	Stroke       Color
	StrokeWidth  float64
	HoverFill    Color
	HoverStroke  Color
	HoverWidth   float64
	CornerRadius float64
	Hovered      bool
}

// Resolved returns the style with hover variants applied when Hovered is set.
func (s Style) Resolved() Style {
	if !s.Hovered {
		return s
	}
	if !s.HoverFill.IsZero() {
		s.Fill = s.HoverFill
	}
	if !s.HoverStroke.IsZero() {
		s.Stroke = s.HoverStroke
	}
	if s.HoverWidth > 0 {
		s.StrokeWidth = s.HoverWidth
	}
	return s
}

// TextAlign controls horizontal text alignment.
type TextAlign uint8

const (
	TextAlignLeft   TextAlign = iota // text starts at x (default)
	TextAlignCenter                  // text is centred on x
	TextAlignRight                   // text ends at x
)

// TextStyle describes how text is drawn.
type TextStyle struct {
	Color Color
	Size  float64
	Align TextAlign
	// Width wraps lines longer than this many pixels when positive.
	Width float64
}

// ImageStyle describes how an image is drawn. Zero Width/Height use the
// image's own size.
type ImageStyle struct {
	Width, Height float64
	Alpha         float64
}

// Renderer is the drawing surface the core draws through. Hosts implement it
// (see packages ebitenhost and termhost). Transform calls compose onto the
// current state; Save pushes that state and Restore pops it.
type Renderer interface {
	Save()
	Restore()
	Translate(x, y float64)
	Scale(sx, sy float64)
	Rotate(theta float64)

	FillScreen(c Color)
	DrawRect(x, y, w, h float64, s Style)
	DrawCircle(x, y, r float64, s Style)
	DrawPolygon(points []Vec2, s Style)
	DrawText(text string, x, y float64, s TextStyle)
	DrawImage(name string, x, y float64, s ImageStyle)

	// Size returns the canvas size in pixels.
	Size() (w, h float64)
}

// Scoped runs fn between r.Save and r.Restore. The restore is deferred, so
// transform and style state never leak out of fn, even when fn panics.
func Scoped(r Renderer, fn func()) {
	r.Save()
	defer r.Restore()
	fn()
}

// NopRenderer discards every draw call. Useful for headless simulation.
type NopRenderer struct {
	Width, Height float64
}

func (NopRenderer) Save()                                          {}
func (NopRenderer) Restore()                                       {}
func (NopRenderer) Translate(x, y float64)                         {}
func (NopRenderer) Scale(sx, sy float64)                           {}
func (NopRenderer) Rotate(theta float64)                           {}
func (NopRenderer) FillScreen(c Color)                             {}
func (NopRenderer) DrawRect(x, y, w, h float64, s Style)           {}
func (NopRenderer) DrawCircle(x, y, r float64, s Style)            {}
func (NopRenderer) DrawPolygon(points []Vec2, s Style)             {}
func (NopRenderer) DrawText(t string, x, y float64, s TextStyle)   {}
func (NopRenderer) DrawImage(n string, x, y float64, s ImageStyle) {}

// Size returns the configured canvas size.
func (r NopRenderer) Size() (float64, float64) { return r.Width, r.Height }

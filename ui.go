package codeboard

import (
	"math"
	"time"
	"unicode/utf8"
)

// ElementKind identifies what an Element draws.
type ElementKind uint8

const (
	ElementRoot      ElementKind = iota // invisible container spanning the canvas
	ElementRect                         // rectangle of Width x Height
	ElementCircle                       // circle centred on (X, Y), diameter Width
	ElementText                         // a line (or wrapped block) of text
	ElementImage                        // a named image
	ElementProgress                     // a bar filled Value/Max of its width
	ElementTextInput                    // an editable single-line text field
	ElementScroll                       // a viewport onto taller or wider content
)

// DefaultScrollBarWidth is the scroll bar thickness used when
// Element.ScrollBarWidth is zero.
const DefaultScrollBarWidth = 6

// Element is a node in a layer's UI tree. A single flat struct serves every
// kind of element; fields that do not apply to a kind are ignored.
//
// Positions are relative to the parent element. UI is drawn in screen space,
// on top of the layer's entities, and is never moved by the camera.
type Element struct {
	ID   string
	Kind ElementKind

	// Hierarchy
	Parent   *Element
	children []*Element

	// Geometry
	X, Y          float64
	Width, Height float64

	// Appearance
	Style     Style
	Text      string
	TextStyle TextStyle
	Image     string
	ImgStyle  ImageStyle
	Visible   bool

	// Progress bar
	Value, Max float64
	BarColor   Color

	// Text input
	MaxLength   int
	Placeholder string
	focused     bool

	// Scroll viewport. Children are laid out in content coordinates and
	// shifted by the scroll position.
	ContentWidth, ContentHeight float64
	ScrollX, ScrollY            float64
	ScrollBarWidth              float64
	HideScrollBar               bool

	hovered bool

	// Per-element callbacks (nil by default)
	OnUpdate func(el *Element, dt float64)
	OnDraw   func(el *Element, r Renderer)
	OnClick  func(el *Element, ev MouseEvent)
	OnMouse  func(el *Element, ev MouseEvent)
	OnKey    func(el *Element, ev KeyEvent)
	OnHover  func(el *Element, hovered bool)
	OnChange func(el *Element, text string)
	OnSubmit func(el *Element, text string)
	// OnClose fires when a layer opened by Show is removed from the stack.
	OnClose func(el *Element)

	opened *Layer
	closed bool
}

func newElement(kind ElementKind, x, y, w, h float64) *Element {
	return &Element{
		ID:      NewID(),
		Kind:    kind,
		X:       x,
		Y:       y,
		Width:   w,
		Height:  h,
		Visible: true,
	}
}

// NewRoot creates an invisible root element. Every layer owns one.
func NewRoot() *Element {
	return newElement(ElementRoot, 0, 0, 0, 0)
}

// NewRect creates a rectangle element.
func NewRect(x, y, w, h float64, s Style) *Element {
	el := newElement(ElementRect, x, y, w, h)
	el.Style = s
	return el
}

// NewCircle creates a circle element centred on (x, y).
func NewCircle(x, y, radius float64, s Style) *Element {
	el := newElement(ElementCircle, x, y, radius*2, radius*2)
	el.Style = s
	return el
}

// NewText creates a text element. Width and height are only used for hit
// testing; set them if the text should be clickable.
func NewText(x, y float64, text string, s TextStyle) *Element {
	el := newElement(ElementText, x, y, s.Width, s.Size)
	el.Text = text
	el.TextStyle = s
	return el
}

// NewImage creates an image element.
func NewImage(x, y float64, name string, s ImageStyle) *Element {
	el := newElement(ElementImage, x, y, s.Width, s.Height)
	el.Image = name
	el.ImgStyle = s
	return el
}

// NewProgressBar creates a bar showing value out of max.
func NewProgressBar(x, y, w, h, value, max float64, s Style, bar Color) *Element {
	el := newElement(ElementProgress, x, y, w, h)
	el.Style = s
	el.Value, el.Max = value, max
	el.BarColor = bar
	return el
}

// NewTextInput creates an editable text field. Clicking it takes keyboard
// focus; clicking elsewhere releases it.
func NewTextInput(x, y, w, h float64, s Style, ts TextStyle) *Element {
	el := newElement(ElementTextInput, x, y, w, h)
	el.Style = s
	el.TextStyle = ts
	return el
}

// NewScroll creates a w x h viewport onto content of contentW x contentH.
// Children scroll with the mouse wheel; content that fits needs no scrolling.
func NewScroll(x, y, w, h, contentW, contentH float64, s Style) *Element {
	el := newElement(ElementScroll, x, y, w, h)
	el.Style = s
	el.ContentWidth, el.ContentHeight = contentW, contentH
	return el
}

// NewDialog creates a panel with a centred title, a message and a single
// button along the bottom. The text size sets the scale of the layout.
// Clicking the button closes the dialog; pair it with Show.
func NewDialog(x, y, w, h float64, title, message, button string, s Style, ts TextStyle) *Element {
	scale := ts.Size
	if scale <= 0 {
		scale = 16
	}
	el := NewRect(x, y, w, h, s)

	head := ts
	head.Size, head.Align = scale, TextAlignCenter
	el.AddChild(NewText(w/2, scale/2, title, head))

	body := head
	body.Size = scale / 2
	body.Width = w - scale
	el.AddChild(NewText(w/2, scale*2, message, body))

	btn := NewRect(scale/2, h-scale*1.5, w-scale, scale, s)
	label := head
	label.Size = scale * 0.75
	btn.AddChild(NewText((w-scale)/2, scale*0.125, button, label))
	btn.OnClick = func(*Element, MouseEvent) { el.Close() }
	el.AddChild(btn)
	return el
}

// NewToast shows text over the layer's UI for d, then removes it. The
// countdown runs on the layer's task manager, so it freezes while the layer
// is paused.
func NewToast(l *Layer, x, y float64, text string, ts TextStyle, d time.Duration) *Element {
	el := NewText(x, y, text, ts)
	l.UI().AddChild(el)
	l.ScheduleTask(el.Close, TaskOptions{Time: d})
	return el
}

// --- Tree manipulation ---

// AddChild appends child to this element's children. If child already has a
// parent, it is removed from that parent first. Panics if child is nil or an
// ancestor of el.
func (el *Element) AddChild(child *Element) {
	if child == nil {
		panic("codeboard: cannot add nil element")
	}
	for p := el; p != nil; p = p.Parent {
		if p == child {
			panic("codeboard: adding element would create a cycle")
		}
	}
	if child.Parent != nil {
		child.Parent.removeChild(child)
	}
	child.Parent = el
	el.children = append(el.children, child)
}

// RemoveChild detaches child. Elements that are not children are ignored.
func (el *Element) RemoveChild(child *Element) {
	if child == nil || child.Parent != el {
		return
	}
	el.removeChild(child)
	child.Parent = nil
}

// RemoveFromParent detaches the element from its parent, if any.
func (el *Element) RemoveFromParent() {
	if el.Parent != nil {
		el.Parent.RemoveChild(el)
	}
}

// RemoveChildren detaches every child.
func (el *Element) RemoveChildren() {
	for _, c := range el.children {
		c.Parent = nil
	}
	clear(el.children)
	el.children = el.children[:0]
}

// Children returns a snapshot of the child list.
func (el *Element) Children() []*Element {
	return append([]*Element(nil), el.children...)
}

// NumChildren returns the number of children.
func (el *Element) NumChildren() int { return len(el.children) }

func (el *Element) removeChild(child *Element) {
	for i, c := range el.children {
		if c == child {
			copy(el.children[i:], el.children[i+1:])
			el.children[len(el.children)-1] = nil
			el.children = el.children[:len(el.children)-1]
			return
		}
	}
}

// Hovered reports whether the pointer was over the element at the last mouse
// event.
func (el *Element) Hovered() bool { return el.hovered }

// Focused reports whether a text input has keyboard focus.
func (el *Element) Focused() bool { return el.focused }

// Focus gives a text input keyboard focus.
func (el *Element) Focus() { el.focused = el.Kind == ElementTextInput }

// Blur releases keyboard focus.
func (el *Element) Blur() { el.focused = false }

// ScrollBy moves a scroll viewport by (dx, dy), clamped to its content.
func (el *Element) ScrollBy(dx, dy float64) {
	el.ScrollTo(el.ScrollX+dx, el.ScrollY+dy)
}

// ScrollTo moves a scroll viewport to (x, y), clamped to its content.
func (el *Element) ScrollTo(x, y float64) {
	maxX, maxY := el.scrollRange()
	el.ScrollX = clamp(x, 0, maxX)
	el.ScrollY = clamp(y, 0, maxY)
}

// scrollRange returns how far the content can move in each direction.
func (el *Element) scrollRange() (float64, float64) {
	return max(el.ContentWidth-el.Width, 0), max(el.ContentHeight-el.Height, 0)
}

// scrollOffset is how far children are shifted from the element's origin.
func (el *Element) scrollOffset() (float64, float64) {
	if el.Kind != ElementScroll {
		return 0, 0
	}
	return -el.ScrollX, -el.ScrollY
}

// inView reports whether a child of a scroll viewport overlaps the visible
// part of the content.
func (el *Element) inView(c *Element) bool {
	left, top, right, bottom := c.X, c.Y, c.X+c.Width, c.Y+c.Height
	if c.Kind == ElementCircle {
		r := c.Width / 2
		left, top, right, bottom = c.X-r, c.Y-r, c.X+r, c.Y+r
	}
	return right >= el.ScrollX && left <= el.ScrollX+el.Width &&
		bottom >= el.ScrollY && top <= el.ScrollY+el.Height
}

// contains reports whether the canvas point (px, py) lies on the element,
// given the absolute position of its parent.
func (el *Element) contains(ox, oy, px, py float64) bool {
	x, y := ox+el.X, oy+el.Y
	switch el.Kind {
	case ElementRoot:
		return true
	case ElementCircle:
		return DetectCircle(x, y, el.Width/2, px, py)
	default:
		if el.Width <= 0 || el.Height <= 0 {
			return false
		}
		return DetectRect(x, y, el.Width, el.Height, px, py)
	}
}

// --- Show / Close ---

// Show displays the element. With overlay set it is added to the current
// layer's UI; otherwise a new layer is pushed holding just this element, and
// OnClose fires when that layer is removed. Returns the layer showing it.
func (el *Element) Show(s *SceneStack, overlay bool) *Layer {
	el.closed = false
	if overlay {
		l := s.Current()
		l.UI().AddChild(el)
		return l
	}
	l := NewLayer(LayerOptions{})
	l.UI().AddChild(el)
	l.OnRemove = func(*Layer) {
		if el.opened != l {
			return
		}
		el.opened = nil
		if el.OnClose != nil {
			el.OnClose(el)
		}
	}
	el.opened = l
	s.Push(l)
	return l
}

// Close hides the element: the layer Show opened for it is removed from the
// stack, or the element is detached from the UI it overlays.
func (el *Element) Close() {
	if el.closed {
		return
	}
	el.closed = true
	if l := el.opened; l != nil && l.stack != nil {
		l.stack.Remove(l)
		return
	}
	el.RemoveFromParent()
}

// --- Propagation ---

// Update runs OnUpdate for the element and its subtree.
func (el *Element) Update(dt float64) {
	if el.OnUpdate != nil {
		el.OnUpdate(el, dt)
	}
	for _, c := range el.Children() {
		if c.Parent == el {
			c.Update(dt)
		}
	}
}

// Draw renders the element and its subtree inside a save/restore bracket.
func (el *Element) Draw(r Renderer) {
	if !el.Visible {
		return
	}
	Scoped(r, func() {
		r.Translate(el.X, el.Y)
		el.drawSelf(r)
		if el.OnDraw != nil {
			el.OnDraw(el, r)
		}
		if el.Kind == ElementScroll {
			el.drawContent(r)
			return
		}
		for _, c := range el.children {
			c.Draw(r)
		}
	})
}

func (el *Element) drawContent(r Renderer) {
	el.ScrollTo(el.ScrollX, el.ScrollY)
	Scoped(r, func() {
		r.Translate(el.scrollOffset())
		for _, c := range el.children {
			if el.inView(c) {
				c.Draw(r)
			}
		}
	})
	if el.HideScrollBar {
		return
	}
	bar := el.ScrollBarWidth
	if bar <= 0 {
		bar = DefaultScrollBarWidth
	}
	track := Style{Fill: Color{0.2, 0.2, 0.2, 0.3}}
	thumb := Style{Fill: Color{0.2, 0.2, 0.2, 0.8}}
	maxX, maxY := el.scrollRange()
	if maxY > 0 {
		size := el.Height * el.Height / el.ContentHeight
		top := el.ScrollY / maxY * (el.Height - size)
		r.DrawRect(el.Width-bar, 0, bar, el.Height, track)
		r.DrawRect(el.Width-bar, top, bar, size, thumb)
	}
	if maxX > 0 {
		size := el.Width * el.Width / el.ContentWidth
		left := el.ScrollX / maxX * (el.Width - size)
		r.DrawRect(0, el.Height-bar, el.Width, bar, track)
		r.DrawRect(left, el.Height-bar, size, bar, thumb)
	}
}

func (el *Element) drawSelf(r Renderer) {
	s := el.Style
	s.Hovered = el.hovered
	s = s.Resolved()
	switch el.Kind {
	case ElementRect, ElementScroll:
		r.DrawRect(0, 0, el.Width, el.Height, s)
	case ElementCircle:
		r.DrawCircle(0, 0, el.Width/2, s)
	case ElementText:
		r.DrawText(el.Text, 0, 0, el.TextStyle)
	case ElementImage:
		r.DrawImage(el.Image, 0, 0, el.ImgStyle)
	case ElementProgress:
		r.DrawRect(0, 0, el.Width, el.Height, s)
		if el.Max > 0 {
			w := el.Width * clamp(el.Value/el.Max, 0, 1)
			r.DrawRect(0, 0, w, el.Height, Style{Fill: el.BarColor, CornerRadius: s.CornerRadius})
		}
	case ElementTextInput:
		r.DrawRect(0, 0, el.Width, el.Height, s)
		ts := el.TextStyle
		text := el.Text
		if text == "" && !el.focused {
			text = el.Placeholder
			ts.Color.A *= 0.5
		}
		if el.focused {
			text += "_"
		}
		r.DrawText(text, 4, (el.Height-ts.Size)/2, ts)
	}
}

// Mouse routes a mouse event (canvas coordinates) through the subtree,
// updating hover state and firing click handlers on elements under the
// pointer.
func (el *Element) Mouse(ev MouseEvent) {
	el.mouse(ev, 0, 0)
}

func (el *Element) mouse(ev MouseEvent, ox, oy float64) {
	if !el.Visible {
		return
	}
	inside := el.contains(ox, oy, ev.CanvasX, ev.CanvasY)
	if el.Kind != ElementRoot && inside != el.hovered {
		el.hovered = inside
		if el.OnHover != nil {
			el.OnHover(el, inside)
		}
	}
	if el.OnMouse != nil {
		el.OnMouse(el, ev)
	}
	if ev.Kind == MouseDown && el.Kind == ElementTextInput {
		el.focused = inside
	}
	if ev.Kind == MouseClick && inside && el.Kind != ElementRoot && el.OnClick != nil {
		el.OnClick(el, ev)
	}
	if el.Kind == ElementScroll {
		if ev.Kind == MouseWheel && inside {
			el.ScrollBy(ev.WheelX, ev.WheelY)
		}
		if !inside {
			// Content scrolled out of the viewport cannot be hit.
			ev.CanvasX, ev.CanvasY = math.Inf(-1), math.Inf(-1)
		}
	}
	dx, dy := el.scrollOffset()
	x, y := ox+el.X+dx, oy+el.Y+dy
	for _, c := range el.Children() {
		if c.Parent == el {
			c.mouse(ev, x, y)
		}
	}
}

// Key routes a keyboard event through the subtree. A focused text input
// consumes printable keys, Backspace and Enter.
func (el *Element) Key(ev KeyEvent) {
	if el.focused && ev.Down {
		el.edit(ev)
	}
	if el.OnKey != nil {
		el.OnKey(el, ev)
	}
	for _, c := range el.Children() {
		if c.Parent == el {
			c.Key(ev)
		}
	}
}

func (el *Element) edit(ev KeyEvent) {
	switch ev.Code {
	case "Backspace":
		if el.Text == "" {
			return
		}
		_, size := utf8.DecodeLastRuneInString(el.Text)
		el.Text = el.Text[:len(el.Text)-size]
	case "Enter", "NumpadEnter":
		if el.OnSubmit != nil {
			el.OnSubmit(el, el.Text)
		}
		return
	default:
		if utf8.RuneCountInString(ev.Key) != 1 || ev.Modifiers&(ModCtrl|ModMeta) != 0 {
			return
		}
		if el.MaxLength > 0 && utf8.RuneCountInString(el.Text) >= el.MaxLength {
			return
		}
		el.Text += ev.Key
	}
	if el.OnChange != nil {
		el.OnChange(el, el.Text)
	}
}

// Find returns the element with the given id in the subtree, or nil.
func (el *Element) Find(id string) *Element {
	if el.ID == id {
		return el
	}
	for _, c := range el.children {
		if f := c.Find(id); f != nil {
			return f
		}
	}
	return nil
}

package ebitenhost

import (
	"math"
	"strconv"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/codeboardgames/codeboard"
)

// keyCodes maps ebiten keys to DOM KeyboardEvent.code names.
var keyCodes = func() map[ebiten.Key]string {
	m := map[ebiten.Key]string{
		ebiten.KeySpace:        "Space",
		ebiten.KeyEnter:        "Enter",
		ebiten.KeyEscape:       "Escape",
		ebiten.KeyBackspace:    "Backspace",
		ebiten.KeyTab:          "Tab",
		ebiten.KeyDelete:       "Delete",
		ebiten.KeyArrowLeft:    "ArrowLeft",
		ebiten.KeyArrowRight:   "ArrowRight",
		ebiten.KeyArrowUp:      "ArrowUp",
		ebiten.KeyArrowDown:    "ArrowDown",
		ebiten.KeyShiftLeft:    "ShiftLeft",
		ebiten.KeyShiftRight:   "ShiftRight",
		ebiten.KeyControlLeft:  "ControlLeft",
		ebiten.KeyControlRight: "ControlRight",
		ebiten.KeyAltLeft:      "AltLeft",
		ebiten.KeyAltRight:     "AltRight",
		ebiten.KeyMetaLeft:     "MetaLeft",
		ebiten.KeyMetaRight:    "MetaRight",
		ebiten.KeyMinus:        "Minus",
		ebiten.KeyEqual:        "Equal",
		ebiten.KeyComma:        "Comma",
		ebiten.KeyPeriod:       "Period",
		ebiten.KeySlash:        "Slash",
		ebiten.KeySemicolon:    "Semicolon",
		ebiten.KeyQuote:        "Quote",
		ebiten.KeyBracketLeft:  "BracketLeft",
		ebiten.KeyBracketRight: "BracketRight",
		ebiten.KeyBackslash:    "Backslash",
		ebiten.KeyBackquote:    "Backquote",
	}
	for k := ebiten.KeyA; k <= ebiten.KeyZ; k++ {
		m[k] = "Key" + string(rune('A'+(k-ebiten.KeyA)))
	}
	for k := ebiten.KeyDigit0; k <= ebiten.KeyDigit9; k++ {
		m[k] = "Digit" + string(rune('0'+(k-ebiten.KeyDigit0)))
	}
	for k := ebiten.KeyF1; k <= ebiten.KeyF12; k++ {
		m[k] = "F" + strconv.Itoa(int(k-ebiten.KeyF1)+1)
	}
	return m
}()

// KeyCode returns the DOM code name for k, or "" for unmapped keys.
func KeyCode(k ebiten.Key) string { return keyCodes[k] }

// keyText returns the printable text a key produces with the given
// modifiers, for the keys where that does not depend on layout.
func keyText(k ebiten.Key, mods codeboard.KeyModifiers) string {
	shift := mods&codeboard.ModShift != 0
	switch {
	case k >= ebiten.KeyA && k <= ebiten.KeyZ:
		if shift {
			return string(rune('A' + (k - ebiten.KeyA)))
		}
		return string(rune('a' + (k - ebiten.KeyA)))
	case k >= ebiten.KeyDigit0 && k <= ebiten.KeyDigit9 && !shift:
		return string(rune('0' + (k - ebiten.KeyDigit0)))
	case k == ebiten.KeySpace:
		return " "
	case k == ebiten.KeyMinus && !shift:
		return "-"
	case k == ebiten.KeyPeriod && !shift:
		return "."
	case k == ebiten.KeyComma && !shift:
		return ","
	}
	return ""
}

// readModifiers reads the current keyboard modifier state.
func readModifiers() codeboard.KeyModifiers {
	var mods codeboard.KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= codeboard.ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= codeboard.ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= codeboard.ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= codeboard.ModMeta
	}
	return mods
}

// Double clicks must land within this window and distance.
const (
	dblClickTime = 300 * time.Millisecond
	dblClickDist = 4.0
)

var mouseButtons = [...]struct {
	eb ebiten.MouseButton
	cb codeboard.MouseButton
}{
	{ebiten.MouseButtonLeft, codeboard.MouseButtonLeft},
	{ebiten.MouseButtonRight, codeboard.MouseButtonRight},
	{ebiten.MouseButtonMiddle, codeboard.MouseButtonMiddle},
}

// pointer tracks the mouse between ticks so moves and clicks can be
// synthesized.
type pointer struct {
	x, y      float64
	seen      bool
	down      [len(mouseButtons)]bool
	lastClick time.Time
	clickX    float64
	clickY    float64
}

// inputReader turns ebiten's polled state into codeboard events.
type inputReader struct {
	keys []ebiten.Key
	ptr  pointer
	now  func() time.Time
}

func newInputReader() *inputReader {
	return &inputReader{now: time.Now}
}

// poll delivers everything that changed since the previous tick.
func (in *inputReader) poll(s *codeboard.SceneStack) {
	mods := readModifiers()

	in.keys = inpututil.AppendJustPressedKeys(in.keys[:0])
	for _, k := range in.keys {
		code := KeyCode(k)
		if code == "" {
			continue
		}
		s.KeyDown(codeboard.KeyEvent{Code: code, Key: keyText(k, mods), Modifiers: mods})
	}
	in.keys = inpututil.AppendJustReleasedKeys(in.keys[:0])
	for _, k := range in.keys {
		if code := KeyCode(k); code != "" {
			s.KeyUp(codeboard.KeyEvent{Code: code, Modifiers: mods})
		}
	}

	cx, cy := ebiten.CursorPosition()
	in.mouse(s, float64(cx), float64(cy), mods)
}

func (in *inputReader) mouse(s *codeboard.SceneStack, x, y float64, mods codeboard.KeyModifiers) {
	ev := codeboard.MouseEvent{CanvasX: x, CanvasY: y, Modifiers: mods}
	if in.ptr.seen && (x != in.ptr.x || y != in.ptr.y) {
		ev.Kind = codeboard.MouseMove
		s.Mouse(ev)
	}
	in.ptr.x, in.ptr.y, in.ptr.seen = x, y, true

	for i, b := range mouseButtons {
		ev.Button = b.cb
		switch {
		case inpututil.IsMouseButtonJustPressed(b.eb):
			in.ptr.down[i] = true
			ev.Kind = codeboard.MouseDown
			s.Mouse(ev)
		case inpututil.IsMouseButtonJustReleased(b.eb):
			ev.Kind = codeboard.MouseUp
			s.Mouse(ev)
			if in.ptr.down[i] {
				in.ptr.down[i] = false
				in.click(s, ev)
			}
		}
	}

	if wx, wy := ebiten.Wheel(); wx != 0 || wy != 0 {
		ev.Kind = codeboard.MouseWheel
		ev.WheelX, ev.WheelY = wx, wy
		s.Mouse(ev)
	}
}

func (in *inputReader) click(s *codeboard.SceneStack, ev codeboard.MouseEvent) {
	ev.Kind = codeboard.MouseClick
	s.Mouse(ev)
	if ev.Button != codeboard.MouseButtonLeft {
		return
	}
	now := in.now()
	if now.Sub(in.ptr.lastClick) <= dblClickTime &&
		math.Hypot(ev.CanvasX-in.ptr.clickX, ev.CanvasY-in.ptr.clickY) <= dblClickDist {
		ev.Kind = codeboard.MouseDblClick
		s.Mouse(ev)
		in.ptr.lastClick = time.Time{}
		return
	}
	in.ptr.lastClick, in.ptr.clickX, in.ptr.clickY = now, ev.CanvasX, ev.CanvasY
}

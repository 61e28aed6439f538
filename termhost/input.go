package termhost

import (
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/codeboardgames/codeboard"
)

var specialKeys = map[tcell.Key]string{
	tcell.KeyUp:         "ArrowUp",
	tcell.KeyDown:       "ArrowDown",
	tcell.KeyLeft:       "ArrowLeft",
	tcell.KeyRight:      "ArrowRight",
	tcell.KeyEnter:      "Enter",
	tcell.KeyEscape:     "Escape",
	tcell.KeyTab:        "Tab",
	tcell.KeyBackspace:  "Backspace",
	tcell.KeyBackspace2: "Backspace",
	tcell.KeyDelete:     "Delete",
	tcell.KeyF1:         "F1",
	tcell.KeyF2:         "F2",
	tcell.KeyF3:         "F3",
	tcell.KeyF4:         "F4",
	tcell.KeyF5:         "F5",
	tcell.KeyF6:         "F6",
	tcell.KeyF7:         "F7",
	tcell.KeyF8:         "F8",
	tcell.KeyF9:         "F9",
	tcell.KeyF10:        "F10",
	tcell.KeyF11:        "F11",
	tcell.KeyF12:        "F12",
}

var punctuation = map[rune]string{
	'-': "Minus", '=': "Equal", ',': "Comma", '.': "Period", '/': "Slash",
	';': "Semicolon", '\'': "Quote", '[': "BracketLeft", ']': "BracketRight",
	'\\': "Backslash", '`': "Backquote",
}

func modifiers(m tcell.ModMask) codeboard.KeyModifiers {
	var mods codeboard.KeyModifiers
	if m&tcell.ModShift != 0 {
		mods |= codeboard.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		mods |= codeboard.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		mods |= codeboard.ModAlt
	}
	if m&tcell.ModMeta != 0 {
		mods |= codeboard.ModMeta
	}
	return mods
}

// keyEvent converts a tcell key to a codeboard key event. Reports false for
// keys with no DOM code.
func keyEvent(ev *tcell.EventKey) (codeboard.KeyEvent, bool) {
	mods := modifiers(ev.Modifiers())
	if ev.Key() != tcell.KeyRune {
		code, ok := specialKeys[ev.Key()]
		return codeboard.KeyEvent{Code: code, Modifiers: mods}, ok
	}
	r := ev.Rune()
	ke := codeboard.KeyEvent{Key: string(r), Modifiers: mods}
	switch {
	case r == ' ':
		ke.Code = "Space"
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		ke.Code = "Key" + string(unicode.ToUpper(r))
		if unicode.IsUpper(r) {
			ke.Modifiers |= codeboard.ModShift
		}
	case r >= '0' && r <= '9':
		ke.Code = "Digit" + string(r)
	default:
		code, ok := punctuation[r]
		if !ok {
			return ke, false
		}
		ke.Code = code
	}
	return ke, true
}

// mouseState synthesizes down/up/click/move events from tcell's button
// bitmask, which only reports what is currently held.
type mouseState struct {
	buttons tcell.ButtonMask
	x, y    float64
	seen    bool
}

var buttonMap = [...]struct {
	tc tcell.ButtonMask
	cb codeboard.MouseButton
}{
	{tcell.Button1, codeboard.MouseButtonLeft},
	{tcell.Button2, codeboard.MouseButtonMiddle},
	{tcell.Button3, codeboard.MouseButtonRight},
}

// events returns the codeboard events for one tcell mouse event at canvas
// position (x, y).
func (m *mouseState) events(ev *tcell.EventMouse, x, y float64) []codeboard.MouseEvent {
	mods := modifiers(ev.Modifiers())
	base := codeboard.MouseEvent{CanvasX: x, CanvasY: y, Modifiers: mods}
	var out []codeboard.MouseEvent

	if m.seen && (x != m.x || y != m.y) {
		e := base
		e.Kind = codeboard.MouseMove
		out = append(out, e)
	}
	m.x, m.y, m.seen = x, y, true

	btns := ev.Buttons()
	for _, b := range buttonMap {
		was, now := m.buttons&b.tc != 0, btns&b.tc != 0
		e := base
		e.Button = b.cb
		switch {
		case now && !was:
			e.Kind = codeboard.MouseDown
			out = append(out, e)
		case was && !now:
			e.Kind = codeboard.MouseUp
			out = append(out, e)
			e.Kind = codeboard.MouseClick
			out = append(out, e)
		}
	}
	m.buttons = btns & (tcell.Button1 | tcell.Button2 | tcell.Button3)

	if btns&(tcell.WheelUp|tcell.WheelDown) != 0 {
		e := base
		e.Kind = codeboard.MouseWheel
		if btns&tcell.WheelUp != 0 {
			e.WheelY = 1
		} else {
			e.WheelY = -1
		}
		out = append(out, e)
	}
	return out
}

package codeboard

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

// KeyEvent is a normalized keyboard event. Code names the physical key using
// DOM KeyboardEvent.code names ("KeyA", "ArrowLeft", "Space", "Digit1");
// Key is the printable text it produced, if any.
type KeyEvent struct {
	Code      string
	Key       string
	Down      bool
	Modifiers KeyModifiers
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// MouseKind identifies a kind of mouse event.
type MouseKind uint8

const (
	MouseDown     MouseKind = iota // a button was pressed
	MouseUp                        // a button was released
	MouseMove                      // the pointer moved
	MouseClick                     // press then release
	MouseDblClick                  // two clicks in quick succession
	MouseWheel                     // wheel scrolled; see WheelX/WheelY
)

var mouseKindNames = [...]string{"down", "up", "move", "click", "dblclick", "wheel"}

func (k MouseKind) String() string {
	if int(k) < len(mouseKindNames) {
		return mouseKindNames[k]
	}
	return "unknown"
}

// MouseEvent is a normalized mouse event. CanvasX/CanvasY are canvas pixel
// coordinates. X/Y start equal to them and are rewritten to world
// coordinates when the event crosses into a layer's entity space.
type MouseEvent struct {
	Kind             MouseKind
	CanvasX, CanvasY float64
	X, Y             float64
	Button           MouseButton
	WheelX, WheelY   float64
	Modifiers        KeyModifiers
}

// InputState is the shared view of the keyboard and mouse: which keys are
// held and where the pointer last was. The scene stack updates it before
// routing each event.
type InputState struct {
	keys    map[string]bool
	buttons [3]bool
	MouseX  float64
	MouseY  float64
}

// NewInputState returns an empty input state.
func NewInputState() *InputState {
	return &InputState{keys: make(map[string]bool)}
}

// Pressed reports whether the key with the given code is held.
func (in *InputState) Pressed(code string) bool {
	return in.keys[code]
}

// ButtonPressed reports whether a mouse button is held.
func (in *InputState) ButtonPressed(b MouseButton) bool {
	return int(b) < len(in.buttons) && in.buttons[b]
}

// PressedKeys returns the codes of every held key, in no particular order.
func (in *InputState) PressedKeys() []string {
	codes := make([]string, 0, len(in.keys))
	for code, down := range in.keys {
		if down {
			codes = append(codes, code)
		}
	}
	return codes
}

func (in *InputState) applyKey(e KeyEvent) {
	in.keys[e.Code] = e.Down
}

func (in *InputState) applyMouse(e MouseEvent) {
	in.MouseX, in.MouseY = e.CanvasX, e.CanvasY
	if int(e.Button) >= len(in.buttons) {
		return
	}
	switch e.Kind {
	case MouseDown:
		in.buttons[e.Button] = true
	case MouseUp:
		in.buttons[e.Button] = false
	}
}

// releaseAll forgets every held key and button. Called when the host loses
// focus, since the matching key-up events will never arrive.
func (in *InputState) releaseAll() {
	clear(in.keys)
	in.buttons = [3]bool{}
}

// KeyBindings maps key codes to actions.
type KeyBindings map[string]func()

// Bind attaches fn to the key code, replacing any previous binding.
func (b KeyBindings) Bind(code string, fn func()) {
	b[code] = fn
}

// Unbind removes the binding for code.
func (b KeyBindings) Unbind(code string) {
	delete(b, code)
}

func (b KeyBindings) dispatch(code string) {
	if fn := b[code]; fn != nil {
		fn()
	}
}

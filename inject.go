package codeboard

// injectedEvent is a single queued synthetic input event. Exactly one of
// key and mouse is set.
type injectedEvent struct {
	key   *KeyEvent
	mouse *MouseEvent
}

// Injector queues synthetic input for a SceneStack. One event is delivered
// at the start of each frame, before any layer updates, through the same
// routing real input takes. Canvas coordinates are used, matching what a
// player sees.
type Injector struct {
	queue []injectedEvent
}

// Pending returns the number of queued events.
func (in *Injector) Pending() int { return len(in.queue) }

// Clear drops every queued event.
func (in *Injector) Clear() {
	clear(in.queue)
	in.queue = in.queue[:0]
}

func (in *Injector) pushKey(ev KeyEvent) {
	in.queue = append(in.queue, injectedEvent{key: &ev})
}

func (in *Injector) pushMouse(kind MouseKind, x, y float64) {
	in.queue = append(in.queue, injectedEvent{mouse: &MouseEvent{
		Kind:    kind,
		CanvasX: x,
		CanvasY: y,
		Button:  MouseButtonLeft,
	}})
}

// InjectKeyDown queues a key press.
func (in *Injector) InjectKeyDown(code, key string) {
	in.pushKey(KeyEvent{Code: code, Key: key, Down: true})
}

// InjectKeyUp queues a key release.
func (in *Injector) InjectKeyUp(code string) {
	in.pushKey(KeyEvent{Code: code})
}

// InjectKey queues a press followed by a release. Consumes two frames.
func (in *Injector) InjectKey(code, key string) {
	in.InjectKeyDown(code, key)
	in.InjectKeyUp(code)
}

// InjectPress queues a left-button press at the given canvas coordinates.
func (in *Injector) InjectPress(x, y float64) {
	in.pushMouse(MouseDown, x, y)
}

// InjectMove queues a pointer move.
func (in *Injector) InjectMove(x, y float64) {
	in.pushMouse(MouseMove, x, y)
}

// InjectRelease queues a left-button release.
func (in *Injector) InjectRelease(x, y float64) {
	in.pushMouse(MouseUp, x, y)
}

// InjectClick queues a press, a release and the click they make. Consumes
// three frames.
func (in *Injector) InjectClick(x, y float64) {
	in.InjectPress(x, y)
	in.InjectRelease(x, y)
	in.pushMouse(MouseClick, x, y)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY), linearly
// interpolated moves over frames-2 intermediate frames, and release at
// (toX, toY). The total sequence consumes frames frames; the minimum is 2.
func (in *Injector) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	in.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		in.InjectMove(Interpolate(fromX, toX, t), Interpolate(fromY, toY, t))
	}
	in.InjectRelease(toX, toY)
}

// step pops one event and routes it through s. Reports whether an event
// was delivered.
func (in *Injector) step(s *SceneStack) bool {
	if len(in.queue) == 0 {
		return false
	}
	ev := in.queue[0]
	copy(in.queue, in.queue[1:])
	in.queue[len(in.queue)-1] = injectedEvent{}
	in.queue = in.queue[:len(in.queue)-1]

	switch {
	case ev.key != nil && ev.key.Down:
		s.KeyDown(*ev.key)
	case ev.key != nil:
		s.KeyUp(*ev.key)
	case ev.mouse != nil:
		s.Mouse(*ev.mouse)
	}
	return true
}

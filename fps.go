package codeboard

import (
	"fmt"
	"time"
)

// fpsInterval is how often the counter refreshes, in layer time.
const fpsInterval = 500 * time.Millisecond

// NewFPSCounter adds a text element to l's UI that shows frames drawn per
// second, refreshed twice a second by a looping task. Clearing the returned
// task id stops the refresh.
func NewFPSCounter(l *Layer, x, y float64) (*Element, string) {
	el := NewText(x, y, "FPS: -", TextStyle{Color: ColorWhite, Size: 12})
	var frames int
	el.OnDraw = func(*Element, Renderer) { frames++ }
	l.UI().AddChild(el)

	id := l.ScheduleTask(func() {
		el.Text = fmt.Sprintf("FPS: %.1f", float64(frames)/fpsInterval.Seconds())
		frames = 0
	}, TaskOptions{Time: fpsInterval, Loop: true})
	return el, id
}

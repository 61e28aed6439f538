package codeboard

import "time"

// TaskOptions configures AsyncManager.Schedule and Engine.ScheduleTask.
type TaskOptions struct {
	// ID names the task. Scheduling with the ID of a live task updates that
	// task in place instead of creating a second one. Empty means a fresh id.
	ID string
	// Time is the countdown before the callback fires.
	Time time.Duration
	// Loop re-arms the task with the full Time after every firing.
	Loop bool
	// Immediate runs the callback once synchronously when scheduled, in
	// addition to the countdown.
	Immediate bool
	// Delay postpones the start of the countdown. The task exists (and can be
	// found or cleared by ID) during the delay.
	Delay time.Duration
	// Expires clears the task after this long, even if it loops.
	Expires time.Duration
	// Global targets the global layer instead of the current one. Only
	// consulted by Engine.ScheduleTask.
	Global bool
}

// Task is a cancelable, pausable, optionally looping delayed callback owned by
// an AsyncManager.
//
// While running, elapsed time is derived from the manager's clock and the
// cycle start; while paused, the frozen remainder is authoritative.
type Task struct {
	id       string
	fn       func()
	duration time.Duration
	loop     bool

	paused    bool
	start     time.Duration
	remaining time.Duration

	timer   *timer
	manager *AsyncManager
}

func newTask(m *AsyncManager, fn func(), opts TaskOptions) *Task {
	return &Task{
		id:        idOr(opts.ID),
		fn:        fn,
		duration:  opts.Time,
		loop:      opts.Loop,
		start:     m.timers.Now(),
		remaining: opts.Time,
		manager:   m,
	}
}

// ID returns the task's identifier.
func (t *Task) ID() string { return t.id }

// Duration returns the full countdown of one cycle.
func (t *Task) Duration() time.Duration { return t.duration }

// Loop reports whether the task re-arms after firing.
func (t *Task) Loop() bool { return t.loop }

// IsPaused reports whether the task's countdown is frozen.
func (t *Task) IsPaused() bool { return t.paused }

// arm starts a countdown of delay. The cycle start is placed so that
// elapsed + remaining always equals the full duration.
func (t *Task) arm(delay time.Duration) {
	if t.paused {
		return
	}
	now := t.manager.timers.Now()
	t.start = now - (t.duration - delay)
	t.timer.Stop()
	t.timer = t.manager.timers.AfterFunc(delay, t.fire)
}

func (t *Task) fire() {
	if t.paused {
		return
	}
	deadline := t.timer.when
	t.timer = nil
	t.manager.run(t)
	m := t.manager
	if m == nil || t.timer != nil {
		// Cleared or re-armed by the callback.
		return
	}
	if !t.loop {
		m.remove(t)
		return
	}
	// The next cycle runs from the deadline, not from the frame that noticed
	// it, so frame granularity never accumulates into drift.
	next := max(t.duration-(m.timers.Now()-deadline), 0)
	if t.paused {
		t.remaining = next
		return
	}
	t.arm(next)
}

// Pause freezes the countdown. No-op if already paused.
func (t *Task) Pause() {
	if t.paused {
		return
	}
	t.remaining = t.Peek()
	t.paused = true
	t.timer.Stop()
	t.timer = nil
}

// Resume re-arms the countdown with whatever time remained when it was paused.
// On a running task it re-arms with the current remainder, which changes
// nothing observable.
func (t *Task) Resume() {
	if t.manager == nil {
		return
	}
	remaining := t.Peek()
	t.paused = false
	t.arm(remaining)
}

// Refresh pauses and resumes the task so that changed fields take effect.
// No-op while paused.
func (t *Task) Refresh() {
	if t.paused {
		return
	}
	t.Pause()
	t.Resume()
}

// Peek returns the time left in the current cycle.
func (t *Task) Peek() time.Duration {
	if t.paused || t.manager == nil {
		return t.remaining
	}
	t.remaining = t.duration - (t.manager.timers.Now() - t.start)
	return t.remaining
}

// Elapsed returns the time spent in the current cycle.
func (t *Task) Elapsed() time.Duration {
	return t.duration - t.Peek()
}

// Extend lengthens the current cycle (and every later one) by d and resumes
// the task.
func (t *Task) Extend(d time.Duration) {
	if t.paused {
		t.remaining += d
	}
	t.duration += d
	t.Resume()
}

// restart replaces the task's parameters and restarts its countdown from the
// full (new) duration.
func (t *Task) restart(fn func(), opts TaskOptions) {
	t.fn = fn
	t.duration = opts.Time
	t.loop = opts.Loop
	if t.paused {
		t.remaining = t.duration
		return
	}
	t.arm(t.duration)
}

package codeboard

import (
	"go.uber.org/zap"
)

// SoundOptions tunes a sound effect or music track.
type SoundOptions struct {
	// Volume is a gain offset in the player's units; zero leaves the source
	// unchanged.
	Volume float64
	// Rate is the playback speed multiplier; zero means 1.
	Rate float64
	// Global targets the global layer. Only consulted by Engine helpers.
	Global bool
}

// AudioHandle is a playing (or paused) sound owned by a layer.
type AudioHandle interface {
	Pause()
	Play()
	Stop()
	Done() bool
}

// AudioPlayer starts sounds. Implementations live outside the core; see
// package audio.
type AudioPlayer interface {
	PlaySound(source string, opts SoundOptions) (AudioHandle, error)
	PlayMusic(source string, opts SoundOptions) (AudioHandle, error)
}

// AsyncManager owns the tasks, lerps and sounds of one layer. It propagates
// pause and resume to every task it owns, so a layer pauses its timers with a
// single call.
//
// Time inside an AsyncManager only advances through Update, so every task it
// owns counts the active time of its layer.
type AsyncManager struct {
	timers timerQueue
	tasks  []*Task
	lerps  []*Lerp
	paused bool

	audio        AudioPlayer
	gate         func() bool
	sounds       []AudioHandle
	music        AudioHandle
	pendingMusic func()

	log *zap.Logger

	taskBuf []*Task
	lerpBuf []*Lerp
}

// NewAsyncManager creates an empty manager. The logger may be nil.
func NewAsyncManager(log *zap.Logger) *AsyncManager {
	return &AsyncManager{log: orNop(log)}
}

// SetAudio attaches an audio player. gate reports whether playback is allowed
// yet (the page has been interacted with); nil means always allowed.
func (m *AsyncManager) SetAudio(player AudioPlayer, gate func() bool) {
	m.audio = player
	m.gate = gate
}

// Schedule registers fn to run after opts.Time and returns the task id.
// Scheduling with the id of an existing task replaces its callback, duration
// and loop flag and restarts its countdown. Panics if fn is nil.
func (m *AsyncManager) Schedule(fn func(), opts TaskOptions) string {
	if fn == nil {
		panic("codeboard: cannot schedule a nil task func")
	}
	if opts.Delay > 0 {
		inner := opts
		inner.Delay = 0
		inner.Expires = 0
		id := idOr(opts.ID)
		inner.ID = id
		wait := TaskOptions{ID: id, Time: opts.Delay, Expires: opts.Expires}
		return m.Schedule(func() { m.Schedule(fn, inner) }, wait)
	}

	task := m.FindTask(opts.ID)
	if task != nil {
		task.restart(fn, opts)
	} else {
		task = newTask(m, fn, opts)
		m.tasks = append(m.tasks, task)
		if m.paused {
			task.paused = true
		} else {
			task.arm(task.duration)
		}
		if opts.Expires > 0 {
			id := task.id
			m.Schedule(func() { m.ClearTask(id) }, TaskOptions{Time: opts.Expires})
		}
	}
	if opts.Immediate {
		m.run(task)
	}
	return task.id
}

// FindTask returns the live task with the given id, or nil.
func (m *AsyncManager) FindTask(id string) *Task {
	if id == "" {
		return nil
	}
	for _, t := range m.tasks {
		if t.id == id {
			return t
		}
	}
	return nil
}

// ClearTask cancels and removes the task with the given id. Unknown ids are
// ignored.
func (m *AsyncManager) ClearTask(id string) {
	t := m.FindTask(id)
	if t == nil {
		return
	}
	t.Pause()
	m.remove(t)
}

// Tasks returns a snapshot of the live tasks.
func (m *AsyncManager) Tasks() []*Task {
	return append([]*Task(nil), m.tasks...)
}

// Now returns the manager's clock: the total active time it has been updated
// for.
func (m *AsyncManager) Now() float64 {
	return m.timers.Now().Seconds()
}

// IsPaused reports whether the manager is paused.
func (m *AsyncManager) IsPaused() bool { return m.paused }

// Update advances the clock by dt seconds, firing due tasks, and steps every
// running lerp.
func (m *AsyncManager) Update(dt float64) {
	m.timers.Advance(seconds(dt))

	m.lerpBuf = append(m.lerpBuf[:0], m.lerps...)
	for i := len(m.lerpBuf) - 1; i >= 0; i-- {
		l := m.lerpBuf[i]
		if l.manager != m {
			continue
		}
		guard(m.log, "lerp", "", func() { l.update(dt) })
		if l.Done {
			m.removeLerp(l)
		}
	}
	clear(m.lerpBuf)
}

// Pause freezes every task and pauses every sound the manager owns.
func (m *AsyncManager) Pause() {
	m.paused = true
	m.taskBuf = append(m.taskBuf[:0], m.tasks...)
	for i := len(m.taskBuf) - 1; i >= 0; i-- {
		m.taskBuf[i].Pause()
	}
	clear(m.taskBuf)

	m.pruneSounds()
	for _, s := range m.sounds {
		s.Pause()
	}
	if m.music != nil {
		m.music.Pause()
	}
}

// Resume re-arms every task with its remaining time and, once audio is
// allowed, resumes sounds and any music that was waiting for interaction.
func (m *AsyncManager) Resume() {
	m.paused = false
	m.taskBuf = append(m.taskBuf[:0], m.tasks...)
	for i := len(m.taskBuf) - 1; i >= 0; i-- {
		t := m.taskBuf[i]
		if t.manager == m {
			t.Resume()
		}
	}
	clear(m.taskBuf)

	if !m.audioAllowed() {
		return
	}
	m.pruneSounds()
	for _, s := range m.sounds {
		s.Play()
	}
	if m.music != nil {
		m.music.Play()
	}
	m.PageInteract()
}

// PageInteract replays music requested before the first user interaction.
func (m *AsyncManager) PageInteract() {
	if fn := m.pendingMusic; fn != nil {
		m.pendingMusic = nil
		fn()
	}
}

// PlaySoundEffect plays a one-shot sound tied to this manager's layer.
// Before the first user interaction the request is dropped, matching browser
// autoplay rules.
func (m *AsyncManager) PlaySoundEffect(source string, opts SoundOptions) {
	if m.audio == nil || !m.audioAllowed() {
		return
	}
	h, err := m.audio.PlaySound(source, opts)
	if err != nil {
		m.log.Warn("sound effect failed", zap.String("source", source), zap.Error(err))
		return
	}
	m.pruneSounds()
	m.sounds = append(m.sounds, h)
	if m.paused {
		h.Pause()
	}
}

// PlayMusic replaces the layer's music track. Before the first user
// interaction the request is remembered and replayed on PageInteract.
func (m *AsyncManager) PlayMusic(source string, opts SoundOptions) {
	if m.audio == nil {
		return
	}
	if !m.audioAllowed() {
		m.pendingMusic = func() { m.PlayMusic(source, opts) }
		return
	}
	h, err := m.audio.PlayMusic(source, opts)
	if err != nil {
		m.log.Warn("music failed", zap.String("source", source), zap.Error(err))
		return
	}
	if m.music != nil {
		m.music.Stop()
	}
	m.music = h
	if m.paused {
		h.Pause()
	}
}

// StopAudio stops every sound and the music track.
func (m *AsyncManager) StopAudio() {
	for _, s := range m.sounds {
		s.Stop()
	}
	m.sounds = nil
	if m.music != nil {
		m.music.Stop()
		m.music = nil
	}
	m.pendingMusic = nil
}

func (m *AsyncManager) audioAllowed() bool {
	return m.gate == nil || m.gate()
}

func (m *AsyncManager) pruneSounds() {
	live := m.sounds[:0]
	for _, s := range m.sounds {
		if !s.Done() {
			live = append(live, s)
		}
	}
	clear(m.sounds[len(live):])
	m.sounds = live
}

func (m *AsyncManager) run(t *Task) {
	guard(m.log, "task", t.id, t.fn)
}

func (m *AsyncManager) remove(t *Task) {
	for i, c := range m.tasks {
		if c == t {
			copy(m.tasks[i:], m.tasks[i+1:])
			m.tasks[len(m.tasks)-1] = nil
			m.tasks = m.tasks[:len(m.tasks)-1]
			break
		}
	}
	t.manager = nil
}

func (m *AsyncManager) addLerp(l *Lerp) {
	l.manager = m
	m.lerps = append(m.lerps, l)
}

func (m *AsyncManager) removeLerp(l *Lerp) {
	for i, c := range m.lerps {
		if c == l {
			copy(m.lerps[i:], m.lerps[i+1:])
			m.lerps[len(m.lerps)-1] = nil
			m.lerps = m.lerps[:len(m.lerps)-1]
			break
		}
	}
	l.manager = nil
}

// Lerps returns a snapshot of the running lerps.
func (m *AsyncManager) Lerps() []*Lerp {
	return append([]*Lerp(nil), m.lerps...)
}

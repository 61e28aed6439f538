package codeboard

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPausedLoopResumesWithRemainder(t *testing.T) {
	tests := []struct {
		cycle, pauseAt int // ms
	}{
		{1000, 1500},
		{1000, 300},
		{500, 1200},
		{300, 100},
		{2000, 1900},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("D=%d/P=%d", tt.cycle, tt.pauseAt), func(t *testing.T) {
			e, clock := newTestEngine(t, EngineOptions{})
			fired := 0
			e.ScheduleTask(func() { fired++ }, TaskOptions{ID: "beat", Time: msec(tt.cycle), Loop: true})

			clock.Run(tt.pauseAt/100, 100)
			before := tt.pauseAt / tt.cycle
			require.Equal(t, before, fired)

			e.Pause()
			clock.Tick(5000) // no frame is pending while paused
			assert.Equal(t, before, fired)
			left := tt.cycle - tt.pauseAt%tt.cycle
			assert.Equal(t, msec(left), e.FindTask("beat", ScopeCurrent).Peek())

			e.Resume()
			clock.Run(left/100-1, 100)
			assert.Equal(t, before, fired)
			clock.Tick(100)
			assert.Equal(t, before+1, fired)

			// Later cycles run the full duration again.
			clock.Run(tt.cycle/100-1, 100)
			assert.Equal(t, before+1, fired)
			clock.Tick(100)
			assert.Equal(t, before+2, fired)
		})
	}
}

func TestLoopRearmsFromDeadline(t *testing.T) {
	m := NewAsyncManager(nil)
	fired := 0
	m.Schedule(func() { fired++ }, TaskOptions{Time: time.Second, Loop: true})

	for range 4 { // 1.2s
		m.Update(0.3)
	}
	assert.Equal(t, 1, fired)
	for range 2 { // 1.8s: the next cycle is due at 2s, not 2.2s
		m.Update(0.3)
	}
	assert.Equal(t, 1, fired)
	m.Update(0.3)
	assert.Equal(t, 2, fired)
	assert.Equal(t, 900*time.Millisecond, m.Tasks()[0].Peek())
}

func TestLoopCadenceHasNoDrift(t *testing.T) {
	for _, frame := range []float64{1.0 / 144, 0.017, 0.033, 0.1} {
		t.Run(fmt.Sprint(frame), func(t *testing.T) {
			m := NewAsyncManager(nil)
			fired := 0
			m.Schedule(func() { fired++ }, TaskOptions{Time: 250 * time.Millisecond, Loop: true})
			for m.Now() < 10 {
				m.Update(frame)
			}
			assert.Equal(t, 40, fired)
		})
	}
}

func TestOneShotPausingItsLayerFiresOnce(t *testing.T) {
	s, clock := newTestStack(StackOptions{})
	game := s.Push(NewLayer(LayerOptions{ID: "game"}))
	s.Start()
	fired := 0
	game.ScheduleTask(func() {
		fired++
		s.Push(NewLayer(LayerOptions{ID: "menu"}))
	}, TaskOptions{Time: 300 * time.Millisecond})

	clock.Run(5, 100)
	assert.Equal(t, 1, fired)
	assert.True(t, game.IsPaused())
	assert.Empty(t, game.Async().Tasks())

	s.Pop()
	clock.Run(5, 100)
	assert.Equal(t, 1, fired)
}

func TestLoopPausingItsLayerKeepsCadence(t *testing.T) {
	s, clock := newTestStack(StackOptions{})
	game := s.Push(NewLayer(LayerOptions{ID: "game"}))
	s.Start()
	var times []float64
	game.ScheduleTask(func() {
		times = append(times, game.Async().Now())
		if len(times) == 1 {
			s.Push(NewLayer(LayerOptions{ID: "menu"}))
		}
	}, TaskOptions{ID: "beat", Time: time.Second, Loop: true})

	clock.Run(10, 100)
	require.Len(t, times, 1)
	assert.Equal(t, time.Second, game.Async().FindTask("beat").Peek())
	clock.Run(3, 100)

	s.Pop()
	clock.Run(15, 100)
	require.Len(t, times, 2)
	assert.InDelta(t, 1.0, times[0], 1e-9)
	assert.InDelta(t, 2.0, times[1], 1e-9)
}

func TestOneShotRemovesItself(t *testing.T) {
	m := NewAsyncManager(nil)
	fired := 0
	id := m.Schedule(func() { fired++ }, TaskOptions{Time: 100 * time.Millisecond})
	require.NotNil(t, m.FindTask(id))

	m.Update(0.1)
	m.Update(1)
	assert.Equal(t, 1, fired)
	assert.Nil(t, m.FindTask(id))
	assert.Empty(t, m.Tasks())
}

func TestZeroDurationFiresOnNextUpdate(t *testing.T) {
	m := NewAsyncManager(nil)
	fired := 0
	m.Schedule(func() { fired++ }, TaskOptions{})
	assert.Zero(t, fired)
	m.Update(0)
	assert.Equal(t, 1, fired)
	m.Update(1)
	assert.Equal(t, 1, fired)
}

func TestZeroDurationLoopFiresOncePerUpdate(t *testing.T) {
	m := NewAsyncManager(nil)
	fired := 0
	m.Schedule(func() { fired++ }, TaskOptions{Loop: true})
	m.Update(0.016)
	m.Update(0.016)
	assert.Equal(t, 2, fired)
}

func TestScheduleImmediate(t *testing.T) {
	m := NewAsyncManager(nil)
	fired := 0
	m.Schedule(func() { fired++ }, TaskOptions{Time: time.Second, Immediate: true})
	assert.Equal(t, 1, fired)
	m.Update(1)
	assert.Equal(t, 2, fired)
}

func TestScheduleSameIDReplaces(t *testing.T) {
	m := NewAsyncManager(nil)
	var got []string
	m.Schedule(func() { got = append(got, "old") }, TaskOptions{ID: "x", Time: time.Second})
	m.Update(0.5)
	id := m.Schedule(func() { got = append(got, "new") }, TaskOptions{ID: "x", Time: 2 * time.Second})

	assert.Equal(t, "x", id)
	assert.Len(t, m.Tasks(), 1)
	m.Update(1.9)
	assert.Empty(t, got)
	m.Update(0.1)
	assert.Equal(t, []string{"new"}, got)
}

func TestScheduleDelay(t *testing.T) {
	m := NewAsyncManager(nil)
	fired := 0
	m.Schedule(func() { fired++ }, TaskOptions{ID: "d", Time: time.Second, Delay: 500 * time.Millisecond})
	require.NotNil(t, m.FindTask("d"))

	m.Update(0.5)
	task := m.FindTask("d")
	require.NotNil(t, task)
	assert.Equal(t, time.Second, task.Duration())
	m.Update(0.9)
	assert.Zero(t, fired)
	m.Update(0.1)
	assert.Equal(t, 1, fired)
	assert.Len(t, m.Tasks(), 0)
}

func TestClearDuringDelay(t *testing.T) {
	m := NewAsyncManager(nil)
	fired := 0
	m.Schedule(func() { fired++ }, TaskOptions{ID: "d", Time: time.Second, Delay: time.Second})
	m.ClearTask("d")
	m.Update(5)
	assert.Zero(t, fired)
}

func TestScheduleExpires(t *testing.T) {
	m := NewAsyncManager(nil)
	fired := 0
	m.Schedule(func() { fired++ }, TaskOptions{ID: "loop", Time: 100 * time.Millisecond, Loop: true, Expires: 350 * time.Millisecond})
	for range 10 {
		m.Update(0.1)
	}
	assert.Equal(t, 3, fired)
	assert.Nil(t, m.FindTask("loop"))
	assert.Empty(t, m.Tasks())
}

func TestClearUnknownTask(t *testing.T) {
	m := NewAsyncManager(nil)
	assert.NotPanics(t, func() { m.ClearTask("missing") })
	assert.Nil(t, m.FindTask(""))
}

func TestScheduleNilPanics(t *testing.T) {
	m := NewAsyncManager(nil)
	assert.Panics(t, func() { m.Schedule(nil, TaskOptions{}) })
}

func TestTaskPeekAndElapsed(t *testing.T) {
	m := NewAsyncManager(nil)
	id := m.Schedule(func() {}, TaskOptions{Time: time.Second})
	task := m.FindTask(id)
	m.Update(0.25)
	assert.Equal(t, 750*time.Millisecond, task.Peek())
	assert.Equal(t, 250*time.Millisecond, task.Elapsed())
}

func TestTaskPauseFreezes(t *testing.T) {
	tests := []struct {
		cycle, pauseAt, idle int // ms
		loop                 bool
	}{
		{1000, 400, 5000, false},
		{1000, 0, 100, false},
		{250, 1, 10_000, false},
		{250, 249, 1, false},
		{3000, 1500, 500, true},
		{100, 50, 100, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("D=%d/P=%d/loop=%v", tt.cycle, tt.pauseAt, tt.loop), func(t *testing.T) {
			m := NewAsyncManager(nil)
			fired := 0
			id := m.Schedule(func() { fired++ }, TaskOptions{Time: msec(tt.cycle), Loop: tt.loop})
			task := m.FindTask(id)
			m.Update(deltaMS(tt.pauseAt))

			task.Pause()
			task.Pause()
			assert.True(t, task.IsPaused())
			m.Update(deltaMS(tt.idle))
			assert.Zero(t, fired)
			left := tt.cycle - tt.pauseAt
			assert.Equal(t, msec(left), task.Peek())
			assert.Equal(t, msec(tt.pauseAt), task.Elapsed())

			task.Resume()
			m.Update(deltaMS(left - 1))
			assert.Zero(t, fired)
			m.Update(deltaMS(1))
			assert.Equal(t, 1, fired)

			if !tt.loop {
				assert.Empty(t, m.Tasks())
				return
			}
			m.Update(deltaMS(tt.cycle - 1))
			assert.Equal(t, 1, fired)
			m.Update(deltaMS(1))
			assert.Equal(t, 2, fired)
		})
	}
}

func TestTaskExtend(t *testing.T) {
	m := NewAsyncManager(nil)
	fired := 0
	id := m.Schedule(func() { fired++ }, TaskOptions{Time: time.Second})
	task := m.FindTask(id)
	m.Update(0.5)

	task.Extend(500 * time.Millisecond)
	assert.Equal(t, 1500*time.Millisecond, task.Duration())
	assert.Equal(t, time.Second, task.Peek())
	m.Update(0.9)
	assert.Zero(t, fired)
	m.Update(0.1)
	assert.Equal(t, 1, fired)
}

func TestTaskExtendWhilePaused(t *testing.T) {
	m := NewAsyncManager(nil)
	id := m.Schedule(func() {}, TaskOptions{Time: time.Second})
	task := m.FindTask(id)
	m.Update(0.5)
	task.Pause()
	task.Extend(time.Second)
	assert.False(t, task.IsPaused())
	assert.Equal(t, 1500*time.Millisecond, task.Peek())
}

func TestTaskRefreshKeepsRemainder(t *testing.T) {
	m := NewAsyncManager(nil)
	id := m.Schedule(func() {}, TaskOptions{Time: time.Second})
	task := m.FindTask(id)
	m.Update(0.3)
	task.Refresh()
	assert.Equal(t, 700*time.Millisecond, task.Peek())
	assert.False(t, task.IsPaused())
}

func TestLoopClearedByItsCallback(t *testing.T) {
	m := NewAsyncManager(nil)
	fired := 0
	m.Schedule(func() {
		fired++
		m.ClearTask("self")
	}, TaskOptions{ID: "self", Time: 100 * time.Millisecond, Loop: true})
	for range 5 {
		m.Update(0.1)
	}
	assert.Equal(t, 1, fired)
	assert.Empty(t, m.Tasks())
}

func TestManagerPauseResume(t *testing.T) {
	m := NewAsyncManager(nil)
	fired := 0
	m.Schedule(func() { fired++ }, TaskOptions{Time: time.Second})
	m.Pause()
	assert.True(t, m.IsPaused())

	// Tasks scheduled on a paused manager start frozen.
	m.Schedule(func() { fired++ }, TaskOptions{Time: 100 * time.Millisecond})
	m.Update(2)
	assert.Zero(t, fired)

	m.Resume()
	m.Update(0.1)
	assert.Equal(t, 1, fired)
	m.Update(0.9)
	assert.Equal(t, 2, fired)
}

func TestPanickingTaskIsLogged(t *testing.T) {
	log, logs := observedLogger(zap.ErrorLevel)
	m := NewAsyncManager(log)
	after := false
	m.Schedule(func() { panic("boom") }, TaskOptions{ID: "bad"})
	m.Schedule(func() { after = true }, TaskOptions{})

	assert.NotPanics(t, func() { m.Update(0) })
	assert.True(t, after)
	entries := logs.FilterMessage("handler panicked").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "bad", entries[0].ContextMap()["id"])
	assert.Equal(t, "task", entries[0].ContextMap()["handler"])
}

func msec(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// deltaMS converts milliseconds to an Update delta.
func deltaMS(ms int) float64 { return float64(ms) / 1000 }

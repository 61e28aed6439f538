package codeboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimerQueueFiresInDeadlineOrder(t *testing.T) {
	var q timerQueue
	var got []string
	q.AfterFunc(30*time.Millisecond, func() { got = append(got, "a") })
	q.AfterFunc(10*time.Millisecond, func() { got = append(got, "b") })
	q.AfterFunc(10*time.Millisecond, func() { got = append(got, "c") })

	q.Advance(9 * time.Millisecond)
	assert.Empty(t, got)
	q.Advance(21 * time.Millisecond)
	assert.Equal(t, []string{"b", "c", "a"}, got)
	assert.Zero(t, q.Len())
}

func TestTimerArmedDuringAdvanceWaits(t *testing.T) {
	var q timerQueue
	inner := 0
	q.AfterFunc(0, func() {
		q.AfterFunc(0, func() { inner++ })
	})

	q.Advance(0)
	assert.Zero(t, inner)
	assert.Equal(t, 1, q.Len())
	q.Advance(0)
	assert.Equal(t, 1, inner)
}

func TestTimerStop(t *testing.T) {
	var q timerQueue
	fired := false
	tm := q.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, tm.Stop())
	assert.False(t, tm.Stop())
	q.Advance(2 * time.Second)
	assert.False(t, fired)

	var nilTimer *timer
	assert.False(t, nilTimer.Stop())
}

func TestTimerNegativeDelay(t *testing.T) {
	var q timerQueue
	q.Advance(time.Second)
	fired := false
	q.AfterFunc(-time.Hour, func() { fired = true })
	assert.False(t, fired)
	q.Advance(0)
	assert.True(t, fired)
	assert.Equal(t, time.Second, q.Now())
}

func TestSecondsRounding(t *testing.T) {
	tests := []struct {
		in   float64
		want time.Duration
	}{
		{0.1, 100 * time.Millisecond},
		{0.3, 300 * time.Millisecond},
		{1.0 / 60, 16666667 * time.Nanosecond},
		{-0.25, -250 * time.Millisecond},
		{0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, seconds(tt.in), "seconds(%v)", tt.in)
	}
}

package codeboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameQueue(t *testing.T) {
	var q FrameQueue
	var got []string
	q.RequestFrame(func(float64) { got = append(got, "a") })
	h := q.RequestFrame(func(float64) { got = append(got, "b") })
	q.RequestFrame(func(ts float64) {
		got = append(got, "c")
		q.RequestFrame(func(float64) { got = append(got, "later") })
	})
	q.CancelFrame(h)
	q.CancelFrame(99)
	assert.Equal(t, 2, q.Pending())

	assert.True(t, q.Flush(1))
	assert.Equal(t, []string{"a", "c"}, got)
	assert.Equal(t, 1, q.Pending(), "requests made while flushing wait")

	assert.True(t, q.Flush(2))
	assert.Equal(t, []string{"a", "c", "later"}, got)
	assert.False(t, q.Flush(3))
}

func TestManualClock(t *testing.T) {
	c := NewManualClock()
	var stamps []float64
	var loop func(float64)
	loop = func(ts float64) {
		stamps = append(stamps, ts)
		c.RequestFrame(loop)
	}
	c.RequestFrame(loop)
	c.Run(3, 16)
	assert.Equal(t, []float64{16, 32, 48}, stamps)
	assert.Equal(t, 48.0, c.Now())

	c2 := NewManualClock()
	assert.False(t, c2.Tick(10))
	assert.Equal(t, 10.0, c2.Now())
}

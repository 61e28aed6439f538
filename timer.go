package codeboard

import (
	"container/heap"
	"time"
)

// timer is a single pending callback in a timerQueue.
type timer struct {
	when  time.Duration
	fn    func()
	seq   uint64 // arming order, breaks ties between equal deadlines
	gen   uint64 // queue generation at arming time
	index int    // heap index, -1 once fired or stopped
	q     *timerQueue
}

// Stop cancels the timer. Reports whether it was still pending.
func (t *timer) Stop() bool {
	if t == nil || t.index < 0 {
		return false
	}
	heap.Remove(&t.q.pending, t.index)
	return true
}

type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].when != h[j].when {
		return h[i].when < h[j].when
	}
	return h[i].seq < h[j].seq
}
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *timerHeap) Push(x any) {
	t := x.(*timer)
	t.index = len(*h)
	*h = append(*h, t)
}
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// timerQueue is the host timer primitive behind Tasks: "call fn after d,
// cancelable before it fires". Time only moves when Advance is called, so a
// queue owned by a layer measures that layer's active time.
type timerQueue struct {
	now     time.Duration
	gen     uint64
	seq     uint64
	pending timerHeap
}

// Now returns the queue's current time.
func (q *timerQueue) Now() time.Duration {
	return q.now
}

// Len returns the number of pending timers.
func (q *timerQueue) Len() int {
	return len(q.pending)
}

// AfterFunc arms fn to run once d has elapsed. Non-positive d fires on the
// next Advance. Timers armed while Advance is running never fire in that same
// Advance.
func (q *timerQueue) AfterFunc(d time.Duration, fn func()) *timer {
	if d < 0 {
		d = 0
	}
	q.seq++
	t := &timer{when: q.now + d, fn: fn, seq: q.seq, gen: q.gen, q: q}
	heap.Push(&q.pending, t)
	return t
}

// Advance moves time forward by d and runs every timer that has come due, in
// deadline order.
func (q *timerQueue) Advance(d time.Duration) {
	if d > 0 {
		q.now += d
	}
	q.gen++
	for len(q.pending) > 0 {
		t := q.pending[0]
		if t.when > q.now || t.gen == q.gen {
			return
		}
		heap.Pop(&q.pending)
		t.fn()
	}
}

// seconds converts a float seconds delta into a Duration, rounding to the
// nearest nanosecond.
func seconds(s float64) time.Duration {
	return time.Duration(s*float64(time.Second) + copysignHalf(s))
}

func copysignHalf(s float64) float64 {
	if s < 0 {
		return -0.5
	}
	return 0.5
}

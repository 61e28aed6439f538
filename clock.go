package codeboard

type frameRequest struct {
	h  FrameHandle
	fn func(timestamp float64)
}

// FrameQueue holds pending frame requests until the host flushes them. Hosts
// embed it to satisfy the request/cancel half of FrameClock.
type FrameQueue struct {
	next    FrameHandle
	pending []frameRequest
	flush   []frameRequest
}

// RequestFrame queues fn for the next Flush.
func (q *FrameQueue) RequestFrame(fn func(timestamp float64)) FrameHandle {
	q.next++
	q.pending = append(q.pending, frameRequest{h: q.next, fn: fn})
	return q.next
}

// CancelFrame drops a queued request. Unknown handles are ignored.
func (q *FrameQueue) CancelFrame(h FrameHandle) {
	for i, r := range q.pending {
		if r.h == h {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
}

// Pending returns the number of queued requests.
func (q *FrameQueue) Pending() int { return len(q.pending) }

// Flush runs every request queued before the call with timestamp. Requests
// made while flushing wait for the next Flush. Reports whether anything ran.
func (q *FrameQueue) Flush(timestamp float64) bool {
	if len(q.pending) == 0 {
		return false
	}
	q.flush = append(q.flush[:0], q.pending...)
	clear(q.pending)
	q.pending = q.pending[:0]
	for _, r := range q.flush {
		r.fn(timestamp)
	}
	clear(q.flush)
	return true
}

// ManualClock is a FrameClock whose time only moves when told to. Tests and
// headless replays drive a SceneStack with it.
type ManualClock struct {
	FrameQueue
	now float64
}

// NewManualClock returns a clock at time zero.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// Now returns the clock's time in milliseconds.
func (c *ManualClock) Now() float64 { return c.now }

// Tick advances the clock by ms milliseconds and delivers the pending frame.
func (c *ManualClock) Tick(ms float64) bool {
	c.now += ms
	return c.Flush(c.now)
}

// Run delivers frames frames, ms milliseconds apart.
func (c *ManualClock) Run(frames int, ms float64) {
	for range frames {
		c.Tick(ms)
	}
}

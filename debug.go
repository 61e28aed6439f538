package codeboard

import (
	"time"

	"go.uber.org/zap"
)

// FrameSample is the measurement of one frame.
type FrameSample struct {
	Delta    float64
	Update   time.Duration
	Draw     time.Duration
	Entities int
	Tasks    int
	Lerps    int
}

// FrameStats measures frame timings and live object counts and logs a
// summary at debug level every Interval frames. A nil *FrameStats is valid
// and measures nothing.
type FrameStats struct {
	// Interval is the number of frames between log lines. Zero means 60.
	Interval int
	// Last holds the most recent frame's sample.
	Last FrameSample

	log         *zap.Logger
	frameStart  time.Time
	drawStart   time.Time
	frames      int
	updateTotal time.Duration
	drawTotal   time.Duration
	warned      bool
}

// NewFrameStats creates a FrameStats logging to log.
func NewFrameStats(log *zap.Logger) *FrameStats {
	return &FrameStats{log: orNop(log)}
}

// debugMaxEntities is the entity count above which the O(n*m) collision
// scan is likely to cost more than a frame.
const debugMaxEntities = 1000

func (fs *FrameStats) beginUpdate() {
	if fs == nil {
		return
	}
	fs.frameStart = time.Now()
}

func (fs *FrameStats) beginDraw() {
	if fs == nil {
		return
	}
	fs.drawStart = time.Now()
}

func (fs *FrameStats) endFrame(s *SceneStack, dt float64) {
	if fs == nil {
		return
	}
	now := time.Now()
	sample := FrameSample{
		Delta:  dt,
		Update: fs.drawStart.Sub(fs.frameStart),
		Draw:   now.Sub(fs.drawStart),
	}
	for _, l := range []*Layer{s.global, s.top()} {
		if l == nil {
			continue
		}
		sample.Entities += l.registry.Len()
		sample.Tasks += len(l.async.tasks)
		sample.Lerps += len(l.async.lerps)
	}
	fs.Last = sample
	fs.frames++
	fs.updateTotal += sample.Update
	fs.drawTotal += sample.Draw

	if sample.Entities > debugMaxEntities && !fs.warned {
		fs.warned = true
		fs.log.Warn("entity count exceeds collision scan budget",
			zap.Int("entities", sample.Entities),
			zap.Int("threshold", debugMaxEntities),
		)
	}

	interval := fs.Interval
	if interval <= 0 {
		interval = 60
	}
	if fs.frames < interval {
		return
	}
	n := time.Duration(fs.frames)
	fs.log.Debug("frame stats",
		zap.Int("frames", fs.frames),
		zap.Duration("update_avg", fs.updateTotal/n),
		zap.Duration("draw_avg", fs.drawTotal/n),
		zap.Float64("delta", dt),
		zap.Int("entities", sample.Entities),
		zap.Int("tasks", sample.Tasks),
		zap.Int("lerps", sample.Lerps),
	)
	fs.frames = 0
	fs.updateTotal = 0
	fs.drawTotal = 0
}

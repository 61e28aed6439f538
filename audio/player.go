// Package audio plays codeboard sound effects and music through the
// gopxl/beep speaker. Sources are either generated sounds (see Builtins) or
// WAV files read from an fs.FS.
package audio

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
	"go.uber.org/zap"

	"github.com/codeboardgames/codeboard"
)

// ErrUnknownSource is returned for a source that is neither a builtin nor a
// readable asset.
var ErrUnknownSource = errors.New("audio: unknown source")

const resampleQuality = 4

// Options configures a Player.
type Options struct {
	SampleRate int
	// Volume is a base-2 gain exponent added to every sound. Zero is unity.
	Volume float64
	// Assets holds WAV files. Sources resolve to "<name>" or "<name>.wav".
	Assets fs.FS
	Log    *zap.Logger
}

// Player implements codeboard.AudioPlayer on a single beep mixer.
type Player struct {
	rate   beep.SampleRate
	volume float64
	assets fs.FS
	mixer  *beep.Mixer
	// lock guards the mixer and every Ctrl added to it. It is the speaker
	// lock once Start has run.
	lock sync.Locker

	mu      sync.Mutex
	buffers map[string]*beep.Buffer

	started bool
	log     *zap.Logger
}

var _ codeboard.AudioPlayer = (*Player)(nil)

type speakerLock struct{}

func (speakerLock) Lock()   { speaker.Lock() }
func (speakerLock) Unlock() { speaker.Unlock() }

// NewPlayer creates a player. Nothing is audible until Start.
func NewPlayer(opts Options) *Player {
	sr := opts.SampleRate
	if sr <= 0 {
		sr = 44100
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Player{
		rate:    beep.SampleRate(sr),
		volume:  opts.Volume,
		assets:  opts.Assets,
		mixer:   &beep.Mixer{},
		lock:    &sync.Mutex{},
		buffers: make(map[string]*beep.Buffer),
		log:     log,
	}
}

// Start opens the speaker and begins playing the mixer. Calling it again is
// a no-op.
func (p *Player) Start() error {
	if p.started {
		return nil
	}
	if err := speaker.Init(p.rate, p.rate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("audio: init speaker: %w", err)
	}
	p.lock = speakerLock{}
	speaker.Play(p.mixer)
	p.started = true
	p.log.Info("audio started", zap.Int("sample_rate", int(p.rate)))
	return nil
}

// Close stops every sound and releases the speaker.
func (p *Player) Close() {
	p.lock.Lock()
	p.mixer.Clear()
	p.lock.Unlock()
	if p.started {
		speaker.Clear()
		speaker.Close()
		p.started = false
		p.lock = &sync.Mutex{}
	}
}

// Playing returns the number of streams in the mixer.
func (p *Player) Playing() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.mixer.Len()
}

// Stream pulls samples from the mixer directly. Used when no speaker is
// attached.
func (p *Player) Stream(samples [][2]float64) (int, bool) {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.mixer.Stream(samples)
}

// PlaySound starts a one-shot sound.
func (p *Player) PlaySound(source string, opts codeboard.SoundOptions) (codeboard.AudioHandle, error) {
	open, err := p.open(source)
	if err != nil {
		return nil, err
	}
	return p.play(open(), opts), nil
}

// PlayMusic starts a track that repeats until stopped.
func (p *Player) PlayMusic(source string, opts codeboard.SoundOptions) (codeboard.AudioHandle, error) {
	open, err := p.open(source)
	if err != nil {
		return nil, err
	}
	return p.play(&repeat{open: open, cur: open()}, opts), nil
}

func (p *Player) play(s beep.Streamer, opts codeboard.SoundOptions) *handle {
	if opts.Rate > 0 && opts.Rate != 1 {
		s = beep.ResampleRatio(resampleQuality, opts.Rate, s)
	}
	s = &effects.Volume{Streamer: s, Base: 2, Volume: p.volume + opts.Volume}

	h := &handle{p: p}
	h.ctrl = &beep.Ctrl{Streamer: beep.Seq(s, beep.Callback(func() { h.done.Store(true) }))}

	p.lock.Lock()
	p.mixer.Add(h.ctrl)
	p.lock.Unlock()
	return h
}

// open resolves source to a factory of fresh streamers.
func (p *Player) open(source string) (func() beep.Streamer, error) {
	if gen, ok := builtins[source]; ok {
		return func() beep.Streamer { return gen(p.rate) }, nil
	}
	buf, err := p.buffer(source)
	if err != nil {
		return nil, err
	}
	return func() beep.Streamer { return buf.Streamer(0, buf.Len()) }, nil
}

func (p *Player) buffer(source string) (*beep.Buffer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if buf, ok := p.buffers[source]; ok {
		return buf, nil
	}
	if p.assets == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}

	name := source
	if path.Ext(name) == "" {
		name += ".wav"
	}
	f, err := p.assets.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}
	if err != nil {
		return nil, fmt.Errorf("audio: open %s: %w", name, err)
	}
	defer f.Close()

	stream, format, err := wav.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("audio: decode %s: %w", name, err)
	}
	defer stream.Close()

	buf := beep.NewBuffer(beep.Format{SampleRate: p.rate, NumChannels: 2, Precision: 2})
	buf.Append(beep.Resample(resampleQuality, format.SampleRate, p.rate, stream))
	p.buffers[source] = buf
	p.log.Debug("sound loaded", zap.String("source", source), zap.Int("samples", buf.Len()))
	return buf, nil
}

// repeat restarts its source every time it drains.
type repeat struct {
	open func() beep.Streamer
	cur  beep.Streamer
}

func (r *repeat) Stream(samples [][2]float64) (n int, ok bool) {
	fresh := false
	for n < len(samples) {
		sn, sok := r.cur.Stream(samples[n:])
		n += sn
		if sok {
			fresh = false
			continue
		}
		if fresh && sn == 0 {
			// An empty source would spin forever.
			return n, n > 0
		}
		r.cur, fresh = r.open(), true
	}
	return n, true
}

func (r *repeat) Err() error { return r.cur.Err() }

// handle is a sound in the mixer.
type handle struct {
	p    *Player
	ctrl *beep.Ctrl
	done atomic.Bool
}

func (h *handle) Pause() {
	h.p.lock.Lock()
	h.ctrl.Paused = true
	h.p.lock.Unlock()
}

func (h *handle) Play() {
	h.p.lock.Lock()
	h.ctrl.Paused = false
	h.p.lock.Unlock()
}

// Stop detaches the stream; the mixer drops it on its next pass.
func (h *handle) Stop() {
	h.p.lock.Lock()
	h.ctrl.Streamer = nil
	h.p.lock.Unlock()
	h.done.Store(true)
}

func (h *handle) Done() bool { return h.done.Load() }

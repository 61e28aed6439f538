package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// envelope applies a linear attack and release to a finite stream.
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	totalSamples   int
}

// newEnvelope wraps s with attack/release shaping over duration.
func newEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer:       beep.Take(rate.N(duration), s),
		attackSamples:  rate.N(attack),
		releaseSamples: rate.N(release),
		totalSamples:   rate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	releaseStart := e.totalSamples - e.releaseSamples
	for i := 0; i < n; i++ {
		vol := 1.0
		if e.position < e.attackSamples {
			vol = float64(e.position) / float64(e.attackSamples)
		}
		if e.position >= releaseStart && e.releaseSamples > 0 {
			vol = math.Max(float64(e.totalSamples-e.position)/float64(e.releaseSamples), 0)
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume scales s linearly by vol. Zero or less is silent.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

func tone(rate beep.SampleRate, freq float64, square bool) beep.Streamer {
	var (
		s   beep.Streamer
		err error
	)
	if square {
		s, err = generators.SquareTone(rate, freq)
	} else {
		s, err = generators.SineTone(rate, freq)
	}
	if err != nil {
		// Only returned for frequencies above Nyquist.
		return generators.Silence(-1)
	}
	return s
}

// builtins are the sounds available without any asset files.
var builtins = map[string]func(rate beep.SampleRate) beep.Streamer{
	"beep": func(rate beep.SampleRate) beep.Streamer {
		return newVolume(newEnvelope(tone(rate, 880, false), 80*time.Millisecond, 5*time.Millisecond, 30*time.Millisecond, rate), 0.4)
	},
	"buzz": func(rate beep.SampleRate) beep.Streamer {
		return newVolume(newEnvelope(tone(rate, 110, true), 150*time.Millisecond, 10*time.Millisecond, 60*time.Millisecond, rate), 0.2)
	},
	"bell": func(rate beep.SampleRate) beep.Streamer {
		d := 400 * time.Millisecond
		return beep.Mix(
			newVolume(newEnvelope(tone(rate, 880, false), d, 5*time.Millisecond, 350*time.Millisecond, rate), 0.3),
			newVolume(newEnvelope(tone(rate, 1760, false), d, 5*time.Millisecond, 200*time.Millisecond, rate), 0.12),
		)
	},
	"coin": func(rate beep.SampleRate) beep.Streamer {
		return newVolume(beep.Seq(
			newEnvelope(tone(rate, 987.77, true), 70*time.Millisecond, 2*time.Millisecond, 20*time.Millisecond, rate),
			newEnvelope(tone(rate, 1318.51, true), 200*time.Millisecond, 2*time.Millisecond, 150*time.Millisecond, rate),
		), 0.15)
	},
	"theme": func(rate beep.SampleRate) beep.Streamer {
		notes := []float64{220, 277.18, 329.63, 440, 329.63, 277.18}
		seq := make([]beep.Streamer, len(notes))
		for i, f := range notes {
			seq[i] = newEnvelope(tone(rate, f, false), 300*time.Millisecond, 20*time.Millisecond, 120*time.Millisecond, rate)
		}
		return newVolume(beep.Seq(seq...), 0.15)
	},
}

// Builtins returns the names of the generated sounds.
func Builtins() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	return names
}

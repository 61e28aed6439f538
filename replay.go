package codeboard

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ReplayStep is a single action in a replay script.
type ReplayStep struct {
	Action string  `yaml:"action"`
	Label  string  `yaml:"label,omitempty"`
	Code   string  `yaml:"code,omitempty"`
	Key    string  `yaml:"key,omitempty"`
	X      float64 `yaml:"x,omitempty"`
	Y      float64 `yaml:"y,omitempty"`
	FromX  float64 `yaml:"from_x,omitempty"`
	FromY  float64 `yaml:"from_y,omitempty"`
	ToX    float64 `yaml:"to_x,omitempty"`
	ToY    float64 `yaml:"to_y,omitempty"`
	Frames int     `yaml:"frames,omitempty"`
}

type replayScript struct {
	Steps []ReplayStep `yaml:"steps"`
}

var replayActions = map[string]bool{
	"key": true, "keydown": true, "keyup": true,
	"click": true, "press": true, "move": true, "release": true, "drag": true,
	"wait": true, "checkpoint": true,
}

// Replay sequences injected input across frames for headless automation and
// regression tests. Attach it with SceneStack.SetReplay; it advances by one
// step per frame once the injector has drained.
//
//	steps:
//	  - {action: key, code: Space, key: " "}
//	  - {action: wait, frames: 30}
//	  - {action: click, x: 120, y: 80}
//	  - {action: checkpoint, label: after-click}
type Replay struct {
	steps     []ReplayStep
	cursor    int
	waitCount int
	done      bool

	// OnCheckpoint is called for every checkpoint step, after it is logged.
	OnCheckpoint func(label string, frame int)

	frame int
}

// ParseReplay decodes a YAML replay script.
func ParseReplay(r io.Reader) (*Replay, error) {
	var script replayScript
	if err := yaml.NewDecoder(r).Decode(&script); err != nil {
		return nil, fmt.Errorf("parse replay: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, errors.New("parse replay: no steps")
	}
	for i, st := range script.Steps {
		if !replayActions[st.Action] {
			return nil, fmt.Errorf("parse replay: step %d: unknown action %q", i, st.Action)
		}
	}
	return &Replay{steps: script.Steps}, nil
}

// LoadReplay reads a YAML replay script from a file.
func LoadReplay(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay %s: %w", path, err)
	}
	defer f.Close()
	return ParseReplay(f)
}

// Done reports whether every step has been executed and its input
// delivered.
func (r *Replay) Done() bool { return r.done }

// step advances the replay by one frame.
func (r *Replay) step(s *SceneStack) {
	if r.done {
		return
	}
	r.frame++
	in := s.Injector()
	// Wait for pending injections to drain before advancing.
	if in.Pending() > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "key":
		in.InjectKey(st.Code, st.Key)
	case "keydown":
		in.InjectKeyDown(st.Code, st.Key)
	case "keyup":
		in.InjectKeyUp(st.Code)
	case "click":
		in.InjectClick(st.X, st.Y)
	case "press":
		in.InjectPress(st.X, st.Y)
	case "move":
		in.InjectMove(st.X, st.Y)
	case "release":
		in.InjectRelease(st.X, st.Y)
	case "drag":
		in.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	case "checkpoint":
		s.log.Info("replay checkpoint", zap.String("label", st.Label), zap.Int("frame", r.frame))
		if r.OnCheckpoint != nil {
			r.OnCheckpoint(st.Label, r.frame)
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && in.Pending() == 0 {
		r.done = true
	}
}

// Command codeboard runs the dodge demo on one of three hosts: an Ebitengine
// window, a tcell terminal or a headless simulation driven by a replay.
package main

import (
	"bytes"
	"context"
	"embed"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yohamta/donburi"
	"go.uber.org/zap"

	"github.com/codeboardgames/codeboard"
	"github.com/codeboardgames/codeboard/audio"
	"github.com/codeboardgames/codeboard/ebitenhost"
	"github.com/codeboardgames/codeboard/ecs"
	"github.com/codeboardgames/codeboard/script"
	"github.com/codeboardgames/codeboard/termhost"
)

//go:embed assets
var assets embed.FS

const frameMillis = 1000.0 / 60

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// frontend is what a host contributes to the engine: its frame clock, its
// renderer and the loop that drives them.
type frontend struct {
	clock    codeboard.FrameClock
	renderer codeboard.Renderer
	run      func(ctx context.Context, e *codeboard.Engine) error
}

func run() error {
	var (
		configPath   = flag.String("config", "", "TOML config file")
		hostName     = flag.String("host", "ebiten", "host to run on: ebiten, term or headless")
		replayPath   = flag.String("replay", "", "YAML replay script")
		entitiesPath = flag.String("entities", "", "YAML entity definitions replacing the built-in ones")
		scriptsDir   = flag.String("scripts", "", "directory of extra Lua scripts")
		soundsDir    = flag.String("sounds", "", "directory of WAV sound assets")
		imagesDir    = flag.String("images", "", "directory of PNG images (ebiten host)")
		frames       = flag.Int("frames", 600, "frames to simulate on the headless host")
		seed         = flag.Uint64("seed", 0, "random seed; 0 picks one from the clock")
	)
	flag.Parse()

	cfg := codeboard.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = codeboard.LoadConfig(*configPath); err != nil {
			return err
		}
	}
	if *hostName == "term" && cfg.Logging.File == "" {
		// stderr belongs to the terminal UI
		cfg.Logging.File = "codeboard.log"
	}
	log, err := codeboard.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fe, err := newFrontend(*hostName, cfg, log, *imagesDir, *frames)
	if err != nil {
		return err
	}

	var player codeboard.AudioPlayer
	if cfg.Audio.Enabled && *hostName != "headless" {
		opts := audio.Options{SampleRate: cfg.Audio.SampleRate, Volume: cfg.Audio.Volume, Log: log}
		if *soundsDir != "" {
			opts.Assets = os.DirFS(*soundsDir)
		}
		p := audio.NewPlayer(opts)
		if err := p.Start(); err != nil {
			log.Warn("audio unavailable, continuing without sound", zap.Error(err))
		} else {
			defer p.Close()
			player = p
		}
	}

	world := donburi.NewWorld()
	tally := ecs.NewCounter(world)
	e := codeboard.NewEngine(codeboard.EngineOptions{
		Config:   cfg,
		Clock:    fe.clock,
		Renderer: fe.renderer,
		Audio:    player,
		Events:   ecs.NewDonburiStore(world),
		Log:      log,
	})
	e.Global().OnUpdate = func(*codeboard.Layer, float64) {
		ecs.EntityEventType.ProcessEvents(world)
	}

	entities, err := readEntities(*entitiesPath)
	if err != nil {
		return err
	}
	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}
	game, err := newDodge(e, entities, *seed)
	if err != nil {
		return fmt.Errorf("demo: %w", err)
	}

	vm := script.New(e, log)
	defer vm.Close()
	if err := vm.LoadFS(assets, "assets/scripts"); err != nil {
		return err
	}
	if *scriptsDir != "" {
		if err := vm.LoadFS(os.DirFS(*scriptsDir), "."); err != nil {
			return err
		}
	}

	replay, err := loadReplay(*replayPath, *hostName == "headless")
	if err != nil {
		return err
	}
	if replay != nil {
		replay.OnCheckpoint = func(label string, frame int) {
			log.Info("score at checkpoint", zap.String("label", label), zap.Int("score", game.Score()))
		}
		e.Stack().SetReplay(replay)
	}

	log.Info("codeboard starting",
		zap.String("host", *hostName),
		zap.Uint64("seed", *seed),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)
	if err := fe.run(ctx, e); err != nil {
		return err
	}
	ecs.EntityEventType.ProcessEvents(world)
	log.Info("codeboard stopped",
		zap.Int("score", game.Score()),
		zap.Int("rocks_despawned", tally.Count("Rock", codeboard.EntityDespawned)),
		zap.Int("ship_collisions", tally.Count("Ship", codeboard.EntityCollided)),
	)
	return nil
}

func newFrontend(name string, cfg *codeboard.Config, log *zap.Logger, imagesDir string, frames int) (*frontend, error) {
	switch name {
	case "ebiten":
		h := ebitenhost.New(cfg.Window, log)
		if imagesDir != "" {
			if err := h.LoadImages(os.DirFS(imagesDir), "*.png"); err != nil {
				return nil, err
			}
		}
		return &frontend{
			clock:    h.Clock,
			renderer: h.Renderer,
			run:      func(_ context.Context, e *codeboard.Engine) error { return h.Run(e) },
		}, nil
	case "term":
		screen, err := termhost.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("open terminal: %w", err)
		}
		h := termhost.New(screen, cfg.Window, log)
		return &frontend{clock: h.Clock, renderer: h.Canvas, run: h.Run}, nil
	case "headless":
		clock := codeboard.NewManualClock()
		return &frontend{
			clock:    clock,
			renderer: codeboard.NopRenderer{Width: float64(cfg.Window.Width), Height: float64(cfg.Window.Height)},
			run: func(ctx context.Context, e *codeboard.Engine) error {
				return runHeadless(ctx, e, clock, frames)
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown host %q (want ebiten, term or headless)", name)
}

// runHeadless advances the clock one 60 FPS frame at a time until frames
// have run, the attached replay finishes, the stack pauses or ctx is done.
func runHeadless(ctx context.Context, e *codeboard.Engine, clock *codeboard.ManualClock, frames int) error {
	e.Start()
	n := 0
	for n < frames && ctx.Err() == nil {
		if !clock.Tick(frameMillis) {
			break
		}
		n++
		if r := e.Stack().Replay(); r != nil && r.Done() {
			break
		}
	}
	e.Log().Info("headless run finished", zap.Int("frames", n))
	return nil
}

func readEntities(path string) (io.Reader, error) {
	if path == "" {
		data, err := assets.ReadFile("assets/entities.yaml")
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read entities %s: %w", path, err)
	}
	return bytes.NewReader(data), nil
}

// loadReplay reads the replay at path. Without a path the headless host
// falls back to the bundled replay and the interactive hosts run none.
func loadReplay(path string, headless bool) (*codeboard.Replay, error) {
	if path != "" {
		return codeboard.LoadReplay(path)
	}
	if !headless {
		return nil, nil
	}
	data, err := assets.ReadFile("assets/replay.yaml")
	if err != nil {
		return nil, err
	}
	return codeboard.ParseReplay(bytes.NewReader(data))
}

package main

import (
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/codeboardgames/codeboard"
)

const (
	shipSpeed = 200.0
	rockEvery = 700 * time.Millisecond
	coinEvery = 2 * time.Second
)

var rockKinds = []string{"", "small", "large"}

// dodge is the demo game: steer a ship with the arrow keys or WASD, collect
// coins and avoid falling rocks.
type dodge struct {
	engine *codeboard.Engine
	rng    *rand.Rand

	ships, rocks, coins *codeboard.EntityDef

	ship      *codeboard.Entity
	score     int
	scoreText *codeboard.Element
	hpBar     *codeboard.Element
	sparks    *codeboard.ParticleEmitter
}

func newDodge(e *codeboard.Engine, entities io.Reader, seed uint64) (*dodge, error) {
	if _, err := e.RegisterEntitySpecs(entities); err != nil {
		return nil, err
	}
	d := &dodge{
		engine: e,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		ships:  e.EntityDef("Ship"),
		rocks:  e.EntityDef("Rock"),
		coins:  e.EntityDef("Coin"),
	}
	if d.ships == nil || d.rocks == nil || d.coins == nil {
		return nil, fmt.Errorf("entity file must define Ship, Rock and Coin")
	}

	w, _ := e.Size()
	game := e.Current()
	d.scoreText = codeboard.NewText(12, 12, "", codeboard.TextStyle{Color: codeboard.ColorWhite, Size: 16})
	d.hpBar = codeboard.NewProgressBar(w-112, 12, 100, 10, 0, 0,
		codeboard.Style{Fill: codeboard.MustHexColor("#333333"), Stroke: codeboard.ColorWhite, StrokeWidth: 1},
		codeboard.MustHexColor("#e53935"))
	game.UI().AddChild(d.scoreText)
	game.UI().AddChild(d.hpBar)
	d.sparks = game.AddEmitter(codeboard.NewParticleEmitter(0, 0, codeboard.EmitterConfig{
		MaxParticles: 64,
		Lifetime:     codeboard.Range{Min: 0.3, Max: 0.7},
		Speed:        codeboard.Range{Min: 60, Max: 160},
		Angle:        codeboard.Range{Max: 2 * math.Pi},
		Spin:         codeboard.Range{Min: -4, Max: 4},
		Accel:        -120,
		Frames:       []codeboard.ParticleShape{codeboard.SquareShape(2), {{0, 1, 0}, {1, 2, 1}, {0, 1, 0}}},
		PixelSize:    2,
		Palette:      []codeboard.Color{codeboard.MustHexColor("#ffd54f"), codeboard.ColorWhite},
		Fade:         true,
		Seed:         seed,
	}))

	game.ScheduleTask(d.spawnRock, codeboard.TaskOptions{ID: "rocks", Time: rockEvery, Loop: true, Delay: time.Second})
	game.ScheduleTask(d.spawnCoin, codeboard.TaskOptions{ID: "coins", Time: coinEvery, Loop: true})

	e.Stack().Shortcuts.Bind("Escape", e.TogglePause)
	e.PlayMusic("theme", codeboard.SoundOptions{Global: true, Volume: -1})

	d.reset()
	return d, nil
}

// Score returns the points collected since the last restart.
func (d *dodge) Score() int { return d.score }

func (d *dodge) reset() {
	w, h := d.engine.Size()
	d.score = 0
	d.ship = d.ships.Spawn("", codeboard.WithPosition(w/2, h-60), func(e *codeboard.Entity) {
		e.OnUpdate = d.steer
		e.OnCollide = d.hit
		e.OnLevelUp = func(*codeboard.Entity) {
			d.engine.PlaySoundEffect("bell", codeboard.SoundOptions{})
		}
	})
	d.hpBar.Value, d.hpBar.Max = d.ship.HP, d.ship.MaxHP
	d.updateScore()
}

// burst throws n sparks from (x, y).
func (d *dodge) burst(x, y float64, n int) {
	d.sparks.X, d.sparks.Y = x, y
	d.sparks.Emit(n)
}

func (d *dodge) updateScore() {
	d.scoreText.Text = fmt.Sprintf("Score: %d", d.score)
}

func (d *dodge) steer(ship *codeboard.Entity, dt float64) {
	if dir, ok := codeboard.MovementDirection(d.engine.Input(), false); ok {
		ship.Velocity = codeboard.Velocity{Direction: dir, Speed: shipSpeed}
	} else {
		ship.Velocity.Speed = 0
	}
	w, h := d.engine.Size()
	half := ship.Size / 2
	ship.X = math.Min(math.Max(ship.X, half), w-half)
	ship.Y = math.Min(math.Max(ship.Y, half), h-half)
}

func (d *dodge) hit(ship, other *codeboard.Entity) {
	switch other.Group {
	case "Rock":
		other.Despawn()
		ship.HP--
		d.hpBar.Value = ship.HP
		d.engine.PlaySoundEffect("buzz", codeboard.SoundOptions{})
		d.burst(other.X, other.Y, 24)
		if ship.HP <= 0 {
			d.gameOver()
		}
	case "Coin":
		v := coinValue(other)
		other.Despawn()
		d.score += v
		d.updateScore()
		d.engine.PlaySoundEffect("coin", codeboard.SoundOptions{})
		d.burst(other.X, other.Y, 4*v)
		ship.AddXP(float64(v))
	}
}

func coinValue(coin *codeboard.Entity) int {
	switch v := coin.Data["value"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 1
}

// despawnOffscreen removes entities once they have left the playfield.
func (d *dodge) despawnOffscreen(e *codeboard.Entity) {
	e.OnUpdate = func(e *codeboard.Entity, _ float64) {
		w, h := d.engine.Size()
		if codeboard.OutOfBounds(e, w, h, -1) {
			e.Despawn()
		}
	}
}

func (d *dodge) spawnRock() {
	w, _ := d.engine.Size()
	kind := rockKinds[d.rng.IntN(len(rockKinds))]
	d.rocks.Spawn(kind, codeboard.WithPosition(d.rng.Float64()*w, -20), d.despawnOffscreen)
}

func (d *dodge) spawnCoin() {
	w, h := d.engine.Size()
	kind := ""
	if d.rng.Float64() < 0.1 {
		kind = "gold"
	}
	d.coins.Spawn(kind, codeboard.WithPosition(20+d.rng.Float64()*(w-40), h/3+d.rng.Float64()*h/2))
}

func (d *dodge) gameOver() {
	d.ship.Despawn()
	d.engine.Log().Info("game over", zap.Int("score", d.score))
	w, h := d.engine.Size()

	panel := codeboard.NewRect(w/2-150, h/2-50, 300, 100, codeboard.Style{
		Fill:        codeboard.MustHexColor("#202030e0"),
		Stroke:      codeboard.ColorWhite,
		StrokeWidth: 2,
	})
	title := codeboard.TextStyle{Color: codeboard.ColorWhite, Size: 24, Align: codeboard.TextAlignCenter}
	hint := codeboard.TextStyle{Color: codeboard.MustHexColor("#bbbbbb"), Size: 14, Align: codeboard.TextAlignCenter}
	panel.AddChild(codeboard.NewText(150, 20, "GAME OVER", title))
	panel.AddChild(codeboard.NewText(150, 60, fmt.Sprintf("score %d, press R", d.score), hint))
	panel.OnClose = func(*codeboard.Element) { d.restart() }

	l := panel.Show(d.engine.Stack(), false)
	l.BindKeyDown("KeyR", panel.Close)
}

func (d *dodge) restart() {
	d.rocks.ForEvery((*codeboard.Entity).Despawn)
	d.coins.ForEvery((*codeboard.Entity).Despawn)
	d.sparks.Reset()
	d.reset()
}

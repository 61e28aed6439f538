package ebitenhost

import (
	"math"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeboardgames/codeboard"
)

var solid = codeboard.Style{Fill: codeboard.ColorWhite}

func TestRecorderTranslateScale(t *testing.T) {
	r := NewRecorder(100, 100)
	r.Translate(10, 20)
	r.Scale(2, 2)
	r.DrawRect(1, 1, 4, 4, solid)

	require.Equal(t, 1, r.Len())
	v := r.cmds[0].verts
	require.Len(t, v, 4)
	assert.InDelta(t, 12, v[0].DstX, 1e-6)
	assert.InDelta(t, 22, v[0].DstY, 1e-6)
	assert.InDelta(t, 20, v[2].DstX, 1e-6)
	assert.InDelta(t, 30, v[2].DstY, 1e-6)
	assert.Len(t, r.cmds[0].inds, 6)
}

func TestRecorderRotateIsLocal(t *testing.T) {
	r := NewRecorder(100, 100)
	r.Translate(50, 50)
	r.Rotate(math.Pi / 2)
	r.DrawPolygon([]codeboard.Vec2{{X: 10}, {X: 10, Y: 1}, {X: 11}}, solid)

	v := r.cmds[0].verts
	assert.InDelta(t, 50, v[0].DstX, 1e-4)
	assert.InDelta(t, 60, v[0].DstY, 1e-4)
}

func TestRecorderSaveRestore(t *testing.T) {
	r := NewRecorder(100, 100)
	r.Save()
	r.Translate(5, 5)
	r.Save()
	r.Scale(3, 3)
	assert.Equal(t, 2, r.Depth())
	r.Restore()
	r.Restore()
	r.Restore() // unmatched restore is ignored
	assert.Equal(t, 0, r.Depth())

	r.DrawText("hi", 1, 2, codeboard.TextStyle{})
	assert.Equal(t, 1.0, r.cmds[0].x)
	assert.Equal(t, 2.0, r.cmds[0].y)
}

func TestRecorderStrokeAndFill(t *testing.T) {
	r := NewRecorder(100, 100)
	r.DrawCircle(0, 0, 5, codeboard.Style{
		Fill:        codeboard.ColorBlack,
		Stroke:      codeboard.ColorWhite,
		StrokeWidth: 2,
	})
	require.Equal(t, 2, r.Len())
	assert.Len(t, r.cmds[0].verts, circleSegments)
	assert.Len(t, r.cmds[1].verts, 4*circleSegments)

	// Stroke without width draws nothing.
	r.Reset()
	r.DrawRect(0, 0, 1, 1, codeboard.Style{Stroke: codeboard.ColorWhite})
	assert.Equal(t, 0, r.Len())
}

func TestRecorderHoverStyle(t *testing.T) {
	r := NewRecorder(100, 100)
	red := codeboard.MustHexColor("#ff0000")
	r.DrawRect(0, 0, 1, 1, codeboard.Style{Fill: codeboard.ColorWhite, HoverFill: red, Hovered: true})
	assert.Equal(t, float32(0), r.cmds[0].verts[0].ColorG)
	assert.Equal(t, float32(1), r.cmds[0].verts[0].ColorR)
}

func TestRecorderTextAlign(t *testing.T) {
	r := NewRecorder(100, 100)
	r.DrawText("abcd", 50, 0, codeboard.TextStyle{Align: codeboard.TextAlignCenter})
	r.DrawText("abcd", 50, 0, codeboard.TextStyle{Align: codeboard.TextAlignRight})
	assert.Equal(t, 50.0-12, r.cmds[0].x)
	assert.Equal(t, 50.0-24, r.cmds[1].x)
}

func TestRecorderImageScale(t *testing.T) {
	r := NewRecorder(100, 100)
	r.sizes = func(string) (float64, float64, bool) { return 8, 4, true }
	r.Translate(10, 0)
	r.DrawImage("ship", 1, 1, codeboard.ImageStyle{Width: 16, Height: 16})

	require.Equal(t, 1, r.Len())
	x, y := r.cmds[0].geo.Apply(8, 4)
	assert.InDelta(t, 10+1+16, x, 1e-9)
	assert.InDelta(t, 1+16, y, 1e-9)
	assert.Equal(t, 1.0, r.cmds[0].alpha)
}

func TestKeyCodes(t *testing.T) {
	assert.Equal(t, "KeyA", KeyCode(ebiten.KeyA))
	assert.Equal(t, "KeyZ", KeyCode(ebiten.KeyZ))
	assert.Equal(t, "Digit7", KeyCode(ebiten.KeyDigit7))
	assert.Equal(t, "F12", KeyCode(ebiten.KeyF12))
	assert.Equal(t, "ArrowLeft", KeyCode(ebiten.KeyArrowLeft))
	assert.Equal(t, "Space", KeyCode(ebiten.KeySpace))

	assert.Equal(t, "q", keyText(ebiten.KeyQ, 0))
	assert.Equal(t, "Q", keyText(ebiten.KeyQ, codeboard.ModShift))
	assert.Equal(t, "", keyText(ebiten.KeyArrowUp, 0))
}

func TestClockFlush(t *testing.T) {
	c := NewClock()
	var got float64
	c.RequestFrame(func(ts float64) { got = ts })
	assert.True(t, c.Flush(c.Now()))
	assert.GreaterOrEqual(t, got, 0.0)
	assert.False(t, c.Flush(c.Now()))
}

package codeboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#fff", ColorWhite},
		{"000000", ColorBlack},
		{" #ff0000 ", Color{1, 0, 0, 1}},
		{"#00ff0000", Color{0, 1, 0, 0}},
		{"#0000FF", Color{0, 0, 1, 1}},
	}
	for _, tt := range tests {
		got, err := HexColor(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "#ff", "#12345", "#gggggg", "red"} {
		_, err := HexColor(bad)
		assert.Error(t, err, bad)
	}
	assert.Panics(t, func() { MustHexColor("nope") })
}

func TestColorHexAndLerp(t *testing.T) {
	assert.Equal(t, "#ff8000", Color{1, 0.5, 0, 1}.Hex())
	assert.Equal(t, "#ffffff", Color{2, 1, 1, 1}.Hex(), "channels clamp")

	mid := ColorBlack.Lerp(ColorWhite, 0.5)
	assert.Equal(t, Color{0.5, 0.5, 0.5, 1}, mid)
	assert.True(t, ColorTransparent.IsZero())
	assert.False(t, ColorBlack.IsZero())
}

func TestParseShape(t *testing.T) {
	assert.Equal(t, ShapeCircle, ParseShape("Circle"))
	assert.Equal(t, ShapeRect, ParseShape("square"))
	assert.Equal(t, ShapeArrow, ParseShape("arrow"))
	assert.Equal(t, ShapeRect, ParseShape("hexagon"))
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 5, Height: 5}
	assert.True(t, r.Contains(15, 15))
	assert.False(t, r.Contains(9, 12))
	assert.Equal(t, 7.5, Interpolate(5, 10, 0.5))
}

package fonts

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"#ff0000", color.RGBA{255, 0, 0, 255}},
		{"#0f0", color.RGBA{0, 255, 0, 255}},
		{"#00000080", color.RGBA{0, 0, 0, 128}},
		{"#ff000080", color.RGBA{128, 0, 0, 128}},
		{"#ffffff00", color.RGBA{0, 0, 0, 0}},
		{"White", color.RGBA{255, 255, 255, 255}},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	for _, bad := range []string{"", "red-ish", "#12345", "#zzzzzz"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestFaceIsCached(t *testing.T) {
	s := Style{SizePx: 18, Family: "sans-serif", Weight: "bold"}
	a, err := Face(s)
	require.NoError(t, err)
	b, err := Face(s)
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestMeasureGrowsWithSize(t *testing.T) {
	w1, h1, err := Measure(Style{SizePx: 12}, "hello")
	require.NoError(t, err)
	w2, h2, err := Measure(Style{SizePx: 24}, "hello")
	require.NoError(t, err)
	assert.Greater(t, w2, w1)
	assert.Greater(t, h2, h1)

	w0, _, err := Measure(Style{SizePx: 24}, "")
	require.NoError(t, err)
	assert.Zero(t, w0)
}

func TestMonospaceFamily(t *testing.T) {
	name, _ := fontFile("monospace", "bold")
	assert.Equal(t, "gomonobold", name)
	name, _ = fontFile("Arial", "500")
	assert.Equal(t, "gomedium", name)
}

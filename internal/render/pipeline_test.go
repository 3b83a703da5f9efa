package render

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/imgedit/internal/fonts"
	"github.com/example/imgedit/internal/geom"
	"github.com/example/imgedit/internal/imagestore"
)

func halves(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{R: 255, A: 255}
			if x >= w/2 {
				c = color.RGBA{B: 255, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestRenderKeepsNativeSizeWhenRotated(t *testing.T) {
	store := imagestore.New()
	store.Add("photo.png", halves(800, 600))
	_, err := store.SetFilter("brightness", 150)
	require.NoError(t, err)
	_, err = store.SetFilter("blur", 5)
	require.NoError(t, err)
	require.True(t, store.RotateRight())

	s := Render(store.Current())
	require.False(t, s.Empty())
	assert.Equal(t, image.Rect(0, 0, 800, 600), s.Image.Bounds())
	b := strings.Index(s.Filter, "brightness(150%)")
	bl := strings.Index(s.Filter, "blur(5px)")
	require.GreaterOrEqual(t, b, 0)
	require.GreaterOrEqual(t, bl, 0)
	assert.Less(t, b, bl)
}

func TestRotatedCornersAreTransparent(t *testing.T) {
	store := imagestore.New()
	store.Add("wide.png", halves(40, 20))
	store.RotateRight()

	s := Render(store.Current())
	assert.Equal(t, uint8(0), s.Image.RGBAAt(1, 1).A)
	assert.Equal(t, uint8(255), s.Image.RGBAAt(20, 10).A)
}

func TestFlipHorizontalMirrorsAndInvolutes(t *testing.T) {
	store := imagestore.New()
	store.Add("halves.png", halves(20, 10))
	before := Render(store.Current())

	store.FlipHorizontal()
	flipped := Render(store.Current())
	assert.Equal(t, color.RGBA{B: 255, A: 255}, flipped.Image.RGBAAt(2, 5))
	assert.Equal(t, color.RGBA{R: 255, A: 255}, flipped.Image.RGBAAt(17, 5))

	store.FlipHorizontal()
	after := Render(store.Current())
	assert.Equal(t, before.Image.Pix, after.Image.Pix)
}

func TestRendererReusesBuffer(t *testing.T) {
	store := imagestore.New()
	store.Add("a.png", halves(10, 10))
	r := NewRenderer()
	first := r.Render(store.Current())
	store.FlipVertical()
	second := r.Render(store.Current())
	assert.Same(t, first.Image, second.Image)
	assert.Equal(t, second, r.Surface())

	r.Render(nil)
	assert.True(t, r.Surface().Empty())
}

func TestTextIsDrawnAboveFilteredImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 120, 60))
	for i := range img.Pix {
		img.Pix[i] = 0
	}
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	store := imagestore.New()
	store.Add("black.png", img)
	store.SetFilter("grayscale", 100)
	store.SetTexts([]imagestore.TextAnnotation{{
		ID:       "t1",
		Content:  "HELLO",
		Position: geom.Pt(10, 40),
		Style:    fonts.Style{Color: "#ff0000", SizePx: 24},
	}})

	s := Render(store.Current())
	red := 0
	for y := 0; y < 60; y++ {
		for x := 0; x < 120; x++ {
			c := s.Image.RGBAAt(x, y)
			if c.R > 200 && c.G < 50 {
				red++
			}
		}
	}
	assert.Greater(t, red, 20, "text should keep its own colour")
}

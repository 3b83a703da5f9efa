package ui

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/mobile/event/key"

	"github.com/example/imgedit/internal/editor"
	"github.com/example/imgedit/internal/fonts"
	"github.com/example/imgedit/internal/geom"
	"github.com/example/imgedit/internal/input"
	"github.com/example/imgedit/internal/theme"
)

type fixedMeasurer struct{}

func (fixedMeasurer) Measure(s fonts.Style, text string) (float64, float64) {
	k := s.SizePx / 20
	return float64(len([]rune(text))) * 10 * k, 20 * k
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestController(t *testing.T) (*controller, *clock) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	log := logrus.NewEntry(logger)
	ed := editor.New(
		editor.WithMeasurer(fixedMeasurer{}),
		editor.WithLogger(log),
		editor.WithTextStyle(fonts.Style{Color: "#ffffff", SizePx: 20, Family: "sans-serif", Weight: "normal"}),
		editor.WithClipboard(
			func(image.Image) error { return nil },
			func() (image.Image, error) { return nil, os.ErrNotExist },
		),
	)
	c := newController(ed, theme.Light())
	c.log = log
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c.now = clk.now
	return c, clk
}

func press(r rune) key.Event {
	return key.Event{Rune: r, Direction: key.DirPress}
}

func pressCode(c key.Code, mods key.Modifiers) key.Event {
	return key.Event{Rune: -1, Code: c, Modifiers: mods, Direction: key.DirPress}
}

func ctrl(r rune) key.Event {
	return key.Event{Rune: r, Modifiers: key.ModControl, Direction: key.DirPress}
}

func typeString(c *controller, s string) {
	for _, r := range s {
		c.key(press(r))
	}
}

func loadRed(c *controller, w, h int) {
	c.ed.AddImage("red.png", imaging.New(w, h, color.NRGBA{R: 255, A: 255}))
	c.resize(1000, 800)
}

func TestResizeSetsDisplay(t *testing.T) {
	c, _ := newTestController(t)
	loadRed(c, 2000, 1000)
	assert.Equal(t, image.Rect(20, 149, 980, 629), c.canvas)
	assert.Equal(t, geom.Size{W: 960, H: 480}, c.ed.DisplaySize())
}

func TestTypeNewText(t *testing.T) {
	c, _ := newTestController(t)
	loadRed(c, 100, 50)

	c.key(press('t'))
	require.True(t, c.typing)
	typeString(c, "hiq")
	c.key(pressCode(key.CodeDeleteBackspace, 0))
	assert.Contains(t, c.status(), "Text: hi_")
	assert.False(t, c.quit, "shortcuts are off while typing")

	c.key(pressCode(key.CodeReturnEnter, 0))
	assert.False(t, c.typing)
	texts := c.ed.Current().Texts
	require.Len(t, texts, 1)
	assert.Equal(t, "hi", texts[0].Content)
}

func TestEscapeDiscardsDraft(t *testing.T) {
	c, _ := newTestController(t)
	loadRed(c, 100, 50)
	c.key(press('t'))
	typeString(c, "gone")
	c.key(pressCode(key.CodeEscape, 0))
	assert.False(t, c.typing)
	assert.Empty(t, c.ed.Current().Texts)
}

func TestEditFocusedText(t *testing.T) {
	c, _ := newTestController(t)
	loadRed(c, 100, 50)
	c.key(press('t'))
	typeString(c, "hi")
	c.key(pressCode(key.CodeReturnEnter, 0))

	c.key(press('e'))
	require.NotEmpty(t, c.ed.FocusedText())
	typeString(c, "x")
	assert.Equal(t, "hix", c.ed.Current().Texts[0].Content)
	c.key(pressCode(key.CodeDeleteBackspace, 0))
	assert.Equal(t, "hi", c.ed.Current().Texts[0].Content)

	c.key(ctrl('b'))
	assert.Equal(t, "bold", c.ed.Current().Texts[0].Style.Weight)
	c.key(ctrl('k'))
	assert.Equal(t, "#000000", c.ed.Current().Texts[0].Style.Color)
	c.key(pressCode(key.CodeUpArrow, key.ModControl))
	assert.Equal(t, 22.0, c.ed.Current().Texts[0].Style.SizePx)

	c.key(pressCode(key.CodeReturnEnter, 0))
	assert.Empty(t, c.ed.FocusedText())

	c.key(press('e'))
	c.key(pressCode(key.CodeDeleteForward, 0))
	assert.Empty(t, c.ed.Current().Texts)
}

func TestFilterKeys(t *testing.T) {
	c, _ := newTestController(t)
	loadRed(c, 10, 10)

	c.key(press('6'))
	assert.Equal(t, "blur", c.filterName())
	c.key(press('+'))
	c.key(press('+'))
	assert.Equal(t, 2.0, c.ed.Current().Filters.Blur)
	c.key(press('-'))
	assert.Equal(t, 1.0, c.ed.Current().Filters.Blur)

	c.key(press('1'))
	c.key(press('+'))
	assert.Equal(t, 110.0, c.ed.Current().Filters.Brightness)
	assert.Contains(t, c.status(), "brightness 110")
}

func TestTransformKeys(t *testing.T) {
	c, _ := newTestController(t)
	loadRed(c, 10, 10)
	c.key(press(']'))
	assert.Equal(t, 90, c.ed.Current().Rotation)
	c.key(press('h'))
	c.key(press('v'))
	assert.True(t, c.ed.Current().FlipH)
	assert.True(t, c.ed.Current().FlipV)
	c.key(press('r'))
	assert.Zero(t, c.ed.Current().Rotation)
	assert.Equal(t, "image reset", c.currentMessage())
}

func TestCropWithPointerAndEnter(t *testing.T) {
	c, clk := newTestController(t)
	loadRed(c, 100, 50)
	origin := c.canvas.Min

	c.key(press('c'))
	require.True(t, c.ed.Cropping())
	r, _ := c.ed.CropRegion()
	assert.Equal(t, geom.Pt(30, 5), r.Start)

	at := func(x, y float64, ph input.Phase) input.Pointer {
		return input.Pointer{X: float64(origin.X) + x, Y: float64(origin.Y) + y, Phase: ph}
	}
	assert.True(t, c.pointer(at(50, 25, input.Down)))
	assert.True(t, c.pointer(at(55, 30, input.Move)))
	c.pointer(at(55, 30, input.Up))
	r, _ = c.ed.CropRegion()
	assert.Equal(t, geom.Pt(35, 10), r.Start)

	f := c.frame()
	assert.Equal(t, image.Rect(35, 10, 75, 50).Add(origin), f.Crop)
	assert.Len(t, f.Handles, 4)

	c.key(pressCode(key.CodeReturnEnter, 0))
	assert.False(t, c.ed.Cropping())
	assert.Equal(t, geom.Size{W: 40, H: 40}, c.ed.Current().Size())
	assert.Equal(t, "cropped", c.currentMessage())

	clk.t = clk.t.Add(3 * time.Second)
	assert.Empty(t, c.currentMessage())
}

func TestEscapeCancelsCrop(t *testing.T) {
	c, _ := newTestController(t)
	loadRed(c, 100, 50)
	c.key(press('c'))
	c.key(pressCode(key.CodeEscape, 0))
	assert.False(t, c.ed.Cropping())
	assert.Equal(t, geom.Size{W: 100, H: 50}, c.ed.Current().Size())
}

func TestImageNavigationKeys(t *testing.T) {
	c, _ := newTestController(t)
	a := c.ed.AddImage("a.png", imaging.New(10, 10, color.NRGBA{A: 255}))
	b := c.ed.AddImage("b.png", imaging.New(20, 10, color.NRGBA{A: 255}))
	c.resize(1000, 800)
	require.Equal(t, a.ID, c.ed.Current().ID)

	c.key(pressCode(key.CodeTab, 0))
	assert.Equal(t, b.ID, c.ed.Current().ID)
	c.relayout()
	assert.Equal(t, geom.Size{W: 20, H: 10}, c.ed.DisplaySize())

	c.key(pressCode(key.CodeTab, key.ModShift))
	assert.Equal(t, a.ID, c.ed.Current().ID)

	c.key(ctrl('w'))
	assert.Equal(t, 1, c.ed.Store().Len())
}

func TestSaveKey(t *testing.T) {
	c, _ := newTestController(t)
	c.saveDir = t.TempDir()
	loadRed(c, 10, 10)
	c.key(press('s'))
	_, err := os.Stat(filepath.Join(c.saveDir, editor.ExportName))
	assert.NoError(t, err)
	assert.Contains(t, c.currentMessage(), "saved ")
}

func TestPasteFailureIsReported(t *testing.T) {
	c, _ := newTestController(t)
	c.key(ctrl('v'))
	assert.Contains(t, c.currentMessage(), "paste failed")
}

func TestThemeToggle(t *testing.T) {
	c, _ := newTestController(t)
	var got string
	c.onTheme = func(name string) { got = name }
	c.key(press('d'))
	assert.Equal(t, theme.DarkName, c.theme.Name)
	assert.Equal(t, theme.DarkName, got)
	c.key(press('d'))
	assert.Equal(t, theme.LightName, c.theme.Name)
}

func TestQuitKey(t *testing.T) {
	c, _ := newTestController(t)
	c.key(key.Event{Rune: 'q', Direction: key.DirRelease})
	assert.False(t, c.quit)
	c.key(press('q'))
	assert.True(t, c.quit)
}

func TestFrameWithoutImage(t *testing.T) {
	c, _ := newTestController(t)
	c.resize(400, 300)
	f := c.frame()
	assert.Nil(t, f.Image)
	assert.Contains(t, f.Status, "No image")
}

func TestFrameScalesSurface(t *testing.T) {
	c, _ := newTestController(t)
	loadRed(c, 2000, 1000)
	f := c.frame()
	require.NotNil(t, f.Image)
	assert.Equal(t, c.canvas.Size(), f.Image.Bounds().Size())
	assert.Equal(t, color.RGBA{R: 255, A: 255}, f.Image.RGBAAt(10, 10))
}

func TestShortcutOf(t *testing.T) {
	assert.Equal(t, KeyShortcut{Rune: '+'}, shortcutOf(key.Event{Rune: '+', Modifiers: key.ModShift}))
	assert.Equal(t, KeyShortcut{Rune: 'c', Modifiers: key.ModControl}, shortcutOf(key.Event{Rune: 'C', Modifiers: key.ModControl | key.ModShift}))
	assert.Equal(t, KeyShortcut{Rune: -1, Code: key.CodeReturnEnter}, shortcutOf(key.Event{Rune: '\r', Code: key.CodeReturnEnter}))
	assert.Equal(t, KeyShortcut{Rune: -1, Code: key.CodeTab, Modifiers: key.ModShift}, shortcutOf(key.Event{Rune: '\t', Code: key.CodeTab, Modifiers: key.ModShift}))
}

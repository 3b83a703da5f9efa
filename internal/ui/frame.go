package ui

import (
	"context"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/imgedit/internal/render"
	"github.com/example/imgedit/internal/theme"
)

var statusFace = basicfont.Face7x13

// Frame is a snapshot of everything painted in one window refresh. All
// rectangles are in window coordinates.
type Frame struct {
	Width, Height int
	Theme         *theme.Theme

	Canvas image.Rectangle
	// Image is the rendered surface already scaled to Canvas.
	Image *image.RGBA
	// ShadowKey changes whenever the silhouette of Image may have changed.
	ShadowKey any

	Crop    image.Rectangle
	Handles []image.Rectangle
	Focus   image.Rectangle

	Status  string
	Message string
}

type shadowCache struct {
	key    any
	canvas image.Rectangle
	result render.ShadowResult
}

// shadow returns the drop shadow for f, reusing the last one when neither
// the silhouette nor the canvas changed.
func (c *shadowCache) shadow(f Frame) render.ShadowResult {
	if c.result.Image != nil && c.key == f.ShadowKey && c.canvas == f.Canvas {
		return c.result
	}
	c.key = f.ShadowKey
	c.canvas = f.Canvas
	opts := render.DefaultShadowOptions()
	opts.Color = color.NRGBA{R: f.Theme.Shadow.R, G: f.Theme.Shadow.G, B: f.Theme.Shadow.B, A: 255}
	c.result = render.ApplyShadow(f.Image, opts)
	return c.result
}

// Compose paints f into dst. It stops early once ctx is cancelled.
func Compose(ctx context.Context, dst *image.RGBA, f Frame, shadows *shadowCache) {
	th := f.Theme
	if th == nil {
		th = theme.Default()
	}
	draw.Draw(dst, dst.Bounds(), &image.Uniform{th.Background}, image.Point{}, draw.Src)

	if f.Image != nil && !f.Canvas.Empty() {
		if shadows != nil {
			sh := shadows.shadow(f)
			at := f.Canvas.Min.Sub(sh.Offset)
			draw.Draw(dst, sh.Image.Bounds().Add(at), sh.Image, image.Point{}, draw.Over)
		}
		if ctx.Err() != nil {
			return
		}
		drawCheckerboard(dst, f.Canvas, checkerSize, th.CheckerLight, th.CheckerDark)
		draw.Draw(dst, f.Canvas, f.Image, f.Image.Bounds().Min, draw.Over)
	}
	if ctx.Err() != nil {
		return
	}

	if !f.Crop.Empty() {
		shadeOutside(dst, f.Canvas, f.Crop, th.CropShade)
		drawDashedRect(dst, f.Crop, 4, 1, th.CropOutline, th.HandleBorder)
		for _, hr := range f.Handles {
			draw.Draw(dst, hr, &image.Uniform{th.HandleFill}, image.Point{}, draw.Src)
			drawRect(dst, hr, th.HandleBorder, 1)
		}
	}
	if !f.Focus.Empty() {
		drawRect(dst, f.Focus.Inset(-2), th.TextFocus, 1)
	}
	if ctx.Err() != nil {
		return
	}

	sr := statusRect(f.Width, f.Height)
	draw.Draw(dst, sr, &image.Uniform{th.StatusBackground}, image.Point{}, draw.Src)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.StatusText), Face: statusFace}
	ascent := statusFace.Metrics().Ascent.Ceil()
	d.Dot = fixed.P(sr.Min.X+6, sr.Min.Y+(statusHeight+ascent)/2-1)
	d.DrawString(f.Status)

	if f.Message != "" {
		drawMessage(dst, f.Width, f.Height-statusHeight, f.Message, th)
	}
}

func drawMessage(dst *image.RGBA, w, h int, msg string, th *theme.Theme) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.Foreground), Face: statusFace}
	wmsg := d.MeasureString(msg).Ceil()
	ascent := statusFace.Metrics().Ascent.Ceil()
	descent := statusFace.Metrics().Descent.Ceil()
	px := (w - wmsg) / 2
	py := (h-ascent-descent)/2 + ascent
	rect := image.Rect(px-8, py-ascent-8, px+wmsg+8, py+descent+8)
	bg := th.StatusBackground
	bg.A = 230
	draw.Draw(dst, rect, &image.Uniform{bg}, image.Point{}, draw.Over)
	drawRect(dst, rect, th.Foreground, 1)
	d.Dot = fixed.P(px, py)
	d.DrawString(msg)
}

// drawCheckerboard fills rect of dst with a checkerboard pattern of the given
// colors. size controls the checker square size.
func drawCheckerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.Color) {
	rect = rect.Intersect(dst.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if (((x-rect.Min.X)/size)+((y-rect.Min.Y)/size))%2 == 0 {
				dst.Set(x, y, light)
			} else {
				dst.Set(x, y, dark)
			}
		}
	}
}

// shadeOutside dims the part of canvas not covered by sel.
func shadeOutside(dst *image.RGBA, canvas, sel image.Rectangle, c color.RGBA) {
	src := &image.Uniform{c}
	in := sel.Intersect(canvas)
	if in.Empty() {
		draw.Draw(dst, canvas, src, image.Point{}, draw.Over)
		return
	}
	for _, r := range []image.Rectangle{
		image.Rect(canvas.Min.X, canvas.Min.Y, canvas.Max.X, in.Min.Y),
		image.Rect(canvas.Min.X, in.Max.Y, canvas.Max.X, canvas.Max.Y),
		image.Rect(canvas.Min.X, in.Min.Y, in.Min.X, in.Max.Y),
		image.Rect(in.Max.X, in.Min.Y, canvas.Max.X, in.Max.Y),
	} {
		if !r.Empty() {
			draw.Draw(dst, r, src, image.Point{}, draw.Over)
		}
	}
}

func drawDashedLine(img *image.RGBA, x0, y0, x1, y1, dash, thickness int, c1, c2 color.Color) {
	horiz := y0 == y1
	length := x1 - x0
	if !horiz {
		length = y1 - y0
	}
	step := 1
	if length < 0 {
		length = -length
		step = -1
	}
	for i := 0; i <= length; i++ {
		col := c1
		if (i/dash)%2 == 1 {
			col = c2
		}
		for t := 0; t < thickness; t++ {
			if horiz {
				img.Set(x0+i*step, y0+t, col)
			} else {
				img.Set(x0+t, y0+i*step, col)
			}
		}
	}
}

// drawDashedRect outlines rect with alternating dashes of c1 and c2.
func drawDashedRect(img *image.RGBA, rect image.Rectangle, dash, thickness int, c1, c2 color.Color) {
	maxX, maxY := rect.Max.X-1, rect.Max.Y-1
	drawDashedLine(img, rect.Min.X, rect.Min.Y, maxX, rect.Min.Y, dash, thickness, c1, c2)
	drawDashedLine(img, maxX, rect.Min.Y, maxX, maxY, dash, thickness, c1, c2)
	drawDashedLine(img, maxX, maxY, rect.Min.X, maxY, dash, thickness, c1, c2)
	drawDashedLine(img, rect.Min.X, maxY, rect.Min.X, rect.Min.Y, dash, thickness, c1, c2)
}

func drawRect(img *image.RGBA, rect image.Rectangle, col color.Color, thick int) {
	src := &image.Uniform{col}
	draw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+thick), src, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(rect.Min.X, rect.Max.Y-thick, rect.Max.X, rect.Max.Y), src, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+thick, rect.Max.Y), src, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(rect.Max.X-thick, rect.Min.Y, rect.Max.X, rect.Max.Y), src, image.Point{}, draw.Src)
}

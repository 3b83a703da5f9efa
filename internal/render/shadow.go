package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
)

// ShadowOptions configures the drop shadow drawn under the canvas in the
// editor window.
type ShadowOptions struct {
	Radius  float64
	Offset  image.Point
	Opacity float64
	Color   color.NRGBA
}

// ShadowResult captures the output of ApplyShadow.
type ShadowResult struct {
	// Image is the canvas composited over its shadow, zero based.
	Image *image.NRGBA
	// Offset is where the canvas's top-left corner landed inside Image.
	Offset image.Point
}

// DefaultShadowOptions returns the shadow used around the editing canvas.
func DefaultShadowOptions() ShadowOptions {
	return ShadowOptions{
		Radius:  8,
		Offset:  image.Pt(6, 6),
		Opacity: 0.45,
		Color:   color.NRGBA{A: 255},
	}
}

// ApplyShadow composites img over a blurred silhouette of itself. The
// silhouette takes the alpha of img, so transparent corners of a rotated
// image cast no shadow.
func ApplyShadow(img image.Image, opts ShadowOptions) ShadowResult {
	if img == nil {
		return ShadowResult{}
	}
	src := imaging.Clone(img)
	if src.Bounds().Empty() || opts.Opacity <= 0 {
		return ShadowResult{Image: src}
	}
	opacity := opts.Opacity
	if opacity > 1 {
		opacity = 1
	}
	pad := int(opts.Radius*2 + 0.5)
	if pad < 0 {
		pad = 0
	}

	b := src.Bounds()
	silhouette := image.NewNRGBA(image.Rect(0, 0, b.Dx()+2*pad, b.Dy()+2*pad))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			a := src.NRGBAAt(x, y).A
			if a == 0 {
				continue
			}
			c := opts.Color
			c.A = uint8(float64(a) * opacity)
			silhouette.SetNRGBA(x+pad, y+pad, c)
		}
	}
	if opts.Radius > 0 {
		silhouette = imaging.Blur(silhouette, opts.Radius)
	}

	shadowAt := opts.Offset.Sub(image.Pt(pad, pad))
	union := b.Union(silhouette.Bounds().Add(shadowAt))
	dst := image.NewNRGBA(union.Sub(union.Min))
	draw.Draw(dst, silhouette.Bounds().Add(shadowAt).Sub(union.Min), silhouette, image.Point{}, draw.Over)
	offset := b.Min.Sub(union.Min)
	draw.Draw(dst, b.Add(offset), src, image.Point{}, draw.Over)
	return ShadowResult{Image: dst, Offset: offset}
}

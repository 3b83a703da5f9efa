// Package render composites an image entry into the pixel buffer that is
// shown on screen and exported.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/fogleman/gg"
	"github.com/sirupsen/logrus"

	"github.com/example/imgedit/internal/filters"
	"github.com/example/imgedit/internal/fonts"
	"github.com/example/imgedit/internal/imagestore"
)

// Surface is the result of a render: the composited pixels plus the filter
// description that was applied to the image layer.
type Surface struct {
	Image  *image.RGBA
	Filter string
}

// Empty reports whether the surface holds no pixels.
func (s Surface) Empty() bool {
	return s.Image == nil || s.Image.Bounds().Empty()
}

// Renderer owns a single output buffer and redraws it in place.
type Renderer struct {
	mu      sync.Mutex
	surface Surface
}

// NewRenderer returns a renderer with no surface yet.
func NewRenderer() *Renderer { return &Renderer{} }

// Surface returns the most recently rendered surface.
func (r *Renderer) Surface() Surface {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.surface
}

// Clear drops the current surface.
func (r *Renderer) Clear() {
	r.mu.Lock()
	r.surface = Surface{}
	r.mu.Unlock()
}

// Render draws e into the renderer's buffer, reallocating only when the
// native size changes, and returns the updated surface.
func (r *Renderer) Render(e *imagestore.Entry) Surface {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e == nil || e.Source == nil {
		r.surface = Surface{}
		return r.surface
	}
	b := e.Source.Bounds()
	dst := r.surface.Image
	if dst == nil || dst.Bounds().Dx() != b.Dx() || dst.Bounds().Dy() != b.Dy() {
		dst = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	} else {
		draw.Draw(dst, dst.Bounds(), image.Transparent, image.Point{}, draw.Src)
	}
	r.surface = paint(dst, e)
	return r.surface
}

// Render composites e into a freshly allocated surface.
func Render(e *imagestore.Entry) Surface {
	if e == nil || e.Source == nil {
		return Surface{}
	}
	b := e.Source.Bounds()
	return paint(image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy())), e)
}

func paint(dst *image.RGBA, e *imagestore.Entry) Surface {
	if dst.Bounds().Empty() {
		return Surface{Image: dst, Filter: e.Filters.String()}
	}
	w := float64(dst.Bounds().Dx())
	h := float64(dst.Bounds().Dy())

	dc := gg.NewContextForRGBA(dst)
	dc.Translate(w/2, h/2)
	dc.Rotate(gg.Radians(float64(e.Rotation)))
	if e.FlipH {
		dc.Scale(-1, 1)
	}
	if e.FlipV {
		dc.Scale(1, -1)
	}

	layer := filters.Apply(e.Source, e.Filters)
	dc.DrawImageAnchored(layer, 0, 0, 0.5, 0.5)

	for _, t := range e.Texts {
		drawText(dc, t, w, h)
	}
	return Surface{Image: dst, Filter: e.Filters.String()}
}

func drawText(dc *gg.Context, t imagestore.TextAnnotation, w, h float64) {
	face, err := fonts.Face(t.Style)
	if err != nil {
		logrus.WithError(err).WithField("text", t.ID).Warn("skipping text annotation")
		return
	}
	col, err := fonts.ParseColor(t.Style.Color)
	if err != nil {
		col = color.RGBA{A: 255}
	}
	dc.SetFontFace(face)
	dc.SetColor(col)
	dc.DrawString(t.Content, t.Position.X-w/2, t.Position.Y-h/2)
}

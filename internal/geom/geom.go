// Package geom converts between the display space a user interacts with and
// the native pixel space of the image being edited.
package geom

import (
	"image"
	"math"
)

// Point is a position in either display or native space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Size is a width and height.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// SizeOf returns the dimensions of r.
func SizeOf(r image.Rectangle) Size {
	return Size{W: float64(r.Dx()), H: float64(r.Dy())}
}

// Empty reports whether either dimension is zero or negative.
func (s Size) Empty() bool { return s.W <= 0 || s.H <= 0 }

// Center returns the midpoint of a box of size s anchored at the origin.
func (s Size) Center() Point { return Point{s.W / 2, s.H / 2} }

// Rect is an axis aligned rectangle described by its top-left corner and
// its size. Width and height are never negative once normalised.
type Rect struct {
	Min  Point
	Size Size
}

// Max returns the bottom-right corner.
func (r Rect) Max() Point { return Point{r.Min.X + r.Size.W, r.Min.Y + r.Size.H} }

// Contains reports whether p lies inside r. The right and bottom edges are
// inclusive so a pointer sitting exactly on a border still hits.
func (r Rect) Contains(p Point) bool {
	max := r.Max()
	return p.X >= r.Min.X && p.X <= max.X && p.Y >= r.Min.Y && p.Y <= max.Y
}

// Image rounds r to the nearest integer pixel rectangle.
func (r Rect) Image() image.Rectangle {
	max := r.Max()
	return image.Rect(
		int(math.Round(r.Min.X)), int(math.Round(r.Min.Y)),
		int(math.Round(max.X)), int(math.Round(max.Y)),
	)
}

// Normalize returns the rectangle spanned by two corners given in any order.
func Normalize(a, b Point) Rect {
	return Rect{
		Min:  Point{math.Min(a.X, b.X), math.Min(a.Y, b.Y)},
		Size: Size{math.Abs(b.X - a.X), math.Abs(b.Y - a.Y)},
	}
}

// ClampRect translates r so that it lies within a box of the given bounds
// anchored at the origin. Its size is left untouched. When r is larger than
// bounds the top-left corner is pinned to zero.
func ClampRect(r Rect, bounds Size) Rect {
	r.Min.X = math.Max(0, math.Min(r.Min.X, bounds.W-r.Size.W))
	r.Min.Y = math.Max(0, math.Min(r.Min.Y, bounds.H-r.Size.H))
	return r
}

// Scale maps display coordinates onto native pixels.
type Scale struct {
	X, Y float64
}

// Identity is the scale of an image shown at its native size.
var Identity = Scale{X: 1, Y: 1}

// NewScale returns the factors native/display. A degenerate display falls
// back to Identity.
func NewScale(display, native Size) Scale {
	if display.Empty() || native.Empty() {
		return Identity
	}
	return Scale{X: native.W / display.W, Y: native.H / display.H}
}

// ToNative maps a display point into native space.
func (s Scale) ToNative(p Point) Point { return Point{p.X * s.X, p.Y * s.Y} }

// ToDisplay maps a native point into display space.
func (s Scale) ToDisplay(p Point) Point {
	if s.X == 0 || s.Y == 0 {
		return p
	}
	return Point{p.X / s.X, p.Y / s.Y}
}

// RectToNative maps a display rectangle into native space.
func (s Scale) RectToNative(r Rect) Rect {
	return Rect{
		Min:  s.ToNative(r.Min),
		Size: Size{r.Size.W * s.X, r.Size.H * s.Y},
	}
}

// Fit returns the largest size with the aspect ratio of src that fits in
// box. Images smaller than box are not enlarged.
func Fit(src, box Size) Size {
	if src.Empty() || box.Empty() {
		return src
	}
	z := math.Min(box.W/src.W, box.H/src.H)
	if z > 1 {
		z = 1
	}
	return Size{W: math.Floor(src.W * z), H: math.Floor(src.H * z)}
}

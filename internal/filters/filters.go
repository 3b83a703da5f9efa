// Package filters holds the adjustable filter stack attached to every image
// and applies it to pixels.
package filters

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// Names lists the filters in the order they are composed.
var Names = []string{"brightness", "contrast", "saturation", "grayscale", "sepia", "blur"}

// ErrUnknownFilter is returned by Set for a name not in Names.
var ErrUnknownFilter = errors.New("unknown filter")

// Limits bounds a single filter value.
type Limits struct {
	Min, Max, Default float64
}

var limits = map[string]Limits{
	"brightness": {0, 200, 100},
	"contrast":   {0, 200, 100},
	"saturation": {0, 200, 100},
	"grayscale":  {0, 100, 0},
	"sepia":      {0, 100, 0},
	"blur":       {0, 10, 0},
}

// LimitsOf returns the accepted range for the named filter.
func LimitsOf(name string) (Limits, bool) {
	l, ok := limits[strings.ToLower(name)]
	return l, ok
}

// Stack is the set of filter intensities for one image. Brightness,
// Contrast and Saturation are percentages where 100 is unchanged; Grayscale
// and Sepia are percentages where 0 is unchanged; Blur is a radius in pixels.
type Stack struct {
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
	Saturation float64 `json:"saturation"`
	Grayscale  float64 `json:"grayscale"`
	Sepia      float64 `json:"sepia"`
	Blur       float64 `json:"blur"`
}

// Default returns the identity stack.
func Default() Stack {
	return Stack{Brightness: 100, Contrast: 100, Saturation: 100}
}

// IsDefault reports whether s leaves pixels untouched.
func (s Stack) IsDefault() bool { return s == Default() }

func (s *Stack) field(name string) *float64 {
	switch strings.ToLower(name) {
	case "brightness":
		return &s.Brightness
	case "contrast":
		return &s.Contrast
	case "saturation", "saturate":
		return &s.Saturation
	case "grayscale":
		return &s.Grayscale
	case "sepia":
		return &s.Sepia
	case "blur":
		return &s.Blur
	}
	return nil
}

// Get returns the value of the named filter.
func (s Stack) Get(name string) (float64, error) {
	f := s.field(name)
	if f == nil {
		return 0, fmt.Errorf("%w: %s", ErrUnknownFilter, name)
	}
	return *f, nil
}

// Set assigns the named filter, clamping value to its limits.
func (s *Stack) Set(name string, value float64) error {
	f := s.field(name)
	if f == nil {
		return fmt.Errorf("%w: %s", ErrUnknownFilter, name)
	}
	key := strings.ToLower(name)
	if key == "saturate" {
		key = "saturation"
	}
	*f = clamp(value, limits[key])
	return nil
}

// Clamped returns s with every value forced into its limits.
func (s Stack) Clamped() Stack {
	for _, n := range Names {
		v, _ := s.Get(n)
		_ = s.Set(n, v)
	}
	return s
}

func clamp(v float64, l Limits) float64 {
	if math.IsNaN(v) {
		return l.Default
	}
	return math.Max(l.Min, math.Min(l.Max, v))
}

// String renders s as a CSS filter list in composition order.
func (s Stack) String() string {
	return fmt.Sprintf("brightness(%s%%) contrast(%s%%) saturate(%s%%) grayscale(%s%%) sepia(%s%%) blur(%spx)",
		num(s.Brightness), num(s.Contrast), num(s.Saturation), num(s.Grayscale), num(s.Sepia), num(s.Blur))
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// Apply runs every non-identity filter of s over src in composition order
// and returns the result. A default stack returns src itself.
func Apply(src image.Image, s Stack) image.Image {
	if src == nil || s.IsDefault() {
		return src
	}
	img := imaging.Clone(src)
	if s.Brightness != 100 {
		k := s.Brightness / 100
		img = imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
			return color.NRGBA{R: scale8(c.R, k), G: scale8(c.G, k), B: scale8(c.B, k), A: c.A}
		})
	}
	if s.Contrast != 100 {
		img = imaging.AdjustContrast(img, s.Contrast-100)
	}
	if s.Saturation != 100 {
		img = imaging.AdjustSaturation(img, s.Saturation-100)
	}
	if s.Grayscale > 0 {
		img = imaging.Overlay(img, effect.Grayscale(img), image.Point{}, s.Grayscale/100)
	}
	if s.Sepia > 0 {
		img = imaging.Overlay(img, effect.Sepia(img), image.Point{}, s.Sepia/100)
	}
	if s.Blur > 0 {
		img = imaging.Blur(img, s.Blur)
	}
	return img
}

func scale8(v uint8, k float64) uint8 {
	f := math.Round(float64(v) * k)
	if f > 255 {
		return 255
	}
	if f < 0 {
		return 0
	}
	return uint8(f)
}

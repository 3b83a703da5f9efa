// Package fonts resolves text styles to font faces backed by the Go fonts.
package fonts

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/image/colornames"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/opentype"
)

// Style describes how a text annotation is painted.
type Style struct {
	Color  string  `json:"color"`
	SizePx float64 `json:"size"`
	Family string  `json:"family"`
	Weight string  `json:"weight"`
}

// DefaultStyle is used when no style controls have been touched.
func DefaultStyle() Style {
	return Style{Color: "#ffffff", SizePx: 24, Family: "sans-serif", Weight: "normal"}
}

// Scaled returns s with its size multiplied by k.
func (s Style) Scaled(k float64) Style {
	s.SizePx *= k
	return s
}

// Families lists the family names understood by Face.
var Families = []string{"sans-serif", "monospace", "small-caps"}

// Weights lists the weight names understood by Face.
var Weights = []string{"normal", "medium", "bold"}

type faceKey struct {
	ttf  string
	size float64
}

var (
	parsed sync.Map // ttf name -> *opentype.Font
	faces  sync.Map // faceKey -> font.Face
)

func fontFile(family, weight string) (string, []byte) {
	bold := false
	medium := false
	switch strings.ToLower(strings.TrimSpace(weight)) {
	case "bold", "bolder", "600", "700", "800", "900":
		bold = true
	case "medium", "500":
		medium = true
	}
	switch strings.ToLower(strings.TrimSpace(family)) {
	case "monospace", "mono", "go mono", "courier", "courier new":
		if bold {
			return "gomonobold", gomonobold.TTF
		}
		return "gomono", gomono.TTF
	case "small-caps", "smallcaps", "go smallcaps":
		return "gosmallcaps", gosmallcaps.TTF
	}
	switch {
	case bold:
		return "gobold", gobold.TTF
	case medium:
		return "gomedium", gomedium.TTF
	}
	return "goregular", goregular.TTF
}

// Face returns a cached face for the style. Sizes are rounded to a quarter
// pixel so that continuous scaling does not fill the cache.
func Face(s Style) (font.Face, error) {
	size := math.Round(s.SizePx*4) / 4
	if size <= 0 {
		size = DefaultStyle().SizePx
	}
	name, ttf := fontFile(s.Family, s.Weight)
	key := faceKey{ttf: name, size: size}
	if f, ok := faces.Load(key); ok {
		return f.(font.Face), nil
	}
	var otf *opentype.Font
	if f, ok := parsed.Load(name); ok {
		otf = f.(*opentype.Font)
	} else {
		p, err := opentype.Parse(ttf)
		if err != nil {
			return nil, fmt.Errorf("parse font %s: %w", name, err)
		}
		parsed.Store(name, p)
		otf = p
	}
	face, err := opentype.NewFace(otf, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("font face %s %.2f: %w", name, size, err)
	}
	actual, _ := faces.LoadOrStore(key, face)
	return actual.(font.Face), nil
}

// Measure returns the width and height in pixels of text drawn with s.
func Measure(s Style, text string) (w, h float64, err error) {
	face, err := Face(s)
	if err != nil {
		return 0, 0, err
	}
	m := face.Metrics()
	adv := font.MeasureString(face, text)
	return float64(adv) / 64, float64(m.Ascent+m.Descent) / 64, nil
}

// Measurer adapts Measure to callers that want an interface.
type Measurer struct{}

// Measure implements the text layer's measurer contract.
func (Measurer) Measure(s Style, text string) (float64, float64) {
	w, h, err := Measure(s, text)
	if err != nil {
		return 0, 0
	}
	return w, h
}

// ParseColor accepts #rgb, #rrggbb, #rrggbbaa or an SVG colour name. The
// hex alpha form is straight alpha and is returned premultiplied.
func ParseColor(s string) (color.RGBA, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return color.RGBA{}, fmt.Errorf("empty color")
	}
	if c, ok := colornames.Map[v]; ok {
		return c, nil
	}
	if !strings.HasPrefix(v, "#") {
		return color.RGBA{}, fmt.Errorf("unknown color %q", s)
	}
	hex := v[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	switch len(hex) {
	case 6:
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 255}, nil
	case 8:
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		straight := color.NRGBA{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}
		return color.RGBAModel.Convert(straight).(color.RGBA), nil
	}
	return color.RGBA{}, fmt.Errorf("invalid color %q", s)
}

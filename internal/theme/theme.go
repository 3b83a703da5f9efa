// Package theme holds the colour palettes of the editor window.
package theme

import (
	"image/color"
	"reflect"
)

const (
	LightName = "light"
	DarkName  = "dark"
)

// Theme defines the colours used to paint the window around the image.
type Theme struct {
	Name string

	Background color.RGBA // behind the canvas
	Foreground color.RGBA

	StatusBackground color.RGBA
	StatusText       color.RGBA

	// Canvas
	Shadow       color.RGBA
	CheckerLight color.RGBA
	CheckerDark  color.RGBA

	// Crop overlay
	CropShade    color.RGBA // dims the area outside the selection
	CropOutline  color.RGBA
	HandleFill   color.RGBA
	HandleBorder color.RGBA

	TextFocus color.RGBA
}

// Light is the default palette.
func Light() *Theme {
	return &Theme{
		Name:             LightName,
		Background:       color.RGBA{236, 236, 236, 255},
		Foreground:       color.RGBA{20, 20, 20, 255},
		StatusBackground: color.RGBA{220, 220, 220, 255},
		StatusText:       color.RGBA{20, 20, 20, 255},
		Shadow:           color.RGBA{0, 0, 0, 255},
		CheckerLight:     color.RGBA{255, 255, 255, 255},
		CheckerDark:      color.RGBA{204, 204, 204, 255},
		CropShade:        color.RGBA{0, 0, 0, 110},
		CropOutline:      color.RGBA{255, 255, 255, 255},
		HandleFill:       color.RGBA{255, 255, 255, 255},
		HandleBorder:     color.RGBA{30, 30, 30, 255},
		TextFocus:        color.RGBA{33, 150, 243, 255},
	}
}

// Dark is the palette selected with `theme = dark`.
func Dark() *Theme {
	return &Theme{
		Name:             DarkName,
		Background:       color.RGBA{30, 30, 32, 255},
		Foreground:       color.RGBA{230, 230, 230, 255},
		StatusBackground: color.RGBA{45, 45, 48, 255},
		StatusText:       color.RGBA{230, 230, 230, 255},
		Shadow:           color.RGBA{0, 0, 0, 255},
		CheckerLight:     color.RGBA{80, 80, 80, 255},
		CheckerDark:      color.RGBA{60, 60, 60, 255},
		CropShade:        color.RGBA{0, 0, 0, 150},
		CropOutline:      color.RGBA{255, 255, 255, 255},
		HandleFill:       color.RGBA{255, 255, 255, 255},
		HandleBorder:     color.RGBA{0, 0, 0, 255},
		TextFocus:        color.RGBA{100, 181, 246, 255},
	}
}

// Default returns the light palette.
func Default() *Theme { return Light() }

// Toggle returns the name of the other built-in palette.
func Toggle(name string) string {
	if name == DarkName {
		return LightName
	}
	return DarkName
}

// ColorFields lists the colour fields of Theme in declaration order.
func ColorFields() []string {
	typ := reflect.TypeOf(Theme{})
	var out []string
	for i := 0; i < typ.NumField(); i++ {
		if typ.Field(i).Type == reflect.TypeOf(color.RGBA{}) {
			out = append(out, typ.Field(i).Name)
		}
	}
	return out
}

// Package ui is the desktop window of the editor. It turns shiny window
// events into editor operations and paints the rendered surface with its
// crop and text overlays.
package ui

import (
	"image"

	"github.com/example/imgedit/internal/geom"
)

const (
	statusHeight = 22
	margin       = 20
	checkerSize  = 8

	defaultWidth  = 1024
	defaultHeight = 768
)

// CanvasRect returns where an image of size native is drawn in a window of
// winW x winH pixels. The canvas is centred in the area above the status
// bar and never enlarged past the native size.
func CanvasRect(winW, winH int, native geom.Size) image.Rectangle {
	availW := winW - 2*margin
	availH := winH - statusHeight - 2*margin
	if availW <= 0 || availH <= 0 || native.Empty() {
		return image.Rectangle{}
	}
	fit := geom.Fit(native, geom.Size{W: float64(availW), H: float64(availH)})
	w, h := int(fit.W), int(fit.H)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	x0 := (winW - w) / 2
	y0 := (winH - statusHeight - h) / 2
	return image.Rect(x0, y0, x0+w, y0+h)
}

// statusRect is the strip at the bottom of the window.
func statusRect(winW, winH int) image.Rectangle {
	return image.Rect(0, winH-statusHeight, winW, winH)
}

// initialWindowSize sizes a new window to show native at full size where
// that fits the default bounds.
func initialWindowSize(native geom.Size) image.Point {
	if native.Empty() {
		return image.Pt(defaultWidth, defaultHeight)
	}
	w := int(native.W) + 2*margin
	h := int(native.H) + 2*margin + statusHeight
	if w < 480 {
		w = 480
	}
	if h < 360 {
		h = 360
	}
	return image.Pt(min(w, defaultWidth), min(h, defaultHeight))
}

package ui

import (
	"image"
	"testing"

	"github.com/example/imgedit/internal/geom"
)

func TestCanvasRect(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		native geom.Size
		want   image.Rectangle
	}{
		{"small image is not enlarged", 1000, 800, geom.Size{W: 100, H: 50}, image.Rect(450, 364, 550, 414)},
		{"large image is fitted", 1000, 800, geom.Size{W: 2000, H: 1000}, image.Rect(20, 149, 980, 629)},
		{"no image", 1000, 800, geom.Size{}, image.Rectangle{}},
		{"window too small", 30, 30, geom.Size{W: 10, H: 10}, image.Rectangle{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanvasRect(tt.w, tt.h, tt.native); got != tt.want {
				t.Fatalf("CanvasRect = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInitialWindowSize(t *testing.T) {
	if got := initialWindowSize(geom.Size{}); got != image.Pt(defaultWidth, defaultHeight) {
		t.Fatalf("empty: %v", got)
	}
	if got := initialWindowSize(geom.Size{W: 600, H: 400}); got != image.Pt(640, 462) {
		t.Fatalf("fits: %v", got)
	}
	if got := initialWindowSize(geom.Size{W: 4000, H: 3000}); got != image.Pt(defaultWidth, defaultHeight) {
		t.Fatalf("capped: %v", got)
	}
	if got := initialWindowSize(geom.Size{W: 10, H: 10}); got != image.Pt(480, 360) {
		t.Fatalf("minimum: %v", got)
	}
}

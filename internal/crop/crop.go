// Package crop implements the interactive crop selection: a rectangle in
// display space that can be dragged, resized by its corners and finally
// applied to the rendered image.
package crop

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"

	"github.com/example/imgedit/internal/geom"
)

// HandleSize is the edge length of a corner handle in display pixels.
const HandleSize = 10

// State is the lifecycle stage of the engine.
type State int

const (
	Idle State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "idle"
}

// Handle identifies a corner of the region.
type Handle int

const (
	NoHandle Handle = iota
	TopLeft
	TopRight
	BottomLeft
	BottomRight
)

var handleNames = map[Handle]string{
	NoHandle:    "none",
	TopLeft:     "top-left",
	TopRight:    "top-right",
	BottomLeft:  "bottom-left",
	BottomRight: "bottom-right",
}

func (h Handle) String() string { return handleNames[h] }

// ParseHandle is the inverse of Handle.String.
func ParseHandle(s string) (Handle, bool) {
	for h, n := range handleNames {
		if n == s {
			return h, true
		}
	}
	return NoHandle, false
}

type gesture int

const (
	gestureNone gesture = iota
	gestureDrag
	gestureResize
)

// Region is the selection in display coordinates. Start and End are not
// kept ordered.
type Region struct {
	Start, End   geom.Point
	ActiveHandle Handle
}

// Rect returns the normalised rectangle of the region.
func (r Region) Rect() geom.Rect { return geom.Normalize(r.Start, r.End) }

// Engine tracks one crop session at a time.
type Engine struct {
	state      State
	region     Region
	display    geom.Size
	gesture    gesture
	dragOffset geom.Point
}

// NewEngine returns an idle engine.
func NewEngine() *Engine { return &Engine{} }

// State reports the current lifecycle stage.
func (e *Engine) State() State { return e.state }

// Active reports whether a crop session is in progress.
func (e *Engine) Active() bool { return e.state == Active }

// Region returns the current selection. It is only meaningful while Active.
func (e *Engine) Region() Region { return e.region }

// Display returns the display size the session was started with.
func (e *Engine) Display() geom.Size { return e.display }

// Start begins a session with a centred square covering 80% of the shorter
// display edge.
func (e *Engine) Start(display geom.Size) {
	side := 0.8 * min(display.W, display.H)
	start := geom.Pt((display.W-side)/2, (display.H-side)/2)
	e.state = Active
	e.display = display
	e.gesture = gestureNone
	e.region = Region{Start: start, End: start.Add(geom.Pt(side, side))}
}

// Rescale maps an active selection onto a new display size so it keeps
// covering the same part of the image.
func (e *Engine) Rescale(display geom.Size) {
	if e.state == Active && !e.display.Empty() && !display.Empty() {
		kx := display.W / e.display.W
		ky := display.H / e.display.H
		e.region.Start = geom.Pt(e.region.Start.X*kx, e.region.Start.Y*ky)
		e.region.End = geom.Pt(e.region.End.X*kx, e.region.End.Y*ky)
	}
	e.display = display
}

// SetRegion replaces the selection while a session is active.
func (e *Engine) SetRegion(start, end geom.Point) {
	if e.state != Active {
		return
	}
	e.region.Start = start
	e.region.End = end
}

// HandleRect returns the hit box of a corner handle. Handles sit inside the
// region so that a resize gesture's pointer-minus-offset lands back on the
// corner it moves.
func (e *Engine) HandleRect(h Handle) geom.Rect {
	s, end := e.region.Start, e.region.End
	sz := geom.Size{W: HandleSize, H: HandleSize}
	var p geom.Point
	switch h {
	case TopLeft:
		p = s
	case TopRight:
		p = geom.Pt(end.X-HandleSize, s.Y)
	case BottomLeft:
		p = geom.Pt(s.X, end.Y-HandleSize)
	case BottomRight:
		p = geom.Pt(end.X-HandleSize, end.Y-HandleSize)
	default:
		return geom.Rect{}
	}
	return geom.Rect{Min: p, Size: sz}
}

// HitTest returns which handle, if any, lies under p and whether p is
// inside the region body.
func (e *Engine) HitTest(p geom.Point) (Handle, bool) {
	for _, h := range []Handle{TopLeft, TopRight, BottomLeft, BottomRight} {
		if e.HandleRect(h).Contains(p) {
			return h, true
		}
	}
	return NoHandle, e.region.Rect().Contains(p)
}

// PointerDown starts a resize when p is on a handle or a drag when p is on
// the region body. It reports whether a gesture began.
func (e *Engine) PointerDown(p geom.Point) bool {
	if e.state != Active {
		return false
	}
	h, inside := e.HitTest(p)
	switch {
	case h != NoHandle:
		e.gesture = gestureResize
		e.region.ActiveHandle = h
		e.dragOffset = p.Sub(e.HandleRect(h).Min)
	case inside:
		e.gesture = gestureDrag
		e.dragOffset = p.Sub(e.region.Rect().Min)
	default:
		return false
	}
	return true
}

// PointerMove continues the gesture started by PointerDown and reports
// whether the region changed.
func (e *Engine) PointerMove(p geom.Point) bool {
	if e.state != Active {
		return false
	}
	switch e.gesture {
	case gestureDrag:
		e.drag(p)
	case gestureResize:
		e.resize(p)
	default:
		return false
	}
	return true
}

// drag moves the normalised box and writes it back with the corners in
// their existing orientation, since a resize may leave Start past End.
func (e *Engine) drag(p geom.Point) {
	box := e.region.Rect()
	box.Min = p.Sub(e.dragOffset)
	box = geom.ClampRect(box, e.display)
	e.region.Start.X, e.region.End.X = place(e.region.Start.X, e.region.End.X, box.Min.X, box.Size.W)
	e.region.Start.Y, e.region.End.Y = place(e.region.Start.Y, e.region.End.Y, box.Min.Y, box.Size.H)
}

func place(start, end, lo, size float64) (float64, float64) {
	if start <= end {
		return lo, lo + size
	}
	return lo + size, lo
}

// resize moves the corners owned by the active handle. It is not clamped to
// the display.
func (e *Engine) resize(p geom.Point) {
	at := p.Sub(e.dragOffset)
	switch e.region.ActiveHandle {
	case TopLeft:
		e.region.Start = at
	case TopRight:
		e.region.End.X = at.X + HandleSize
		e.region.Start.Y = at.Y
	case BottomLeft:
		e.region.Start.X = at.X
		e.region.End.Y = at.Y + HandleSize
	case BottomRight:
		e.region.End = at.Add(geom.Pt(HandleSize, HandleSize))
	}
}

// PointerUp ends any gesture. The session stays active.
func (e *Engine) PointerUp() {
	e.gesture = gestureNone
	e.region.ActiveHandle = NoHandle
}

// Cancel abandons the session without touching the image.
func (e *Engine) Cancel() {
	e.state = Idle
	e.gesture = gestureNone
	e.region = Region{}
}

// NativeRect maps the selection into the pixel space of an image of size
// native shown at the session's display size.
func (e *Engine) NativeRect(native geom.Size) image.Rectangle {
	return geom.NewScale(e.display, native).RectToNative(e.region.Rect()).Image()
}

// Apply extracts the selection from the rendered surface, round-trips it
// through PNG and ends the session. It returns nil when no session is
// active.
func (e *Engine) Apply(surface image.Image) (image.Image, error) {
	if e.state != Active || surface == nil {
		return nil, nil
	}
	rect := e.NativeRect(geom.SizeOf(surface.Bounds())).Add(surface.Bounds().Min)
	e.Cancel()
	return Extract(surface, rect)
}

// Extract copies rect out of src into a new zero based raster. Parts of
// rect outside src stay transparent. The copy is encoded and decoded as
// PNG so the result is a standalone image.
func Extract(src image.Image, rect image.Rectangle) (image.Image, error) {
	rect = rect.Canon()
	out := image.NewNRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	if in := rect.Intersect(src.Bounds()); !in.Empty() {
		draw.Draw(out, in.Sub(rect.Min), src, in.Min, draw.Src)
	}
	if out.Bounds().Empty() {
		return out, nil
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode crop: %w", err)
	}
	img, err := imaging.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode crop: %w", err)
	}
	return img, nil
}

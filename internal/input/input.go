// Package input turns mouse and touch events into a single pointer stream.
package input

import (
	"math"
	"time"

	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/touch"

	"github.com/example/imgedit/internal/geom"
)

// Phase is the stage of a pointer gesture.
type Phase int

const (
	Down Phase = iota
	Move
	Up
)

func (p Phase) String() string {
	switch p {
	case Down:
		return "down"
	case Move:
		return "move"
	case Up:
		return "up"
	}
	return "unknown"
}

// Button distinguishes the primary gesture from the context gesture.
type Button int

const (
	Primary Button = iota
	Secondary
)

// Pointer is a normalised pointer event in window coordinates.
type Pointer struct {
	X, Y   float64
	Phase  Phase
	Button Button
	// Double is set on the second of two quick presses at the same spot.
	Double bool
	Touch  bool
}

// Point returns the pointer position.
func (p Pointer) Point() geom.Point { return geom.Pt(p.X, p.Y) }

// FromMouse converts a shiny mouse event. Wheel and middle button events
// are not pointer gestures and return false.
func FromMouse(e mouse.Event) (Pointer, bool) {
	p := Pointer{X: float64(e.X), Y: float64(e.Y)}
	switch e.Button {
	case mouse.ButtonNone, mouse.ButtonLeft:
		p.Button = Primary
	case mouse.ButtonRight:
		p.Button = Secondary
	default:
		return Pointer{}, false
	}
	switch e.Direction {
	case mouse.DirPress:
		p.Phase = Down
	case mouse.DirRelease:
		p.Phase = Up
	case mouse.DirNone:
		p.Phase = Move
	default:
		return Pointer{}, false
	}
	return p, true
}

// FromTouch converts a touch event. Touches are always primary; long presses
// are recognised by Tracker.
func FromTouch(e touch.Event) Pointer {
	p := Pointer{X: float64(e.X), Y: float64(e.Y), Touch: true}
	switch e.Type {
	case touch.TypeBegin:
		p.Phase = Down
	case touch.TypeMove:
		p.Phase = Move
	case touch.TypeEnd:
		p.Phase = Up
	}
	return p
}

const (
	// DoubleClickInterval is the longest gap between presses of a double click.
	DoubleClickInterval = 400 * time.Millisecond
	// LongPressDuration is how long a touch must be held to count as a
	// context gesture.
	LongPressDuration = 600 * time.Millisecond
	// Slop is how far a pointer may wander and still be considered still.
	Slop = 8.0
)

// Tracker recognises double clicks and touch long presses.
type Tracker struct {
	lastPress   time.Time
	lastAt      geom.Point
	touchStart  time.Time
	touchAt     geom.Point
	touchMoved  bool
	touchActive bool
}

func near(a, b geom.Point) bool {
	return math.Hypot(a.X-b.X, a.Y-b.Y) <= Slop
}

// Track annotates p using the gesture history and returns the events the
// caller should act on. A long press releases as the original Up followed
// by a secondary Down/Up pair at the same spot.
func (t *Tracker) Track(p Pointer, now time.Time) []Pointer {
	at := p.Point()
	switch p.Phase {
	case Down:
		if p.Button == Primary && !t.lastPress.IsZero() && now.Sub(t.lastPress) <= DoubleClickInterval && near(at, t.lastAt) {
			p.Double = true
			t.lastPress = time.Time{}
		} else {
			t.lastPress = now
			t.lastAt = at
		}
		if p.Touch {
			t.touchActive = true
			t.touchStart = now
			t.touchAt = at
			t.touchMoved = false
		}
	case Move:
		if t.touchActive && !near(at, t.touchAt) {
			t.touchMoved = true
		}
	case Up:
		if p.Touch && t.touchActive {
			t.touchActive = false
			if !t.touchMoved && now.Sub(t.touchStart) >= LongPressDuration {
				t.lastPress = time.Time{}
				down := p
				down.Phase = Down
				down.Button = Secondary
				up := down
				up.Phase = Up
				return []Pointer{p, down, up}
			}
		}
	}
	return []Pointer{p}
}

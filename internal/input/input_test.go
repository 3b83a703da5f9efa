package input

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/touch"
)

func TestFromMouse(t *testing.T) {
	p, ok := FromMouse(mouse.Event{X: 10, Y: 20, Button: mouse.ButtonLeft, Direction: mouse.DirPress})
	require.True(t, ok)
	assert.Equal(t, Pointer{X: 10, Y: 20, Phase: Down, Button: Primary}, p)

	p, ok = FromMouse(mouse.Event{X: 1, Y: 2, Button: mouse.ButtonRight, Direction: mouse.DirRelease})
	require.True(t, ok)
	assert.Equal(t, Up, p.Phase)
	assert.Equal(t, Secondary, p.Button)

	p, ok = FromMouse(mouse.Event{X: 3, Y: 4, Direction: mouse.DirNone})
	require.True(t, ok)
	assert.Equal(t, Move, p.Phase)

	_, ok = FromMouse(mouse.Event{Button: mouse.ButtonWheelUp, Direction: mouse.DirStep})
	assert.False(t, ok)
}

func TestFromTouch(t *testing.T) {
	assert.Equal(t, Down, FromTouch(touch.Event{Type: touch.TypeBegin}).Phase)
	assert.Equal(t, Move, FromTouch(touch.Event{Type: touch.TypeMove}).Phase)
	p := FromTouch(touch.Event{X: 5, Y: 6, Type: touch.TypeEnd})
	assert.Equal(t, Pointer{X: 5, Y: 6, Phase: Up, Touch: true}, p)
}

func TestDoubleClick(t *testing.T) {
	var tr Tracker
	t0 := time.Unix(100, 0)
	down := Pointer{X: 10, Y: 10, Phase: Down}

	first := tr.Track(down, t0)
	require.Len(t, first, 1)
	assert.False(t, first[0].Double)

	second := tr.Track(down, t0.Add(200*time.Millisecond))
	assert.True(t, second[0].Double)

	third := tr.Track(down, t0.Add(300*time.Millisecond))
	assert.False(t, third[0].Double, "a double click resets the sequence")

	late := tr.Track(down, t0.Add(2*time.Second))
	assert.False(t, late[0].Double)
}

func TestLongPressBecomesSecondary(t *testing.T) {
	var tr Tracker
	t0 := time.Unix(100, 0)
	tr.Track(Pointer{X: 50, Y: 50, Phase: Down, Touch: true}, t0)
	tr.Track(Pointer{X: 52, Y: 51, Phase: Move, Touch: true}, t0.Add(100*time.Millisecond))
	out := tr.Track(Pointer{X: 52, Y: 51, Phase: Up, Touch: true}, t0.Add(time.Second))
	require.Len(t, out, 3)
	assert.Equal(t, Up, out[0].Phase)
	assert.Equal(t, Down, out[1].Phase)
	assert.Equal(t, Secondary, out[1].Button)
	assert.Equal(t, Up, out[2].Phase)
}

func TestMovedTouchIsNotLongPress(t *testing.T) {
	var tr Tracker
	t0 := time.Unix(100, 0)
	tr.Track(Pointer{X: 50, Y: 50, Phase: Down, Touch: true}, t0)
	tr.Track(Pointer{X: 150, Y: 50, Phase: Move, Touch: true}, t0.Add(100*time.Millisecond))
	out := tr.Track(Pointer{X: 150, Y: 50, Phase: Up, Touch: true}, t0.Add(time.Second))
	assert.Len(t, out, 1)
}

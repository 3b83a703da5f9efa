package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) (*interactiveCmd, *bytes.Buffer) {
	t.Helper()
	r, out, _ := testRoot()
	c := newInteractiveCmd(r)
	return c, out
}

func mustExec(t *testing.T, c *interactiveCmd, line string) {
	t.Helper()
	done, err := c.executeLine(line)
	require.NoError(t, err, line)
	require.False(t, done, line)
}

func TestInteractiveEditSession(t *testing.T) {
	in := writeTestImage(t, 100, 50)
	out := filepath.Join(t.TempDir(), "edited.png")
	c, stdout := newTestSession(t)

	mustExec(t, c, "load "+in)
	assert.Contains(t, stdout.String(), "loaded in.png as ")

	mustExec(t, c, "filter sepia 50")
	stdout.Reset()
	mustExec(t, c, "filter")
	assert.Contains(t, stdout.String(), "sepia 50\n")

	stdout.Reset()
	mustExec(t, c, "crop start")
	assert.Contains(t, stdout.String(), "crop 30,5 40x40")

	stdout.Reset()
	mustExec(t, c, "crop move 10 0")
	assert.Contains(t, stdout.String(), "crop 40,5 40x40")

	stdout.Reset()
	mustExec(t, c, "crop resize bottom-right -10 -20")
	assert.Contains(t, stdout.String(), "crop 40,5 30x20")

	stdout.Reset()
	mustExec(t, c, "crop apply")
	assert.Contains(t, stdout.String(), " 30x20 ")
	assert.NotContains(t, stdout.String(), "crop ")

	stdout.Reset()
	mustExec(t, c, `text add "hello world"`)
	assert.Contains(t, stdout.String(), "added ")

	stdout.Reset()
	mustExec(t, c, "text list")
	assert.Contains(t, stdout.String(), `"hello world"`)

	stdout.Reset()
	mustExec(t, c, "export "+out)
	assert.Equal(t, "saved "+out+"\n", stdout.String())

	img, err := imaging.Open(out)
	require.NoError(t, err)
	assert.Equal(t, 30, img.Bounds().Dx())
	assert.Equal(t, 20, img.Bounds().Dy())
}

func TestInteractiveNavigation(t *testing.T) {
	a := writeTestImage(t, 10, 10)
	b := writeTestImage(t, 20, 10)
	c, stdout := newTestSession(t)

	mustExec(t, c, `load "`+a+`" "`+b+`"`)
	mustExec(t, c, "select 2")
	stdout.Reset()
	mustExec(t, c, "list")
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "* 2 "))
	assert.True(t, strings.HasSuffix(lines[1], "20x10"))

	mustExec(t, c, "prev")
	mustExec(t, c, "remove")
	assert.Equal(t, 1, c.r.session.Store().Len())
}

func TestInteractiveErrors(t *testing.T) {
	c, _ := newTestSession(t)

	_, err := c.executeLine("crop move 1 1")
	assert.ErrorContains(t, err, "no crop in progress")

	_, err = c.executeLine("state")
	assert.Error(t, err)

	_, err = c.executeLine("bogus")
	assert.ErrorContains(t, err, "unknown command")

	_, err = c.executeLine(`load "unterminated`)
	assert.Error(t, err)

	done, err := c.executeLine("exit")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestInteractiveTextStyle(t *testing.T) {
	in := writeTestImage(t, 40, 40)
	c, _ := newTestSession(t)
	mustExec(t, c, "load "+in)
	mustExec(t, c, "text add hi")

	ed := c.r.session
	id := ed.TextNodes()[0].ID
	mustExec(t, c, "text edit "+id)
	mustExec(t, c, "text style color #00ff00")
	mustExec(t, c, "text style size 30")

	_, err := c.executeLine("text style weight heavy")
	assert.Error(t, err)

	n := ed.TextNodes()[0]
	assert.Equal(t, "#00ff00", n.Style.Color)
	assert.Equal(t, 30.0, n.Style.SizePx)
}

func TestInteractiveCLIImmediateMode(t *testing.T) {
	in := writeTestImage(t, 12, 12)
	r, stdout, _ := testRoot()
	cli, err := parseInteractiveCmd([]string{"-e", "load " + in, "-e", "rotate right", "-e", "state"}, r)
	require.NoError(t, err)
	require.NoError(t, cli.Run())
	assert.Contains(t, stdout.String(), "rotation=90")
}

package main

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/imgedit/internal/geom"
)

func writeTestImage(t *testing.T, w, h int) string {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 40, B: 40, A: 255})
	path := filepath.Join(t.TempDir(), "in.png")
	require.NoError(t, imaging.Save(img, path))
	return path
}

func testRoot() (*root, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return &root{program: "imgedit", stdout: &out, stderr: &errOut}, &out, &errOut
}

func stubClipboard(t *testing.T, read func() (image.Image, error)) *image.Image {
	t.Helper()
	origWrite, origRead := writeClipboardFn, readClipboardFn
	var written image.Image
	writeClipboardFn = func(img image.Image) error { written = img; return nil }
	readClipboardFn = read
	t.Cleanup(func() {
		writeClipboardFn = origWrite
		readClipboardFn = origRead
	})
	return &written
}

func TestParseRect(t *testing.T) {
	r, err := parseRect("10, 20,30,40")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(10, 20, 40, 60), r)

	for _, bad := range []string{"1,2,3", "a,b,c,d", "0,0,0,5", "0,0,5,-1"} {
		_, err := parseRect(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseTextSpec(t *testing.T) {
	content, at, err := parseTextSpec("hello@12,34")
	require.NoError(t, err)
	assert.Equal(t, "hello", content)
	require.NotNil(t, at)
	assert.Equal(t, geom.Pt(12, 34), *at)

	content, at, err = parseTextSpec("mail me@home")
	require.NoError(t, err)
	assert.Equal(t, "mail me@home", content)
	assert.Nil(t, at)

	content, at, err = parseTextSpec("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", content)
	assert.Nil(t, at)

	_, _, err = parseTextSpec("bad@x,1")
	assert.Error(t, err)
}

func TestParseFlip(t *testing.T) {
	h, v, err := parseFlip("")
	require.NoError(t, err)
	assert.False(t, h)
	assert.False(t, v)

	h, v, err = parseFlip("VH")
	require.NoError(t, err)
	assert.True(t, h)
	assert.True(t, v)

	_, _, err = parseFlip("x")
	assert.Error(t, err)
}

func TestQuarterTurns(t *testing.T) {
	cases := map[int]int{0: 0, 90: 1, 180: 2, 270: 3, 360: 0, -90: 3, 450: 1}
	for deg, want := range cases {
		got, err := quarterTurns(deg)
		require.NoError(t, err)
		assert.Equal(t, want, got, "degrees %d", deg)
	}
	_, err := quarterTurns(45)
	assert.Error(t, err)
}

func TestParseApplyRequiresInput(t *testing.T) {
	r, _, _ := testRoot()
	_, err := parseApplyCmd([]string{"-sepia", "20"}, r)
	var uerr *UsageError
	require.True(t, errors.As(err, &uerr))
	assert.Contains(t, uerr.Error(), "Usage: imgedit")
}

func TestParseApplyRejectsBothInputs(t *testing.T) {
	r, _, _ := testRoot()
	_, err := parseApplyCmd([]string{"-file", "a.png", "-from-clipboard"}, r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be combined")
}

func TestParseApplyRejectsBadColor(t *testing.T) {
	r, _, _ := testRoot()
	_, err := parseApplyCmd([]string{"-file", "a.png", "-text-color", "not-a-colour"}, r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-text-color")
}

func TestApplyRotateAndCrop(t *testing.T) {
	in := writeTestImage(t, 100, 50)
	out := filepath.Join(t.TempDir(), "out.png")
	r, _, stderr := testRoot()

	cmd, err := parseApplyCmd([]string{
		"-file", in, "-sepia", "40", "-rotate", "90",
		"-crop", "0,0,20,30", "-text", "hi@5,10", "-output", out,
	}, r)
	require.NoError(t, err)
	require.NoError(t, cmd.Run())

	img, err := imaging.Open(out)
	require.NoError(t, err)
	assert.Equal(t, 20, img.Bounds().Dx())
	assert.Equal(t, 30, img.Bounds().Dy())
	assert.Contains(t, stderr.String(), "Saved "+out)
}

func TestApplyToClipboard(t *testing.T) {
	written := stubClipboard(t, nil)
	in := writeTestImage(t, 16, 8)
	r, _, stderr := testRoot()

	cmd, err := parseApplyCmd([]string{"-file", in, "-to-clipboard", "-flip", "h"}, r)
	require.NoError(t, err)
	assert.Empty(t, cmd.output)
	require.NoError(t, cmd.Run())

	require.NotNil(t, *written)
	assert.Equal(t, 16, (*written).Bounds().Dx())
	assert.Contains(t, stderr.String(), "Copied image to clipboard")
}

func TestApplyPasteFailure(t *testing.T) {
	sentinel := errors.New("empty clipboard")
	stubClipboard(t, func() (image.Image, error) { return nil, sentinel })
	r, _, _ := testRoot()

	cmd, err := parseApplyCmd([]string{"-from-clipboard", "-output", filepath.Join(t.TempDir(), "x.png")}, r)
	require.NoError(t, err)
	err = cmd.Run()
	require.Error(t, err)
	assert.True(t, errors.Is(err, sentinel))
}

func TestApplyRejectsOddRotation(t *testing.T) {
	in := writeTestImage(t, 4, 4)
	r, _, _ := testRoot()
	cmd, err := parseApplyCmd([]string{"-file", in, "-rotate", "45"}, r)
	require.NoError(t, err)
	assert.ErrorContains(t, cmd.Run(), "multiple of 90")
}

func TestRootRequiresCommand(t *testing.T) {
	r := newRoot()
	r.stdout, r.stderr = &bytes.Buffer{}, &bytes.Buffer{}
	err := r.Run(nil)
	var uerr *UsageError
	require.True(t, errors.As(err, &uerr))
	assert.Contains(t, uerr.Error(), "Commands:")
}

func TestVersionCommand(t *testing.T) {
	r, out, _ := testRoot()
	cmd := &versionCmd{r: r.subcommand("version")}
	require.NoError(t, cmd.Run())
	assert.True(t, strings.HasPrefix(out.String(), "imgedit "+version))
}

func TestConfigCommandNeedsAction(t *testing.T) {
	r, _, _ := testRoot()
	cmd, err := parseConfigCmd(nil, r.subcommand("config"))
	require.NoError(t, err)
	var uerr *UsageError
	require.True(t, errors.As(cmd.Run(), &uerr))
	assert.Contains(t, uerr.Error(), "imgedit config <print|save>")
}

package theme

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMatchBuiltins(t *testing.T) {
	l := &Loader{}
	for _, want := range []*Theme{Light(), Dark()} {
		got, err := l.Load(want.Name)
		require.NoError(t, err)
		assert.Equal(t, want, got, want.Name)
	}
}

func TestLoadEmptyIsLight(t *testing.T) {
	got, err := (&Loader{}).Load("")
	require.NoError(t, err)
	assert.Equal(t, LightName, got.Name)
}

func TestLoadFromConfigDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sunset.theme"), []byte("Background: #FF8800\n"), 0o644))
	got, err := (&Loader{ConfigDir: dir}).Load("sunset")
	require.NoError(t, err)
	assert.Equal(t, "sunset", got.Name)
	assert.Equal(t, color.RGBA{0xFF, 0x88, 0x00, 0xFF}, got.Background)
	assert.Equal(t, Light().CheckerDark, got.CheckerDark)

	_, err = (&Loader{ConfigDir: dir}).Load("missing")
	assert.Error(t, err)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#11223344")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0x11, 0x22, 0x33, 0x44}, c)
	assert.Equal(t, "#11223344", FormatColor(c))

	c, err = ParseColor("#abcdef")
	require.NoError(t, err)
	assert.Equal(t, "#ABCDEF", FormatColor(c))

	for _, bad := range []string{"abcdef", "#abc", "#zzzzzz"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseRejectsBadColor(t *testing.T) {
	_, err := Parse(strings.NewReader("cropoutline: red\n"))
	assert.Error(t, err)
}

func TestToggle(t *testing.T) {
	assert.Equal(t, DarkName, Toggle(LightName))
	assert.Equal(t, LightName, Toggle(DarkName))
	assert.Equal(t, DarkName, Toggle(""))
}

func TestColorFields(t *testing.T) {
	fields := ColorFields()
	assert.Contains(t, fields, "CropShade")
	assert.NotContains(t, fields, "Name")
	for _, f := range fields {
		_, ok := Get(Dark(), f)
		assert.True(t, ok, f)
	}
}

package theme

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Loader resolves a theme name to a palette.
type Loader struct {
	ConfigDir string
	SystemDir string
}

// NewLoader creates a Loader with the standard search directories.
func NewLoader() *Loader {
	home, _ := os.UserHomeDir()
	return &Loader{
		ConfigDir: filepath.Join(home, ".config", "imgedit", "themes"),
		SystemDir: "/usr/share/imgedit/themes",
	}
}

// Load resolves name in this order: an existing file path, the embedded
// palettes, ConfigDir, SystemDir. An empty name gives the light palette.
func (l *Loader) Load(name string) (*Theme, error) {
	if name == "" {
		return Default(), nil
	}
	if _, err := os.Stat(name); err == nil {
		return parseFile(name)
	}

	filename := name
	if !strings.HasSuffix(filename, ".theme") {
		filename += ".theme"
	}
	if f, err := EmbeddedThemes.Open("defaults/" + filename); err == nil {
		defer f.Close()
		return parse(f, name)
	}
	for _, dir := range []string{l.ConfigDir, l.SystemDir} {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, filename)
		if _, err := os.Stat(path); err == nil {
			return parseFile(path)
		}
	}
	return nil, fmt.Errorf("theme %q not found", name)
}

func parseFile(path string) (*Theme, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parse(f, strings.TrimSuffix(filepath.Base(path), ".theme"))
}

func parse(r io.Reader, fallbackName string) (*Theme, error) {
	t, err := Parse(r)
	if err != nil {
		return nil, err
	}
	if t.Name == LightName && fallbackName != LightName {
		t.Name = fallbackName
	}
	return t, nil
}

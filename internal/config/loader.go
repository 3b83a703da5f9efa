package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Loader locates and reads the configuration file.
type Loader struct {
	Version      string // build version; "dev" enables the working directory lookup
	OverridePath string // set at link time if needed
}

// NewLoader creates a new Loader.
func NewLoader(version string, overridePath string) *Loader {
	return &Loader{
		Version:      version,
		OverridePath: overridePath,
	}
}

// Load reads the first configuration file found. Defaults are returned
// when there is none.
func (l *Loader) Load() (*Config, error) {
	path := l.GetConfigPath()
	if path == "" {
		return New(), nil
	}
	if isYAML(path) {
		return ParseYAML(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// GetConfigPath returns the path to the configuration file, or "" if none
// exists. The override wins, then ./.imgeditrc in dev builds, then the
// XDG config directory.
func (l *Loader) GetConfigPath() string {
	if l.OverridePath != "" {
		if _, err := os.Stat(l.OverridePath); err == nil {
			return l.OverridePath
		}
	}

	if l.Version == "dev" {
		wd, _ := os.Getwd()
		for _, name := range []string{".imgeditrc", ".imgedit.yaml"} {
			p := filepath.Join(wd, name)
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}

	dir := configDir()
	for _, name := range []string{"config.rc", "imgedit.rc", "config.yaml", "config.yml"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// SavePath is where Save writes: the file in use, or the XDG default.
func (l *Loader) SavePath() string {
	if p := l.GetConfigPath(); p != "" && !isYAML(p) {
		return p
	}
	return filepath.Join(configDir(), "config.rc")
}

// Save writes cfg in rc format and returns the path written.
func (l *Loader) Save(cfg *Config) (string, error) {
	path := l.SavePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(cfg.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return path, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "imgedit")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "imgedit")
}

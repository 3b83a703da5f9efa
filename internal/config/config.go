// Package config reads and writes the imgedit configuration file.
package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/example/imgedit/internal/fonts"
	"github.com/example/imgedit/internal/theme"
)

// Notify holds notification settings.
type Notify struct {
	Load bool
	Save bool
	Copy bool
}

// Server configures the `serve` command.
type Server struct {
	Addr string
	Mode string // gin mode: debug, release or test
}

// Config holds the application configuration.
type Config struct {
	Theme   string
	SaveDir string
	Notify  Notify
	Text    fonts.Style
	Server  Server
	Themes  map[string]*theme.Theme
}

// DefaultAddr is where `serve` listens unless configured otherwise.
const DefaultAddr = ":8080"

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		// Empty so the env and built-in fallbacks apply.
		Theme:  "",
		Text:   fonts.DefaultStyle(),
		Server: Server{Addr: DefaultAddr, Mode: "release"},
		Themes: make(map[string]*theme.Theme),
	}
}

// String renders the configuration in rc format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "load = %v\n", c.Notify.Load)
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	sb.WriteString("[text]\n")
	fmt.Fprintf(&sb, "color = %s\n", c.Text.Color)
	fmt.Fprintf(&sb, "size = %s\n", strconv.FormatFloat(c.Text.SizePx, 'f', -1, 64))
	fmt.Fprintf(&sb, "family = %s\n", c.Text.Family)
	fmt.Fprintf(&sb, "weight = %s\n", c.Text.Weight)
	sb.WriteString("\n")

	sb.WriteString("[server]\n")
	fmt.Fprintf(&sb, "addr = %s\n", c.Server.Addr)
	fmt.Fprintf(&sb, "mode = %s\n", c.Server.Mode)
	sb.WriteString("\n")

	names := make([]string, 0, len(c.Themes))
	for name := range c.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		for _, field := range theme.ColorFields() {
			col, _ := theme.Get(t, field)
			fmt.Fprintf(&sb, "%s: %s\n", field, theme.FormatColor(col))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/example/imgedit/internal/theme"
)

type fileConfig struct {
	Theme   string `mapstructure:"theme"`
	SaveDir string `mapstructure:"save_dir"`
	Notify  struct {
		Load bool `mapstructure:"load"`
		Save bool `mapstructure:"save"`
		Copy bool `mapstructure:"copy"`
	} `mapstructure:"notify"`
	Text struct {
		Color  string  `mapstructure:"color"`
		Size   float64 `mapstructure:"size"`
		Family string  `mapstructure:"family"`
		Weight string  `mapstructure:"weight"`
	} `mapstructure:"text"`
	Server struct {
		Addr string `mapstructure:"addr"`
		Mode string `mapstructure:"mode"`
	} `mapstructure:"server"`
	Themes map[string]map[string]string `mapstructure:"themes"`
}

// ParseYAML reads a YAML configuration file with the same keys as the rc
// format. Custom palettes go under `themes.NAME`.
func ParseYAML(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	def := New()
	v.SetDefault("text.color", def.Text.Color)
	v.SetDefault("text.size", def.Text.SizePx)
	v.SetDefault("text.family", def.Text.Family)
	v.SetDefault("text.weight", def.Text.Weight)
	v.SetDefault("server.addr", def.Server.Addr)
	v.SetDefault("server.mode", def.Server.Mode)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	cfg := New()
	cfg.Theme = fc.Theme
	cfg.SaveDir = fc.SaveDir
	cfg.Notify = Notify{Load: fc.Notify.Load, Save: fc.Notify.Save, Copy: fc.Notify.Copy}
	cfg.Server = Server{Addr: fc.Server.Addr, Mode: fc.Server.Mode}
	for key, value := range map[string]string{
		"color":  fc.Text.Color,
		"size":   fmt.Sprint(fc.Text.Size),
		"family": fc.Text.Family,
		"weight": fc.Text.Weight,
	} {
		if err := setTextField(&cfg.Text, key, value); err != nil {
			return nil, fmt.Errorf("text: %w", err)
		}
	}
	for name, fields := range fc.Themes {
		t := theme.Default()
		t.Name = name
		for key, value := range fields {
			if err := theme.Set(t, key, value); err != nil {
				return nil, fmt.Errorf("themes.%s: %w", name, err)
			}
		}
		cfg.Themes[name] = t
	}
	return cfg, nil
}

package main

import (
	"flag"
	"fmt"

	"github.com/example/imgedit/internal/config"
)

type configCmd struct {
	*root
	fs *flag.FlagSet
}

func (c *configCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseConfigCmd(args []string, r *root) (*configCmd, error) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	c := &configCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *configCmd) Run() error {
	args := c.fs.Args()
	if len(args) < 1 {
		return &UsageError{of: c}
	}

	switch args[0] {
	case "print":
		return c.runPrint()
	case "save":
		return c.runSave()
	default:
		return fmt.Errorf("unknown config command: %s", args[0])
	}
}

func (c *configCmd) runPrint() error {
	cfg := c.config
	if cfg == nil {
		cfg = config.New()
	}
	_, err := fmt.Fprint(c.out(), cfg.String())
	return err
}

// runSave writes the effective configuration, including a theme chosen on
// the command line, to the file in use or the XDG default.
func (c *configCmd) runSave() error {
	cfg := *config.New()
	if c.config != nil {
		cfg = *c.config
	}
	if c.themeName != "" {
		cfg.Theme = c.themeName
	}
	path, err := config.NewLoader(version, configPathOverride).Save(&cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.errOut(), "Configuration saved to %s\n", path)
	return nil
}

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/example/imgedit/internal/ui"
)

var errNoDisplay = errors.New("no display available: DISPLAY and WAYLAND_DISPLAY are unset")

// editCmd opens the editor window.
type editCmd struct {
	files   []string
	saveDir string
	paste   bool
	*root
	fs *flag.FlagSet
}

func (e *editCmd) FlagSet() *flag.FlagSet {
	return e.fs
}

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	e := &editCmd{root: r, fs: fs}
	fs.Usage = usageFunc(e)
	saveDir := ""
	if r != nil && r.config != nil {
		saveDir = r.config.SaveDir
	}
	fs.StringVar(&e.saveDir, "save-dir", saveDir, "directory the save shortcut writes to")
	fs.BoolVar(&e.paste, "from-clipboard", false, "start with the clipboard image")
	fs.BoolVar(&e.paste, "from-clip", false, "start with the clipboard image (alias)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	e.files = fs.Args()
	return e, nil
}

func displayAvailable() error {
	if runtime.GOOS != "linux" {
		return nil
	}
	if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		return errNoDisplay
	}
	return nil
}

func (e *editCmd) Run() error {
	if err := displayAvailable(); err != nil {
		return err
	}
	ed := e.newEditor()
	for _, path := range e.files {
		if _, err := ed.Open(path); err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
	}
	if e.paste {
		if _, err := ed.PasteFromClipboard(); err != nil {
			return err
		}
	}
	w := ui.New(ed,
		ui.WithTheme(e.activeTheme),
		ui.WithThemeLoader(e.loadTheme),
		ui.WithOnThemeChange(e.persistTheme),
		ui.WithSaveDir(e.saveDir),
		ui.WithLogger(logrus.WithField("component", "ui")),
	)
	w.Run()
	return nil
}

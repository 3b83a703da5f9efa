package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/example/imgedit/internal/clipboard"
	"github.com/example/imgedit/internal/config"
	"github.com/example/imgedit/internal/editor"
	"github.com/example/imgedit/internal/notify"
	"github.com/example/imgedit/internal/theme"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

// Overridden in tests.
var (
	writeClipboardFn = clipboard.WriteImage
	readClipboardFn  = clipboard.ReadImage
)

type runnable interface{ Run() error }

type root struct {
	fs          *flag.FlagSet
	program     string
	session     *editor.Editor
	notifier    *notify.Notifier
	config      *config.Config
	loadAlerts  bool
	saveAlerts  bool
	copyAlerts  bool
	verbose     bool
	themeName   string
	activeTheme *theme.Theme
	stdout      io.Writer
	stderr      io.Writer
}

func (r *root) Program() string {
	return r.program
}

func (r *root) subcommand(name string) *root {
	program := strings.TrimSpace(strings.Join([]string{r.program, name}, " "))
	return &root{
		program:     program,
		session:     r.session,
		notifier:    r.notifier,
		config:      r.config,
		loadAlerts:  r.loadAlerts,
		saveAlerts:  r.saveAlerts,
		copyAlerts:  r.copyAlerts,
		verbose:     r.verbose,
		themeName:   r.themeName,
		activeTheme: r.activeTheme,
		stdout:      r.stdout,
		stderr:      r.stderr,
	}
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	prefs := notify.LoadPreferences()
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}

	r := &root{
		fs:       flag.NewFlagSet("imgedit", flag.ExitOnError),
		program:  "imgedit",
		notifier: notify.New(prefs),
		config:   cfg,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
	r.fs.BoolVar(&r.loadAlerts, "notify-load", cfg.Notify.Load, "show a desktop notification after opening an image")
	r.fs.BoolVar(&r.saveAlerts, "notify-save", cfg.Notify.Save, "show a desktop notification after saving an image")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying to the clipboard")
	r.fs.BoolVar(&r.verbose, "v", false, "verbose (debug) logging")

	// Precedence: CLI > Env > Config > Default
	r.fs.StringVar(&r.themeName, "theme", "", "color theme to use (light, dark, or a .theme file)")
	r.fs.Usage = usageFunc(r)
	return r
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	r.setupLogging()
	if r.notifier != nil {
		r.notifier.Enable(notify.EventLoad, r.loadAlerts)
		r.notifier.Enable(notify.EventSave, r.saveAlerts)
		r.notifier.Enable(notify.EventCopy, r.copyAlerts)
	}
	r.activeTheme = r.resolveTheme()

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "edit":
		cmd, err = parseEditCmd(subArgs, r.subcommand("edit"))
	case "apply":
		cmd, err = parseApplyCmd(subArgs, r.subcommand("apply"))
	case "interactive":
		cmd, err = parseInteractiveCmd(subArgs, r.subcommand("interactive"))
	case "serve":
		cmd, err = parseServeCmd(subArgs, r.subcommand("serve"))
	case "config":
		cmd, err = parseConfigCmd(subArgs, r.subcommand("config"))
	case "version":
		cmd = &versionCmd{r: r.subcommand("version")}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

func (r *root) setupLogging() {
	logrus.SetOutput(r.errOut())
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetLevel(logrus.InfoLevel)
	if r.verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
}

func (r *root) themeChoice() string {
	if r.themeName != "" {
		return r.themeName
	}
	if env := os.Getenv("IMGEDIT_THEME"); env != "" {
		return env
	}
	if r.config != nil {
		return r.config.Theme
	}
	return ""
}

// loadTheme resolves name against the config file's palettes first and
// then the theme loader.
func (r *root) loadTheme(name string) (*theme.Theme, error) {
	if r.config != nil {
		if t, ok := r.config.Themes[name]; ok {
			return t, nil
		}
	}
	return theme.NewLoader().Load(name)
}

func (r *root) resolveTheme() *theme.Theme {
	name := r.themeChoice()
	t, err := r.loadTheme(name)
	if err != nil {
		// Only warn if a specific theme was requested.
		if name != "" && name != theme.LightName {
			fmt.Fprintf(r.errOut(), "warning: failed to load theme '%s': %v. using default.\n", name, err)
		}
		return theme.Default()
	}
	return t
}

// persistTheme records a theme toggled in the window.
func (r *root) persistTheme(name string) {
	if r.config == nil {
		return
	}
	r.config.Theme = name
	path, err := config.NewLoader(version, configPathOverride).Save(r.config)
	if err != nil {
		logrus.WithError(err).Warn("saving theme preference failed")
		return
	}
	logrus.WithFields(logrus.Fields{"theme": name, "path": path}).Debug("theme preference saved")
}

// newEditor builds an editor wired to the notifier, clipboard and text
// style of this invocation.
func (r *root) newEditor(opts ...editor.Option) *editor.Editor {
	style := config.New().Text
	if r.config != nil {
		style = r.config.Text
	}
	base := []editor.Option{
		editor.WithNotifier(r.notifier),
		editor.WithTextStyle(style),
		editor.WithClipboard(writeClipboardFn, readClipboardFn),
	}
	return editor.New(append(base, opts...)...)
}

func (r *root) out() io.Writer {
	if r.stdout == nil {
		return os.Stdout
	}
	return r.stdout
}

func (r *root) errOut() io.Writer {
	if r.stderr == nil {
		return os.Stderr
	}
	return r.stderr
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
		} else {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

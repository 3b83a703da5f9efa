package ui

import (
	"context"
	"image"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/event/touch"

	"github.com/example/imgedit/internal/editor"
	"github.com/example/imgedit/internal/geom"
	"github.com/example/imgedit/internal/input"
	"github.com/example/imgedit/internal/theme"
)

// frameDropThreshold caps how many in-flight paints are cancelled in a row
// before one is allowed to finish.
const frameDropThreshold = 3

// Window shows one editor session.
type Window struct {
	ed    *editor.Editor
	title string
	ctl   *controller

	onClose   func()
	closeOnce sync.Once
}

// Option modifies a Window during creation.
type Option func(*Window)

// WithTheme sets the starting palette.
func WithTheme(t *theme.Theme) Option { return func(w *Window) { w.ctl.theme = t } }

// WithThemeLoader resolves palettes by name when the theme is toggled.
func WithThemeLoader(fn func(name string) (*theme.Theme, error)) Option {
	return func(w *Window) { w.ctl.loadTheme = fn }
}

// WithOnThemeChange registers a callback for theme toggles.
func WithOnThemeChange(fn func(name string)) Option {
	return func(w *Window) { w.ctl.onTheme = fn }
}

// WithSaveDir sets where the save shortcut writes the export.
func WithSaveDir(dir string) Option { return func(w *Window) { w.ctl.saveDir = dir } }

// WithTitle sets the window title.
func WithTitle(title string) Option { return func(w *Window) { w.title = title } }

// WithLogger replaces the default logger.
func WithLogger(l *logrus.Entry) Option { return func(w *Window) { w.ctl.log = l } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(w *Window) { w.onClose = fn } }

// New creates a window for ed.
func New(ed *editor.Editor, opts ...Option) *Window {
	w := &Window{ed: ed, title: "imgedit", ctl: newController(ed, nil)}
	for _, o := range opts {
		o(w)
	}
	if w.ctl.theme == nil {
		w.ctl.theme = theme.Default()
	}
	return w
}

func (w *Window) notifyClose() {
	w.closeOnce.Do(func() {
		if w.onClose != nil {
			w.onClose()
		}
	})
}

// Run starts the platform driver and blocks until the window closes.
func (w *Window) Run() { driver.Main(w.Main) }

// Main runs the event loop on screen s.
func (w *Window) Main(s screen.Screen) {
	ctl := w.ctl
	var native geom.Size
	if cur := w.ed.Current(); cur != nil {
		native = cur.Size()
	}
	start := initialWindowSize(native)
	win, err := s.NewWindow(&screen.NewWindowOptions{Width: start.X, Height: start.Y, Title: w.title})
	if err != nil {
		ctl.log.WithError(err).Error("new window")
		return
	}
	defer win.Release()
	defer w.notifyClose()
	ctl.resize(start.X, start.Y)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-w.ed.Updates():
				win.Send(paint.Event{})
			case <-done:
				return
			}
		}
	}()
	defer close(done)

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	shadows := &shadowCache{}
	paintCh := make(chan Frame, 1)
	go func() {
		for f := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			drawFrame(ctx, s, win, f, shadows, ctl.log)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			cancel()
		}
	}()
	defer close(paintCh)

	stopPaint := func() {
		paintMu.Lock()
		if paintCancel != nil {
			paintCancel()
		}
		paintMu.Unlock()
	}

	for {
		switch e := win.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				stopPaint()
				return
			}
		case size.Event:
			ctl.resize(e.WidthPx, e.HeightPx)
			win.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			ctl.relayout()
			f := ctl.frame()
			select {
			case paintCh <- f:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- f
			}
		case mouse.Event:
			p, ok := input.FromMouse(e)
			if !ok {
				continue
			}
			// a press may also dismiss the message box
			if ctl.pointer(p) || p.Phase == input.Down {
				win.Send(paint.Event{})
			}
		case touch.Event:
			if ctl.pointer(input.FromTouch(e)) {
				win.Send(paint.Event{})
			}
		case key.Event:
			ctl.key(e)
			if ctl.quit {
				stopPaint()
				return
			}
			win.Send(paint.Event{})
		case error:
			ctl.log.WithError(e).Warn("window event")
		}
	}
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, f Frame, shadows *shadowCache, log *logrus.Entry) {
	if f.Width <= 0 || f.Height <= 0 {
		return
	}
	b, err := s.NewBuffer(image.Point{f.Width, f.Height})
	if err != nil {
		log.WithError(err).Error("new buffer")
		return
	}
	defer b.Release()

	Compose(ctx, b.RGBA(), f, shadows)
	if ctx.Err() != nil {
		return
	}
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"errors"
	"image"
	"sync"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

const readTimeout = 2 * time.Second

var (
	initOnce sync.Once
	initErr  error
	shared   *owner

	errTimeout = errors.New("clipboard owner did not answer")
)

func ensureInit() error {
	initOnce.Do(func() {
		if !haveDisplay() {
			initErr = errNoDisplay
			return
		}
		shared, initErr = newOwner()
	})
	return initErr
}

// WriteImage publishes img as PNG. The process keeps answering paste
// requests until another client takes the selection.
func WriteImage(img image.Image) error {
	if err := ensureInit(); err != nil {
		return err
	}
	data, err := encodePNG(img)
	if err != nil {
		return err
	}
	shared.mu.Lock()
	shared.png = data
	shared.mu.Unlock()
	return xproto.SetSelectionOwnerChecked(shared.conn, shared.window, shared.atoms.clipboard, xproto.TimeCurrentTime).Check()
}

// ReadImage asks the selection owner which image formats it offers and
// decodes the preferred one.
func ReadImage() (image.Image, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	conn, win, err := openRequestor()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	a := shared.atoms
	raw, err := convert(conn, win, a, a.targets)
	if err != nil {
		return nil, err
	}
	target, ok := pickTarget(a.names(raw))
	if !ok {
		return nil, ErrNoImage
	}
	// TODO: handle INCR transfers so images above the server request limit paste.
	data, err := convert(conn, win, a, a.mime[target])
	if err != nil {
		return nil, err
	}
	return decodeImage(data)
}

type atomTable struct {
	clipboard xproto.Atom
	targets   xproto.Atom
	property  xproto.Atom
	mime      map[string]xproto.Atom
}

func internAtoms(conn *xgb.Conn) (atomTable, error) {
	intern := func(name string) (xproto.Atom, error) {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			return 0, err
		}
		return reply.Atom, nil
	}
	t := atomTable{mime: map[string]xproto.Atom{}}
	var err error
	if t.clipboard, err = intern("CLIPBOARD"); err != nil {
		return t, err
	}
	if t.targets, err = intern("TARGETS"); err != nil {
		return t, err
	}
	if t.property, err = intern("IMGEDIT_PASTE"); err != nil {
		return t, err
	}
	for _, name := range pasteTargets {
		if t.mime[name], err = intern(name); err != nil {
			return t, err
		}
	}
	return t, nil
}

// names maps a TARGETS reply onto the mime types this package knows.
func (t atomTable) names(raw []byte) []string {
	var out []string
	for i := 0; i+4 <= len(raw); i += 4 {
		atom := xproto.Atom(xgb.Get32(raw[i:]))
		for name, a := range t.mime {
			if a == atom {
				out = append(out, name)
			}
		}
	}
	return out
}

// owner holds the selection on behalf of WriteImage.
type owner struct {
	conn   *xgb.Conn
	window xproto.Window
	atoms  atomTable

	mu  sync.RWMutex
	png []byte
}

func newOwner() (*owner, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	screen := xproto.Setup(conn).DefaultScreen(conn)
	window, err := xproto.NewWindowId(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	err = xproto.CreateWindowChecked(conn, screen.RootDepth, window, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOutput, screen.RootVisual, xproto.CwEventMask,
		[]uint32{xproto.EventMaskPropertyChange}).Check()
	if err != nil {
		conn.Close()
		return nil, err
	}
	atoms, err := internAtoms(conn)
	if err != nil {
		xproto.DestroyWindow(conn, window)
		conn.Close()
		return nil, err
	}
	o := &owner{conn: conn, window: window, atoms: atoms}
	go o.serve()
	return o, nil
}

func (o *owner) serve() {
	for {
		ev, err := o.conn.WaitForEvent()
		if ev == nil && err == nil {
			return
		}
		switch e := ev.(type) {
		case xproto.SelectionRequestEvent:
			o.answer(e)
		case xproto.SelectionClearEvent:
			o.mu.Lock()
			o.png = nil
			o.mu.Unlock()
		}
	}
}

// answer serves TARGETS and image/png and refuses everything else.
func (o *owner) answer(e xproto.SelectionRequestEvent) {
	o.mu.RLock()
	data := o.png
	o.mu.RUnlock()

	property := e.Property
	if property == xproto.AtomNone {
		property = e.Target
	}
	png := o.atoms.mime["image/png"]
	switch {
	case len(data) == 0:
		property = xproto.AtomNone
	case e.Target == o.atoms.targets:
		list := make([]byte, 8)
		xgb.Put32(list, uint32(o.atoms.targets))
		xgb.Put32(list[4:], uint32(png))
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, property, xproto.AtomAtom, 32, 2, list)
	case e.Target == png:
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, property, png, 8, uint32(len(data)), data)
	default:
		property = xproto.AtomNone
	}

	reply := xproto.SelectionNotifyEvent{
		Time:      e.Time,
		Requestor: e.Requestor,
		Selection: e.Selection,
		Target:    e.Target,
		Property:  property,
	}
	xproto.SendEvent(o.conn, false, e.Requestor, 0, string(reply.Bytes()))
}

// openRequestor creates a short-lived connection and window to receive a
// selection.
func openRequestor() (*xgb.Conn, xproto.Window, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, 0, err
	}
	screen := xproto.Setup(conn).DefaultScreen(conn)
	win, err := xproto.NewWindowId(conn)
	if err == nil {
		err = xproto.CreateWindowChecked(conn, 0, win, screen.Root, 0, 0, 1, 1, 0,
			xproto.WindowClassInputOnly, 0, xproto.CwEventMask,
			[]uint32{xproto.EventMaskPropertyChange}).Check()
	}
	if err != nil {
		conn.Close()
		return nil, 0, err
	}
	return conn, win, nil
}

// convert requests target from the selection owner and waits for the
// reply. The connection must be closed by the caller when it returns
// errTimeout.
func convert(conn *xgb.Conn, win xproto.Window, a atomTable, target xproto.Atom) ([]byte, error) {
	err := xproto.ConvertSelectionChecked(conn, win, a.clipboard, target, a.property, xproto.TimeCurrentTime).Check()
	if err != nil {
		return nil, err
	}
	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		for {
			ev, err := conn.WaitForEvent()
			if ev == nil && err == nil {
				done <- result{err: errTimeout}
				return
			}
			e, ok := ev.(xproto.SelectionNotifyEvent)
			if !ok {
				continue
			}
			if e.Property == xproto.AtomNone {
				done <- result{err: ErrNoImage}
				return
			}
			reply, perr := xproto.GetProperty(conn, true, win, e.Property, xproto.GetPropertyTypeAny, 0, (1<<31)-1).Reply()
			if perr != nil {
				done <- result{err: perr}
				return
			}
			done <- result{data: append([]byte(nil), reply.Value...)}
			return
		}
	}()
	select {
	case r := <-done:
		return r.data, r.err
	case <-time.After(readTimeout):
		return nil, errTimeout
	}
}

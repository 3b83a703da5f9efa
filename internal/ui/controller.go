package ui

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"strings"
	"time"
	"unicode"

	"github.com/sirupsen/logrus"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/mobile/event/key"

	"github.com/example/imgedit/internal/annotate"
	"github.com/example/imgedit/internal/crop"
	"github.com/example/imgedit/internal/editor"
	"github.com/example/imgedit/internal/filters"
	"github.com/example/imgedit/internal/fonts"
	"github.com/example/imgedit/internal/geom"
	"github.com/example/imgedit/internal/input"
	"github.com/example/imgedit/internal/theme"
)

const messageDuration = 2 * time.Second

// textColors is the cycle used by Ctrl+K while a text is being edited.
var textColors = []string{"#ffffff", "#000000", "#f44336", "#ffeb3b", "#4caf50", "#2196f3"}

type shadowKey struct {
	id       string
	source   image.Image
	rotation int
}

// controller holds the window state that is independent of the screen:
// layout, keyboard handling and pointer routing. It is driven by the event
// loop goroutine only.
type controller struct {
	ed        *editor.Editor
	theme     *theme.Theme
	loadTheme func(name string) (*theme.Theme, error)
	onTheme   func(name string)
	saveDir   string
	log       *logrus.Entry
	now       func() time.Time

	width, height int
	canvas        image.Rectangle

	tracker   input.Tracker
	keys      *keymap
	filterIdx int

	typing bool
	draft  string

	message      string
	messageUntil time.Time
	quit         bool
}

func newController(ed *editor.Editor, th *theme.Theme) *controller {
	if th == nil {
		th = theme.Default()
	}
	c := &controller{
		ed:    ed,
		theme: th,
		log:   logrus.WithField("component", "ui"),
		now:   time.Now,
	}
	c.registerActions()
	return c
}

func (c *controller) registerActions() {
	k := newKeymap()
	k.register("crop", "C crop", shortcutList{runeKey('c')}, func() {
		c.ed.StartCrop()
	})
	k.register("apply", "", shortcutList{codeKey(key.CodeReturnEnter)}, func() {
		if !c.ed.Cropping() {
			return
		}
		ok, err := c.ed.ApplyCrop()
		switch {
		case err != nil:
			c.flash("crop failed: " + err.Error())
		case !ok:
		case c.ed.Surface().Empty():
			c.flash("cropped to an empty image")
		default:
			c.flash("cropped")
		}
	})
	k.register("cancel", "", shortcutList{codeKey(key.CodeEscape)}, func() {
		c.ed.CancelCrop()
		c.message = ""
	})
	k.register("rotate-left", "[ ] rotate", shortcutList{runeKey('[')}, func() { c.ed.RotateLeft() })
	k.register("rotate-right", "", shortcutList{runeKey(']')}, func() { c.ed.RotateRight() })
	k.register("flip-horizontal", "H V flip", shortcutList{runeKey('h')}, func() { c.ed.FlipHorizontal() })
	k.register("flip-vertical", "", shortcutList{runeKey('v')}, func() { c.ed.FlipVertical() })
	k.register("reset", "R reset", shortcutList{runeKey('r')}, func() {
		if c.ed.Reset() {
			c.flash("image reset")
		}
	})
	k.register("text", "T text", shortcutList{runeKey('t')}, func() {
		if c.ed.Current() == nil {
			return
		}
		c.ed.CancelCrop()
		c.typing = true
		c.draft = ""
	})
	k.register("edit-text", "", shortcutList{runeKey('e')}, func() {
		nodes := c.ed.TextNodes()
		if len(nodes) > 0 {
			c.ed.EditText(nodes[len(nodes)-1].ID)
		}
	})
	for i, name := range filters.Names {
		i := i
		help := ""
		if i == 0 {
			help = fmt.Sprintf("1-%d filter", len(filters.Names))
		}
		k.register("filter-"+name, help, shortcutList{runeKey(rune('1' + i))}, func() { c.filterIdx = i })
	}
	k.register("increase", "+ - adjust", shortcutList{runeKey('+'), runeKey('=')}, func() { c.adjust(1) })
	k.register("decrease", "", shortcutList{runeKey('-')}, func() { c.adjust(-1) })
	k.register("next", "Tab image", shortcutList{codeKey(key.CodeTab)}, func() { c.ed.Next() })
	k.register("prev", "", shortcutList{{Rune: -1, Code: key.CodeTab, Modifiers: key.ModShift}}, func() { c.ed.Prev() })
	k.register("save", "S save", shortcutList{runeKey('s'), ctrlRune('s')}, func() {
		path, err := c.ed.ExportFile(c.saveDir)
		if err != nil {
			c.flash("save failed: " + err.Error())
			return
		}
		c.flash("saved " + path)
	})
	k.register("copy", "Ctrl+C copy", shortcutList{ctrlRune('c')}, func() {
		if err := c.ed.CopyToClipboard(); err != nil {
			c.flash("copy failed: " + err.Error())
			return
		}
		c.flash("image copied to clipboard")
	})
	k.register("paste", "Ctrl+V paste", shortcutList{ctrlRune('v')}, func() {
		if _, err := c.ed.PasteFromClipboard(); err != nil {
			c.flash("paste failed: " + err.Error())
		}
	})
	k.register("close", "", shortcutList{ctrlRune('w')}, func() {
		if cur := c.ed.Current(); cur != nil {
			_ = c.ed.Remove(cur.ID)
		}
	})
	k.register("theme", "D theme", shortcutList{runeKey('d')}, c.toggleTheme)
	k.register("quit", "Q quit", shortcutList{runeKey('q')}, func() { c.quit = true })
	c.keys = k
}

func (c *controller) flash(msg string) {
	c.log.Info(msg)
	c.message = msg
	c.messageUntil = c.now().Add(messageDuration)
}

func (c *controller) currentMessage() string {
	if c.message != "" && c.now().Before(c.messageUntil) {
		return c.message
	}
	return ""
}

func (c *controller) filterName() string { return filters.Names[c.filterIdx] }

// adjust steps the selected filter by one notch in dir.
func (c *controller) adjust(dir float64) {
	step := 10.0
	if c.filterName() == "blur" {
		step = 1
	}
	if _, err := c.ed.AdjustFilter(c.filterName(), dir*step); err != nil {
		c.flash(err.Error())
	}
}

func (c *controller) toggleTheme() {
	name := theme.Toggle(c.theme.Name)
	var t *theme.Theme
	if c.loadTheme != nil {
		var err error
		if t, err = c.loadTheme(name); err != nil {
			c.log.WithError(err).WithField("theme", name).Warn("theme load failed")
			t = nil
		}
	}
	if t == nil {
		t = theme.Light()
		if name == theme.DarkName {
			t = theme.Dark()
		}
	}
	c.theme = t
	if c.onTheme != nil {
		c.onTheme(t.Name)
	}
}

// resize records the window size and fits the canvas into it.
func (c *controller) resize(w, h int) {
	c.width, c.height = w, h
	c.relayout()
}

// relayout recomputes the canvas for the current image. The editor's display
// size follows the canvas so pointer coordinates map onto native pixels.
func (c *controller) relayout() {
	var native geom.Size
	if cur := c.ed.Current(); cur != nil {
		native = cur.Size()
	}
	c.canvas = CanvasRect(c.width, c.height, native)
	if !c.canvas.Empty() {
		c.ed.SetDisplaySize(geom.SizeOf(c.canvas))
	}
}

// pointer routes a window pointer event to the crop session or the text
// layer. It reports whether a repaint is needed.
func (c *controller) pointer(p input.Pointer) bool {
	if p.Phase == input.Down && c.currentMessage() != "" {
		c.messageUntil = time.Time{}
	}
	if c.ed.Current() == nil || c.typing {
		return false
	}
	p.X -= float64(c.canvas.Min.X)
	p.Y -= float64(c.canvas.Min.Y)
	changed := false
	for _, ev := range c.tracker.Track(p, c.now()) {
		if c.ed.Cropping() {
			changed = c.ed.CropPointer(ev) || changed
			continue
		}
		changed = c.ed.TextPointer(ev) || changed
	}
	return changed
}

var errNoFocus = errors.New("no text focused")

func (c *controller) focusedNode() (annotate.Node, error) {
	id := c.ed.FocusedText()
	if id == "" {
		return annotate.Node{}, errNoFocus
	}
	for _, n := range c.ed.TextNodes() {
		if n.ID == id {
			return n, nil
		}
	}
	return annotate.Node{}, errNoFocus
}

// key handles a key press. Text entry takes priority over shortcuts.
func (c *controller) key(e key.Event) {
	if e.Direction == key.DirRelease {
		return
	}
	if c.typing {
		c.typeDraft(e)
		return
	}
	if n, err := c.focusedNode(); err == nil {
		c.editFocused(n, e)
		return
	}
	if name, ok := c.keys.lookup(e); ok {
		c.keys.run(name)
	}
}

func (c *controller) typeDraft(e key.Event) {
	switch e.Code {
	case key.CodeReturnEnter:
		c.typing = false
		if _, ok := c.ed.AddText(c.draft); !ok {
			c.flash("text is empty")
		}
		c.draft = ""
		return
	case key.CodeEscape:
		c.typing = false
		c.draft = ""
		return
	case key.CodeDeleteBackspace:
		c.draft = dropLastRune(c.draft)
		return
	}
	if e.Rune > 0 && unicode.IsPrint(e.Rune) && e.Modifiers&key.ModControl == 0 {
		c.draft += string(e.Rune)
	}
}

func (c *controller) editFocused(n annotate.Node, e key.Event) {
	ctrl := e.Modifiers&key.ModControl != 0
	switch {
	case e.Code == key.CodeReturnEnter || e.Code == key.CodeEscape:
		c.ed.BlurText()
	case e.Code == key.CodeDeleteForward:
		c.ed.DeleteText(n.ID)
	case e.Code == key.CodeDeleteBackspace:
		c.ed.SetTextContent(dropLastRune(n.Content))
	case ctrl && e.Code == key.CodeUpArrow:
		c.ed.Restyle(resize(n.Style, 2))
	case ctrl && e.Code == key.CodeDownArrow:
		c.ed.Restyle(resize(n.Style, -2))
	case ctrl && unicode.ToLower(e.Rune) == 'b':
		st := n.Style
		st.Weight = "bold"
		if n.Style.Weight == "bold" {
			st.Weight = "normal"
		}
		c.ed.Restyle(st)
	case ctrl && unicode.ToLower(e.Rune) == 'k':
		st := n.Style
		st.Color = next(textColors, n.Style.Color)
		c.ed.Restyle(st)
	case ctrl && unicode.ToLower(e.Rune) == 'f':
		st := n.Style
		st.Family = next(fonts.Families, n.Style.Family)
		c.ed.Restyle(st)
	case !ctrl && e.Rune > 0 && unicode.IsPrint(e.Rune):
		c.ed.SetTextContent(n.Content + string(e.Rune))
	}
}

func resize(s fonts.Style, delta float64) fonts.Style {
	s.SizePx = min(max(s.SizePx+delta, 6), 200)
	return s
}

// next returns the entry after cur in list, wrapping around.
func next(list []string, cur string) string {
	for i, v := range list {
		if strings.EqualFold(v, cur) {
			return list[(i+1)%len(list)]
		}
	}
	return list[0]
}

func dropLastRune(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}

// status is the text of the status bar.
func (c *controller) status() string {
	cur := c.ed.Current()
	switch {
	case cur == nil:
		return "No image. Ctrl+V pastes from the clipboard."
	case c.typing:
		return "Text: " + c.draft + "_   Enter add, Esc cancel"
	case c.ed.FocusedText() != "":
		return "Editing text: type to change, Ctrl+B bold, Ctrl+Up/Down size, Ctrl+K colour, Del remove, Enter done"
	case c.ed.Cropping():
		return "Crop: drag to move, corners resize, Enter apply, Esc cancel"
	}
	v, _ := cur.Filters.Get(c.filterName())
	sz := cur.Size()
	return fmt.Sprintf("%s  %d/%d  %dx%d  %s %g   %s",
		cur.Name, c.ed.Store().CurrentIndex()+1, c.ed.Store().Len(),
		int(sz.W), int(sz.H), c.filterName(), v, strings.Join(c.keys.help, "  "))
}

// frame snapshots the state for painting. The surface is copied while
// scaling so the paint goroutine never shares the renderer's buffer.
func (c *controller) frame() Frame {
	f := Frame{
		Width:   c.width,
		Height:  c.height,
		Theme:   c.theme,
		Canvas:  c.canvas,
		Status:  c.status(),
		Message: c.currentMessage(),
	}
	cur := c.ed.Current()
	s := c.ed.Surface()
	if cur == nil || s.Empty() || c.canvas.Empty() {
		return f
	}
	scaled := image.NewRGBA(image.Rect(0, 0, c.canvas.Dx(), c.canvas.Dy()))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), s.Image, s.Image.Bounds(), draw.Src, nil)
	f.Image = scaled
	f.ShadowKey = shadowKey{id: cur.ID, source: cur.Source, rotation: cur.Rotation}

	origin := c.canvas.Min
	if r, ok := c.ed.CropRegion(); ok {
		f.Crop = r.Rect().Image().Add(origin)
		for _, h := range []crop.Handle{crop.TopLeft, crop.TopRight, crop.BottomLeft, crop.BottomRight} {
			f.Handles = append(f.Handles, c.ed.CropHandle(h).Image().Add(origin))
		}
	}
	if n, err := c.focusedNode(); err == nil {
		f.Focus = c.ed.TextBox(n).Image().Add(origin)
	}
	return f
}

// Package editor ties the image store, the render pipeline, the crop
// engine and the text layer into one editing session. Every operation is a
// no-op when no image is selected.
package editor

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"github.com/example/imgedit/internal/annotate"
	"github.com/example/imgedit/internal/clipboard"
	"github.com/example/imgedit/internal/crop"
	"github.com/example/imgedit/internal/filters"
	"github.com/example/imgedit/internal/fonts"
	"github.com/example/imgedit/internal/geom"
	"github.com/example/imgedit/internal/imagestore"
	"github.com/example/imgedit/internal/input"
	"github.com/example/imgedit/internal/notify"
	"github.com/example/imgedit/internal/render"
)

// ExportName is the file name used for exported images.
const ExportName = "edited-image.png"

// ErrNoImage is returned by output operations when nothing is selected.
var ErrNoImage = errors.New("no image selected")

// Editor is a single editing session. It is not safe for concurrent use;
// callers serialise access the way the UI event loop does.
type Editor struct {
	store    *imagestore.Store
	renderer *render.Renderer
	crop     *crop.Engine
	text     *annotate.Layer

	display  geom.Size
	style    fonts.Style
	notifier *notify.Notifier
	log      *logrus.Entry

	writeClipboard func(image.Image) error
	readClipboard  func() (image.Image, error)

	entryID  string
	updateCh chan struct{}
}

// Option modifies an Editor during creation.
type Option func(*Editor)

// WithStore uses s instead of a fresh store.
func WithStore(s *imagestore.Store) Option { return func(e *Editor) { e.store = s } }

// WithDisplaySize fixes the on-screen size of the canvas. Without it the
// canvas is shown at the native size of the current image.
func WithDisplaySize(sz geom.Size) Option { return func(e *Editor) { e.display = sz } }

// WithTextStyle sets the style used for new text.
func WithTextStyle(s fonts.Style) Option { return func(e *Editor) { e.style = s } }

// WithNotifier routes save, copy and load events to n.
func WithNotifier(n *notify.Notifier) Option { return func(e *Editor) { e.notifier = n } }

// WithLogger replaces the default logger.
func WithLogger(l *logrus.Entry) Option { return func(e *Editor) { e.log = l } }

// WithMeasurer sets how text boxes are measured.
func WithMeasurer(m annotate.Measurer) Option {
	return func(e *Editor) { e.text = annotate.NewLayer(geom.Size{}, m) }
}

// WithClipboard replaces the system clipboard.
func WithClipboard(write func(image.Image) error, read func() (image.Image, error)) Option {
	return func(e *Editor) {
		e.writeClipboard = write
		e.readClipboard = read
	}
}

// New creates an editor session.
func New(opts ...Option) *Editor {
	e := &Editor{
		renderer:       render.NewRenderer(),
		crop:           crop.NewEngine(),
		style:          fonts.DefaultStyle(),
		writeClipboard: clipboard.WriteImage,
		readClipboard:  clipboard.ReadImage,
		updateCh:       make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		e.store = imagestore.New()
	}
	if e.text == nil {
		e.text = annotate.NewLayer(geom.Size{}, nil)
	}
	if e.log == nil {
		e.log = logrus.WithField("component", "editor")
	}
	e.store.OnChange(e.refresh)
	e.refresh()
	return e
}

// Updates delivers a value whenever the rendered surface or an overlay
// changes. Bursts are coalesced.
func (e *Editor) Updates() <-chan struct{} { return e.updateCh }

func (e *Editor) notifyChanged() {
	select {
	case e.updateCh <- struct{}{}:
	default:
	}
}

// refresh re-renders the current entry. Switching to another entry drops
// any crop session and rebuilds the text layer from the stored texts.
func (e *Editor) refresh() {
	cur := e.store.Current()
	if cur == nil {
		e.entryID = ""
		e.crop.Cancel()
		e.text.Clear()
		e.renderer.Clear()
		e.notifyChanged()
		return
	}
	if cur.ID != e.entryID {
		e.entryID = cur.ID
		e.crop.Cancel()
		e.text.Blur()
		e.reloadText(cur)
	}
	e.renderer.Render(cur)
	e.notifyChanged()
}

func (e *Editor) reloadText(cur *imagestore.Entry) {
	e.text.SetBounds(e.displayFor(cur))
	e.text.Load(cur.Texts, e.scaleFor(cur))
}

func (e *Editor) displayFor(cur *imagestore.Entry) geom.Size {
	if !e.display.Empty() {
		return e.display
	}
	if cur == nil {
		return geom.Size{}
	}
	return cur.Size()
}

func (e *Editor) scaleFor(cur *imagestore.Entry) geom.Scale {
	if cur == nil {
		return geom.Identity
	}
	return geom.NewScale(e.displayFor(cur), cur.Size())
}

// Store exposes the underlying image collection.
func (e *Editor) Store() *imagestore.Store { return e.store }

// Current returns the selected entry or nil.
func (e *Editor) Current() *imagestore.Entry { return e.store.Current() }

// Surface returns the last rendered surface.
func (e *Editor) Surface() render.Surface { return e.renderer.Surface() }

// DisplaySize is the size the canvas occupies on screen.
func (e *Editor) DisplaySize() geom.Size { return e.displayFor(e.store.Current()) }

// Scale maps display coordinates to native pixels of the current image.
func (e *Editor) Scale() geom.Scale { return e.scaleFor(e.store.Current()) }

// SetDisplaySize changes the on-screen canvas size. Text nodes and an
// active crop selection follow so they keep covering the same pixels.
func (e *Editor) SetDisplaySize(sz geom.Size) {
	if sz == e.display {
		return
	}
	e.display = sz
	cur := e.store.Current()
	if cur == nil {
		return
	}
	e.crop.Rescale(e.displayFor(cur))
	e.reloadText(cur)
	e.notifyChanged()
}

// Open loads the file at path into the session.
func (e *Editor) Open(path string) (*imagestore.Entry, error) {
	entry, err := e.store.Open(path)
	if err != nil {
		e.log.WithError(err).WithField("path", path).Warn("open failed")
		return nil, err
	}
	e.loaded(entry)
	return entry, nil
}

// Decode reads an image stream into the session.
func (e *Editor) Decode(name string, r io.Reader) (*imagestore.Entry, error) {
	entry, err := e.store.Decode(name, r)
	if err != nil {
		return nil, err
	}
	e.loaded(entry)
	return entry, nil
}

// AddImage adds an already decoded image.
func (e *Editor) AddImage(name string, img image.Image) *imagestore.Entry {
	entry := e.store.Add(name, img)
	e.loaded(entry)
	return entry
}

func (e *Editor) loaded(entry *imagestore.Entry) {
	e.log.WithFields(logrus.Fields{"id": entry.ID, "name": entry.Name}).Info("image loaded")
	e.notifier.Load(entry.Name, entry.Source)
}

// Select makes id the current image.
func (e *Editor) Select(id string) error { return e.store.Select(id) }

// SelectIndex selects by position, wrapping around.
func (e *Editor) SelectIndex(i int) bool { return e.store.SelectIndex(i) }

// Next moves the selection forward by one.
func (e *Editor) Next() bool { return e.store.SelectIndex(e.store.CurrentIndex() + 1) }

// Prev moves the selection back by one.
func (e *Editor) Prev() bool { return e.store.SelectIndex(e.store.CurrentIndex() - 1) }

// Remove drops an image from the session.
func (e *Editor) Remove(id string) error { return e.store.Remove(id) }

// SetFilter updates one filter of the current image.
func (e *Editor) SetFilter(name string, v float64) (bool, error) {
	return e.store.SetFilter(name, v)
}

// AdjustFilter moves a filter by delta within its limits.
func (e *Editor) AdjustFilter(name string, delta float64) (bool, error) {
	cur := e.store.Current()
	if cur == nil {
		return false, nil
	}
	v, err := cur.Filters.Get(name)
	if err != nil {
		return false, err
	}
	return e.store.SetFilter(name, v+delta)
}

// SetFilters replaces the whole filter stack.
func (e *Editor) SetFilters(s filters.Stack) bool { return e.store.SetFilters(s) }

// RotateLeft turns the image 90° counter-clockwise.
func (e *Editor) RotateLeft() bool { return e.store.RotateLeft() }

// RotateRight turns the image 90° clockwise.
func (e *Editor) RotateRight() bool { return e.store.RotateRight() }

// FlipHorizontal mirrors the image left to right.
func (e *Editor) FlipHorizontal() bool { return e.store.FlipHorizontal() }

// FlipVertical mirrors the image top to bottom.
func (e *Editor) FlipVertical() bool { return e.store.FlipVertical() }

// Reset returns the current image to its loaded state and removes its text.
func (e *Editor) Reset() bool {
	e.crop.Cancel()
	if !e.store.Reset() {
		return false
	}
	e.reloadText(e.store.Current())
	return true
}

// StartCrop opens a crop session over the displayed canvas.
func (e *Editor) StartCrop() bool {
	cur := e.store.Current()
	if cur == nil {
		return false
	}
	e.text.Blur()
	e.crop.Start(e.displayFor(cur))
	e.notifyChanged()
	return true
}

// Cropping reports whether a crop session is active.
func (e *Editor) Cropping() bool { return e.crop.Active() }

// CropRegion returns the active selection.
func (e *Editor) CropRegion() (crop.Region, bool) {
	return e.crop.Region(), e.crop.Active()
}

// CropHandle returns the display box of a crop handle.
func (e *Editor) CropHandle(h crop.Handle) geom.Rect { return e.crop.HandleRect(h) }

// SetCropRegion replaces the selection of an active session.
func (e *Editor) SetCropRegion(start, end geom.Point) bool {
	if !e.crop.Active() {
		return false
	}
	e.crop.SetRegion(start, end)
	e.notifyChanged()
	return true
}

// CropPointer feeds a pointer event to the crop session.
func (e *Editor) CropPointer(p input.Pointer) bool {
	if !e.crop.Active() {
		return false
	}
	var changed bool
	switch p.Phase {
	case input.Down:
		changed = e.crop.PointerDown(p.Point())
	case input.Move:
		changed = e.crop.PointerMove(p.Point())
	case input.Up:
		e.crop.PointerUp()
		changed = true
	}
	if changed {
		e.notifyChanged()
	}
	return changed
}

// ApplyCrop replaces the current image with the selected part of the
// rendered surface. Filters, rotation, flips and text are baked into the
// result and reset afterwards. A zero-area selection installs a zero-area
// source, which later exports report as ErrNoImage.
func (e *Editor) ApplyCrop() (bool, error) {
	if !e.crop.Active() || e.store.Current() == nil {
		return false, nil
	}
	surface := e.renderer.Surface()
	if surface.Empty() {
		e.crop.Cancel()
		return false, nil
	}
	rect := e.crop.NativeRect(geom.SizeOf(surface.Image.Bounds()))
	img, err := e.crop.Apply(surface.Image)
	if err != nil {
		e.log.WithError(err).Error("crop failed")
		e.notifyChanged()
		return false, fmt.Errorf("apply crop: %w", err)
	}
	if img == nil {
		e.notifyChanged()
		return false, nil
	}
	if img.Bounds().Empty() {
		e.log.WithField("rect", rect).Warn("zero-area crop installed")
	}
	e.store.ReplaceSource(img)
	e.reloadText(e.store.Current())
	e.log.WithField("rect", rect).Info("crop applied")
	return true, nil
}

// CancelCrop ends the crop session without changing the image.
func (e *Editor) CancelCrop() {
	if !e.crop.Active() {
		return
	}
	e.crop.Cancel()
	e.notifyChanged()
}

// TextStyle returns the style applied to new text.
func (e *Editor) TextStyle() fonts.Style { return e.style }

// TextNodes returns the text overlay in paint order.
func (e *Editor) TextNodes() []annotate.Node { return e.text.Nodes() }

// TextBox returns the display box of a node.
func (e *Editor) TextBox(n annotate.Node) geom.Rect { return e.text.Box(n) }

// FocusedText returns the id of the node being edited.
func (e *Editor) FocusedText() string { return e.text.Focused() }

// syncText writes the overlay back to the entry in native coordinates.
// The store change triggers a re-render.
func (e *Editor) syncText() {
	cur := e.store.Current()
	if cur == nil {
		return
	}
	e.store.SetTexts(e.text.Flatten(e.scaleFor(cur)))
}

// AddText places content in the middle of the canvas with the current
// text style. Blank content is ignored.
func (e *Editor) AddText(content string) (string, bool) {
	if e.store.Current() == nil {
		return "", false
	}
	id := e.text.Add(content, e.style)
	if id == "" {
		return "", false
	}
	e.syncText()
	return id, true
}

// PlaceText moves a text annotation so its baseline origin sits at native.
func (e *Editor) PlaceText(id string, native geom.Point) bool {
	cur := e.store.Current()
	if cur == nil {
		return false
	}
	texts := append([]imagestore.TextAnnotation(nil), cur.Texts...)
	found := false
	for i := range texts {
		if texts[i].ID == id {
			texts[i].Position = native
			found = true
		}
	}
	if !found {
		return false
	}
	e.store.SetTexts(texts)
	e.reloadText(cur)
	return true
}

// TextPointer routes a pointer event to the text layer and reports whether
// it was consumed. A double press enters edit mode on the node under it.
func (e *Editor) TextPointer(p input.Pointer) bool {
	if e.store.Current() == nil {
		return false
	}
	switch p.Phase {
	case input.Down:
		if p.Double && p.Button == input.Primary {
			if _, ok := e.text.DoubleClick(p.Point()); ok {
				e.notifyChanged()
				return true
			}
		}
		before := e.text.Len()
		if !e.text.PointerDown(p.Point(), p.Button) {
			if e.text.Focused() != "" {
				e.text.Blur()
				e.notifyChanged()
			}
			return false
		}
		if e.text.Len() != before {
			e.syncText()
		}
		return true
	case input.Move:
		if e.text.PointerMove(p.Point()) {
			e.syncText()
			return true
		}
	case input.Up:
		if e.text.Dragging() {
			e.text.PointerUp()
			e.syncText()
			return true
		}
	}
	return false
}

// EditText focuses a node for editing.
func (e *Editor) EditText(id string) bool {
	if !e.text.Focus(id) {
		return false
	}
	e.notifyChanged()
	return true
}

// BlurText leaves edit mode.
func (e *Editor) BlurText() {
	if e.text.Focused() == "" {
		return
	}
	e.text.Blur()
	e.notifyChanged()
}

// DeleteText removes a node.
func (e *Editor) DeleteText(id string) bool {
	if !e.text.Delete(id) {
		return false
	}
	e.syncText()
	return true
}

// SetTextContent replaces the text of the focused node.
func (e *Editor) SetTextContent(content string) bool {
	if !e.text.SetContent(content) {
		return false
	}
	e.syncText()
	return true
}

// Restyle updates the style used for new text and applies it to the
// focused node, if any.
func (e *Editor) Restyle(s fonts.Style) bool {
	e.style = s
	if !e.text.Restyle(s) {
		e.notifyChanged()
		return false
	}
	e.syncText()
	return true
}

// Export writes the rendered image as PNG.
func (e *Editor) Export(w io.Writer) error {
	s := e.renderer.Surface()
	if s.Empty() {
		return ErrNoImage
	}
	if err := imaging.Encode(w, s.Image, imaging.PNG); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// ExportFile writes the rendered image to dir/ExportName and returns the
// path.
func (e *Editor) ExportFile(dir string) (string, error) {
	if e.renderer.Surface().Empty() {
		return "", ErrNoImage
	}
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, ExportName)
	if err := e.ExportPath(path); err != nil {
		return "", err
	}
	return path, nil
}

// ExportPath writes the rendered image to path.
func (e *Editor) ExportPath(path string) error {
	if e.renderer.Surface().Empty() {
		return ErrNoImage
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := e.Export(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	e.log.WithField("path", path).Info("image exported")
	e.notifier.Save(path)
	return nil
}

// CopyToClipboard places the rendered image on the clipboard.
func (e *Editor) CopyToClipboard() error {
	s := e.renderer.Surface()
	if s.Empty() {
		return ErrNoImage
	}
	if err := e.writeClipboard(s.Image); err != nil {
		return fmt.Errorf("copy image: %w", err)
	}
	name := "image"
	if cur := e.store.Current(); cur != nil {
		name = cur.Name
	}
	e.notifier.Copy(name)
	return nil
}

// PasteFromClipboard adds the clipboard image as a new entry.
func (e *Editor) PasteFromClipboard() (*imagestore.Entry, error) {
	img, err := e.readClipboard()
	if err != nil {
		return nil, fmt.Errorf("paste image: %w", err)
	}
	return e.AddImage("clipboard.png", img), nil
}

// Package imagestore keeps the ordered list of loaded images together with
// the edit state of each one.
package imagestore

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/example/imgedit/internal/filters"
	"github.com/example/imgedit/internal/fonts"
	"github.com/example/imgedit/internal/geom"
)

// ErrNotFound is returned when an entry id is unknown.
var ErrNotFound = errors.New("image not found")

// TextAnnotation is a text run baked into the rendered image. Position is
// the baseline origin in native pixels.
type TextAnnotation struct {
	ID       string      `json:"id"`
	Content  string      `json:"content"`
	Position geom.Point  `json:"position"`
	Style    fonts.Style `json:"style"`
}

// Entry is one loaded image and its edit state.
type Entry struct {
	ID       string
	Name     string
	Source   image.Image
	Filters  filters.Stack
	Rotation int
	FlipH    bool
	FlipV    bool
	Texts    []TextAnnotation
}

// Size returns the native dimensions of the source raster.
func (e *Entry) Size() geom.Size {
	if e == nil || e.Source == nil {
		return geom.Size{}
	}
	return geom.SizeOf(e.Source.Bounds())
}

func (e *Entry) reset() {
	e.Filters = filters.Default()
	e.Rotation = 0
	e.FlipH = false
	e.FlipV = false
	e.Texts = nil
}

// Store owns the entries. The zero value is not usable; call New.
type Store struct {
	mu       sync.RWMutex
	entries  []*Entry
	current  int
	onChange func()
}

// New returns an empty store.
func New() *Store {
	return &Store{current: -1}
}

// OnChange registers fn to be called after every mutation.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Store) notifyChanged() {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Add appends img under name. The first image added becomes current.
func (s *Store) Add(name string, img image.Image) *Entry {
	e := &Entry{ID: uuid.NewString(), Name: name, Source: img}
	e.reset()
	s.mu.Lock()
	s.entries = append(s.entries, e)
	if s.current == -1 {
		s.current = 0
	}
	s.mu.Unlock()
	s.notifyChanged()
	return e
}

// Decode reads an image from r and adds it. EXIF orientation is applied.
func (s *Store) Decode(name string, r io.Reader) (*Entry, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return s.Add(name, img), nil
}

// Open decodes the file at path and adds it.
func (s *Store) Open(path string) (*Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return s.Decode(filepath.Base(path), f)
}

// Len reports the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Entries returns the entries in load order.
func (s *Store) Entries() []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Current returns the selected entry or nil when the store is empty.
func (s *Store) Current() *Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current < 0 || s.current >= len(s.entries) {
		return nil
	}
	return s.entries[s.current]
}

// CurrentIndex returns the position of the current entry, or -1.
func (s *Store) CurrentIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Get looks up an entry by id.
func (s *Store) Get(id string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.entries[i], nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (s *Store) indexOf(id string) int {
	for i, e := range s.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Select makes the entry with id current.
func (s *Store) Select(id string) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.current = i
	s.mu.Unlock()
	s.notifyChanged()
	return nil
}

// SelectIndex makes the i-th entry current. Out of range indexes wrap so
// that callers can step forwards and backwards through the list.
func (s *Store) SelectIndex(i int) bool {
	s.mu.Lock()
	n := len(s.entries)
	if n == 0 {
		s.mu.Unlock()
		return false
	}
	s.current = ((i % n) + n) % n
	s.mu.Unlock()
	s.notifyChanged()
	return true
}

// Remove deletes the entry with id. When the current entry is removed the
// next one (or the previous at the end of the list) becomes current.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	switch {
	case len(s.entries) == 0:
		s.current = -1
	case i < s.current:
		s.current--
	case s.current >= len(s.entries):
		s.current = len(s.entries) - 1
	}
	s.mu.Unlock()
	s.notifyChanged()
	return nil
}

// edit runs fn against the current entry and reports whether there was one.
func (s *Store) edit(fn func(e *Entry)) bool {
	s.mu.Lock()
	if s.current < 0 || s.current >= len(s.entries) {
		s.mu.Unlock()
		return false
	}
	fn(s.entries[s.current])
	s.mu.Unlock()
	s.notifyChanged()
	return true
}

// SetFilter assigns a single filter on the current entry.
func (s *Store) SetFilter(name string, value float64) (bool, error) {
	if _, ok := filters.LimitsOf(name); !ok && name != "saturate" {
		return false, fmt.Errorf("%w: %s", filters.ErrUnknownFilter, name)
	}
	return s.edit(func(e *Entry) { _ = e.Filters.Set(name, value) }), nil
}

// SetFilters replaces the whole stack on the current entry.
func (s *Store) SetFilters(st filters.Stack) bool {
	return s.edit(func(e *Entry) { e.Filters = st.Clamped() })
}

// RotateLeft turns the current entry 90 degrees counter-clockwise.
func (s *Store) RotateLeft() bool {
	return s.edit(func(e *Entry) { e.Rotation = (e.Rotation - 90) % 360 })
}

// RotateRight turns the current entry 90 degrees clockwise.
func (s *Store) RotateRight() bool {
	return s.edit(func(e *Entry) { e.Rotation = (e.Rotation + 90) % 360 })
}

// FlipHorizontal toggles the horizontal mirror of the current entry.
func (s *Store) FlipHorizontal() bool {
	return s.edit(func(e *Entry) { e.FlipH = !e.FlipH })
}

// FlipVertical toggles the vertical mirror of the current entry.
func (s *Store) FlipVertical() bool {
	return s.edit(func(e *Entry) { e.FlipV = !e.FlipV })
}

// SetTexts replaces the annotations of the current entry.
func (s *Store) SetTexts(texts []TextAnnotation) bool {
	return s.edit(func(e *Entry) {
		e.Texts = append([]TextAnnotation(nil), texts...)
	})
}

// ReplaceSource installs img as the current entry's raster and returns the
// rest of its edit state to defaults.
func (s *Store) ReplaceSource(img image.Image) bool {
	if img == nil {
		return false
	}
	return s.edit(func(e *Entry) {
		e.Source = img
		e.reset()
	})
}

// Reset restores default filters, rotation and flips and drops every text
// annotation of the current entry. Other entries are left alone.
func (s *Store) Reset() bool {
	return s.edit(func(e *Entry) { e.reset() })
}

// Thumbnail returns a size×size preview of the entry's source.
func (s *Store) Thumbnail(id string, size int) (image.Image, error) {
	e, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = 96
	}
	return imaging.Thumbnail(e.Source, size, size, imaging.Lanczos), nil
}

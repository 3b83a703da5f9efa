// Package annotate manages the text nodes floating over the displayed
// image while they are being placed and edited.
package annotate

import (
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/example/imgedit/internal/fonts"
	"github.com/example/imgedit/internal/geom"
	"github.com/example/imgedit/internal/imagestore"
	"github.com/example/imgedit/internal/input"
)

// Measurer reports the rendered size of text in display pixels.
type Measurer interface {
	Measure(s fonts.Style, text string) (w, h float64)
}

// Node is one text annotation in display space.
type Node struct {
	ID       string
	Content  string
	Position geom.Point // top-left
	Style    fonts.Style
	Editing  bool
}

// Layer is the overlay holding every node for the current image. Nodes are
// addressed through a single table keyed by id; paint order follows order.
type Layer struct {
	nodes   map[string]*Node
	order   []string
	focused string

	bounds  geom.Size
	measure Measurer

	dragging   string
	dragOffset geom.Point
}

// NewLayer returns an empty overlay of the given size.
func NewLayer(bounds geom.Size, m Measurer) *Layer {
	if m == nil {
		m = fonts.Measurer{}
	}
	return &Layer{nodes: make(map[string]*Node), bounds: bounds, measure: m}
}

// Bounds returns the overlay size.
func (l *Layer) Bounds() geom.Size { return l.bounds }

// SetBounds resizes the overlay. Node positions are left as they are.
func (l *Layer) SetBounds(b geom.Size) { l.bounds = b }

// Nodes returns the nodes in paint order.
func (l *Layer) Nodes() []Node {
	out := make([]Node, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.nodes[id])
	}
	return out
}

// Node looks up a node by id.
func (l *Layer) Node(id string) (Node, bool) {
	n, ok := l.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Len reports the number of nodes.
func (l *Layer) Len() int { return len(l.order) }

// Focused returns the id of the node in edit mode, or "".
func (l *Layer) Focused() string { return l.focused }

// Box returns the bounding box of a node in display space.
func (l *Layer) Box(n Node) geom.Rect {
	w, h := l.measure.Measure(n.Style, n.Content)
	return geom.Rect{Min: n.Position, Size: geom.Size{W: w, H: h}}
}

// Add creates a node centred in the overlay. Blank content is ignored and
// Add returns "".
func (l *Layer) Add(content string, style fonts.Style) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}
	n := &Node{ID: uuid.NewString(), Content: content, Style: style}
	w, h := l.measure.Measure(style, content)
	n.Position = l.bounds.Center().Sub(geom.Pt(w/2, h/2))
	l.insert(n)
	return n.ID
}

func (l *Layer) insert(n *Node) {
	l.nodes[n.ID] = n
	l.order = append(l.order, n.ID)
}

// At returns the topmost node under p.
func (l *Layer) At(p geom.Point) (string, bool) {
	for i := len(l.order) - 1; i >= 0; i-- {
		n := l.nodes[l.order[i]]
		if l.Box(*n).Contains(p) {
			return n.ID, true
		}
	}
	return "", false
}

// PointerDown handles a press at p. A secondary press deletes the node
// under p; a primary press starts dragging it unless it is being edited.
// It reports whether the layer consumed the press.
func (l *Layer) PointerDown(p geom.Point, b input.Button) bool {
	id, ok := l.At(p)
	if !ok {
		return false
	}
	if b == input.Secondary {
		l.Delete(id)
		return true
	}
	n := l.nodes[id]
	if n.Editing {
		return true
	}
	l.dragging = id
	l.dragOffset = p.Sub(n.Position)
	return true
}

// PointerMove drags the active node, keeping its box inside the overlay.
// A node wider or taller than the overlay is pinned to W-w (or H-h), which
// puts its origin at a negative coordinate.
func (l *Layer) PointerMove(p geom.Point) bool {
	n, ok := l.nodes[l.dragging]
	if !ok {
		return false
	}
	w, h := l.measure.Measure(n.Style, n.Content)
	at := p.Sub(l.dragOffset)
	n.Position = geom.Pt(
		math.Min(math.Max(at.X, 0), l.bounds.W-w),
		math.Min(math.Max(at.Y, 0), l.bounds.H-h),
	)
	return true
}

// PointerUp ends a drag.
func (l *Layer) PointerUp() {
	l.dragging = ""
}

// Dragging reports whether a drag is in progress.
func (l *Layer) Dragging() bool { return l.dragging != "" }

// DoubleClick puts the node under p into edit mode and focuses it.
func (l *Layer) DoubleClick(p geom.Point) (string, bool) {
	id, ok := l.At(p)
	if !ok {
		return "", false
	}
	l.Focus(id)
	return id, true
}

// Focus puts id into edit mode. Any other focused node loses focus.
func (l *Layer) Focus(id string) bool {
	n, ok := l.nodes[id]
	if !ok {
		return false
	}
	l.Blur()
	n.Editing = true
	l.focused = id
	if l.dragging == id {
		l.dragging = ""
	}
	return true
}

// Blur leaves edit mode.
func (l *Layer) Blur() {
	if n, ok := l.nodes[l.focused]; ok {
		n.Editing = false
	}
	l.focused = ""
}

// Delete removes a node immediately.
func (l *Layer) Delete(id string) bool {
	if _, ok := l.nodes[id]; !ok {
		return false
	}
	delete(l.nodes, id)
	for i, o := range l.order {
		if o == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	if l.focused == id {
		l.focused = ""
	}
	if l.dragging == id {
		l.dragging = ""
	}
	return true
}

// Restyle applies s to the focused node only.
func (l *Layer) Restyle(s fonts.Style) bool {
	n, ok := l.nodes[l.focused]
	if !ok || !n.Editing {
		return false
	}
	n.Style = s
	return true
}

// SetContent replaces the text of the focused node. Blank text is ignored.
func (l *Layer) SetContent(text string) bool {
	n, ok := l.nodes[l.focused]
	if !ok || !n.Editing || strings.TrimSpace(text) == "" {
		return false
	}
	n.Content = text
	return true
}

// Clear removes every node.
func (l *Layer) Clear() {
	l.nodes = make(map[string]*Node)
	l.order = nil
	l.focused = ""
	l.dragging = ""
}

// Flatten maps the nodes into native pixel space. The baseline is placed at
// the vertical middle of each node's box and font sizes scale with the
// vertical factor.
func (l *Layer) Flatten(s geom.Scale) []imagestore.TextAnnotation {
	out := make([]imagestore.TextAnnotation, 0, len(l.order))
	for _, id := range l.order {
		n := l.nodes[id]
		_, h := l.measure.Measure(n.Style, n.Content)
		out = append(out, imagestore.TextAnnotation{
			ID:       n.ID,
			Content:  n.Content,
			Position: s.ToNative(geom.Pt(n.Position.X, n.Position.Y+h/2)),
			Style:    n.Style.Scaled(s.Y),
		})
	}
	return out
}

// Load replaces the nodes with display-space twins of texts. The focused
// node keeps its edit mode when it survives the reload.
func (l *Layer) Load(texts []imagestore.TextAnnotation, s geom.Scale) {
	focused := l.focused
	l.Clear()
	inv := 1.0
	if s.Y != 0 {
		inv = 1 / s.Y
	}
	for _, t := range texts {
		st := t.Style.Scaled(inv)
		_, h := l.measure.Measure(st, t.Content)
		p := s.ToDisplay(t.Position)
		l.insert(&Node{
			ID:       t.ID,
			Content:  t.Content,
			Position: geom.Pt(p.X, p.Y-h/2),
			Style:    st,
		})
	}
	if focused != "" {
		l.Focus(focused)
	}
}

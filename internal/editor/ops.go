package editor

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/google/uuid"

	"vecsketch/internal/history"
	"vecsketch/internal/shape"
)

// ErrNoSelection is returned by operations that need a selected shape.
var ErrNoSelection = errors.New("no shape selected")

// mutateSelected records undo, applies fn to the selection and signals the
// change. It is a no-op when nothing live is selected.
func (c *Controller) mutateSelected(fn func(s *shape.Shape)) bool {
	sel := c.selected
	if !c.present(sel) {
		return false
	}
	c.RecordForUndo()
	fn(sel)
	c.changed()
	return true
}

// Duplicate appends a copy of the selection offset by Config.DuplicateOffset
// and selects it.
func (c *Controller) Duplicate() {
	sel := c.selected
	if !c.present(sel) {
		return
	}
	c.RecordForUndo()
	dup := sel.Clone()
	dup.ID = uuid.NewString()
	dup.Translate(c.cfg.DuplicateOffset)
	c.shapes = append(c.shapes, dup)
	c.setSelected(dup)
	c.changed()
}

// Rotate turns the selection by 45 degrees. Rotation is not normalized.
func (c *Controller) Rotate() {
	c.mutateSelected(func(s *shape.Shape) { s.Rotation += math.Pi / 4 })
}

func (c *Controller) FlipHorizontal() {
	c.mutateSelected((*shape.Shape).FlipHorizontal)
}

func (c *Controller) FlipVertical() {
	c.mutateSelected((*shape.Shape).FlipVertical)
}

// LayerUp moves the selection one slot towards the top of the z-order.
func (c *Controller) LayerUp() {
	i := c.indexOf(c.selected)
	if c.selected == nil || i < 0 || i == len(c.shapes)-1 {
		return
	}
	c.RecordForUndo()
	c.shapes[i], c.shapes[i+1] = c.shapes[i+1], c.shapes[i]
	c.changed()
}

// LayerDown moves the selection one slot towards the bottom.
func (c *Controller) LayerDown() {
	i := c.indexOf(c.selected)
	if c.selected == nil || i <= 0 {
		return
	}
	c.RecordForUndo()
	c.shapes[i], c.shapes[i-1] = c.shapes[i-1], c.shapes[i]
	c.changed()
}

// Delete removes the selection.
func (c *Controller) Delete() {
	i := c.indexOf(c.selected)
	if c.selected == nil || i < 0 {
		return
	}
	c.RecordForUndo()
	if c.suggestFor == c.selected {
		c.clearSuggestions()
	}
	c.shapes = slices.Delete(c.shapes, i, i+1)
	c.setSelected(nil)
	c.changed()
}

// setStyle applies fn to the style used for new shapes and, if a shape is
// selected, to that shape's style as an undoable edit.
func (c *Controller) setStyle(fn func(st *shape.Style)) {
	fn(&c.style)
	if !c.mutateSelected(func(s *shape.Shape) { fn(&s.Style) }) {
		c.changed()
	}
}

func (c *Controller) SetStrokeColor(col shape.Color) {
	c.setStyle(func(st *shape.Style) { st.Color = col })
}

// SetStrokeWidth ignores non-positive widths.
func (c *Controller) SetStrokeWidth(w float64) {
	if w <= 0 || math.IsNaN(w) {
		return
	}
	c.setStyle(func(st *shape.Style) { st.StrokeWidth = w })
}

func (c *Controller) SetDrawMode(m shape.PaintMode) {
	c.setStyle(func(st *shape.Style) { st.Mode = m })
}

// SetOpacity clamps o to [0, 1].
func (c *Controller) SetOpacity(o float64) {
	o = shape.ClampOpacity(o)
	c.setStyle(func(st *shape.Style) { st.Opacity = o })
}

func (c *Controller) SetFontSize(size float64) {
	if size <= 0 || math.IsNaN(size) {
		return
	}
	c.setStyle(func(st *shape.Style) { st.FontSize = size })
}

func (c *Controller) SetFontStyle(fs shape.FontStyle) {
	c.setStyle(func(st *shape.Style) { st.FontStyle = fs })
}

func (c *Controller) SetFontWeight(w shape.FontWeight) {
	c.setStyle(func(st *shape.Style) { st.FontWeight = w })
}

// SetPolygonSides sets the side count for new polygons and for a selected
// polygon, clamped to [3, 12].
func (c *Controller) SetPolygonSides(n int) {
	n = min(max(n, shape.MinPolygonSides), shape.MaxPolygonSides)
	c.polygonSides = n
	if sel := c.selected; c.present(sel) && sel.Kind == shape.KindPolygon {
		c.mutateSelected(func(s *shape.Shape) { s.SetPolygonSides(n) })
		return
	}
	c.changed()
}

// SetLabel sets the label under key on the selection.
func (c *Controller) SetLabel(key, text string) {
	c.mutateSelected(func(s *shape.Shape) { s.SetLabel(key, text) })
}

// RemoveLabel deletes the label under key, position included.
func (c *Controller) RemoveLabel(key string) {
	sel := c.selected
	if !c.present(sel) {
		return
	}
	_, hasText := sel.Texts[key]
	_, hasPos := sel.TextPositions[key]
	if !hasText && !hasPos {
		return
	}
	c.mutateSelected(func(s *shape.Shape) {
		delete(s.Texts, key)
		delete(s.TextPositions, key)
	})
}

// Save encodes the live shape list.
func (c *Controller) Save() ([]byte, error) {
	data, err := shape.Marshal(c.shapes)
	if err != nil {
		return nil, fmt.Errorf("encode shapes: %w", err)
	}
	return data, nil
}

// Load replaces the live shape list with the decoded document and resets
// history. On error the current state is left untouched.
func (c *Controller) Load(data []byte) error {
	shapes, err := shape.Unmarshal(data)
	if err != nil {
		return fmt.Errorf("load shapes: %w", err)
	}
	c.cancelHold()
	c.g = newGesture()
	c.shapes = shapes
	c.lastLineEnd = nil
	c.measure = nil
	c.clearSuggestions()
	c.setSelected(nil)
	c.hist.Reset()
	c.log.Debug("document loaded", "shapes", len(shapes))
	c.changed()
	return nil
}

// CopySelection encodes the selection as a one-element record array.
func (c *Controller) CopySelection() ([]byte, error) {
	if !c.present(c.selected) {
		return nil, ErrNoSelection
	}
	data, err := shape.Marshal([]*shape.Shape{c.selected})
	if err != nil {
		return nil, fmt.Errorf("encode selection: %w", err)
	}
	return data, nil
}

// Paste decodes a record array and appends its shapes offset by
// Config.DuplicateOffset with fresh IDs, selecting the last one.
func (c *Controller) Paste(data []byte) error {
	shapes, err := shape.Unmarshal(data)
	if err != nil {
		return fmt.Errorf("paste: %w", err)
	}
	if len(shapes) == 0 {
		return nil
	}
	c.RecordForUndo()
	for _, s := range shapes {
		s.ID = uuid.NewString()
		s.Translate(c.cfg.DuplicateOffset)
	}
	c.shapes = append(c.shapes, shapes...)
	c.setSelected(shapes[len(shapes)-1])
	c.changed()
	return nil
}

// Snapshot returns a deep copy of the live shape list.
func (c *Controller) Snapshot() []*shape.Shape {
	return history.Snapshot(c.shapes)
}

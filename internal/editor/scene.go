package editor

import "vecsketch/internal/shape"

// Scene is everything a renderer needs to draw one frame. Shapes aliases
// the live list and is only valid until Revision changes.
type Scene struct {
	Shapes   []*shape.Shape
	Preview  *Preview
	Tool     Tool
	Kind     shape.Kind
	Selected *shape.Shape
	Measure  *Measure
	Scale    float64
	Offset   shape.Point
	Revision uint64
	ShowGrid bool
	GridSize float64
	Eraser   *Eraser
}

// Preview is the provisional shape of a draw gesture that has not been
// committed yet.
type Preview struct {
	Start, End shape.Point
	Shape      *shape.Shape
}

// Eraser is the eraser cursor in canvas space.
type Eraser struct {
	Center shape.Point
	Radius float64
}

// Scene captures the current frame state.
func (c *Controller) Scene() Scene {
	sc := Scene{
		Shapes:   c.shapes,
		Tool:     c.tool,
		Kind:     c.kind,
		Scale:    c.scale,
		Offset:   c.offset,
		Revision: c.revision,
		ShowGrid: c.cfg.ShowGrid,
		GridSize: c.cfg.GridSize,
	}
	if c.present(c.selected) {
		sc.Selected = c.selected
	}
	if m, ok := c.measureValue(); ok {
		sc.Measure = &m
	}
	if c.tool == ToolEraser && c.pointer != nil {
		sc.Eraser = &Eraser{Center: *c.pointer, Radius: c.cfg.EraserRadius}
	}
	if c.tool == ToolDraw && c.g.press != nil && c.kind != shape.KindFreehand {
		end := *c.g.press
		if c.g.drawEnd != nil {
			end = *c.g.drawEnd
		}
		s := shape.New(c.kind, *c.g.press, end)
		s.Style = c.style
		s.SetPolygonSides(c.polygonSides)
		if c.kind == shape.KindText {
			s.InitLabels()
		}
		sc.Preview = &Preview{Start: *c.g.press, End: end, Shape: s}
	}
	return sc
}

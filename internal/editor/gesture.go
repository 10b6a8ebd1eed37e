package editor

import (
	"fmt"
	"math"

	"vecsketch/internal/shape"
	"vecsketch/internal/snap"
)

// gesture is the transient state of one press/drag/release sequence.
type gesture struct {
	active     bool
	lastScreen shape.Point

	// draw and measure anchors, in canvas space
	press   *shape.Point
	drawEnd *shape.Point
	live    *shape.Shape

	// move
	last           shape.Point
	rawMin, rawMax shape.Point
	snapped        bool
	holding        bool
	snapAt         shape.Point
	snapTarget     shape.Point

	// resize
	handle      shape.Handle
	resizeStart shape.Point
	resizeOrig  *shape.Shape

	label     string
	labelDrag bool

	erased bool
}

func newGesture() gesture {
	return gesture{handle: shape.HandleNone}
}

// Measure is the state of the measuring tool.
type Measure struct {
	Start, End shape.Point
	Label      string
}

func distanceLabel(a, b shape.Point) string {
	return fmt.Sprintf("%.2f", b.Sub(a).Len())
}

// Start begins a gesture at screen position sp.
func (c *Controller) Start(sp shape.Point) {
	p := c.toWorld(sp)
	c.cancelHold()
	c.g = newGesture()
	c.g.active = true
	c.g.lastScreen = sp
	c.pointer = &p

	switch c.tool {
	case ToolPan:
	case ToolEraser:
		c.eraseAt(p)
	case ToolSelect:
		c.startSelect(p)
	case ToolMeasure:
		c.RecordForUndo()
		c.measure = &Measure{Start: p, End: p, Label: "0.00"}
	case ToolDraw:
		c.startDraw(snap.ToGrid(p, c.cfg.GridSize))
	}
	c.changed()
}

func (c *Controller) startSelect(p shape.Point) {
	if sel := c.selected; c.present(sel) {
		if key, ok := c.labelNear(sel, p); ok {
			c.RecordForUndo()
			c.g.labelDrag = true
			c.g.label = key
			c.g.last = p
			return
		}
		if c.mode != InteractMove {
			for _, h := range shape.Handles {
				if p.Dist(sel.CornerOffset(h)) <= c.cfg.HandleRadius+15 {
					c.RecordForUndo()
					c.g.handle = h
					c.g.resizeStart = p
					c.g.resizeOrig = sel.Clone()
					return
				}
			}
		}
	}

	for i := len(c.shapes) - 1; i >= 0; i-- {
		s := c.shapes[i]
		if !s.Contains(p) {
			continue
		}
		c.setSelected(s)
		c.g.press = &p
		c.g.last = p
		b := s.Bounds()
		c.g.rawMin, c.g.rawMax = b.Min, b.Max
		c.RecordForUndo()
		return
	}
	c.setSelected(nil)
}

// labelNear returns the non-empty label of s whose position is closest to
// p within the grab distance.
func (c *Controller) labelNear(s *shape.Shape, p shape.Point) (string, bool) {
	best, bestKey := math.Inf(1), ""
	for key, text := range s.Texts {
		if text == "" {
			continue
		}
		d := p.Dist(s.LabelPosition(key))
		if d > c.cfg.LabelGrabDistance {
			continue
		}
		if d < best || (d == best && key < bestKey) {
			best, bestKey = d, key
		}
	}
	return bestKey, !math.IsInf(best, 1)
}

func (c *Controller) startDraw(p shape.Point) {
	switch c.kind {
	case shape.KindFreehand:
		c.RecordForUndo()
		c.clearSuggestions()
		f := shape.NewFreehand(p)
		f.Style = c.style
		c.shapes = append(c.shapes, f)
		c.g.live = f
		c.armHold(f)
	case shape.KindLine:
		c.RecordForUndo()
		start := p
		if c.lastLineEnd != nil && p.Dist(*c.lastLineEnd) <= c.cfg.LineChainDistance {
			start = *c.lastLineEnd
		}
		c.g.press = &start
	default:
		c.RecordForUndo()
		c.g.press = &p
	}
}

// Update continues the gesture at screen position sp.
func (c *Controller) Update(sp shape.Point) {
	if !c.g.active {
		return
	}
	p := c.toWorld(sp)
	c.pointer = &p

	switch {
	case c.tool == ToolPan:
		c.offset = c.offset.Add(sp.Sub(c.g.lastScreen))
	case c.g.labelDrag:
		if sel := c.selected; c.present(sel) {
			sel.TextPositions[c.g.label] = sel.LabelPosition(c.g.label).Add(p.Sub(c.g.last))
		}
		c.g.last = p
	case c.g.resizeOrig != nil:
		c.resize(p)
	case c.tool == ToolSelect:
		if c.g.press != nil && c.present(c.selected) && c.mode != InteractResize {
			c.move(p)
		}
	case c.tool == ToolEraser:
		c.eraseAt(p)
	case c.tool == ToolMeasure:
		if c.measure != nil {
			c.measure.End = p
			c.measure.Label = distanceLabel(c.measure.Start, p)
		}
	case c.tool == ToolDraw:
		c.updateDraw(snap.ToGrid(p, c.cfg.GridSize))
	}
	c.g.lastScreen = sp
	c.changed()
}

func (c *Controller) updateDraw(p shape.Point) {
	if c.kind == shape.KindFreehand {
		live := c.g.live
		if live == nil || len(c.shapes) == 0 || c.shapes[len(c.shapes)-1] != live {
			return
		}
		live.Path = append(live.Path, p)
		live.SyncPathBounds()
		c.armHold(live)
		return
	}
	if c.g.press == nil {
		return
	}
	end := p
	if c.kind.Straight() && c.cfg.SnapEnabled {
		if q, ok := snap.ClosestPoint(p, c.shapes, nil, c.cfg.LineChainDistance); ok {
			end = q
		}
	}
	c.g.drawEnd = &end
}

// move translates the selection by the pointer delta since the last update,
// pulled towards nearby shapes when snapping is on. Snapping is computed
// from the unsnapped position so corrections never accumulate.
func (c *Controller) move(p shape.Point) {
	sel := c.selected
	delta := p.Sub(c.g.last)
	c.g.last = p
	c.g.rawMin = c.g.rawMin.Add(delta)
	c.g.rawMax = c.g.rawMax.Add(delta)

	current := sel.Bounds().Min
	target := c.g.rawMin
	if c.cfg.SnapEnabled {
		if c.g.holding && p.Dist(c.g.snapAt) <= c.cfg.DetachThreshold {
			return
		}
		c.g.holding = false
		match, ok := snap.Nearest(c.g.rawMin, c.g.rawMax, sel, c.shapes, c.cfg.SnapThreshold)
		switch {
		case ok:
			target = target.Add(match.Offset)
			// a new snap target holds again even without a free frame between
			if !c.g.snapped || match.Target != c.g.snapTarget {
				c.g.snapped, c.g.holding, c.g.snapAt = true, true, p
				c.g.snapTarget = match.Target
			}
		default:
			c.g.snapped = false
		}
	}
	sel.Translate(target.Sub(current))
}

// resize moves the end corner of the selection with the pointer while
// holding start fixed. Path points are rescaled about the original start;
// an axis with no original extent keeps its scale at 1, and the bounds are
// then taken from the rescaled path.
func (c *Controller) resize(p shape.Point) {
	sel, orig := c.selected, c.g.resizeOrig
	if !c.present(sel) {
		return
	}
	sel.Start = orig.Start
	sel.End = orig.End.Add(p.Sub(c.g.resizeStart))
	if orig.Path == nil {
		return
	}

	const eps = 1e-9
	sx, sy := 1.0, 1.0
	if ow := orig.End.X - orig.Start.X; math.Abs(ow) > eps {
		sx = (sel.End.X - orig.Start.X) / ow
	}
	if oh := orig.End.Y - orig.Start.Y; math.Abs(oh) > eps {
		sy = (sel.End.Y - orig.Start.Y) / oh
	}
	if len(sel.Path) != len(orig.Path) {
		sel.Path = make([]shape.Point, len(orig.Path))
	}
	for i, q := range orig.Path {
		d := q.Sub(orig.Start)
		sel.Path[i] = shape.Pt(orig.Start.X+d.X*sx, orig.Start.Y+d.Y*sy)
	}
	sel.SyncPathBounds()
}

// End finishes the gesture, committing any drawn shape.
func (c *Controller) End() {
	c.cancelHold()
	if !c.g.active {
		return
	}
	if c.tool == ToolDraw {
		c.endDraw()
	}
	c.g = newGesture()
	c.changed()
}

func (c *Controller) endDraw() {
	if c.kind == shape.KindFreehand {
		c.lastLineEnd = nil
		live := c.g.live
		if live == nil || !c.present(live) {
			return
		}
		if c.cfg.SmoothFreehand {
			live.Path = Smooth(live.Path)
		}
		live.SyncPathBounds()
		c.log.Debug("freehand committed", "id", live.ID, "points", len(live.Path))
		return
	}
	if c.g.press == nil {
		return
	}
	start, end := *c.g.press, *c.g.press
	if c.g.drawEnd != nil {
		end = *c.g.drawEnd
	}
	s := shape.New(c.kind, start, end)
	s.Style = c.style
	s.SetPolygonSides(c.polygonSides)
	s.InitLabels()
	c.shapes = append(c.shapes, s)
	if c.kind == shape.KindLine {
		c.lastLineEnd = &end
	} else {
		c.lastLineEnd = nil
	}
	c.log.Debug("shape committed", "kind", s.Kind, "id", s.ID)
}

// Smooth applies a three-point moving average to every interior point.
func Smooth(path []shape.Point) []shape.Point {
	if len(path) < 3 {
		return path
	}
	out := make([]shape.Point, len(path))
	out[0], out[len(path)-1] = path[0], path[len(path)-1]
	for i := 1; i < len(path)-1; i++ {
		sum := path[i-1].Add(path[i]).Add(path[i+1])
		out[i] = shape.Pt(sum.X/3, sum.Y/3)
	}
	return out
}

// eraseAt removes every shape under p. The first removal of a gesture
// records an undo snapshot.
func (c *Controller) eraseAt(p shape.Point) {
	hit := func(s *shape.Shape) bool {
		if s.Kind == shape.KindFreehand {
			for _, q := range s.Path {
				if q.Dist(p) <= c.cfg.EraserRadius {
					return true
				}
			}
			return false
		}
		return s.Contains(p)
	}

	n := 0
	for _, s := range c.shapes {
		if hit(s) {
			n++
		}
	}
	if n == 0 {
		return
	}
	if !c.g.erased {
		c.RecordForUndo()
		c.g.erased = true
	}
	kept := c.shapes[:0]
	for _, s := range c.shapes {
		if hit(s) {
			if s == c.selected {
				c.setSelected(nil)
			}
			continue
		}
		kept = append(kept, s)
	}
	clear(c.shapes[len(kept):])
	c.shapes = kept
	c.log.Debug("erased", "count", n, "remaining", len(kept))
}

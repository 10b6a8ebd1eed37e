package main

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"

	"vecsketch/internal/editor"
	"vecsketch/internal/shape"
)

type cellKind int

const (
	cellEmpty cellKind = iota
	cellGrid
	cellShape
	cellFill
	cellPreview
	cellDecoration
)

type cell struct {
	r     rune
	color shape.Color
	kind  cellKind
	// wide marks the trailing half of a double-width rune.
	wide bool
}

// termCanvas rasterizes a scene into terminal cells.
type termCanvas struct {
	width, height int
	cells         []cell
	scale         float64
	offset        shape.Point
}

func newTermCanvas(width, height int, sc editor.Scene) *termCanvas {
	width, height = max(width, 1), max(height, 1)
	scale := sc.Scale
	if scale <= 0 {
		scale = 1
	}
	return &termCanvas{
		width:  width,
		height: height,
		cells:  make([]cell, width*height),
		scale:  scale,
		offset: sc.Offset,
	}
}

// cellAt maps a canvas point to fractional cell coordinates.
func (tc *termCanvas) cellAt(p shape.Point) (float64, float64) {
	s := p.Scale(tc.scale).Add(tc.offset)
	return s.X / cellWidth, s.Y / cellHeight
}

func (tc *termCanvas) isValidPos(x, y int) bool {
	return x >= 0 && y >= 0 && x < tc.width && y < tc.height
}

func (tc *termCanvas) set(x, y int, r rune, col shape.Color, kind cellKind) {
	if !tc.isValidPos(x, y) {
		return
	}
	c := &tc.cells[y*tc.width+x]
	if kind < c.kind && c.kind != cellFill {
		return
	}
	*c = cell{r: r, color: col, kind: kind}
}

// lineRune picks a box-drawing rune for a segment direction in cell space.
func lineRune(dx, dy float64) rune {
	// cells are twice as tall as wide, so compare in canvas proportions
	ax, ay := math.Abs(dx), math.Abs(dy)*2
	switch {
	case ay < ax*0.4:
		return '─'
	case ax < ay*0.4:
		return '│'
	case (dx > 0) == (dy > 0):
		return '╲'
	default:
		return '╱'
	}
}

func (tc *termCanvas) line(a, b shape.Point, col shape.Color, kind cellKind) {
	x0, y0 := tc.cellAt(a)
	x1, y1 := tc.cellAt(b)
	r := lineRune(x1-x0, y1-y0)
	steps := int(math.Ceil(math.Max(math.Abs(x1-x0), math.Abs(y1-y0))))
	if steps == 0 {
		tc.set(int(math.Floor(x0)), int(math.Floor(y0)), '•', col, kind)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := x0 + (x1-x0)*t
		y := y0 + (y1-y0)*t
		tc.set(int(math.Floor(x)), int(math.Floor(y)), r, col, kind)
	}
}

func (tc *termCanvas) path(p shape.Path, col shape.Color, kind cellKind) {
	pts := p.Points
	if len(pts) == 1 {
		tc.line(pts[0], pts[0], col, kind)
		return
	}
	for i := 1; i < len(pts); i++ {
		tc.line(pts[i-1], pts[i], col, kind)
	}
	if p.Closed && len(pts) > 2 {
		tc.line(pts[len(pts)-1], pts[0], col, kind)
	}
}

// fill shades every cell whose center lies inside the closed path.
func (tc *termCanvas) fill(p shape.Path, col shape.Color) {
	if !p.Closed || len(p.Points) < 3 {
		return
	}
	poly := make([]shape.Point, len(p.Points))
	for i, q := range p.Points {
		x, y := tc.cellAt(q)
		poly[i] = shape.Pt(x, y)
	}
	r, _ := shape.BoundsOf(poly)
	for y := max(int(math.Floor(r.Min.Y)), 0); y <= min(int(math.Ceil(r.Max.Y)), tc.height-1); y++ {
		for x := max(int(math.Floor(r.Min.X)), 0); x <= min(int(math.Ceil(r.Max.X)), tc.width-1); x++ {
			if insidePolygon(poly, shape.Pt(float64(x)+0.5, float64(y)+0.5)) {
				tc.set(x, y, '░', col, cellFill)
			}
		}
	}
}

// insidePolygon is the even-odd rule.
func insidePolygon(poly []shape.Point, p shape.Point) bool {
	in := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) && p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}

// text writes s starting at the cell containing p, honoring wide runes.
func (tc *termCanvas) text(p shape.Point, s string, col shape.Color, kind cellKind) {
	fx, fy := tc.cellAt(p)
	x0, y := int(math.Floor(fx)), int(math.Floor(fy))
	for i, line := range strings.Split(s, "\n") {
		x := x0
		for _, r := range line {
			w := runewidth.RuneWidth(r)
			if w == 0 {
				continue
			}
			tc.set(x, y+i, r, col, kind)
			if w == 2 && tc.isValidPos(x+1, y+i) {
				tc.cells[(y+i)*tc.width+x+1] = cell{kind: kind, color: col, wide: true}
			}
			x += w
		}
	}
}

func (tc *termCanvas) drawShape(s *shape.Shape, kind cellKind, override *shape.Color) {
	col := s.Style.Color
	if override != nil {
		col = *override
	}
	for _, p := range s.Outline() {
		if s.Style.Mode == shape.ModeFill && kind == cellShape {
			tc.fill(p, col)
		}
		tc.path(p, col, kind)
	}
	for key, text := range s.Texts {
		if text != "" {
			tc.text(s.LabelPosition(key), text, col, kind)
		}
	}
}

var (
	gridColor      = shape.ARGB(0xff, 0x5c, 0x63, 0x70)
	previewColor   = shape.ARGB(0xff, 0x86, 0x8e, 0x96)
	selectionColor = shape.ARGB(0xff, 0x22, 0x8b, 0xe6)
	measureColor   = shape.ARGB(0xff, 0xf0, 0x8c, 0x00)
	eraserColor    = shape.ARGB(0xff, 0xe0, 0x31, 0x31)
)

// frameCache keeps the last painted canvas. It is shared by every copy of
// the model.
type frameCache struct {
	valid    bool
	revision uint64
	w, h     int
	lines    []string
}

// render returns the styled rows for sc, repainting only when the scene
// revision or the canvas size changed since the last call.
func (f *frameCache) render(sc editor.Scene, w, h int) []string {
	if f.valid && sc.Revision == f.revision && w == f.w && h == f.h {
		return f.lines
	}
	f.lines = drawScene(sc, w, h).Lines()
	f.valid, f.revision, f.w, f.h = true, sc.Revision, w, h
	return f.lines
}

func (f *frameCache) invalidate() {
	f.valid = false
}

// drawScene paints sc in renderer order: grid, shapes, text shapes,
// preview, measurement, selection and eraser.
func drawScene(sc editor.Scene, width, height int) *termCanvas {
	tc := newTermCanvas(width, height, sc)

	if sc.ShowGrid && sc.GridSize > 0 {
		tc.drawGrid(sc.GridSize)
	}
	for _, s := range sc.Shapes {
		if s.Kind != shape.KindText {
			tc.drawShape(s, cellShape, nil)
		}
	}
	for _, s := range sc.Shapes {
		if s.Kind == shape.KindText {
			tc.drawShape(s, cellShape, nil)
		}
	}
	if p := sc.Preview; p != nil && p.Shape != nil {
		col := previewColor
		tc.drawShape(p.Shape, cellPreview, &col)
	}
	if m := sc.Measure; m != nil {
		tc.line(m.Start, m.End, measureColor, cellDecoration)
		tc.text(m.Start.Mid(m.End), m.Label, measureColor, cellDecoration)
	}
	if s := sc.Selected; s != nil {
		for _, h := range shape.Handles {
			x, y := tc.cellAt(s.CornerOffset(h))
			tc.set(int(math.Floor(x)), int(math.Floor(y)), '■', selectionColor, cellDecoration)
		}
	}
	if e := sc.Eraser; e != nil {
		const segments = 24
		prev := e.Center.Add(shape.Pt(e.Radius, 0))
		for i := 1; i <= segments; i++ {
			a := 2 * math.Pi * float64(i) / segments
			next := e.Center.Add(shape.Pt(e.Radius*math.Cos(a), e.Radius*math.Sin(a)))
			tc.line(prev, next, eraserColor, cellDecoration)
			prev = next
		}
	}
	return tc
}

func (tc *termCanvas) drawGrid(size float64) {
	step := size * tc.scale
	if step < cellWidth {
		return
	}
	for x := math.Mod(tc.offset.X, step); x < float64(tc.width*cellWidth); x += step {
		for y := math.Mod(tc.offset.Y, step); y < float64(tc.height*cellHeight); y += step {
			tc.set(int(x/cellWidth), int(y/cellHeight), '·', gridColor, cellGrid)
		}
	}
}

var styleCache = map[shape.Color]lipgloss.Style{}

func colorStyle(c shape.Color) lipgloss.Style {
	if st, ok := styleCache[c]; ok {
		return st
	}
	cf := colorful.Color{R: float64(c.R()) / 255, G: float64(c.G()) / 255, B: float64(c.B()) / 255}
	st := lipgloss.NewStyle().Foreground(lipgloss.Color(cf.Hex()))
	styleCache[c] = st
	return st
}

// Lines renders the canvas as styled rows.
func (tc *termCanvas) Lines() []string {
	lines := make([]string, tc.height)
	var row, run strings.Builder
	for y := 0; y < tc.height; y++ {
		row.Reset()
		var (
			runColor shape.Color
			inRun    bool
		)
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if inRun {
				row.WriteString(colorStyle(runColor).Render(run.String()))
			} else {
				row.WriteString(run.String())
			}
			run.Reset()
		}
		for x := 0; x < tc.width; x++ {
			c := tc.cells[y*tc.width+x]
			if c.wide {
				continue
			}
			styled := c.kind != cellEmpty
			if styled != inRun || (styled && c.color != runColor) {
				flush()
				inRun, runColor = styled, c.color
			}
			if c.kind == cellEmpty {
				run.WriteByte(' ')
			} else {
				run.WriteRune(c.r)
			}
		}
		flush()
		lines[y] = row.String()
	}
	return lines
}

// plain returns the canvas without styling, one string per row.
func (tc *termCanvas) plain() []string {
	lines := make([]string, tc.height)
	for y := range lines {
		var b strings.Builder
		for x := 0; x < tc.width; x++ {
			c := tc.cells[y*tc.width+x]
			switch {
			case c.wide:
			case c.kind == cellEmpty:
				b.WriteByte(' ')
			default:
				b.WriteRune(c.r)
			}
		}
		lines[y] = b.String()
	}
	return lines
}

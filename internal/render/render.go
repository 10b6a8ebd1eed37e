// Package render rasterizes editor scenes and exports shape lists as PNG.
package render

import (
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"

	"vecsketch/internal/editor"
	"vecsketch/internal/shape"
)

const (
	handleSize    = 8
	selectionPad  = 4
	measureFont   = 12
	previewDash   = 6
	gridLineWidth = 1
	eraserWidth   = 1.5
)

// Theme holds the decoration colors.
type Theme struct {
	Background color.Color
	Grid       color.Color
	Selection  color.Color
	Preview    color.Color
	Measure    color.Color
	Eraser     color.Color
}

func DefaultTheme() Theme {
	return Theme{
		Background: color.White,
		Grid:       colorful.Hsv(210, 0.08, 0.92),
		Selection:  colorful.Hsv(212, 0.8, 0.93),
		Preview:    colorful.Hsv(0, 0, 0.55),
		Measure:    colorful.Hsv(28, 0.9, 0.95),
		Eraser:     colorful.Hsv(0, 0.75, 0.85),
	}
}

// Renderer draws scenes into an RGBA image, reusing the last frame while
// the scene revision, view and size are unchanged.
type Renderer struct {
	theme Theme
	fonts *fonts

	cached   image.Image
	revision uint64
	scale    float64
	offset   shape.Point
	w, h     int
}

func New(theme Theme) (*Renderer, error) {
	fs, err := loadFonts()
	if err != nil {
		return nil, err
	}
	return &Renderer{theme: theme, fonts: fs}, nil
}

// Render draws sc at w x h pixels. The returned image must not be modified.
func (r *Renderer) Render(sc editor.Scene, w, h int) image.Image {
	if r.cached != nil && sc.Revision == r.revision && w == r.w && h == r.h &&
		sc.Scale == r.scale && sc.Offset == r.offset {
		return r.cached
	}

	dc := gg.NewContext(max(w, 1), max(h, 1))
	dc.SetColor(r.theme.Background)
	dc.Clear()

	scale := sc.Scale
	if scale <= 0 {
		scale = 1
	}
	dc.Translate(sc.Offset.X, sc.Offset.Y)
	dc.Scale(scale, scale)

	if sc.ShowGrid && sc.GridSize > 0 {
		r.drawGrid(dc, sc, w, h, scale)
	}
	for _, s := range sc.Shapes {
		if s.Kind != shape.KindText {
			r.drawShape(dc, s)
		}
	}
	for _, s := range sc.Shapes {
		if s.Kind == shape.KindText {
			r.drawShape(dc, s)
		}
	}
	if p := sc.Preview; p != nil && p.Shape != nil {
		ghost := *p.Shape
		ghost.Style.Color = shape.ColorFrom(r.theme.Preview)
		dc.SetDash(previewDash/scale, previewDash/scale)
		r.drawShape(dc, &ghost)
		dc.SetDash()
	}
	if m := sc.Measure; m != nil {
		r.drawMeasure(dc, m, scale)
	}
	if s := sc.Selected; s != nil {
		r.drawSelection(dc, s, scale)
	}
	if e := sc.Eraser; e != nil {
		dc.SetColor(r.theme.Eraser)
		dc.SetLineWidth(eraserWidth / scale)
		dc.DrawCircle(e.Center.X, e.Center.Y, e.Radius)
		dc.Stroke()
	}

	r.cached = dc.Image()
	r.revision, r.w, r.h = sc.Revision, w, h
	r.scale, r.offset = sc.Scale, sc.Offset
	return r.cached
}

// Invalidate drops the cached frame.
func (r *Renderer) Invalidate() {
	r.cached = nil
}

func (r *Renderer) drawGrid(dc *gg.Context, sc editor.Scene, w, h int, scale float64) {
	g := sc.GridSize
	lo := shape.Pt(-sc.Offset.X/scale, -sc.Offset.Y/scale)
	hi := shape.Pt((float64(w)-sc.Offset.X)/scale, (float64(h)-sc.Offset.Y)/scale)

	dc.SetColor(r.theme.Grid)
	dc.SetLineWidth(gridLineWidth / scale)
	for x := math.Floor(lo.X/g) * g; x <= hi.X; x += g {
		dc.DrawLine(x, lo.Y, x, hi.Y)
	}
	for y := math.Floor(lo.Y/g) * g; y <= hi.Y; y += g {
		dc.DrawLine(lo.X, y, hi.X, y)
	}
	dc.Stroke()
}

// drawShape draws the outline of s and then its labels.
func (r *Renderer) drawShape(dc *gg.Context, s *shape.Shape) {
	st := s.Style
	dc.SetColor(st.Color.NRGBA(st.Opacity))
	dc.SetLineWidth(st.StrokeWidth)
	dc.SetLineCapRound()
	dc.SetLineJoinRound()

	for _, p := range s.Outline() {
		if len(p.Points) == 0 {
			continue
		}
		if len(p.Points) == 1 {
			dc.DrawPoint(p.Points[0].X, p.Points[0].Y, st.StrokeWidth/2)
			dc.Fill()
			continue
		}
		dc.MoveTo(p.Points[0].X, p.Points[0].Y)
		for _, q := range p.Points[1:] {
			dc.LineTo(q.X, q.Y)
		}
		if p.Closed {
			dc.ClosePath()
			if st.Mode == shape.ModeFill {
				dc.Fill()
				continue
			}
		}
		dc.Stroke()
	}
	r.drawLabels(dc, s)
}

func (r *Renderer) drawLabels(dc *gg.Context, s *shape.Shape) {
	if len(s.Texts) == 0 {
		return
	}
	st := s.Style
	dc.Push()
	defer dc.Pop()
	if s.Rotation != 0 {
		c := s.Bounds().Center()
		dc.RotateAbout(s.Rotation, c.X, c.Y)
	}
	dc.SetFontFace(r.fonts.face(st))
	dc.SetColor(st.Color.NRGBA(st.Opacity))
	for key, text := range s.Texts {
		if text == "" {
			continue
		}
		p := s.LabelPosition(key)
		for i, line := range strings.Split(text, "\n") {
			dc.DrawStringAnchored(line, p.X, p.Y+float64(i)*st.FontSize*1.2, 0, 1)
		}
	}
}

func (r *Renderer) drawMeasure(dc *gg.Context, m *editor.Measure, scale float64) {
	dc.SetColor(r.theme.Measure)
	dc.SetLineWidth(1.5 / scale)
	dc.DrawLine(m.Start.X, m.Start.Y, m.End.X, m.End.Y)
	dc.Stroke()
	dc.DrawCircle(m.Start.X, m.Start.Y, 3/scale)
	dc.DrawCircle(m.End.X, m.End.Y, 3/scale)
	dc.Fill()

	mid := m.Start.Mid(m.End)
	dc.SetFontFace(r.fonts.monoFace(measureFont / scale))
	dc.DrawStringAnchored(m.Label, mid.X, mid.Y-6/scale, 0.5, 0)
}

// drawSelection outlines the selection's bounds, rotated with the shape,
// and marks the resize handles at the unrotated corners where they are
// grabbed.
func (r *Renderer) drawSelection(dc *gg.Context, s *shape.Shape, scale float64) {
	b := s.Bounds().Inflate(selectionPad / scale)
	dc.Push()
	if s.Rotation != 0 {
		c := s.Bounds().Center()
		dc.RotateAbout(s.Rotation, c.X, c.Y)
	}
	dc.SetColor(r.theme.Selection)
	dc.SetLineWidth(1 / scale)
	dc.SetDash(4/scale, 3/scale)
	dc.DrawRectangle(b.Min.X, b.Min.Y, b.Width(), b.Height())
	dc.Stroke()
	dc.SetDash()
	dc.Pop()

	dc.SetColor(r.theme.Selection)
	hs := handleSize / scale
	for _, h := range shape.Handles {
		p := s.CornerOffset(h)
		dc.DrawRectangle(p.X-hs/2, p.Y-hs/2, hs, hs)
	}
	dc.Fill()
}

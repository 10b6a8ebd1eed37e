package shape

import (
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"
)

const (
	// HitPadding inflates bounds and label boxes during hit tests.
	HitPadding = 10.0

	MinPolygonSides     = 3
	MaxPolygonSides     = 12
	DefaultPolygonSides = 5

	// glyph metrics used to lay out labels without a font rasterizer
	glyphAdvance = 0.6
	lineHeight   = 1.2
)

// Label anchor keys.
const (
	AnchorTop    = "Top"
	AnchorRight  = "Right"
	AnchorBottom = "Bottom"
	AnchorLeft   = "Left"
	AnchorCenter = "Center"
)

// Shape is one drawn entity. Shapes are compared by pointer identity: two
// shapes with identical fields are still distinct entities.
type Shape struct {
	// ID is stable across clones and only used to name a shape in logs and
	// clipboard payloads.
	ID    string
	Kind  Kind
	Start Point
	End   Point
	// Path is non-nil only for KindFreehand.
	Path          []Point
	Texts         map[string]string
	TextPositions map[string]Point
	Style         Style
	// Rotation in radians about the bounds center. Unbounded.
	Rotation     float64
	PolygonSides int
}

// New returns a shape of kind spanning start to end with default style.
func New(kind Kind, start, end Point) *Shape {
	s := &Shape{
		ID:            uuid.NewString(),
		Kind:          kind,
		Start:         start,
		End:           end,
		Texts:         make(map[string]string),
		TextPositions: make(map[string]Point),
		Style:         DefaultStyle(),
		PolygonSides:  DefaultPolygonSides,
	}
	if kind == KindFreehand {
		s.Path = []Point{}
	}
	return s
}

// NewFreehand starts a freehand stroke at p.
func NewFreehand(p Point) *Shape {
	s := New(KindFreehand, p, p)
	s.Path = append(s.Path, p)
	return s
}

// Bounds returns the tight bounding box of the shape, ignoring rotation.
func (s *Shape) Bounds() Rect {
	if s.Kind == KindFreehand {
		if r, ok := BoundsOf(s.Path); ok {
			return r
		}
	}
	return RectFromPoints(s.Start, s.End)
}

// CornerOffset returns the bounds corner for h. Rotation is ignored since
// resizing operates in unrotated space.
func (s *Shape) CornerOffset(h Handle) Point {
	c := s.Bounds().Corners()
	switch h {
	case HandleTopLeft:
		return c[0]
	case HandleTopRight:
		return c[1]
	case HandleBottomRight:
		return c[2]
	case HandleBottomLeft:
		return c[3]
	}
	return s.Start
}

// Contains reports whether p hits the shape.
func (s *Shape) Contains(p Point) bool {
	switch s.Kind {
	case KindText:
		for key := range s.Texts {
			if s.LabelBounds(key).Inflate(HitPadding).Contains(p) {
				return true
			}
		}
		return false
	case KindFreehand:
		q := s.unrotate(p)
		tol := math.Max(s.Style.StrokeWidth+HitPadding, 20)
		if len(s.Path) == 1 {
			return q.Dist(s.Path[0]) <= tol
		}
		for i := 1; i < len(s.Path); i++ {
			if SegmentDistance(q, s.Path[i-1], s.Path[i]) <= tol {
				return true
			}
		}
		return false
	default:
		return s.Bounds().Inflate(HitPadding).Contains(s.unrotate(p))
	}
}

// unrotate maps p into the shape's unrotated frame.
func (s *Shape) unrotate(p Point) Point {
	if s.Rotation == 0 {
		return p
	}
	return p.RotateAround(s.Bounds().Center(), -s.Rotation)
}

// Clone returns a deep copy. The ID is kept.
func (s *Shape) Clone() *Shape {
	c := *s
	c.Path = slices.Clone(s.Path)
	c.Texts = make(map[string]string, len(s.Texts))
	for k, v := range s.Texts {
		c.Texts[k] = v
	}
	c.TextPositions = make(map[string]Point, len(s.TextPositions))
	for k, v := range s.TextPositions {
		c.TextPositions[k] = v
	}
	return &c
}

// Translate moves geometry, labels and path points by d.
func (s *Shape) Translate(d Point) {
	s.Start = s.Start.Add(d)
	s.End = s.End.Add(d)
	for k, p := range s.TextPositions {
		s.TextPositions[k] = p.Add(d)
	}
	for i := range s.Path {
		s.Path[i] = s.Path[i].Add(d)
	}
}

// FlipHorizontal mirrors the shape about its vertical center axis.
func (s *Shape) FlipHorizontal() {
	cx := s.Bounds().Center().X
	mirror := func(p Point) Point { return Point{2*cx - p.X, p.Y} }
	s.Start, s.End = mirror(s.Start), mirror(s.End)
	for i := range s.Path {
		s.Path[i] = mirror(s.Path[i])
	}
}

// FlipVertical mirrors the shape about its horizontal center axis.
func (s *Shape) FlipVertical() {
	cy := s.Bounds().Center().Y
	mirror := func(p Point) Point { return Point{p.X, 2*cy - p.Y} }
	s.Start, s.End = mirror(s.Start), mirror(s.End)
	for i := range s.Path {
		s.Path[i] = mirror(s.Path[i])
	}
}

// SyncPathBounds sets Start and End to the path extent of a freehand shape.
func (s *Shape) SyncPathBounds() {
	if r, ok := BoundsOf(s.Path); ok {
		s.Start, s.End = r.Min, r.Max
	}
}

// SetPolygonSides clamps n to the supported side counts.
func (s *Shape) SetPolygonSides(n int) {
	s.PolygonSides = min(max(n, MinPolygonSides), MaxPolygonSides)
}

// DefaultAnchors returns the label anchors a freshly drawn shape of this
// kind starts with.
func (s *Shape) DefaultAnchors() map[string]Point {
	r := s.Bounds()
	switch s.Kind {
	case KindRectangle:
		m := r.EdgeMidpoints()
		return map[string]Point{
			AnchorTop:    m[0],
			AnchorRight:  m[1],
			AnchorBottom: m[2],
			AnchorLeft:   m[3],
		}
	case KindTriangle:
		c := r.Center()
		apex := Point{c.X, r.Min.Y}
		return map[string]Point{
			AnchorTop:   apex,
			AnchorLeft:  apex.Mid(Point{r.Min.X, r.Max.Y}),
			AnchorRight: apex.Mid(r.Max),
		}
	default:
		return map[string]Point{AnchorCenter: r.Center()}
	}
}

// InitLabels installs the default anchors with empty labels. Text shapes
// get a placeholder so there is something to hit and edit.
func (s *Shape) InitLabels() {
	for key, p := range s.DefaultAnchors() {
		s.Texts[key] = ""
		s.TextPositions[key] = p
	}
	if s.Kind == KindText {
		s.Texts[AnchorCenter] = "Text"
		s.TextPositions[AnchorCenter] = s.Start
	}
}

// SetLabel sets the text for key. A label without a position is placed at
// Start.
func (s *Shape) SetLabel(key, text string) {
	s.Texts[key] = text
	if _, ok := s.TextPositions[key]; !ok {
		s.TextPositions[key] = s.Start
	}
}

// LabelPosition returns where the label for key is drawn.
func (s *Shape) LabelPosition(key string) Point {
	if p, ok := s.TextPositions[key]; ok {
		return p
	}
	return s.Start
}

// LabelBounds lays out the label for key with its position as the top-left
// corner.
func (s *Shape) LabelBounds(key string) Rect {
	w, h := MeasureLabel(s.Texts[key], s.Style.FontSize)
	p := s.LabelPosition(key)
	return Rect{Min: p, Max: Point{p.X + w, p.Y + h}}
}

// MeasureLabel estimates the laid-out size of text at fontSize.
func MeasureLabel(text string, fontSize float64) (w, h float64) {
	lines := strings.Split(text, "\n")
	cols := 0
	for _, line := range lines {
		cols = max(cols, runewidth.StringWidth(line))
	}
	return float64(cols) * fontSize * glyphAdvance, float64(len(lines)) * fontSize * lineHeight
}

package editor

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vecsketch/internal/shape"
)

type fakeTimer struct {
	d        time.Duration
	f        func()
	canceled bool
	fired    bool
}

// fakeScheduler hands out timers that only fire when the test says so.
type fakeScheduler struct {
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) func() {
	t := &fakeTimer{d: d, f: f}
	s.timers = append(s.timers, t)
	return func() { t.canceled = true }
}

func (s *fakeScheduler) pending() []*fakeTimer {
	var out []*fakeTimer
	for _, t := range s.timers {
		if !t.canceled && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

func (s *fakeScheduler) fire() {
	for _, t := range s.pending() {
		t.fired = true
		t.f()
	}
}

func newController(t *testing.T, mutate ...func(*Config)) *Controller {
	t.Helper()
	cfg := DefaultConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	return New(cfg)
}

func noSnap(cfg *Config) { cfg.SnapEnabled = false }

func drag(c *Controller, pts ...shape.Point) {
	c.Start(pts[0])
	for _, p := range pts[1:] {
		c.Update(p)
	}
	c.End()
}

func drawRect(c *Controller, a, b shape.Point) *shape.Shape {
	c.SetKind(shape.KindRectangle)
	drag(c, a, b)
	return c.Shapes()[len(c.Shapes())-1]
}

func TestDrawRectangle(t *testing.T) {
	c := newController(t)
	drag(c, shape.Pt(10, 10), shape.Pt(30, 20), shape.Pt(60, 40))

	require.Len(t, c.Shapes(), 1)
	s := c.Shapes()[0]
	assert.Equal(t, shape.KindRectangle, s.Kind)
	assert.Equal(t, shape.Pt(10, 10), s.Start)
	assert.Equal(t, shape.Pt(60, 40), s.End)
	assert.ElementsMatch(t,
		[]string{shape.AnchorTop, shape.AnchorRight, shape.AnchorBottom, shape.AnchorLeft},
		keys(s.TextPositions))
	assert.Equal(t, shape.Pt(35, 10), s.TextPositions[shape.AnchorTop])
	assert.Equal(t, 1, c.History().UndoDepth())
	assert.Nil(t, c.Selected())
}

func keys(m map[string]shape.Point) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestDrawUsesCurrentStyle(t *testing.T) {
	c := newController(t)
	c.SetStrokeColor(shape.ARGB(0xff, 0x12, 0x34, 0x56))
	c.SetStrokeWidth(5)
	c.SetKind(shape.KindPolygon)
	c.SetPolygonSides(7)
	drag(c, shape.Pt(0, 0), shape.Pt(40, 40))

	s := c.Shapes()[0]
	assert.Equal(t, shape.ARGB(0xff, 0x12, 0x34, 0x56), s.Style.Color)
	assert.Equal(t, 5.0, s.Style.StrokeWidth)
	assert.Equal(t, 7, s.PolygonSides)
}

func TestUndoRedoIsInverse(t *testing.T) {
	c := newController(t, noSnap)
	drawRect(c, shape.Pt(0, 0), shape.Pt(50, 50))
	before := c.Snapshot()

	c.SetTool(ToolSelect)
	drag(c, shape.Pt(25, 25), shape.Pt(45, 35))
	c.Rotate()
	after := c.Snapshot()

	c.Undo()
	c.Undo()
	assert.Equal(t, before, c.Snapshot())

	c.Redo()
	c.Redo()
	assert.Equal(t, after, c.Snapshot())

	c.Undo()
	c.Undo()
	c.Undo()
	assert.Empty(t, c.Shapes())
	assert.False(t, c.History().CanUndo())
}

func TestUndoWithEmptyHistoryIsNoOp(t *testing.T) {
	c := newController(t)
	rev := c.Revision()
	c.Undo()
	c.Redo()
	assert.Equal(t, rev, c.Revision())
}

func TestLineChaining(t *testing.T) {
	c := newController(t)
	c.SetKind(shape.KindLine)
	drag(c, shape.Pt(0, 0), shape.Pt(100, 0))
	drag(c, shape.Pt(105, 5), shape.Pt(200, 60))

	require.Len(t, c.Shapes(), 2)
	second := c.Shapes()[1]
	assert.Equal(t, shape.Pt(100, 0), second.Start)
	assert.Equal(t, shape.Pt(200, 60), second.End)

	// too far from the last endpoint to chain
	drag(c, shape.Pt(300, 300), shape.Pt(400, 300))
	assert.Equal(t, shape.Pt(300, 300), c.Shapes()[2].Start)

	// switching kinds forgets the chain
	c.SetKind(shape.KindRectangle)
	c.SetKind(shape.KindLine)
	drag(c, shape.Pt(402, 2), shape.Pt(500, 0))
	assert.Equal(t, shape.Pt(402, 2), c.Shapes()[3].Start)
}

func TestStraightEndSnapsToNearbyPoint(t *testing.T) {
	c := newController(t)
	c.SetKind(shape.KindLine)
	drag(c, shape.Pt(0, 0), shape.Pt(100, 0))
	drag(c, shape.Pt(300, 300), shape.Pt(95, 3))
	assert.Equal(t, shape.Pt(100, 0), c.Shapes()[1].End)

	c.SetSnapEnabled(false)
	drag(c, shape.Pt(300, 400), shape.Pt(95, 3))
	assert.Equal(t, shape.Pt(95, 3), c.Shapes()[2].End)
}

func TestSelectAndMove(t *testing.T) {
	c := newController(t, noSnap)
	s := drawRect(c, shape.Pt(0, 0), shape.Pt(50, 50))
	c.SetTool(ToolSelect)
	depth := c.History().UndoDepth()

	drag(c, shape.Pt(25, 25), shape.Pt(30, 30), shape.Pt(35, 45))

	assert.Same(t, s, c.Selected())
	assert.Equal(t, shape.Pt(10, 20), s.Start)
	assert.Equal(t, shape.Pt(60, 70), s.End)
	assert.Equal(t, shape.Pt(35, 20), s.TextPositions[shape.AnchorTop])
	assert.Equal(t, depth+1, c.History().UndoDepth())
}

func TestSelectMissDeselects(t *testing.T) {
	c := newController(t)
	s := drawRect(c, shape.Pt(0, 0), shape.Pt(50, 50))
	c.SetTool(ToolSelect)
	c.Select(s)
	require.Same(t, s, c.Selected())

	drag(c, shape.Pt(500, 500))
	assert.Nil(t, c.Selected())
}

func TestSelectPicksTopmost(t *testing.T) {
	c := newController(t)
	drawRect(c, shape.Pt(0, 0), shape.Pt(50, 50))
	top := drawRect(c, shape.Pt(20, 20), shape.Pt(70, 70))
	c.SetTool(ToolSelect)
	drag(c, shape.Pt(30, 30))
	assert.Same(t, top, c.Selected())
}

func TestMoveSnapIsGraduatedAndSticky(t *testing.T) {
	c := newController(t)
	drawRect(c, shape.Pt(0, 0), shape.Pt(50, 50))
	b := drawRect(c, shape.Pt(200, 0), shape.Pt(250, 50))
	c.SetTool(ToolSelect)

	c.Start(shape.Pt(225, 25))
	require.Same(t, b, c.Selected())

	// raw left edge lands at 65, 15 units from the other shape's right edge
	c.Update(shape.Pt(90, 25))
	assert.InDelta(t, 65-15*0.25, b.Start.X, 1e-9)
	assert.InDelta(t, 0, b.Start.Y, 1e-9)

	// within the detach threshold the shape stays put
	c.Update(shape.Pt(92, 25))
	assert.InDelta(t, 61.25, b.Start.X, 1e-9)

	// past it, movement resumes from the unsnapped position
	c.Update(shape.Pt(100, 25))
	assert.InDelta(t, 75, b.Start.X, 1e-9)
	assert.InDelta(t, 125, b.End.X, 1e-9)
	c.End()
}

func TestMoveSnapHoldsAgainOnNewTarget(t *testing.T) {
	c := newController(t)
	drawRect(c, shape.Pt(0, 0), shape.Pt(50, 50))
	drawRect(c, shape.Pt(140, 0), shape.Pt(190, 50))
	b := drawRect(c, shape.Pt(200, 0), shape.Pt(250, 50))
	c.SetTool(ToolSelect)

	c.Start(shape.Pt(225, 25))
	require.Same(t, b, c.Selected())

	// snaps to the left shape's right edge
	c.Update(shape.Pt(90, 25))
	assert.InDelta(t, 61.25, b.Start.X, 1e-9)

	// detached from it and straight into range of the middle shape
	c.Update(shape.Pt(100, 25))
	assert.InDelta(t, 78.75, b.Start.X, 1e-9)

	c.Update(shape.Pt(102, 25))
	assert.InDelta(t, 78.75, b.Start.X, 1e-9)
	c.End()
}

func TestInteractResizeForbidsMove(t *testing.T) {
	c := newController(t, noSnap)
	s := drawRect(c, shape.Pt(0, 0), shape.Pt(50, 50))
	c.SetTool(ToolSelect)
	c.SetInteractionMode(InteractResize)

	drag(c, shape.Pt(25, 25), shape.Pt(40, 40))
	assert.Same(t, s, c.Selected())
	assert.Equal(t, shape.Pt(0, 0), s.Start)
}

func TestResize(t *testing.T) {
	c := newController(t, noSnap)
	s := drawRect(c, shape.Pt(0, 0), shape.Pt(50, 50))
	c.SetTool(ToolSelect)
	c.Select(s)
	depth := c.History().UndoDepth()

	drag(c, shape.Pt(52, 52), shape.Pt(62, 57), shape.Pt(72, 62))

	assert.Equal(t, shape.Pt(0, 0), s.Start)
	assert.Equal(t, shape.Pt(70, 60), s.End)
	assert.Equal(t, depth+1, c.History().UndoDepth())

	c.Undo()
	assert.Equal(t, shape.Pt(50, 50), c.Shapes()[0].End)
}

func TestInteractMoveForbidsResize(t *testing.T) {
	c := newController(t, noSnap)
	s := drawRect(c, shape.Pt(0, 0), shape.Pt(50, 50))
	c.SetTool(ToolSelect)
	c.SetInteractionMode(InteractMove)
	c.Select(s)

	drag(c, shape.Pt(52, 52), shape.Pt(72, 62))
	assert.Equal(t, shape.Pt(20, 10), s.Start)
	assert.Equal(t, shape.Pt(70, 60), s.End)
}

func TestResizeFlatFreehandKeepsFiniteScale(t *testing.T) {
	c := newController(t, noSnap)
	c.SetKind(shape.KindFreehand)
	drag(c, shape.Pt(0, 0), shape.Pt(10, 0), shape.Pt(20, 0), shape.Pt(30, 0), shape.Pt(40, 0), shape.Pt(50, 0))
	s := c.Shapes()[0]
	require.Equal(t, shape.Pt(50, 0), s.End)

	c.SetTool(ToolSelect)
	c.Select(s)
	drag(c, shape.Pt(52, 2), shape.Pt(62, 12))

	assert.Equal(t, shape.Pt(0, 0), s.Start)
	assert.Equal(t, shape.Pt(60, 0), s.End, "bounds follow the path")
	for _, p := range s.Path {
		assert.False(t, math.IsNaN(p.X) || math.IsInf(p.X, 0), "x %v", p.X)
		assert.False(t, math.IsNaN(p.Y) || math.IsInf(p.Y, 0), "y %v", p.Y)
		assert.Zero(t, p.Y)
	}
	assert.InDelta(t, 60, s.Path[len(s.Path)-1].X, 1e-9)
	assert.InDelta(t, 12, s.Path[1].X, 1e-9)
}

func TestResizeFreehandSyncsBounds(t *testing.T) {
	c := newController(t, noSnap)
	c.SetKind(shape.KindFreehand)
	drag(c, shape.Pt(0, 0), shape.Pt(20, 10), shape.Pt(40, 40))
	s := c.Shapes()[0]
	require.Equal(t, shape.Pt(40, 40), s.End)

	c.SetTool(ToolSelect)
	c.Select(s)
	drag(c, shape.Pt(40, 40), shape.Pt(80, 60))

	r, ok := shape.BoundsOf(s.Path)
	require.True(t, ok)
	assert.Equal(t, r.Min, s.Start)
	assert.Equal(t, r.Max, s.End)
	assert.InDelta(t, 80, s.End.X, 1e-9)
	assert.InDelta(t, 60, s.End.Y, 1e-9)
}

func TestLabelDrag(t *testing.T) {
	c := newController(t)
	c.SetKind(shape.KindText)
	drag(c, shape.Pt(100, 100))
	require.Len(t, c.Shapes(), 1)
	s := c.Shapes()[0]
	require.Equal(t, "Text", s.Texts[shape.AnchorCenter])

	c.SetTool(ToolSelect)
	drag(c, shape.Pt(105, 105))
	require.Same(t, s, c.Selected())

	drag(c, shape.Pt(110, 108), shape.Pt(130, 118))
	assert.Equal(t, shape.Pt(120, 110), s.TextPositions[shape.AnchorCenter])
	assert.Equal(t, shape.Pt(100, 100), s.Start)
}

func TestEraserRemovesEveryHit(t *testing.T) {
	c := newController(t)
	drawRect(c, shape.Pt(0, 0), shape.Pt(50, 50))
	drawRect(c, shape.Pt(20, 20), shape.Pt(80, 80))
	keep := drawRect(c, shape.Pt(300, 300), shape.Pt(350, 350))
	c.SetKind(shape.KindFreehand)
	drag(c, shape.Pt(400, 0), shape.Pt(420, 0), shape.Pt(440, 0))
	depth := c.History().UndoDepth()

	c.SetTool(ToolEraser)
	c.Start(shape.Pt(30, 30))
	require.Len(t, c.Shapes(), 2)
	assert.Same(t, keep, c.Shapes()[0])

	c.Update(shape.Pt(415, 15))
	c.End()
	assert.Equal(t, []*shape.Shape{keep}, c.Shapes())
	assert.Equal(t, depth+1, c.History().UndoDepth())

	c.Undo()
	assert.Len(t, c.Shapes(), 4)
}

func TestEraserMissRecordsNothing(t *testing.T) {
	c := newController(t)
	drawRect(c, shape.Pt(0, 0), shape.Pt(50, 50))
	depth := c.History().UndoDepth()
	c.SetTool(ToolEraser)
	drag(c, shape.Pt(500, 500), shape.Pt(510, 500))
	assert.Len(t, c.Shapes(), 1)
	assert.Equal(t, depth, c.History().UndoDepth())
}

func TestFreehandEraserUsesPathPoints(t *testing.T) {
	c := newController(t)
	c.SetKind(shape.KindFreehand)
	drag(c, shape.Pt(0, 0), shape.Pt(100, 0))
	c.SetTool(ToolEraser)

	// on the segment but more than the radius from either point
	drag(c, shape.Pt(50, 0))
	assert.Len(t, c.Shapes(), 1)

	drag(c, shape.Pt(95, 10))
	assert.Empty(t, c.Shapes())
}

func TestMeasure(t *testing.T) {
	c := newController(t)
	c.SetTool(ToolMeasure)
	c.Start(shape.Pt(0, 0))
	m, ok := c.Measurement()
	require.True(t, ok)
	assert.Equal(t, "0.00", m.Label)

	c.Update(shape.Pt(30, 40))
	c.End()
	m, _ = c.Measurement()
	assert.Equal(t, "50.00", m.Label)
	assert.Equal(t, shape.Pt(30, 40), m.End)
	assert.Equal(t, 1, c.History().UndoDepth())

	c.SetTool(ToolDraw)
	_, ok = c.Measurement()
	assert.False(t, ok)
}

func TestPanAndScale(t *testing.T) {
	c := newController(t)
	c.SetTool(ToolPan)
	drag(c, shape.Pt(0, 0), shape.Pt(4, 2), shape.Pt(10, 5))
	assert.Equal(t, shape.Pt(10, 5), c.Offset())

	c.SetScale(2)
	assert.Equal(t, shape.Pt(0, 0), c.ToWorld(shape.Pt(10, 5)))
	assert.Equal(t, shape.Pt(5, 5), c.ToWorld(shape.Pt(20, 15)))
	assert.Equal(t, shape.Pt(20, 15), c.ToScreen(shape.Pt(5, 5)))

	c.SetKind(shape.KindRectangle)
	drag(c, shape.Pt(10, 5), shape.Pt(110, 105))
	assert.Equal(t, shape.Pt(0, 0), c.Shapes()[0].Start)
	assert.Equal(t, shape.Pt(50, 50), c.Shapes()[0].End)

	c.SetScale(100)
	assert.Equal(t, 10.0, c.Scale())
	c.SetScale(0)
	assert.Equal(t, 0.1, c.Scale())
}

func TestGridSnapsDrawAnchors(t *testing.T) {
	c := newController(t, func(cfg *Config) { cfg.GridSize = 10 })
	drag(c, shape.Pt(12, 17), shape.Pt(48, 44))
	s := c.Shapes()[0]
	assert.Equal(t, shape.Pt(10, 20), s.Start)
	assert.Equal(t, shape.Pt(50, 40), s.End)
}

func TestFreehandSmoothing(t *testing.T) {
	c := newController(t, func(cfg *Config) { cfg.SmoothFreehand = true })
	c.SetKind(shape.KindFreehand)
	drag(c, shape.Pt(0, 0), shape.Pt(10, 30), shape.Pt(20, 0), shape.Pt(30, 30))

	p := c.Shapes()[0].Path
	require.Len(t, p, 4)
	assert.Equal(t, shape.Pt(0, 0), p[0])
	assert.Equal(t, shape.Pt(10, 10), p[1])
	assert.Equal(t, shape.Pt(20, 20), p[2])
	assert.Equal(t, shape.Pt(30, 30), p[3])
}

func TestSmoothShortPathUnchanged(t *testing.T) {
	in := []shape.Point{shape.Pt(0, 0), shape.Pt(5, 5)}
	assert.Equal(t, in, Smooth(in))
}

func TestLoadIsAtomic(t *testing.T) {
	c := newController(t)
	s := drawRect(c, shape.Pt(0, 0), shape.Pt(50, 50))

	err := c.Load([]byte(`[{"type":"circle","start":{"dx":0,"dy":0},"end":{"dx":1,"dy":1}},{"type":"blob"}]`))
	require.Error(t, err)
	var derr *shape.DeserializationError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, 1, derr.Index)
	assert.Equal(t, []*shape.Shape{s}, c.Shapes())

	require.Error(t, c.Load([]byte(`{`)))
	assert.Len(t, c.Shapes(), 1)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c := newController(t)
	drawRect(c, shape.Pt(0, 0), shape.Pt(50, 50))
	c.SetKind(shape.KindFreehand)
	drag(c, shape.Pt(0, 0), shape.Pt(10, 10), shape.Pt(20, 5))
	want := c.Snapshot()

	data, err := c.Save()
	require.NoError(t, err)

	other := newController(t)
	drawRect(other, shape.Pt(1, 1), shape.Pt(2, 2))
	require.NoError(t, other.Load(data))
	assert.Equal(t, want, other.Snapshot())
	assert.False(t, other.History().CanUndo())
}

func TestSubscribeAndRevision(t *testing.T) {
	c := newController(t)
	var events []Event
	unsubscribe := c.Subscribe(func(e Event) { events = append(events, e) })

	rev := c.Revision()
	drawRect(c, shape.Pt(0, 0), shape.Pt(10, 10))
	assert.Greater(t, c.Revision(), rev)
	assert.Contains(t, events, EventChanged)
	assert.Contains(t, events, EventTool)

	c.SetTool(ToolSelect)
	c.Select(c.Shapes()[0])
	assert.Contains(t, events, EventSelection)

	unsubscribe()
	n := len(events)
	c.Rotate()
	assert.Len(t, events, n)
}

func TestRevisionIsMonotonic(t *testing.T) {
	c := newController(t)
	last := c.Revision()
	check := func() {
		t.Helper()
		assert.Greater(t, c.Revision(), last)
		last = c.Revision()
	}
	drag(c, shape.Pt(0, 0), shape.Pt(10, 10))
	check()
	c.Undo()
	check()
	c.Redo()
	check()
	c.SetTool(ToolEraser)
	check()
}

func TestSceneCarriesFrameState(t *testing.T) {
	c := newController(t, func(cfg *Config) { cfg.ShowGrid, cfg.GridSize = true, 25 })
	c.SetKind(shape.KindCircle)
	c.Start(shape.Pt(0, 0))
	c.Update(shape.Pt(40, 30))

	sc := c.Scene()
	require.NotNil(t, sc.Preview)
	assert.Equal(t, shape.Pt(0, 0), sc.Preview.Start)
	assert.Equal(t, shape.Pt(50, 25), sc.Preview.End)
	assert.Equal(t, shape.KindCircle, sc.Preview.Shape.Kind)
	assert.True(t, sc.ShowGrid)
	assert.Equal(t, c.Revision(), sc.Revision)
	c.End()

	assert.Nil(t, c.Scene().Preview)

	c.SetTool(ToolEraser)
	c.Start(shape.Pt(500, 500))
	sc = c.Scene()
	require.NotNil(t, sc.Eraser)
	assert.Equal(t, shape.Pt(500, 500), sc.Eraser.Center)
	assert.Equal(t, c.Config().EraserRadius, sc.Eraser.Radius)
}

func TestSetShowGrid(t *testing.T) {
	c := newController(t)
	rev := c.Revision()
	c.SetShowGrid(true)
	assert.True(t, c.Scene().ShowGrid)
	assert.Greater(t, c.Revision(), rev)
	c.SetShowGrid(false)
	assert.False(t, c.Config().ShowGrid)
}

// Package editor is the interaction core of the sketch editor. A Controller
// owns the live shape list and turns press/drag/release gestures into shape
// creation, selection and transformation.
//
// A Controller is not safe for concurrent use. Gesture calls, the hold
// timer callback and every mutation must run on one goroutine.
package editor

import (
	"io"
	"log/slog"
	"slices"
	"time"

	"vecsketch/internal/history"
	"vecsketch/internal/recognize"
	"vecsketch/internal/shape"
)

// Config holds the interaction thresholds, in canvas units unless noted.
type Config struct {
	SnapEnabled       bool
	SnapThreshold     float64
	DetachThreshold   float64
	LineChainDistance float64
	HandleRadius      float64
	LabelGrabDistance float64
	EraserRadius      float64
	HoldDelay         time.Duration
	SmoothFreehand    bool
	MaxUndoSteps      int
	// GridSize > 0 rounds draw anchors to the grid.
	GridSize        float64
	ShowGrid        bool
	DuplicateOffset shape.Point
	Recognizer      recognize.Options
}

func DefaultConfig() Config {
	return Config{
		SnapEnabled:       true,
		SnapThreshold:     20,
		DetachThreshold:   3,
		LineChainDistance: 20,
		HandleRadius:      8,
		LabelGrabDistance: 50,
		EraserRadius:      20,
		HoldDelay:         300 * time.Millisecond,
		MaxUndoSteps:      history.DefaultMaxDepth,
		DuplicateOffset:   shape.Pt(20, 20),
		Recognizer:        recognize.DefaultOptions(),
	}
}

// Option configures a Controller.
type Option func(*Controller)

// WithScheduler enables hold-to-recognize for freehand strokes.
func WithScheduler(s Scheduler) Option { return func(c *Controller) { c.sched = s } }

func WithLogger(l *slog.Logger) Option { return func(c *Controller) { c.log = l } }

// WithHistory replaces the history built from Config.MaxUndoSteps.
func WithHistory(h *history.Manager) Option { return func(c *Controller) { c.hist = h } }

type listener struct {
	id int
	fn func(Event)
}

// Controller holds the live shape list, tool state and gesture state.
type Controller struct {
	cfg   Config
	log   *slog.Logger
	sched Scheduler
	hist  *history.Manager

	shapes       []*shape.Shape
	selected     *shape.Shape
	tool         Tool
	kind         shape.Kind
	mode         InteractionMode
	style        shape.Style
	polygonSides int

	offset  shape.Point
	scale   float64
	pointer *shape.Point

	revision   uint64
	listeners  []listener
	listenerID int

	g           gesture
	lastLineEnd *shape.Point
	measure     *Measure

	holdCancel  func()
	holdGen     uint64
	suggestions []shape.Kind
	suggestFor  *shape.Shape
}

func New(cfg Config, opts ...Option) *Controller {
	c := &Controller{
		cfg:          cfg,
		tool:         ToolDraw,
		kind:         shape.KindRectangle,
		style:        shape.DefaultStyle(),
		polygonSides: shape.DefaultPolygonSides,
		scale:        1,
		g:            newGesture(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.hist == nil {
		c.hist = history.New(cfg.MaxUndoSteps)
	}
	return c
}

// Shapes returns the live shape list in z-order, bottom first. Callers must
// treat it as read-only and not retain it across a revision change.
func (c *Controller) Shapes() []*shape.Shape { return c.shapes }

func (c *Controller) Selected() *shape.Shape             { return c.selected }
func (c *Controller) Tool() Tool                         { return c.tool }
func (c *Controller) Kind() shape.Kind                   { return c.kind }
func (c *Controller) InteractionMode() InteractionMode   { return c.mode }
func (c *Controller) Style() shape.Style                 { return c.style }
func (c *Controller) PolygonSides() int                  { return c.polygonSides }
func (c *Controller) SnapEnabled() bool                  { return c.cfg.SnapEnabled }
func (c *Controller) Scale() float64                     { return c.scale }
func (c *Controller) Offset() shape.Point                { return c.offset }
func (c *Controller) History() *history.Manager          { return c.hist }
func (c *Controller) Config() Config                     { return c.cfg }
func (c *Controller) Measurement() (m Measure, ok bool)  { return c.measureValue() }
func (c *Controller) Revision() uint64                   { return c.revision }
func (c *Controller) Suggestions() []shape.Kind          { return slices.Clone(c.suggestions) }
func (c *Controller) indexOf(s *shape.Shape) int         { return slices.Index(c.shapes, s) }
func (c *Controller) present(s *shape.Shape) bool        { return s != nil && c.indexOf(s) >= 0 }
func (c *Controller) toWorld(p shape.Point) shape.Point  { return p.Sub(c.offset).Scale(1 / c.scale) }
func (c *Controller) ToScreen(p shape.Point) shape.Point { return p.Scale(c.scale).Add(c.offset) }

// ToWorld converts a screen position to canvas coordinates.
func (c *Controller) ToWorld(p shape.Point) shape.Point { return c.toWorld(p) }

func (c *Controller) measureValue() (Measure, bool) {
	if c.measure == nil {
		return Measure{}, false
	}
	return *c.measure, true
}

// Subscribe registers fn to be called after every change. Callbacks run
// synchronously on the controller's goroutine.
func (c *Controller) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.listenerID++
	id := c.listenerID
	c.listeners = append(c.listeners, listener{id: id, fn: fn})
	return func() {
		c.listeners = slices.DeleteFunc(c.listeners, func(l listener) bool { return l.id == id })
	}
}

func (c *Controller) emit(e Event) {
	for _, l := range slices.Clone(c.listeners) {
		l.fn(e)
	}
}

// changed bumps the revision and notifies subscribers.
func (c *Controller) changed() {
	c.revision++
	c.emit(EventChanged)
}

func (c *Controller) setSelected(s *shape.Shape) {
	if c.selected == s {
		return
	}
	c.selected = s
	c.emit(EventSelection)
}

// RecordForUndo snapshots the shape list. Call it immediately before a
// mutation so the snapshot holds the pre-mutation state.
func (c *Controller) RecordForUndo() {
	c.hist.Record(c.shapes)
}

func (c *Controller) Undo() {
	restored, ok := c.hist.Undo(c.shapes)
	if !ok {
		return
	}
	c.restore(restored)
	c.log.Debug("undo", "shapes", len(c.shapes), "undo_depth", c.hist.UndoDepth())
}

func (c *Controller) Redo() {
	restored, ok := c.hist.Redo(c.shapes)
	if !ok {
		return
	}
	c.restore(restored)
	c.log.Debug("redo", "shapes", len(c.shapes), "redo_depth", c.hist.RedoDepth())
}

func (c *Controller) restore(shapes []*shape.Shape) {
	c.cancelHold()
	c.g = newGesture()
	c.shapes = shapes
	c.clearSuggestions()
	c.setSelected(nil)
	c.changed()
}

// SetTool switches tools, abandoning any gesture in progress.
func (c *Controller) SetTool(t Tool) {
	c.cancelHold()
	c.g = newGesture()
	if t != ToolSelect {
		c.setSelected(nil)
	}
	if t != ToolMeasure {
		c.measure = nil
	}
	if t != ToolDraw {
		c.lastLineEnd = nil
	}
	c.tool = t
	c.emit(EventTool)
	c.changed()
}

// SetKind selects the kind drawn by the draw tool and activates it.
func (c *Controller) SetKind(k shape.Kind) {
	if !k.Valid() {
		return
	}
	if k != shape.KindLine {
		c.lastLineEnd = nil
	}
	c.kind = k
	c.SetTool(ToolDraw)
}

func (c *Controller) SetInteractionMode(m InteractionMode) {
	c.mode = m
	c.emit(EventTool)
	c.changed()
}

func (c *Controller) SetSnapEnabled(on bool) {
	c.cfg.SnapEnabled = on
	c.emit(EventTool)
	c.changed()
}

// SetShowGrid toggles the grid overlay. Grid snapping depends only on
// Config.GridSize.
func (c *Controller) SetShowGrid(on bool) {
	c.cfg.ShowGrid = on
	c.changed()
}

// SetScale sets the canvas zoom factor, clamped to [0.1, 10].
func (c *Controller) SetScale(s float64) {
	c.scale = min(max(s, 0.1), 10)
	c.changed()
}

// SetOffset sets the canvas pan offset in screen units.
func (c *Controller) SetOffset(p shape.Point) {
	c.offset = p
	c.changed()
}

// Select selects s. Shapes not in the live list are ignored.
func (c *Controller) Select(s *shape.Shape) {
	if !c.present(s) {
		return
	}
	c.setSelected(s)
	c.changed()
}

func (c *Controller) ClearSelection() {
	if c.selected == nil {
		return
	}
	c.setSelected(nil)
	c.changed()
}

package editor

import (
	"slices"
	"time"

	"vecsketch/internal/shape"
)

// Scheduler runs f once after d unless canceled. The host must arrange for
// f to run on the goroutine that drives the Controller.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) (cancel func())
}

// armHold replaces any pending hold timer with a fresh one for s.
func (c *Controller) armHold(s *shape.Shape) {
	c.cancelHold()
	if c.sched == nil {
		return
	}
	c.holdGen++
	gen := c.holdGen
	c.holdCancel = c.sched.AfterFunc(c.cfg.HoldDelay, func() {
		if gen != c.holdGen {
			return
		}
		c.holdCancel = nil
		c.recognizeHeld(s)
	})
}

func (c *Controller) cancelHold() {
	c.holdGen++
	if c.holdCancel != nil {
		c.holdCancel()
		c.holdCancel = nil
	}
}

// recognizeHeld classifies the stroke the pointer has paused on and
// publishes the suggestion list.
func (c *Controller) recognizeHeld(s *shape.Shape) {
	if !c.present(s) || len(s.Path) <= c.cfg.Recognizer.MinPoints {
		return
	}
	res := c.cfg.Recognizer.Recognize(s.Path)
	c.log.Debug("stroke recognized",
		"id", s.ID, "kind", res.Kind, "ok", res.OK,
		"corners", res.Corners, "closed", res.Closed, "suggestions", len(res.Suggestions))
	if len(res.Suggestions) == 0 {
		return
	}
	c.suggestions = res.Suggestions
	c.suggestFor = s
	c.emit(EventSuggestions)
	c.changed()
}

// AcceptSuggestion replaces the stroke the suggestions were made for (or
// the selected freehand stroke) with a shape of kind k spanning its bounds.
// A line keeps the stroke's first and last points.
func (c *Controller) AcceptSuggestion(k shape.Kind) {
	target := c.suggestFor
	if !c.present(target) {
		target = c.selected
	}
	if !k.Valid() || !c.present(target) || target.Kind != shape.KindFreehand || len(target.Path) == 0 {
		return
	}
	if len(c.suggestions) > 0 && !slices.Contains(c.suggestions, k) {
		return
	}

	c.RecordForUndo()
	start, end := target.Start, target.End
	if k.Straight() {
		start, end = target.Path[0], target.Path[len(target.Path)-1]
	}
	s := shape.New(k, start, end)
	s.Style = target.Style
	s.Rotation = target.Rotation
	s.SetPolygonSides(c.polygonSides)
	s.InitLabels()

	c.shapes[c.indexOf(target)] = s
	if c.selected == target {
		c.setSelected(s)
	}
	c.log.Debug("suggestion accepted", "kind", k, "id", s.ID)
	c.clearSuggestions()
	c.changed()
}

// DismissSuggestions drops the pending suggestion list.
func (c *Controller) DismissSuggestions() {
	if len(c.suggestions) == 0 {
		return
	}
	c.clearSuggestions()
	c.changed()
}

func (c *Controller) clearSuggestions() {
	if len(c.suggestions) == 0 && c.suggestFor == nil {
		return
	}
	c.suggestions = nil
	c.suggestFor = nil
	c.emit(EventSuggestions)
}

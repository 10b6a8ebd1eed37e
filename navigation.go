package main

import "vecsketch/internal/shape"

// handlePan scrolls the view by speed*panStep cells. Arrow keys move the
// viewport, so the drawing shifts the opposite way.
func (m *model) handlePan(key string, speed int) {
	dx := float64(speed*panStep) * cellWidth
	dy := float64(speed*panStep) * cellHeight
	off := m.ed.Offset()
	switch key {
	case "left", "shift+left":
		off.X += dx
	case "right", "shift+right":
		off.X -= dx
	case "up", "shift+up":
		off.Y += dy
	case "down", "shift+down":
		off.Y -= dy
	default:
		return
	}
	m.ed.SetOffset(off)
}

func (m *model) getMoveSpeed(key string) int {
	switch key {
	case "shift+left", "shift+right", "shift+up", "shift+down":
		return 2
	default:
		return 1
	}
}

// zoomAt scales the view by factor keeping the canvas point under the
// screen position p fixed.
func (m *model) zoomAt(p shape.Point, factor float64) {
	before := m.ed.Scale()
	m.ed.SetScale(before * factor)
	after := m.ed.Scale()
	if after == before {
		return
	}
	off := m.ed.Offset()
	m.ed.SetOffset(p.Sub(p.Sub(off).Scale(after / before)))
}

func (m *model) screenCenter() shape.Point {
	return shape.Pt(float64(max(m.width, 1))*cellWidth/2, float64(m.canvasHeight())*cellHeight/2)
}

func (m *model) resetView() {
	m.ed.SetScale(1)
	m.ed.SetOffset(shape.Point{})
}

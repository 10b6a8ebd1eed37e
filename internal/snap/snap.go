// Package snap aligns points and bounding boxes with the shapes already on
// the canvas. All functions are pure; any hysteresis is the caller's job.
package snap

import (
	"math"

	"vecsketch/internal/shape"
)

// Match is the closest snap pair found by Nearest.
type Match struct {
	// Offset is the graduated correction for the moving box.
	Offset shape.Point
	// Target is the snap point on the other shape.
	Target shape.Point
}

// Offset compares the eight snap points of the box spanned by movingStart
// and movingEnd with those of every other shape and returns a correction
// towards the closest pair closer than threshold. The pull is graduated:
// it weakens linearly as the pair distance approaches threshold.
func Offset(movingStart, movingEnd shape.Point, exclude *shape.Shape, all []*shape.Shape, threshold float64) (shape.Point, bool) {
	m, ok := Nearest(movingStart, movingEnd, exclude, all, threshold)
	return m.Offset, ok
}

// Nearest is Offset that also reports which snap point won.
func Nearest(movingStart, movingEnd shape.Point, exclude *shape.Shape, all []*shape.Shape, threshold float64) (Match, bool) {
	if threshold <= 0 {
		return Match{}, false
	}
	moving := shape.RectFromPoints(movingStart, movingEnd).SnapPoints()

	best := math.Inf(1)
	var out Match
	for _, s := range all {
		if s == exclude {
			continue
		}
		for _, target := range s.Bounds().SnapPoints() {
			for _, m := range moving {
				d := m.Dist(target)
				if d < threshold && d < best {
					best = d
					out = Match{Offset: target.Sub(m), Target: target}
				}
			}
		}
	}
	if math.IsInf(best, 1) {
		return Match{}, false
	}
	out.Offset = out.Offset.Scale(1 - best/threshold)
	return out, true
}

// ClosestPoint returns the start, end or midpoint of another shape nearest
// to p, if one lies within threshold.
func ClosestPoint(p shape.Point, all []*shape.Shape, exclude *shape.Shape, threshold float64) (shape.Point, bool) {
	best := math.Inf(1)
	var out shape.Point
	for _, s := range all {
		if s == exclude {
			continue
		}
		for _, c := range [3]shape.Point{s.Start, s.End, s.Start.Mid(s.End)} {
			if d := p.Dist(c); d < threshold && d < best {
				best, out = d, c
			}
		}
	}
	return out, !math.IsInf(best, 1)
}

// ToGrid rounds p to the nearest grid intersection. A non-positive
// gridSize leaves p unchanged.
func ToGrid(p shape.Point, gridSize float64) shape.Point {
	if gridSize <= 0 {
		return p
	}
	return shape.Point{
		X: math.Round(p.X/gridSize) * gridSize,
		Y: math.Round(p.Y/gridSize) * gridSize,
	}
}

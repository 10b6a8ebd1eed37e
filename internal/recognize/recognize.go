// Package recognize classifies a freehand stroke as one of the basic
// primitives.
package recognize

import (
	"math"
	"slices"

	"vecsketch/internal/shape"
)

// Options holds the recognizer thresholds, all in canvas units or radians.
type Options struct {
	MinPoints         int
	SimplifyTolerance float64
	MinExtent         float64
	CornerAngle       float64
	CornerSpan        float64
	ClosedDistance    float64
	RightAngleTol     float64
	SquareAspectMin   float64
	SquareAspectMax   float64
	MinCircleRadius   float64
	CircleVariance    float64
	SuggestClosed     float64
}

func DefaultOptions() Options {
	return Options{
		MinPoints:         5,
		SimplifyTolerance: 5,
		MinExtent:         25,
		CornerAngle:       0.75 * math.Pi,
		CornerSpan:        10,
		ClosedDistance:    40,
		RightAngleTol:     0.6,
		SquareAspectMin:   0.8,
		SquareAspectMax:   1.2,
		MinCircleRadius:   10,
		CircleVariance:    0.2,
		SuggestClosed:     50,
	}
}

// Result is the outcome of a classification. Kind is only meaningful when
// OK is set; Suggestions may be non-empty either way.
type Result struct {
	Kind        shape.Kind
	OK          bool
	Suggestions []shape.Kind
	Corners     int
	Closed      bool
}

// Recognize classifies points with DefaultOptions.
func Recognize(points []shape.Point) Result {
	return DefaultOptions().Recognize(points)
}

// Recognize classifies points. Fewer than MinPoints points yield an empty
// Result.
func (o Options) Recognize(points []shape.Point) Result {
	if len(points) < o.MinPoints {
		return Result{}
	}
	pts := o.simplify(points)
	first, last := points[0], points[len(points)-1]
	res := Result{Closed: first.Dist(last) <= o.ClosedDistance}

	r, _ := shape.BoundsOf(points)
	w, h := r.Width(), r.Height()
	if w < o.MinExtent || h < o.MinExtent {
		res.Kind, res.OK = shape.KindLine, true
		res.Suggestions = o.suggest(res, first, last)
		return res
	}

	angles := o.cornerAngles(pts, res.Closed)
	res.Corners = len(angles)
	res.Kind, res.OK = o.classify(points, angles, res.Closed, r)
	res.Suggestions = o.suggest(res, first, last)
	return res
}

func (o Options) classify(points []shape.Point, angles []float64, closed bool, r shape.Rect) (shape.Kind, bool) {
	corners := len(angles)
	w, h := r.Width(), r.Height()

	if corners == 4 || (corners == 5 && closed) {
		right := true
		for _, a := range angles {
			if math.Abs(a-math.Pi/2) > o.RightAngleTol {
				right = false
				break
			}
		}
		if right {
			return shape.KindRectangle, true
		}
		if aspect := w / h; corners == 4 && aspect >= o.SquareAspectMin && aspect <= o.SquareAspectMax {
			return shape.KindRectangle, true
		}
	}
	if corners == 3 {
		return shape.KindTriangle, true
	}
	if radius := (w + h) / 4; radius > o.MinCircleRadius {
		c := r.Center()
		var variance float64
		for _, p := range points {
			d := p.Dist(c) - radius
			variance += d * d
		}
		variance /= float64(len(points))
		if variance/(radius*radius) < o.CircleVariance && corners <= 5 {
			return shape.KindCircle, true
		}
	}
	if corners <= 2 {
		return shape.KindLine, true
	}
	if corners == 4 {
		return shape.KindRectangle, true
	}
	return 0, false
}

// simplify keeps a point only when it is further than SimplifyTolerance
// from the previously kept point.
func (o Options) simplify(points []shape.Point) []shape.Point {
	out := []shape.Point{points[0]}
	for _, p := range points[1:] {
		if p.Dist(out[len(out)-1]) > o.SimplifyTolerance {
			out = append(out, p)
		}
	}
	return out
}

// cornerAngles returns the turn angle at every corner of pts. Each point is
// measured against the nearest points at least CornerSpan away along the
// stroke, and a run of consecutive sharp points counts as one corner with
// the sharpest angle of the run. A closed stroke wraps around, so the seam
// is tested like any other point.
func (o Options) cornerAngles(pts []shape.Point, closed bool) []float64 {
	n := len(pts)
	if closed && n > 1 && pts[0].Dist(pts[n-1]) <= o.SimplifyTolerance {
		n--
	}
	if n < 3 {
		return nil
	}
	pts = pts[:n]

	sharp := make([]bool, n)
	angles := make([]float64, n)
	lo, hi := 1, n-1
	if closed {
		lo, hi = 0, n
	}
	for i := lo; i < hi; i++ {
		prev := o.spanNeighbour(pts, i, -1, closed)
		next := o.spanNeighbour(pts, i, 1, closed)
		if a, ok := angleAt(prev, pts[i], next); ok && a < o.CornerAngle {
			sharp[i], angles[i] = true, a
		}
	}

	// Start the scan on a point that is not sharp so a run across the seam
	// of a closed stroke is not split in two.
	start := 0
	if closed {
		if i := slices.Index(sharp, false); i > 0 {
			start = i
		}
	}
	var out []float64
	inRun := false
	for k := 0; k < n; k++ {
		i := (start + k) % n
		switch {
		case !sharp[i]:
			inRun = false
		case inRun:
			out[len(out)-1] = math.Min(out[len(out)-1], angles[i])
		default:
			out = append(out, angles[i])
			inRun = true
		}
	}
	return out
}

// spanNeighbour walks from pts[i] in direction dir until it finds a point at
// least CornerSpan away. Open strokes stop at their endpoints.
func (o Options) spanNeighbour(pts []shape.Point, i, dir int, closed bool) shape.Point {
	n := len(pts)
	q := pts[i]
	for step := 1; step < n; step++ {
		j := i + dir*step
		if !closed && (j < 0 || j >= n) {
			break
		}
		q = pts[((j%n)+n)%n]
		if q.Dist(pts[i]) >= o.CornerSpan {
			break
		}
	}
	return q
}

// angleAt returns the angle between the vectors from p to its neighbours.
func angleAt(prev, p, next shape.Point) (float64, bool) {
	a, b := prev.Sub(p), next.Sub(p)
	la, lb := a.Len(), b.Len()
	if la == 0 || lb == 0 {
		return 0, false
	}
	cos := (a.X*b.X + a.Y*b.Y) / (la * lb)
	return math.Acos(math.Max(-1, math.Min(1, cos))), true
}

func (o Options) suggest(res Result, first, last shape.Point) []shape.Kind {
	var out []shape.Kind
	if res.OK {
		out = append(out, res.Kind)
	}
	add := func(k shape.Kind) {
		if !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	if first.Dist(last) <= o.SuggestClosed {
		add(shape.KindCircle)
		add(shape.KindRectangle)
	} else {
		add(shape.KindLine)
	}
	return out
}

package recognize

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vecsketch/internal/shape"
)

// polyline samples the edges between vertices every step units, including
// every vertex exactly once.
func polyline(step float64, vertices ...shape.Point) []shape.Point {
	pts := []shape.Point{vertices[0]}
	for i := 1; i < len(vertices); i++ {
		a, b := vertices[i-1], vertices[i]
		n := int(math.Ceil(a.Dist(b) / step))
		for j := 1; j <= n; j++ {
			t := float64(j) / float64(n)
			pts = append(pts, a.Add(b.Sub(a).Scale(t)))
		}
	}
	return pts
}

func circlePoints(center shape.Point, radius float64, n int) []shape.Point {
	pts := make([]shape.Point, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = shape.Pt(center.X+radius*math.Cos(a), center.Y+radius*math.Sin(a))
	}
	return pts
}

func TestRecognizeSquare(t *testing.T) {
	for step := 1; step <= 25; step++ {
		t.Run(fmt.Sprintf("step %d", step), func(t *testing.T) {
			pts := polyline(float64(step),
				shape.Pt(0, 0), shape.Pt(100, 0), shape.Pt(100, 100), shape.Pt(0, 100), shape.Pt(0, 0))
			res := Recognize(pts)
			require.True(t, res.OK)
			assert.Equal(t, shape.KindRectangle, res.Kind)
			assert.Equal(t, 4, res.Corners)
			assert.True(t, res.Closed)
			assert.Equal(t, []shape.Kind{shape.KindRectangle, shape.KindCircle}, res.Suggestions)
		})
	}
}

func TestCornerRunCountsOnce(t *testing.T) {
	o := DefaultOptions()
	// a corner cut by simplification into two 135 degree turns
	pts := []shape.Point{
		shape.Pt(60, 0), shape.Pt(72, 0), shape.Pt(84, 0), shape.Pt(96, 0),
		shape.Pt(100, 4), shape.Pt(100, 16), shape.Pt(100, 28), shape.Pt(100, 40),
	}
	angles := o.cornerAngles(pts, false)
	require.Len(t, angles, 1)
	assert.InDelta(t, math.Pi/2, angles[0], o.RightAngleTol)
}

func TestRecognizeSquareStartedMidEdge(t *testing.T) {
	pts := polyline(10,
		shape.Pt(50, 0), shape.Pt(100, 0), shape.Pt(100, 100), shape.Pt(0, 100), shape.Pt(0, 0), shape.Pt(50, 0))
	res := Recognize(pts)
	require.True(t, res.OK)
	assert.Equal(t, shape.KindRectangle, res.Kind)
	assert.Equal(t, 4, res.Corners)
}

func TestRecognizeWideRectangle(t *testing.T) {
	pts := polyline(10,
		shape.Pt(0, 0), shape.Pt(200, 0), shape.Pt(200, 80), shape.Pt(0, 80), shape.Pt(0, 0))
	res := Recognize(pts)
	require.True(t, res.OK)
	assert.Equal(t, shape.KindRectangle, res.Kind)
}

func TestRecognizeCircle(t *testing.T) {
	res := Recognize(circlePoints(shape.Pt(100, 100), 50, 36))
	require.True(t, res.OK)
	assert.Equal(t, shape.KindCircle, res.Kind)
	assert.Zero(t, res.Corners)
	assert.Equal(t, []shape.Kind{shape.KindCircle, shape.KindRectangle}, res.Suggestions)
}

func TestRecognizeTriangle(t *testing.T) {
	pts := polyline(10, shape.Pt(0, 0), shape.Pt(100, 0), shape.Pt(50, 90), shape.Pt(0, 0))
	res := Recognize(pts)
	require.True(t, res.OK)
	assert.Equal(t, shape.KindTriangle, res.Kind)
	assert.Equal(t, 3, res.Corners)
}

func TestRecognizeOpenLine(t *testing.T) {
	pts := polyline(10, shape.Pt(0, 0), shape.Pt(300, 30))
	res := Recognize(pts)
	require.True(t, res.OK)
	assert.Equal(t, shape.KindLine, res.Kind)
	assert.False(t, res.Closed)
	assert.Equal(t, []shape.Kind{shape.KindLine}, res.Suggestions)
}

func TestRecognizeShortStrokes(t *testing.T) {
	few := []shape.Point{shape.Pt(0, 0), shape.Pt(100, 0), shape.Pt(100, 100), shape.Pt(0, 100)}
	res := Recognize(few)
	assert.False(t, res.OK)
	assert.Empty(t, res.Suggestions)

	small := [][]shape.Point{
		polyline(2, shape.Pt(0, 0), shape.Pt(20, 0), shape.Pt(20, 20), shape.Pt(0, 20), shape.Pt(0, 0)),
		polyline(10, shape.Pt(0, 0), shape.Pt(200, 10)),
		circlePoints(shape.Pt(0, 0), 10, 24),
	}
	for _, pts := range small {
		res := Recognize(pts)
		if res.OK {
			assert.Equal(t, shape.KindLine, res.Kind)
		}
	}
}

func TestSimplifyDropsClosePoints(t *testing.T) {
	o := DefaultOptions()
	pts := []shape.Point{shape.Pt(0, 0), shape.Pt(1, 0), shape.Pt(4, 0), shape.Pt(6, 0), shape.Pt(8, 0), shape.Pt(20, 0)}
	assert.Equal(t, []shape.Point{shape.Pt(0, 0), shape.Pt(6, 0), shape.Pt(20, 0)}, o.simplify(pts))
}

func TestZigzagIsUnclassified(t *testing.T) {
	pts := polyline(10,
		shape.Pt(0, 0), shape.Pt(40, 100), shape.Pt(80, 0), shape.Pt(120, 100),
		shape.Pt(160, 0), shape.Pt(200, 100), shape.Pt(240, 0), shape.Pt(280, 100))
	res := Recognize(pts)
	assert.False(t, res.OK)
	assert.Equal(t, 6, res.Corners)
	assert.Equal(t, []shape.Kind{shape.KindLine}, res.Suggestions)
}

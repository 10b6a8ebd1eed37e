package shape

import "math"

// Path is one polyline of a shape's outline.
type Path struct {
	Points []Point
	Closed bool
}

const ellipseSegments = 48

// Outline builds the draw path of the shape, rotated about its bounds
// center. Text shapes have no outline.
func (s *Shape) Outline() []Path {
	var paths []Path
	r := s.Bounds()
	switch s.Kind {
	case KindLine:
		paths = []Path{open(s.Start, s.End)}
	case KindRectangle:
		c := r.Corners()
		paths = []Path{closed(c[:]...)}
	case KindTriangle:
		paths = []Path{closed(
			Point{r.Center().X, r.Min.Y},
			r.Max,
			Point{r.Min.X, r.Max.Y},
		)}
	case KindCircle:
		paths = []Path{closed(regular(r, ellipseSegments, 0)...)}
	case KindFreehand:
		paths = []Path{{Points: append([]Point(nil), s.Path...)}}
	case KindLShape:
		t := thickness(r)
		paths = []Path{closed(
			r.Min,
			Point{r.Min.X + t, r.Min.Y},
			Point{r.Min.X + t, r.Max.Y - t},
			Point{r.Max.X, r.Max.Y - t},
			r.Max,
			Point{r.Min.X, r.Max.Y},
		)}
	case KindTShape:
		t := thickness(r)
		cx := r.Center().X
		paths = []Path{closed(
			r.Min,
			Point{r.Max.X, r.Min.Y},
			Point{r.Max.X, r.Min.Y + t},
			Point{cx + t/2, r.Min.Y + t},
			Point{cx + t/2, r.Max.Y},
			Point{cx - t/2, r.Max.Y},
			Point{cx - t/2, r.Min.Y + t},
			Point{r.Min.X, r.Min.Y + t},
		)}
	case KindUShape:
		t := thickness(r)
		paths = []Path{closed(
			r.Min,
			Point{r.Min.X + t, r.Min.Y},
			Point{r.Min.X + t, r.Max.Y - t},
			Point{r.Max.X - t, r.Max.Y - t},
			Point{r.Max.X - t, r.Min.Y},
			Point{r.Max.X, r.Min.Y},
			r.Max,
			Point{r.Min.X, r.Max.Y},
		)}
	case KindBoxShape:
		// front face in the lower left, back face shifted up and right
		d := math.Min(r.Width(), r.Height()) / 4
		front := Rect{Min: Point{r.Min.X, r.Min.Y + d}, Max: Point{r.Max.X - d, r.Max.Y}}
		back := Rect{Min: Point{r.Min.X + d, r.Min.Y}, Max: Point{r.Max.X, r.Max.Y - d}}
		fc, bc := front.Corners(), back.Corners()
		paths = []Path{closed(fc[:]...), closed(bc[:]...)}
		for i := range fc {
			paths = append(paths, open(fc[i], bc[i]))
		}
	case KindArrow:
		paths = []Path{open(s.Start, s.End), open(arrowHead(s.Start, s.End, s.Style.StrokeWidth)...)}
	case KindStar:
		paths = []Path{closed(star(r, 5)...)}
	case KindPolygon:
		n := min(max(s.PolygonSides, MinPolygonSides), MaxPolygonSides)
		paths = []Path{closed(regular(r, n, -math.Pi/2)...)}
	case KindDimension:
		paths = dimension(s.Start, s.End)
	case KindText:
		return nil
	}
	if s.Rotation != 0 {
		c := r.Center()
		for i := range paths {
			for j, p := range paths[i].Points {
				paths[i].Points[j] = p.RotateAround(c, s.Rotation)
			}
		}
	}
	return paths
}

func open(pts ...Point) Path   { return Path{Points: pts} }
func closed(pts ...Point) Path { return Path{Points: pts, Closed: true} }

func thickness(r Rect) float64 {
	return math.Min(r.Width(), r.Height()) / 3
}

// regular samples n vertices on the ellipse inscribed in r.
func regular(r Rect, n int, phase float64) []Point {
	c := r.Center()
	rx, ry := r.Width()/2, r.Height()/2
	pts := make([]Point, n)
	for i := range pts {
		a := phase + 2*math.Pi*float64(i)/float64(n)
		pts[i] = Point{c.X + rx*math.Cos(a), c.Y + ry*math.Sin(a)}
	}
	return pts
}

func star(r Rect, spikes int) []Point {
	c := r.Center()
	rx, ry := r.Width()/2, r.Height()/2
	pts := make([]Point, 0, spikes*2)
	for i := 0; i < spikes*2; i++ {
		f := 1.0
		if i%2 == 1 {
			f = 0.4
		}
		a := -math.Pi/2 + math.Pi*float64(i)/float64(spikes)
		pts = append(pts, Point{c.X + f*rx*math.Cos(a), c.Y + f*ry*math.Sin(a)})
	}
	return pts
}

func arrowHead(from, to Point, strokeWidth float64) []Point {
	d := to.Sub(from)
	l := d.Len()
	if l == 0 {
		return []Point{to}
	}
	size := math.Max(12, strokeWidth*4)
	u := d.Scale(1 / l)
	n := Point{-u.Y, u.X}
	base := to.Sub(u.Scale(size))
	return []Point{base.Add(n.Scale(size / 2)), to, base.Sub(n.Scale(size / 2))}
}

func dimension(from, to Point) []Path {
	paths := []Path{open(from, to)}
	d := to.Sub(from)
	l := d.Len()
	if l == 0 {
		return paths
	}
	const tick = 8.0
	n := Point{-d.Y / l, d.X / l}.Scale(tick)
	paths = append(paths,
		open(from.Sub(n), from.Add(n)),
		open(to.Sub(n), to.Add(n)),
	)
	return paths
}

package geom

// Rect is an inclusive cell rectangle, the section form used by the
// oldest save files.
type Rect struct {
	X0, Y0 int
	X1, Y1 int
}

// Polygon converts a cell rectangle to its polygon outline. The right and
// bottom edges move out by one cell so the polygon covers the full area of
// cells X0..X1 and Y0..Y1.
func (r Rect) Polygon() []Point {
	return []Point{
		Pt(r.X0, r.Y0),
		Pt(r.X1+1, r.Y0),
		Pt(r.X1+1, r.Y1+1),
		Pt(r.X0, r.Y1+1),
	}
}

// Contains reports whether (x, y) lies inside poly using the even-odd
// ray casting rule. Points exactly on an edge get whatever the crossing
// formula yields; callers must not rely on either answer. Polygons with
// fewer than three vertices contain nothing.
func Contains(poly []Point, x, y float64) bool {
	n := len(poly)
	if n < 3 {
		return false
	}

	inside := false
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		xi, yi := poly[i].X, poly[i].Y
		xj, yj := poly[j].X, poly[j].Y

		// 1e-9 keeps horizontal edges from dividing by zero.
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi+1e-9)+xi {
			inside = !inside
		}
	}
	return inside
}

// Bounds returns the axis-aligned bounding box of poly. ok is false for an
// empty polygon.
func Bounds(poly []Point) (min, max Point, ok bool) {
	if len(poly) == 0 {
		return Point{}, Point{}, false
	}
	min, max = poly[0], poly[0]
	for _, p := range poly[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max, true
}

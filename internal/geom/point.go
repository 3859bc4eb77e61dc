package geom

import (
	"encoding/json"
	"fmt"
)

// Point is a polygon vertex. Board sections use cell units, entity outlines
// use the 0-64 editor space.
type Point struct {
	X float64
	Y float64
}

// Pt is shorthand for building a Point from integer coordinates.
func Pt(x, y int) Point {
	return Point{X: float64(x), Y: float64(y)}
}

// MarshalJSON encodes a point as a two element array, the form every save
// file has used.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

// UnmarshalJSON accepts [x, y] or {"x": .., "y": ..}.
func (p *Point) UnmarshalJSON(b []byte) error {
	var pair []float64
	if err := json.Unmarshal(b, &pair); err == nil {
		if len(pair) != 2 {
			return fmt.Errorf("point: want 2 coordinates, got %d", len(pair))
		}
		p.X, p.Y = pair[0], pair[1]
		return nil
	}

	var obj struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("point: %w", err)
	}
	if obj.X == nil || obj.Y == nil {
		return fmt.Errorf("point: missing x or y")
	}
	p.X, p.Y = *obj.X, *obj.Y
	return nil
}

// Scale returns a copy of pts with every coordinate multiplied by f.
func Scale(pts []Point, f float64) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = Point{X: p.X * f, Y: p.Y * f}
	}
	return out
}

// Clone copies a vertex list. A nil list stays nil.
func Clone(pts []Point) []Point {
	if pts == nil {
		return nil
	}
	out := make([]Point, len(pts))
	copy(out, pts)
	return out
}

package geom

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRectPolygon_ExtendsRightAndBottomByOneCell(t *testing.T) {
	got := Rect{X0: 2, Y0: 3, X1: 4, Y1: 5}.Polygon()

	assert.Equal(t, []Point{Pt(2, 3), Pt(5, 3), Pt(5, 6), Pt(2, 6)}, got)
}

func TestRectPolygon_SingleCell(t *testing.T) {
	got := Rect{X0: 0, Y0: 0, X1: 0, Y1: 0}.Polygon()

	assert.Equal(t, []Point{Pt(0, 0), Pt(1, 0), Pt(1, 1), Pt(0, 1)}, got)
	assert.True(t, Contains(got, 0.5, 0.5))
	assert.False(t, Contains(got, 1.5, 0.5))
}

func TestContains_Square(t *testing.T) {
	sq := []Point{Pt(0, 0), Pt(2, 0), Pt(2, 2), Pt(0, 2)}

	cases := []struct {
		name string
		x, y float64
		want bool
	}{
		{"centre of first cell", 0.5, 0.5, true},
		{"centre of last cell", 1.5, 1.5, true},
		{"right of square", 2.5, 0.5, false},
		{"below square", 0.5, 2.5, false},
		{"negative", -0.5, 0.5, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Contains(sq, tc.x, tc.y))
		})
	}
}

func TestContains_ConcavePolygon(t *testing.T) {
	// L shape covering cells (0,0),(1,0),(0,1)
	l := []Point{Pt(0, 0), Pt(2, 0), Pt(2, 1), Pt(1, 1), Pt(1, 2), Pt(0, 2)}

	assert.True(t, Contains(l, 0.5, 0.5))
	assert.True(t, Contains(l, 1.5, 0.5))
	assert.True(t, Contains(l, 0.5, 1.5))
	assert.False(t, Contains(l, 1.5, 1.5))
}

func TestContains_Triangle(t *testing.T) {
	tri := []Point{Pt(0, 0), Pt(4, 0), Pt(0, 4)}

	assert.True(t, Contains(tri, 1, 1))
	assert.False(t, Contains(tri, 3, 3))
}

func TestContains_DegeneratePolygons(t *testing.T) {
	assert.False(t, Contains(nil, 0, 0))
	assert.False(t, Contains([]Point{Pt(0, 0), Pt(1, 1)}, 0.5, 0.5))
}

func TestContains_VertexOrderDoesNotMatter(t *testing.T) {
	cw := []Point{Pt(0, 0), Pt(0, 3), Pt(3, 3), Pt(3, 0)}
	ccw := []Point{Pt(0, 0), Pt(3, 0), Pt(3, 3), Pt(0, 3)}

	for _, p := range []Point{{1.5, 1.5}, {3.5, 1}, {0.1, 2.9}} {
		assert.Equal(t, Contains(cw, p.X, p.Y), Contains(ccw, p.X, p.Y), "point %v", p)
	}
}

func TestBounds(t *testing.T) {
	min, max, ok := Bounds([]Point{Pt(3, 1), Pt(-1, 4), Pt(2, 2)})
	require.True(t, ok)
	assert.Equal(t, Point{X: -1, Y: 1}, min)
	assert.Equal(t, Point{X: 3, Y: 4}, max)

	_, _, ok = Bounds(nil)
	assert.False(t, ok)
}

func TestPoint_JSON(t *testing.T) {
	b, err := json.Marshal([]Point{Pt(1, 2), {X: 0.5, Y: 3}})
	require.NoError(t, err)
	assert.JSONEq(t, `[[1,2],[0.5,3]]`, string(b))

	var pts []Point
	require.NoError(t, json.Unmarshal([]byte(`[[4,5],{"x":6,"y":7}]`), &pts))
	assert.Equal(t, []Point{Pt(4, 5), Pt(6, 7)}, pts)

	var bad Point
	assert.Error(t, json.Unmarshal([]byte(`[1,2,3]`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &bad))
}

func TestScaleAndClone(t *testing.T) {
	pts := []Point{Pt(1, 2)}
	scaled := Scale(pts, 64)
	assert.Equal(t, []Point{Pt(64, 128)}, scaled)

	c := Clone(pts)
	c[0].X = 9
	assert.Equal(t, float64(1), pts[0].X)
	assert.Nil(t, Clone(nil))
}

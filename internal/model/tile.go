package model

import "github.com/lukelpg/board-game-creator/internal/geom"

// TileCell is the pixel size tile outlines are drawn for.
const TileCell = 64

const (
	DefaultTileOutline = "#808080"
	DefaultTileFill    = "#cccccc"
)

// Tile shapes.
const (
	ShapeRect = "rect"
	ShapeHex  = "hex"
	ShapePoly = "poly"
)

// Tile is a rect, hex or free polygon tile. Tiles are cloned when placed so
// every grid slot owns an independent copy.
type Tile struct {
	Name      string       `json:"name"`
	Shape     string       `json:"shape"`
	Points    []geom.Point `json:"points"`
	Outline   string       `json:"outline"`
	Fill      string       `json:"fill"`
	ImagePath *string      `json:"image"`
}

// NewTile creates a tile with the default colours.
func NewTile(name, shape string, points []geom.Point) *Tile {
	return &Tile{
		Name:    name,
		Shape:   shape,
		Points:  points,
		Outline: DefaultTileOutline,
		Fill:    DefaultTileFill,
	}
}

func (t *Tile) Kind() Kind         { return KindTile }
func (t *Tile) EntityName() string { return t.Name }

// Clone returns a value copy that shares nothing with t.
func (t *Tile) Clone() *Tile {
	if t == nil {
		return nil
	}
	c := *t
	c.Points = geom.Clone(t.Points)
	if t.ImagePath != nil {
		p := *t.ImagePath
		c.ImagePath = &p
	}
	return &c
}

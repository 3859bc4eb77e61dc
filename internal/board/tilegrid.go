package board

import (
	"github.com/lukelpg/board-game-creator/internal/geom"
	"github.com/lukelpg/board-game-creator/internal/model"
)

// TileGrid is a board of rect or hex tile slots. Each slot holds its own
// clone of a catalog tile.
type TileGrid struct {
	Name  string
	Cols  int
	Rows  int
	Shape string

	slots [][]*model.Tile
}

// NewTileGrid creates an empty grid. Shape is model.ShapeRect or
// model.ShapeHex; anything else is treated as rect.
func NewTileGrid(name string, cols, rows int, shape string) (*TileGrid, error) {
	if cols <= 0 || rows <= 0 {
		return nil, ErrInvalidSize
	}
	slots := make([][]*model.Tile, rows)
	for r := range slots {
		slots[r] = make([]*model.Tile, cols)
	}
	return &TileGrid{Name: name, Cols: cols, Rows: rows, Shape: shape, slots: slots}, nil
}

func (g *TileGrid) Mode() Mode         { return ModeTileGrid }
func (g *TileGrid) LayoutName() string { return g.Name }

func (g *TileGrid) inBounds(col, row int) bool {
	return col >= 0 && col < g.Cols && row >= 0 && row < g.Rows
}

// Place stores a clone of t at (col, row), replacing any previous tile.
func (g *TileGrid) Place(t *model.Tile, col, row int) bool {
	if t == nil || !g.inBounds(col, row) {
		return false
	}
	g.slots[row][col] = t.Clone()
	return true
}

// At returns the tile at (col, row), or nil.
func (g *TileGrid) At(col, row int) *model.Tile {
	if !g.inBounds(col, row) {
		return nil
	}
	return g.slots[row][col]
}

// Remove clears (col, row) and returns the tile that was there, or nil.
func (g *TileGrid) Remove(col, row int) *model.Tile {
	if !g.inBounds(col, row) {
		return nil
	}
	t := g.slots[row][col]
	g.slots[row][col] = nil
	return t
}

// TilePlacement is one occupied slot.
type TilePlacement struct {
	Tile *model.Tile
	Col  int
	Row  int
}

// Tiles lists occupied slots in row-major order.
func (g *TileGrid) Tiles() []TilePlacement {
	var out []TilePlacement
	for r := range g.slots {
		for c, t := range g.slots[r] {
			if t != nil {
				out = append(out, TilePlacement{Tile: t, Col: c, Row: r})
			}
		}
	}
	return out
}

func (g *TileGrid) hex() bool {
	return g.Shape == model.ShapeHex
}

// CellAt maps a pixel to a slot for a given cell size. Hex grids clamp to
// the grid; rect grids report ok=false outside it.
func (g *TileGrid) CellAt(px, py, cell int) (col, row int, ok bool) {
	if g.hex() {
		col, row = geom.PixelToHex(px, py, g.Cols, g.Rows, cell)
		return col, row, true
	}
	col, row = geom.PixelToRect(px, py, cell)
	return col, row, g.inBounds(col, row)
}

// CellOrigin returns the pixel top-left of a slot.
func (g *TileGrid) CellOrigin(col, row, cell int) (int, int) {
	if g.hex() {
		return geom.HexOrigin(col, row, cell)
	}
	return geom.RectOrigin(col, row, cell)
}

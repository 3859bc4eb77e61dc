package board

import (
	"errors"
	"fmt"

	"github.com/lukelpg/board-game-creator/internal/geom"
	"github.com/lukelpg/board-game-creator/internal/model"
)

var ErrInvalidSize = errors.New("board width and height must be positive")

// Board is a rectangular grid where every cell holds an ordered stack, plus
// a list of sections restricting what may be placed where.
//
// Operations on out-of-range cells never fail loudly: they return false,
// nil or an empty slice, because callers routinely probe coordinates
// derived from arbitrary pixels.
type Board struct {
	width    int
	height   int
	cells    [][]model.Stack
	sections []Section
}

// New creates an empty width×height board.
func New(width, height int) (*Board, error) {
	b := &Board{}
	if err := b.Resize(width, height); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Board) Width() int  { return b.width }
func (b *Board) Height() int { return b.height }

// Resize reallocates the grid. Every occupant and every section is
// discarded. The board is left untouched if the size is invalid.
func (b *Board) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	cells := make([][]model.Stack, height)
	for y := range cells {
		cells[y] = make([]model.Stack, width)
	}
	b.width, b.height = width, height
	b.cells = cells
	b.sections = nil
	return nil
}

// InBounds reports whether (x, y) is a cell of the board.
func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// AddSection appends a section. Sections may overlap; lookups use the
// first one in list order.
func (b *Board) AddSection(name string, kind model.Kind, points []geom.Point, outline, fill string) {
	b.sections = append(b.sections, newSection(name, kind, points, outline, fill))
}

// RemoveSection deletes the section at index i. Soft failure: false if i
// is out of range.
func (b *Board) RemoveSection(i int) bool {
	if i < 0 || i >= len(b.sections) {
		return false
	}
	b.sections = append(b.sections[:i], b.sections[i+1:]...)
	return true
}

// Sections returns a copy of the board's sections.
func (b *Board) Sections() []Section {
	out := make([]Section, len(b.sections))
	for i, s := range b.sections {
		out[i] = s.clone()
	}
	return out
}

// SectionAt returns the first section containing the centre of cell
// (x, y), or nil.
func (b *Board) SectionAt(x, y int) *Section {
	return firstContaining(b.sections, float64(x)+0.5, float64(y)+0.5)
}

// CanAccept reports whether e may be placed on cell (x, y).
func (b *Board) CanAccept(x, y int, e model.Entity) bool {
	if e == nil || !b.InBounds(x, y) {
		return false
	}
	sec := b.SectionAt(x, y)
	if sec == nil {
		return true
	}
	return sec.Accepts(e.Kind())
}

// Place pushes e onto the stack at (x, y). Returns false, leaving the board
// unchanged, if CanAccept rejects it.
func (b *Board) Place(x, y int, e model.Entity) bool {
	if !b.CanAccept(x, y, e) {
		return false
	}
	b.cells[y][x].Push(e)
	return true
}

// RemoveTop pops the top entity of cell (x, y), or returns nil.
func (b *Board) RemoveTop(x, y int) model.Entity {
	if !b.InBounds(x, y) {
		return nil
	}
	return b.cells[y][x].TakeTop()
}

// ClearCell empties cell (x, y) and returns what it held, bottom first.
func (b *Board) ClearCell(x, y int) []model.Entity {
	if !b.InBounds(x, y) {
		return []model.Entity{}
	}
	return b.cells[y][x].TakeAll()
}

// Stack returns a snapshot of cell (x, y), bottom first.
func (b *Board) Stack(x, y int) []model.Entity {
	if !b.InBounds(x, y) {
		return []model.Entity{}
	}
	return b.cells[y][x].Snapshot()
}

// Top returns the top entity of cell (x, y) without removing it.
func (b *Board) Top(x, y int) model.Entity {
	if !b.InBounds(x, y) {
		return nil
	}
	return b.cells[y][x].Top()
}

// Occupied returns the coordinates of every non-empty cell in row-major
// order.
func (b *Board) Occupied() []Cell {
	var out []Cell
	for y := range b.cells {
		for x := range b.cells[y] {
			if b.cells[y][x].Len() > 0 {
				out = append(out, Cell{X: x, Y: y})
			}
		}
	}
	return out
}

// Cell is a grid coordinate.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Spec returns the serializable description of the board under name. The
// sections are always in polygon form.
func (b *Board) Spec(name string) *Spec {
	secs := make([]SectionSpec, len(b.sections))
	for i := range b.sections {
		secs[i] = b.sections[i].Spec()
	}
	return &Spec{Name: name, Width: b.width, Height: b.height, Sections: secs}
}

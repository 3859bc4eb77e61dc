package board

import (
	"github.com/lukelpg/board-game-creator/internal/geom"
	"github.com/lukelpg/board-game-creator/internal/model"
)

// DefaultSpriteSize is the pixel size of one placed object, and of one
// section unit, on a free board.
const DefaultSpriteSize = 64

// Placed pairs an entity with its pixel position on a free board.
type Placed struct {
	Entity model.Entity
	X      int
	Y      int
}

// FreeBoard is a pixel canvas with no grid: objects may overlap freely.
// Section points are stored in cell units, one cell being SpriteSize
// pixels.
type FreeBoard struct {
	Name       string
	Width      int
	Height     int
	SpriteSize int

	placed   []*Placed
	sections []Section
}

// NewFreeBoard creates an empty free board of width×height pixels.
func NewFreeBoard(name string, width, height int) *FreeBoard {
	return &FreeBoard{
		Name:       name,
		Width:      width,
		Height:     height,
		SpriteSize: DefaultSpriteSize,
	}
}

func (f *FreeBoard) Mode() Mode         { return ModeFree }
func (f *FreeBoard) LayoutName() string { return f.Name }

func (f *FreeBoard) size() int {
	if f.SpriteSize <= 0 {
		return DefaultSpriteSize
	}
	return f.SpriteSize
}

// Add places e with its top-left corner at (px, py). Overlap is allowed.
func (f *FreeBoard) Add(e model.Entity, px, py int) *Placed {
	p := &Placed{Entity: e, X: px, Y: py}
	f.placed = append(f.placed, p)
	return p
}

// Remove deletes the given record. Soft failure: returns false and does
// nothing if p is not on the board.
func (f *FreeBoard) Remove(p *Placed) bool {
	for i, q := range f.placed {
		if q == p {
			f.placed = append(f.placed[:i], f.placed[i+1:]...)
			return true
		}
	}
	return false
}

// Move repositions a record. Soft failure: false if p is not on the board.
func (f *FreeBoard) Move(p *Placed, px, py int) bool {
	for _, q := range f.placed {
		if q == p {
			p.X, p.Y = px, py
			return true
		}
	}
	return false
}

// ObjectsAt returns every record whose sprite box covers (px, py), in
// insertion order. The last element is the topmost.
func (f *FreeBoard) ObjectsAt(px, py int) []*Placed {
	size := f.size()
	var out []*Placed
	for _, p := range f.placed {
		if p.X <= px && px < p.X+size && p.Y <= py && py < p.Y+size {
			out = append(out, p)
		}
	}
	return out
}

// Top returns the topmost record covering (px, py), or nil.
func (f *FreeBoard) Top(px, py int) *Placed {
	hits := f.ObjectsAt(px, py)
	if len(hits) == 0 {
		return nil
	}
	return hits[len(hits)-1]
}

// Objects returns the records in insertion order.
func (f *FreeBoard) Objects() []*Placed {
	out := make([]*Placed, len(f.placed))
	copy(out, f.placed)
	return out
}

// AddSection appends a section; points are in cell units.
func (f *FreeBoard) AddSection(name string, kind model.Kind, points []geom.Point, outline, fill string) {
	f.sections = append(f.sections, newSection(name, kind, points, outline, fill))
}

// Sections returns a copy of the board's sections.
func (f *FreeBoard) Sections() []Section {
	out := make([]Section, len(f.sections))
	for i, s := range f.sections {
		out[i] = s.clone()
	}
	return out
}

// SectionAt returns the first section containing pixel (px, py).
func (f *FreeBoard) SectionAt(px, py int) *Section {
	size := float64(f.size())
	return firstContaining(f.sections, float64(px)/size, float64(py)/size)
}

// PixelSections returns the sections scaled to pixels, for a renderer.
func (f *FreeBoard) PixelSections() []Section {
	out := f.Sections()
	for i := range out {
		out[i].Points = geom.Scale(out[i].Points, float64(f.size()))
	}
	return out
}

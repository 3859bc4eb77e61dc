package board

// Mode tags the three board variants a game can hold.
type Mode string

const (
	ModeGrid     Mode = "grid"
	ModeFree     Mode = "free"
	ModeTileGrid Mode = "tilegrid"
)

// Layout is one board of a game: a grid *Spec, a *FreeBoard or a
// *TileGrid. Callers switch on the concrete type.
type Layout interface {
	Mode() Mode
	LayoutName() string
}

var (
	_ Layout = (*Spec)(nil)
	_ Layout = (*FreeBoard)(nil)
	_ Layout = (*TileGrid)(nil)
)

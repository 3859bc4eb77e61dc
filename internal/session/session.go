// Package session is a live play-test of one game: grid boards are
// materialized, placements run through the rule chain, and players take
// turns drawing from decks.
package session

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"go.uber.org/zap"

	"github.com/lukelpg/board-game-creator/internal/board"
	"github.com/lukelpg/board-game-creator/internal/gamedata"
	"github.com/lukelpg/board-game-creator/internal/geom"
	"github.com/lukelpg/board-game-creator/internal/model"
	"github.com/lukelpg/board-game-creator/internal/relay"
	"github.com/lukelpg/board-game-creator/internal/rules"
)

var (
	ErrUnknownBoard  = errors.New("unknown board")
	ErrUnknownDeck   = errors.New("unknown deck")
	ErrUnknownEntity = errors.New("unknown entity")
	ErrWrongLayout   = errors.New("operation not supported by this board")
	ErrNoPlayers     = errors.New("no players")
)

type Options struct {
	// Rules run after section checks on every grid and free placement.
	Rules rules.Chain
	Log   *zap.Logger
	// Rand drives deck shuffles; nil uses the global source.
	Rand *rand.Rand
	// SpriteSize overrides the hit box of free board objects when set.
	SpriteSize int
	// CellSize is the pixel size of a grid or tile cell for CellAt.
	CellSize int
}

// Player is a seat at the table with a hand of drawn cards.
type Player struct {
	Name string        `json:"name"`
	Hand []*model.Card `json:"hand"`
}

type Session struct {
	mu      sync.Mutex
	gd      *gamedata.GameData
	grids   map[*board.Spec]*board.Board
	rules   rules.Chain
	log     *zap.Logger
	rng     *rand.Rand
	cell    int
	players []*Player
	turn    int
}

// Open builds a session over gd. Grid specs are built into live boards;
// free boards and tile grids are used in place.
func Open(gd *gamedata.GameData, opts Options) (*Session, error) {
	s := &Session{
		gd:    gd,
		grids: make(map[*board.Spec]*board.Board),
		rules: opts.Rules,
		log:   opts.Log,
		rng:   opts.Rand,
		cell:  opts.CellSize,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.cell <= 0 {
		s.cell = board.DefaultSpriteSize
	}
	// Grids are keyed by spec since unnamed boards all decode as "Main".
	for _, l := range gd.Boards {
		if fb, ok := l.(*board.FreeBoard); ok && opts.SpriteSize > 0 {
			fb.SpriteSize = opts.SpriteSize
		}
		spec, ok := l.(*board.Spec)
		if !ok {
			continue
		}
		b, err := spec.Build()
		if err != nil {
			return nil, fmt.Errorf("build board %q: %w", spec.Name, err)
		}
		s.grids[spec] = b
	}
	return s, nil
}

// Game returns the underlying game data. Callers must not mutate it while
// the session is in use.
func (s *Session) Game() *gamedata.GameData { return s.gd }

func (s *Session) layout(name string) (board.Layout, error) {
	l := s.gd.Board(name)
	if l == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBoard, name)
	}
	return l, nil
}

// Mode reports the layout of a board.
func (s *Session) Mode(boardName string) (board.Mode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.layout(boardName)
	if err != nil {
		return "", err
	}
	return l.Mode(), nil
}

// Lookup resolves a catalog entry. kind may be model.KindAny.
func (s *Session) Lookup(kind model.Kind, name string) model.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gd.Lookup(kind, name)
}

// Place puts e on a board. Grid boards take cell coordinates, free boards
// take pixels, tile grids take col/row and require a tile. placed is false
// when a section, bound or rule refuses; errors are reserved for unknown
// boards and entities the board cannot hold at all.
func (s *Session) Place(boardName string, x, y int, e model.Entity) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.place(boardName, x, y, e)
}

func (s *Session) place(boardName string, x, y int, e model.Entity) (bool, error) {
	l, err := s.layout(boardName)
	if err != nil {
		return false, err
	}
	if e == nil {
		return false, nil
	}

	switch b := l.(type) {
	case *board.Spec:
		g := s.grids[b]
		if !g.CanAccept(x, y, e) {
			return false, nil
		}
		p := rules.Placement{Board: b.Name, Mode: board.ModeGrid, X: x, Y: y, Entity: e, Stack: g.Stack(x, y)}
		if err := s.rules.Check(p); err != nil {
			s.log.Debug("placement refused", zap.String("board", b.Name), zap.Int("x", x), zap.Int("y", y), zap.Error(err))
			return false, nil
		}
		g.Place(x, y, e)
		s.rules.AfterPlace(p)
		return true, nil

	case *board.FreeBoard:
		p := rules.Placement{Board: b.Name, Mode: board.ModeFree, X: x, Y: y, Entity: e}
		if err := s.rules.Check(p); err != nil {
			s.log.Debug("placement refused", zap.String("board", b.Name), zap.Int("x", x), zap.Int("y", y), zap.Error(err))
			return false, nil
		}
		b.Add(e, x, y)
		s.rules.AfterPlace(p)
		return true, nil

	case *board.TileGrid:
		t, ok := e.(*model.Tile)
		if !ok {
			return false, fmt.Errorf("%w: tile grid %q only holds tiles", ErrWrongLayout, b.Name)
		}
		return b.Place(t, x, y), nil
	}
	return false, fmt.Errorf("%w: %q", ErrWrongLayout, boardName)
}

// RemoveTop takes the topmost entity at a position, or nil.
func (s *Session) RemoveTop(boardName string, x, y int) (model.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.layout(boardName)
	if err != nil {
		return nil, err
	}
	switch b := l.(type) {
	case *board.Spec:
		return s.grids[b].RemoveTop(x, y), nil
	case *board.FreeBoard:
		p := b.Top(x, y)
		if p == nil {
			return nil, nil
		}
		b.Remove(p)
		return p.Entity, nil
	case *board.TileGrid:
		if t := b.Remove(x, y); t != nil {
			return t, nil
		}
		return nil, nil
	}
	return nil, nil
}

// ClearCell empties a position and returns what was there, bottom first.
// On a free board every object covering the pixel is removed.
func (s *Session) ClearCell(boardName string, x, y int) ([]model.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.layout(boardName)
	if err != nil {
		return nil, err
	}
	out := []model.Entity{}
	switch b := l.(type) {
	case *board.Spec:
		return s.grids[b].ClearCell(x, y), nil
	case *board.FreeBoard:
		for _, p := range b.ObjectsAt(x, y) {
			b.Remove(p)
			out = append(out, p.Entity)
		}
	case *board.TileGrid:
		if t := b.Remove(x, y); t != nil {
			out = append(out, t)
		}
	}
	return out, nil
}

// ObjectsAt lists what occupies a position, bottom or first-placed first.
func (s *Session) ObjectsAt(boardName string, x, y int) ([]model.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.layout(boardName)
	if err != nil {
		return nil, err
	}
	out := []model.Entity{}
	switch b := l.(type) {
	case *board.Spec:
		return s.grids[b].Stack(x, y), nil
	case *board.FreeBoard:
		for _, p := range b.ObjectsAt(x, y) {
			out = append(out, p.Entity)
		}
	case *board.TileGrid:
		if t := b.At(x, y); t != nil {
			out = append(out, t)
		}
	}
	return out, nil
}

// CellAt maps a pixel on a grid or tile grid to its cell. ok is false
// outside the board. Free boards have no cells.
func (s *Session) CellAt(boardName string, px, py int) (x, y int, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.layout(boardName)
	if err != nil {
		return 0, 0, false, err
	}
	switch b := l.(type) {
	case *board.Spec:
		x, y = geom.PixelToRect(px, py, s.cell)
		return x, y, s.grids[b].InBounds(x, y), nil
	case *board.TileGrid:
		x, y, ok = b.CellAt(px, py, s.cell)
		return x, y, ok, nil
	}
	return 0, 0, false, fmt.Errorf("%w: free board %q has no cells", ErrWrongLayout, boardName)
}

// Grid returns the live board behind a grid spec.
func (s *Session) Grid(boardName string) (*board.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid(boardName)
}

func (s *Session) grid(boardName string) (*board.Board, error) {
	l, err := s.layout(boardName)
	if err != nil {
		return nil, err
	}
	spec, ok := l.(*board.Spec)
	if !ok {
		return nil, fmt.Errorf("%w: %q is a %s board", ErrWrongLayout, boardName, l.Mode())
	}
	return s.grids[spec], nil
}

// ResizeGrid reallocates a grid board, dropping occupants and sections.
func (s *Session) ResizeGrid(boardName string, width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.grid(boardName)
	if err != nil {
		return err
	}
	return g.Resize(width, height)
}

// AddSection adds a section to a grid or free board. Free board points are
// in cell units.
func (s *Session) AddSection(boardName string, sec board.SectionSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.layout(boardName)
	if err != nil {
		return err
	}
	switch b := l.(type) {
	case *board.Spec:
		s.grids[b].AddSection(sec.Name, sec.Kind, sec.Points, sec.Outline, sec.Fill)
	case *board.FreeBoard:
		b.AddSection(sec.Name, sec.Kind, sec.Points, sec.Outline, sec.Fill)
	default:
		return fmt.Errorf("%w: tile grid %q has no sections", ErrWrongLayout, boardName)
	}
	return nil
}

// Snapshot writes live grid dimensions and sections back into their specs
// and returns the game ready for saving. Grid occupants are not part of a
// save.
func (s *Session) Snapshot() *gamedata.GameData {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot()
	return s.gd
}

// Encode snapshots the session and writes it in the canonical schema while
// holding the session lock.
func (s *Session) Encode() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot()
	return gamedata.Encode(s.gd)
}

func (s *Session) snapshot() {
	for _, l := range s.gd.Boards {
		spec, ok := l.(*board.Spec)
		if !ok {
			continue
		}
		if g, ok := s.grids[spec]; ok {
			*spec = *g.Spec(spec.Name)
		}
	}
}

// ApplyRemote applies a relayed message. Only placements change state;
// anything naming an unknown board or entity is ignored.
func (s *Session) ApplyRemote(msg relay.Message) (bool, error) {
	if msg.Act != relay.ActPlace {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.gd.Board(msg.Board)
	if l == nil {
		return false, nil
	}

	if _, ok := l.(*board.TileGrid); ok {
		t := s.gd.Tile(msg.Name)
		if t == nil {
			return false, nil
		}
		return s.place(msg.Board, msg.Col, msg.Row, t)
	}

	kind := msg.Type
	if kind == "" {
		kind = model.KindAny
	}
	e := s.gd.Lookup(kind, msg.Name)
	if e == nil && kind == model.KindAny {
		if t := s.gd.Tile(msg.Name); t != nil {
			e = t
		}
	}
	if e == nil {
		return false, nil
	}
	if t, ok := e.(*model.Tile); ok {
		e = t.Clone()
	}
	return s.place(msg.Board, msg.X, msg.Y, e)
}

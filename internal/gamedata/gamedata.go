// Package gamedata holds the saved form of a game: entity catalogs plus an
// ordered list of board layouts. It reads every historical save schema and
// writes a single canonical one.
package gamedata

import (
	"github.com/lukelpg/board-game-creator/internal/board"
	"github.com/lukelpg/board-game-creator/internal/model"
)

// Board defaults applied when a document does not say otherwise.
const (
	DefaultBoardName     = "Main"
	DefaultGridSize      = 8
	DefaultFreeWidth     = 800
	DefaultFreeHeight    = 600
	DefaultTileGridName  = "Tiles"
	DefaultFreeBoardName = "Board"
)

// GameData is one game: catalogs in definition order and the boards.
type GameData struct {
	Name   string
	Cards  []*model.Card
	Pieces []*model.Piece
	Tokens []*model.Token
	Tiles  []*model.Tile
	Decks  []*model.Deck
	Boards []board.Layout
}

// New returns an empty game with the default 8×8 board.
func New(name string) *GameData {
	gd := &GameData{Name: name}
	gd.ensureBoard()
	return gd
}

func (gd *GameData) ensureBoard() {
	if len(gd.Boards) == 0 {
		gd.Boards = []board.Layout{&board.Spec{
			Name:   DefaultBoardName,
			Width:  DefaultGridSize,
			Height: DefaultGridSize,
		}}
	}
}

// Card returns the first card named name, or nil.
func (gd *GameData) Card(name string) *model.Card {
	for _, c := range gd.Cards {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (gd *GameData) Piece(name string) *model.Piece {
	for _, p := range gd.Pieces {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (gd *GameData) Token(name string) *model.Token {
	for _, t := range gd.Tokens {
		if t.Name == name {
			return t
		}
	}
	return nil
}

func (gd *GameData) Tile(name string) *model.Tile {
	for _, t := range gd.Tiles {
		if t.Name == name {
			return t
		}
	}
	return nil
}

func (gd *GameData) Deck(name string) *model.Deck {
	for _, d := range gd.Decks {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// Lookup resolves a name in the catalog for kind. With KindAny the cards,
// pieces, tokens and decks are searched in that order. It returns nil when
// nothing matches.
func (gd *GameData) Lookup(kind model.Kind, name string) model.Entity {
	switch kind {
	case model.KindCard:
		if c := gd.Card(name); c != nil {
			return c
		}
	case model.KindPiece:
		if p := gd.Piece(name); p != nil {
			return p
		}
	case model.KindToken:
		if t := gd.Token(name); t != nil {
			return t
		}
	case model.KindDeck:
		if d := gd.Deck(name); d != nil {
			return d
		}
	case model.KindTile:
		if t := gd.Tile(name); t != nil {
			return t
		}
	case model.KindAny:
		for _, k := range []model.Kind{model.KindCard, model.KindPiece, model.KindToken, model.KindDeck} {
			if e := gd.Lookup(k, name); e != nil {
				return e
			}
		}
	}
	return nil
}

// Board returns the first layout named name, or nil.
func (gd *GameData) Board(name string) board.Layout {
	for _, b := range gd.Boards {
		if b.LayoutName() == name {
			return b
		}
	}
	return nil
}

// BoardNames lists the boards in order.
func (gd *GameData) BoardNames() []string {
	out := make([]string, len(gd.Boards))
	for i, b := range gd.Boards {
		out[i] = b.LayoutName()
	}
	return out
}

func (gd *GameData) hasCard(c *model.Card) bool {
	for _, x := range gd.Cards {
		if x == c {
			return true
		}
	}
	return false
}

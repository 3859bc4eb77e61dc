package gamedata

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/lukelpg/board-game-creator/internal/board"
	"github.com/lukelpg/board-game-creator/internal/model"
)

// Canonical save layout. Grid boards always use long keys and polygon
// sections, every board carries its mode.
type gameDoc struct {
	Name   string         `json:"name"`
	Cards  []*model.Card  `json:"cards"`
	Pieces []*model.Piece `json:"pieces"`
	Tokens []*model.Token `json:"tokens"`
	Tiles  []*model.Tile  `json:"tiles"`
	Decks  []deckDoc      `json:"decks"`
	Boards []any          `json:"boards"`
}

type deckDoc struct {
	Name  string `json:"name"`
	Cards []any  `json:"cards"`
}

type gridDoc struct {
	Mode     board.Mode          `json:"mode"`
	Name     string              `json:"name"`
	Width    int                 `json:"width"`
	Height   int                 `json:"height"`
	Sections []board.SectionSpec `json:"sections"`
}

type freeDoc struct {
	Mode     board.Mode          `json:"mode"`
	Name     string              `json:"name"`
	Width    int                 `json:"width"`
	Height   int                 `json:"height"`
	Sections []board.SectionSpec `json:"sections"`
	Placed   []placedDoc         `json:"placed"`
}

type placedDoc struct {
	Type model.Kind `json:"type"`
	Name string     `json:"name"`
	X    int        `json:"x"`
	Y    int        `json:"y"`
}

type tileGridDoc struct {
	Mode   board.Mode      `json:"mode"`
	Name   string          `json:"name"`
	Shape  string          `json:"shape"`
	Cols   int             `json:"cols"`
	Rows   int             `json:"rows"`
	Placed []tilePlacedDoc `json:"placed"`
}

type tilePlacedDoc struct {
	Name string `json:"name"`
	Row  int    `json:"row"`
	Col  int    `json:"col"`
}

// Encode writes gd in the canonical schema as indented JSON.
func Encode(gd *GameData) ([]byte, error) {
	doc := gameDoc{
		Name:   gd.Name,
		Cards:  orEmpty(gd.Cards),
		Pieces: orEmpty(gd.Pieces),
		Tokens: orEmpty(gd.Tokens),
		Tiles:  orEmpty(gd.Tiles),
		Decks:  make([]deckDoc, 0, len(gd.Decks)),
		Boards: make([]any, 0, len(gd.Boards)),
	}

	for _, d := range gd.Decks {
		dd := deckDoc{Name: d.Name, Cards: []any{}}
		for _, c := range d.Original() {
			// A name only resolves back to the same card when it is the
			// first catalog entry under that name.
			if gd.Card(c.Name) == c {
				dd.Cards = append(dd.Cards, c.Name)
			} else {
				dd.Cards = append(dd.Cards, c)
			}
		}
		doc.Decks = append(doc.Decks, dd)
	}

	for _, l := range gd.Boards {
		switch b := l.(type) {
		case *board.Spec:
			doc.Boards = append(doc.Boards, gridDoc{
				Mode:     board.ModeGrid,
				Name:     b.Name,
				Width:    b.Width,
				Height:   b.Height,
				Sections: orEmpty(b.Sections),
			})
		case *board.FreeBoard:
			fd := freeDoc{
				Mode:     board.ModeFree,
				Name:     b.Name,
				Width:    b.Width,
				Height:   b.Height,
				Sections: []board.SectionSpec{},
				Placed:   []placedDoc{},
			}
			for _, s := range b.Sections() {
				fd.Sections = append(fd.Sections, s.Spec())
			}
			for _, p := range b.Objects() {
				fd.Placed = append(fd.Placed, placedDoc{
					Type: p.Entity.Kind(),
					Name: p.Entity.EntityName(),
					X:    p.X,
					Y:    p.Y,
				})
			}
			doc.Boards = append(doc.Boards, fd)
		case *board.TileGrid:
			td := tileGridDoc{
				Mode:   board.ModeTileGrid,
				Name:   b.Name,
				Shape:  b.Shape,
				Cols:   b.Cols,
				Rows:   b.Rows,
				Placed: []tilePlacedDoc{},
			}
			for _, tp := range b.Tiles() {
				td.Placed = append(td.Placed, tilePlacedDoc{Name: tp.Tile.Name, Row: tp.Row, Col: tp.Col})
			}
			doc.Boards = append(doc.Boards, td)
		default:
			return nil, fmt.Errorf("encode board %q: unsupported layout %T", l.LayoutName(), l)
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode game %q: %w", gd.Name, err)
	}
	return buf.Bytes(), nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

package model

import (
	"github.com/google/uuid"

	"github.com/lukelpg/board-game-creator/internal/geom"
)

// Card is a single game card. ImagePath is a filename relative to the
// images directory.
type Card struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ImagePath   *string `json:"image_path"`
	Attack      int     `json:"attack"`
	Defense     int     `json:"defense"`
}

// NewCard creates a card with a fresh id.
func NewCard(name, description string, imagePath *string, attack, defense int) *Card {
	return &Card{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		ImagePath:   imagePath,
		Attack:      attack,
		Defense:     defense,
	}
}

func (c *Card) Kind() Kind         { return KindCard }
func (c *Card) EntityName() string { return c.Name }

// Piece is a miniature or other non-card piece, optionally outlined by a
// custom polygon in the 0-64 editor space.
type Piece struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	ImagePath   *string      `json:"image_path"`
	Points      []geom.Point `json:"points,omitempty"`
}

// NewPiece creates a piece with a fresh id.
func NewPiece(name, description string, imagePath *string, points []geom.Point) *Piece {
	return &Piece{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		ImagePath:   imagePath,
		Points:      points,
	}
}

func (p *Piece) Kind() Kind         { return KindPiece }
func (p *Piece) EntityName() string { return p.Name }

// IsCustom reports whether the piece carries its own outline.
func (p *Piece) IsCustom() bool { return len(p.Points) > 0 }

// Token is a cardboard cut-out, optionally with a custom outline.
type Token struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	ImagePath   *string      `json:"image_path"`
	Points      []geom.Point `json:"points,omitempty"`
}

// NewToken creates a token with a fresh id.
func NewToken(name, description string, imagePath *string, points []geom.Point) *Token {
	return &Token{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		ImagePath:   imagePath,
		Points:      points,
	}
}

func (t *Token) Kind() Kind         { return KindToken }
func (t *Token) EntityName() string { return t.Name }

// IsCustom reports whether the token carries its own outline.
func (t *Token) IsCustom() bool { return len(t.Points) > 0 }

package model

import "strings"

// Kind tags every placeable entity so placement rules can compare kinds
// directly.
type Kind string

const (
	KindCard  Kind = "Card"
	KindPiece Kind = "Piece"
	KindToken Kind = "Token"
	KindDeck  Kind = "Deck"
	KindTile  Kind = "Tile"
	// KindAny is only meaningful on sections: it accepts everything.
	KindAny Kind = "Any"
)

// ParseKind parses a kind case-insensitively ("card", "CARD" and "Card"
// are all KindCard). ok is false for anything unrecognised.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "card":
		return KindCard, true
	case "piece":
		return KindPiece, true
	case "token":
		return KindToken, true
	case "deck":
		return KindDeck, true
	case "tile":
		return KindTile, true
	case "any":
		return KindAny, true
	}
	return "", false
}

// Entity is anything that can be placed on a board.
type Entity interface {
	Kind() Kind
	EntityName() string
}

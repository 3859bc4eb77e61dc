// Package relay fans table events out between connected play sessions over
// websockets. Delivery is best effort: no ordering, acknowledgement or
// conflict resolution.
package relay

import "github.com/lukelpg/board-game-creator/internal/model"

const (
	ActHello = "hello"
	ActPlace = "place"
)

// Message is the single wire envelope. Grid and free placements use X/Y,
// tile grids use Col/Row.
type Message struct {
	Act   string     `json:"act"`
	Board string     `json:"board,omitempty"`
	Type  model.Kind `json:"type,omitempty"`
	Name  string     `json:"name,omitempty"`
	X     int        `json:"x"`
	Y     int        `json:"y"`
	Col   int        `json:"col"`
	Row   int        `json:"row"`
}

func Hello() Message { return Message{Act: ActHello} }

// PlaceAt announces e placed at (x, y) on a grid or free board.
func PlaceAt(board string, e model.Entity, x, y int) Message {
	return Message{Act: ActPlace, Board: board, Type: e.Kind(), Name: e.EntityName(), X: x, Y: y}
}

// PlaceTile announces a tile placed on a tile grid.
func PlaceTile(board, name string, col, row int) Message {
	return Message{Act: ActPlace, Board: board, Type: model.KindTile, Name: name, Col: col, Row: row}
}

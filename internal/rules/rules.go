// Package rules decides whether a placement is allowed beyond what board
// sections already enforce, and runs hooks after a placement lands.
package rules

import (
	"errors"

	"github.com/lukelpg/board-game-creator/internal/board"
	"github.com/lukelpg/board-game-creator/internal/model"
)

var (
	ErrStackTooHigh     = errors.New("stack is at its height limit")
	ErrInvalidStackPair = errors.New("these kinds cannot be stacked together")
	ErrRejectedByScript = errors.New("placement rejected by rule script")
	ErrScript           = errors.New("rule script failed")
)

// Placement describes one attempted placement. Stack holds the entities
// already in the target cell, bottom first; it is empty on free boards.
type Placement struct {
	Board  string
	Mode   board.Mode
	X      int
	Y      int
	Entity model.Entity
	Stack  []model.Entity
}

// Rule is a placement hook. Check returns nil to accept.
type Rule interface {
	Check(p Placement) error
	AfterPlace(p Placement)
}

// Chain runs rules in order. Every rule must accept.
type Chain []Rule

func (c Chain) Check(p Placement) error {
	for _, r := range c {
		if err := r.Check(p); err != nil {
			return err
		}
	}
	return nil
}

func (c Chain) AfterPlace(p Placement) {
	for _, r := range c {
		r.AfterPlace(p)
	}
}

// CanPlace is Check as a boolean.
func (c Chain) CanPlace(p Placement) bool {
	return c.Check(p) == nil
}

package rules

import (
	"github.com/lukelpg/board-game-creator/internal/config"
	"github.com/lukelpg/board-game-creator/internal/model"
)

// StackingRule limits which kinds may share a grid cell and how high a
// cell may stack.
type StackingRule struct {
	cfg config.StackingRules
}

// NewStackingRule creates a stacking rule from config. A zero config
// accepts everything.
func NewStackingRule(cfg config.StackingRules) *StackingRule {
	return &StackingRule{cfg: cfg}
}

func (r *StackingRule) Check(p Placement) error {
	if len(p.Stack) == 0 {
		return nil
	}
	if r.cfg.MaxHeight > 0 && len(p.Stack) >= r.cfg.MaxHeight {
		return ErrStackTooHigh
	}

	incoming := kindName(p.Entity.Kind())
	present := make(map[string]bool)
	for _, e := range p.Stack {
		present[kindName(e.Kind())] = true
	}

	for _, pair := range r.cfg.Disallowed {
		if len(pair) != 2 {
			continue
		}
		for k := range present {
			if matchesPair(pair, k, incoming) {
				return ErrInvalidStackPair
			}
		}
	}

	// If allowed pairs are listed, every kind already present must pair
	// with the incoming kind.
	if len(r.cfg.AllowedPairs) > 0 {
		for k := range present {
			allowed := false
			for _, pair := range r.cfg.AllowedPairs {
				if len(pair) == 2 && matchesPair(pair, k, incoming) {
					allowed = true
					break
				}
			}
			if !allowed {
				return ErrInvalidStackPair
			}
		}
	}
	return nil
}

func (r *StackingRule) AfterPlace(Placement) {}

func kindName(k model.Kind) string {
	if parsed, ok := model.ParseKind(string(k)); ok {
		return string(parsed)
	}
	return string(k)
}

func matchesPair(pair []string, a, b string) bool {
	p0, p1 := kindName(model.Kind(pair[0])), kindName(model.Kind(pair[1]))
	return (a == p0 && b == p1) || (a == p1 && b == p0)
}

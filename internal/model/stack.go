package model

// Stack is the ordered pile of entities in one grid cell.
// Entities are ordered bottom-to-top (index 0 is bottom, last index is top).
type Stack struct {
	items []Entity
}

// Len returns the number of entities in the stack.
func (s *Stack) Len() int {
	return len(s.items)
}

// Push puts e on top of the stack.
func (s *Stack) Push(e Entity) {
	s.items = append(s.items, e)
}

// Top returns the top entity, or nil if empty.
func (s *Stack) Top() Entity {
	if len(s.items) == 0 {
		return nil
	}
	return s.items[len(s.items)-1]
}

// Bottom returns the bottom entity, or nil if empty.
func (s *Stack) Bottom() Entity {
	if len(s.items) == 0 {
		return nil
	}
	return s.items[0]
}

// TakeTop removes and returns the top entity. Returns nil if empty (soft failure).
func (s *Stack) TakeTop() Entity {
	if len(s.items) == 0 {
		return nil
	}
	top := s.items[len(s.items)-1]
	s.items[len(s.items)-1] = nil
	s.items = s.items[:len(s.items)-1]
	return top
}

// TakeAll empties the stack and returns what it held, bottom first.
// Always returns a non-nil slice.
func (s *Stack) TakeAll() []Entity {
	out := s.Snapshot()
	s.items = nil
	return out
}

// Snapshot returns a copy of the stack, bottom first.
func (s *Stack) Snapshot() []Entity {
	out := make([]Entity, len(s.items))
	copy(out, s.items)
	return out
}

// IsStacked returns true if the stack holds more than one entity.
func (s *Stack) IsStacked() bool {
	return len(s.items) > 1
}

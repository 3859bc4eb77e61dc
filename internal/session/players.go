package session

import (
	"fmt"

	"github.com/lukelpg/board-game-creator/internal/model"
)

// view copies p so callers can read the hand after the lock is released.
func (p *Player) view() Player {
	hand := make([]*model.Card, len(p.Hand))
	copy(hand, p.Hand)
	return Player{Name: p.Name, Hand: hand}
}

// AddPlayer seats a new player after the existing ones.
func (s *Session) AddPlayer(name string) Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &Player{Name: name, Hand: []*model.Card{}}
	s.players = append(s.players, p)
	return p.view()
}

// Players returns copies of the seated players in turn order.
func (s *Session) Players() []Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Player, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p.view())
	}
	return out
}

// Current returns the player whose turn it is. ok is false with nobody
// seated.
func (s *Session) Current() (Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.current()
	if p == nil {
		return Player{}, false
	}
	return p.view(), true
}

func (s *Session) current() *Player {
	if len(s.players) == 0 {
		return nil
	}
	return s.players[s.turn]
}

// EndTurn passes play to the next seat, wrapping around.
func (s *Session) EndTurn() (Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.players) == 0 {
		return Player{}, ErrNoPlayers
	}
	s.turn = (s.turn + 1) % len(s.players)
	return s.players[s.turn].view(), nil
}

func (s *Session) deck(name string) (*model.Deck, error) {
	d := s.gd.Deck(name)
	if d == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDeck, name)
	}
	return d, nil
}

// DrawCard draws from a deck into the current player's hand. An empty deck
// yields a nil card and no error.
func (s *Session) DrawCard(deckName string) (*model.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.deck(deckName)
	if err != nil {
		return nil, err
	}
	p := s.current()
	if p == nil {
		return nil, ErrNoPlayers
	}
	c := d.Draw()
	if c != nil {
		p.Hand = append(p.Hand, c)
	}
	return c, nil
}

// Shuffle reorders the deck's remaining pile.
func (s *Session) Shuffle(deckName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.deck(deckName)
	if err != nil {
		return err
	}
	if s.rng != nil {
		d.ShuffleWith(s.rng)
	} else {
		d.Shuffle()
	}
	return nil
}

// ResetDeck restores the deck to its defined order. Cards already in hands
// stay there.
func (s *Session) ResetDeck(deckName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.deck(deckName)
	if err != nil {
		return err
	}
	d.Reset()
	return nil
}

// DeckSize reports how many cards remain in a deck.
func (s *Session) DeckSize(deckName string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.deck(deckName)
	if err != nil {
		return 0, err
	}
	return d.Len(), nil
}

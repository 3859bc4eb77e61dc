package model

import "math/rand/v2"

// Deck is a named draw pile. The original ordering is kept so Reset can
// always restore it, whatever was shuffled or drawn in between.
type Deck struct {
	Name string

	original []*Card
	pile     []*Card
}

// NewDeck creates a deck whose pile starts as a copy of cards.
func NewDeck(name string, cards []*Card) *Deck {
	orig := make([]*Card, len(cards))
	copy(orig, cards)
	d := &Deck{Name: name, original: orig}
	d.Reset()
	return d
}

func (d *Deck) Kind() Kind         { return KindDeck }
func (d *Deck) EntityName() string { return d.Name }

// Original returns a copy of the deck's defining card order.
func (d *Deck) Original() []*Card {
	out := make([]*Card, len(d.original))
	copy(out, d.original)
	return out
}

// Cards returns a copy of the current pile, bottom first. The last card is
// the next one drawn.
func (d *Deck) Cards() []*Card {
	out := make([]*Card, len(d.pile))
	copy(out, d.pile)
	return out
}

// Len is the number of cards left in the pile.
func (d *Deck) Len() int {
	return len(d.pile)
}

// Peek returns the card Draw would return without removing it.
func (d *Deck) Peek() *Card {
	if len(d.pile) == 0 {
		return nil
	}
	return d.pile[len(d.pile)-1]
}

// Draw removes and returns the last card of the pile, or nil when empty.
func (d *Deck) Draw() *Card {
	if len(d.pile) == 0 {
		return nil
	}
	c := d.pile[len(d.pile)-1]
	d.pile = d.pile[:len(d.pile)-1]
	return c
}

// Shuffle randomly permutes the pile in place.
func (d *Deck) Shuffle() {
	rand.Shuffle(len(d.pile), d.swap)
}

// ShuffleWith shuffles using r, for reproducible draws.
func (d *Deck) ShuffleWith(r *rand.Rand) {
	r.Shuffle(len(d.pile), d.swap)
}

func (d *Deck) swap(i, j int) {
	d.pile[i], d.pile[j] = d.pile[j], d.pile[i]
}

// Reset replaces the pile with a fresh copy of the original order.
func (d *Deck) Reset() {
	d.pile = make([]*Card, len(d.original))
	copy(d.pile, d.original)
}

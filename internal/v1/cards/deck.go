package cards

import "math/rand"

// Deck is an ordered sequence of cards drawn from the tail.
//
// Grounded on original_source/server/src/deck.rs's Deck{cards} shape, with
// the composition corrected to the 108-card table in spec §3 (the Rust
// source's own deck only emits 0-9 per color and its self-test asserting
// 108 cards is stale relative to its own construction loop).
type Deck struct {
	cards []*Card
}

// NewDeck builds the full 108-card deck: for each of the four concrete
// colors, one 0, two each of 1..9, two Skip, two Reverse, two DrawTwo;
// plus four Wild and four WildDrawFour. The deck is returned already shuffled.
func NewDeck() *Deck {
	cards := make([]*Card, 0, 108)
	for _, color := range ConcreteColors {
		cards = append(cards, newCard(color, KindNumber, 0))
		for n := 1; n <= 9; n++ {
			cards = append(cards, newCard(color, KindNumber, n))
			cards = append(cards, newCard(color, KindNumber, n))
		}
		for i := 0; i < 2; i++ {
			cards = append(cards, newCard(color, KindSkip, 0))
			cards = append(cards, newCard(color, KindReverse, 0))
			cards = append(cards, newCard(color, KindDrawTwo, 0))
		}
	}
	for i := 0; i < 4; i++ {
		cards = append(cards, newCard(ColorWild, KindWild, 0))
		cards = append(cards, newCard(ColorWild, KindWildDrawFour, 0))
	}
	d := &Deck{cards: cards}
	d.Shuffle()
	return d
}

// emptyDeck constructs a Deck with no cards, used by tests that fill a
// deck only through a reshuffle rather than a fresh 108-card build.
func emptyDeck() *Deck {
	return &Deck{cards: nil}
}

// Shuffle randomizes the deck's order in place.
func (d *Deck) Shuffle() {
	rand.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Len returns the number of cards remaining in the deck.
func (d *Deck) Len() int {
	return len(d.cards)
}

// IsEmpty reports whether the deck has no cards left.
func (d *Deck) IsEmpty() bool {
	return len(d.cards) == 0
}

// Draw removes and returns the tail card, or nil if the deck is empty.
func (d *Deck) Draw() *Card {
	if d.IsEmpty() {
		return nil
	}
	last := len(d.cards) - 1
	c := d.cards[last]
	d.cards = d.cards[:last]
	return c
}

// DrawN returns up to n cards, fewer if the deck empties mid-draw. The
// caller is responsible for reshuffling between draws if it wants a full n.
func (d *Deck) DrawN(n int) []*Card {
	out := make([]*Card, 0, n)
	for i := 0; i < n; i++ {
		c := d.Draw()
		if c == nil {
			break
		}
		out = append(out, c)
	}
	return out
}

// push appends a card directly to the deck without shuffling, used by
// reshuffle-from-discard before the final shuffle pass.
func (d *Deck) push(c *Card) {
	d.cards = append(d.cards, c)
}

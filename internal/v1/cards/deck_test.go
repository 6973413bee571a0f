package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeckComposition(t *testing.T) {
	d := NewDeck()
	require.Equal(t, 108, d.Len())

	counts := map[Color]int{}
	numberCounts := map[Color]map[int]int{}
	var skip, reverse, drawTwo, wild, wildDrawFour int

	for _, c := range d.cards {
		counts[c.Color]++
		switch c.Kind {
		case KindNumber:
			if numberCounts[c.Color] == nil {
				numberCounts[c.Color] = map[int]int{}
			}
			numberCounts[c.Color][c.Number]++
		case KindSkip:
			skip++
		case KindReverse:
			reverse++
		case KindDrawTwo:
			drawTwo++
		case KindWild:
			wild++
		case KindWildDrawFour:
			wildDrawFour++
		}
	}

	for _, color := range ConcreteColors {
		assert.Equal(t, 25, counts[color], "color %s should have 25 cards", color)
		assert.Equal(t, 1, numberCounts[color][0], "color %s should have exactly one 0", color)
		for n := 1; n <= 9; n++ {
			assert.Equal(t, 2, numberCounts[color][n], "color %s value %d should appear twice", color, n)
		}
	}
	assert.Equal(t, 8, skip)
	assert.Equal(t, 8, reverse)
	assert.Equal(t, 8, drawTwo)
	assert.Equal(t, 4, wild)
	assert.Equal(t, 4, wildDrawFour)
}

func TestDeckUniqueCardIDs(t *testing.T) {
	d := NewDeck()
	seen := make(map[uint32]bool, d.Len())
	for _, c := range d.cards {
		require.False(t, seen[c.ID], "duplicate card id %d", c.ID)
		seen[c.ID] = true
	}
}

func TestDeckDrawEmptiesAndSignalsNil(t *testing.T) {
	d := NewDeck()
	total := d.Len()
	for i := 0; i < total; i++ {
		require.NotNil(t, d.Draw())
	}
	assert.True(t, d.IsEmpty())
	assert.Nil(t, d.Draw())
}

func TestDeckDrawNStopsWhenEmpty(t *testing.T) {
	d := &Deck{cards: []*Card{newCard(ColorRed, KindNumber, 5), newCard(ColorBlue, KindNumber, 3)}}
	drawn := d.DrawN(5)
	assert.Len(t, drawn, 2)
	assert.True(t, d.IsEmpty())
}

func TestReshuffleConservation(t *testing.T) {
	d := NewDeck()
	pile := NewDiscardPile()

	// Move half the deck onto the discard pile as if played.
	for i := 0; i < 54; i++ {
		pile.Push(d.Draw())
	}
	before := d.Len() + pile.Len()
	require.Equal(t, 108, before)

	pile.ReshuffleInto(d)
	after := d.Len() + pile.Len()
	assert.Equal(t, before, after)
	assert.Equal(t, 1, pile.Len())
}

func TestReshuffleResetsWildColor(t *testing.T) {
	d := emptyDeck()
	pile := NewDiscardPile()

	top := newCard(ColorRed, KindNumber, 3)
	playedWild := newCard(ColorWild, KindWild, 0)
	playedWild.Color = ColorBlue // chosen color while on discard

	pile.Push(playedWild)
	pile.Push(top)

	pile.ReshuffleInto(d)

	require.Equal(t, 1, d.Len())
	assert.Equal(t, ColorWild, d.cards[0].Color)
	assert.Equal(t, top, pile.Top())
}

func TestReshuffleNoOpWithOneOrFewerCards(t *testing.T) {
	d := emptyDeck()
	pile := NewDiscardPile()
	pile.Push(newCard(ColorRed, KindNumber, 1))

	pile.ReshuffleInto(d)

	assert.Equal(t, 0, d.Len())
	assert.Equal(t, 1, pile.Len())
}

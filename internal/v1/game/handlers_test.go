package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shedserver/shedserver/internal/v1/cards"
)

// fakeSendClient builds a *Client backed by no real connection, usable
// anywhere the engine only needs to enqueue outbound frames.
func fakeSendClient(id ClientIdType) *Client {
	return &Client{
		ID:          id,
		DisplayName: DisplayNameType(id),
		send:        make(chan []byte, sendQueueCapacity),
	}
}

// newTestRoom returns a room with no bus wiring, ready for direct state
// manipulation in tests.
func newTestRoom() *Room {
	return NewRoom(1, nil)
}

func seat(r *Room, ids ...ClientIdType) []*Client {
	clients := make([]*Client, 0, len(ids))
	for _, id := range ids {
		c := fakeSendClient(id)
		r.pool.Register(c)
		clients = append(clients, c)
	}
	return clients
}

func number(color cards.Color, n int) *cards.Card {
	return &cards.Card{ID: nextTestID(), Color: color, Kind: cards.KindNumber, Number: n}
}

func action(color cards.Color, kind cards.Kind) *cards.Card {
	return &cards.Card{ID: nextTestID(), Color: color, Kind: kind}
}

func wild(kind cards.Kind) *cards.Card {
	return &cards.Card{ID: nextTestID(), Color: cards.ColorWild, Kind: kind}
}

var testIDCounter uint32 = 1_000_000

func nextTestID() uint32 {
	testIDCounter++
	return testIDCounter
}

// S1 — basic color-match play.
func TestS1BasicColorMatchPlay(t *testing.T) {
	r := newTestRoom()
	clients := seat(r, "p1", "p2")
	p1 := clients[0]
	r.roundInProgress = true
	r.playerToPlay = "p1"
	r.discard.Push(number(cards.ColorRed, 5))

	red7 := number(cards.ColorRed, 7)
	green3 := number(cards.ColorGreen, 3)
	p1.Hand = []*cards.Card{red7, green3}

	err := r.PlayCard("p1", []uint32{red7.ID}, "")
	require.Nil(t, err)

	assert.Equal(t, []*cards.Card{green3}, p1.Hand)
	assert.Equal(t, red7, r.discard.Top())
	assert.Equal(t, ClientIdType("p2"), r.playerToPlay)
}

// S2 — Skip with three players.
func TestS2Skip(t *testing.T) {
	r := newTestRoom()
	clients := seat(r, "p1", "p2", "p3")
	p1 := clients[0]
	r.roundInProgress = true
	r.playerToPlay = "p1"
	r.discard.Push(number(cards.ColorBlue, 2))

	skip := action(cards.ColorBlue, cards.KindSkip)
	filler := number(cards.ColorRed, 1)
	p1.Hand = []*cards.Card{skip, filler}

	err := r.PlayCard("p1", []uint32{skip.ID}, "")
	require.Nil(t, err)

	assert.Equal(t, ClientIdType("p3"), r.playerToPlay)
	assert.Equal(t, skip, r.discard.Top())
	assert.Equal(t, []*cards.Card{filler}, p1.Hand)
}

// S3 — Reverse acts as Skip in a 2-player game.
func TestS3ReverseTwoPlayer(t *testing.T) {
	r := newTestRoom()
	clients := seat(r, "p1", "p2")
	p1 := clients[0]
	r.roundInProgress = true
	r.playerToPlay = "p1"
	r.direction = 1
	r.discard.Push(number(cards.ColorYellow, 4))

	reverse := action(cards.ColorYellow, cards.KindReverse)
	filler := number(cards.ColorGreen, 2)
	p1.Hand = []*cards.Card{reverse, filler}

	err := r.PlayCard("p1", []uint32{reverse.ID}, "")
	require.Nil(t, err)

	assert.Equal(t, -1, r.direction)
	assert.Equal(t, ClientIdType("p1"), r.playerToPlay)
}

// S4 — stacked DrawTwo.
func TestS4StackedDrawTwo(t *testing.T) {
	r := newTestRoom()
	clients := seat(r, "p1", "p2")
	p1, p2 := clients[0], clients[1]
	r.roundInProgress = true
	r.playerToPlay = "p1"
	r.discard.Push(number(cards.ColorRed, 6))

	d1 := action(cards.ColorRed, cards.KindDrawTwo)
	d2 := action(cards.ColorRed, cards.KindDrawTwo)
	filler := number(cards.ColorGreen, 3)
	p1.Hand = []*cards.Card{d1, d2, filler}
	p2.Hand = nil

	err := r.PlayCard("p1", []uint32{d1.ID, d2.ID}, "")
	require.Nil(t, err)

	assert.Len(t, p2.Hand, 4)
	assert.Equal(t, ClientIdType("p2"), r.playerToPlay)
}

// S5 — Wild with chosen color.
func TestS5WildChosenColor(t *testing.T) {
	r := newTestRoom()
	clients := seat(r, "p1", "p2")
	p1 := clients[0]
	r.roundInProgress = true
	r.playerToPlay = "p1"
	r.discard.Push(number(cards.ColorGreen, 9))

	w := wild(cards.KindWild)
	filler := number(cards.ColorYellow, 6)
	p1.Hand = []*cards.Card{w, filler}

	err := r.PlayCard("p1", []uint32{w.ID}, cards.ColorBlue)
	require.Nil(t, err)

	top := r.discard.Top()
	assert.Equal(t, cards.KindWild, top.Kind)
	assert.Equal(t, cards.ColorBlue, top.Color)
}

// S6 — deck exhaustion triggers reshuffle-from-discard on draw.
func TestS6DeckExhaustionReshuffle(t *testing.T) {
	r := newTestRoom()
	clients := seat(r, "p1", "p2")
	p1 := clients[0]
	r.roundInProgress = true
	r.playerToPlay = "p1"

	r.deck = emptyTestDeck()
	yellow5 := number(cards.ColorYellow, 5)
	blueSkip := action(cards.ColorBlue, cards.KindSkip)
	playedWild := wild(cards.KindWild)
	playedWild.Color = cards.ColorGreen
	red3 := number(cards.ColorRed, 3)

	r.discard.Push(yellow5)
	r.discard.Push(blueSkip)
	r.discard.Push(playedWild)
	r.discard.Push(red3) // top

	p1.Hand = nil

	err := r.DrawCard("p1")
	require.Nil(t, err)

	assert.Equal(t, red3, r.discard.Top())
	assert.Equal(t, 1, r.discard.Len())
	require.Len(t, p1.Hand, 1)
	assert.Equal(t, 2, r.deck.Len())

	// every Wild/WildDrawFour reshuffled back into the deck (or drawn into
	// the hand) must have had its color reset to the colorless sentinel.
	remaining := append([]*cards.Card{}, p1.Hand...)
	for !r.deck.IsEmpty() {
		remaining = append(remaining, r.deck.Draw())
	}
	for _, c := range remaining {
		if c.Kind == cards.KindWild {
			assert.Equal(t, cards.ColorWild, c.Color)
		}
	}
}

func emptyTestDeck() *cards.Deck {
	d := cards.NewDeck()
	for !d.IsEmpty() {
		d.Draw()
	}
	return d
}

// Property 3: a rejected play leaves deck, discard, and hand untouched.
func TestRejectedPlayIsAtomic(t *testing.T) {
	r := newTestRoom()
	clients := seat(r, "p1", "p2")
	p1 := clients[0]
	r.roundInProgress = true
	r.playerToPlay = "p1"
	top := number(cards.ColorRed, 5)
	r.discard.Push(top)

	mismatched := number(cards.ColorBlue, 9)
	p1.Hand = []*cards.Card{mismatched}

	err := r.PlayCard("p1", []uint32{mismatched.ID}, "")
	require.NotNil(t, err)
	assert.Equal(t, ErrInvalidPlay, err.Kind)
	assert.Equal(t, []*cards.Card{mismatched}, p1.Hand)
	assert.Equal(t, top, r.discard.Top())
	assert.Equal(t, ClientIdType("p1"), r.playerToPlay)
}

func TestNotYourTurnRejected(t *testing.T) {
	r := newTestRoom()
	clients := seat(r, "p1", "p2")
	p2 := clients[1]
	r.roundInProgress = true
	r.playerToPlay = "p1"
	r.discard.Push(number(cards.ColorRed, 5))

	c := number(cards.ColorRed, 1)
	p2.Hand = []*cards.Card{c}

	err := r.PlayCard("p2", []uint32{c.ID}, "")
	require.NotNil(t, err)
	assert.Equal(t, ErrNotYourTurn, err.Kind)
}

func TestCardNotInHandRejected(t *testing.T) {
	r := newTestRoom()
	seat(r, "p1", "p2")
	r.roundInProgress = true
	r.playerToPlay = "p1"
	r.discard.Push(number(cards.ColorRed, 5))

	err := r.PlayCard("p1", []uint32{999}, "")
	require.NotNil(t, err)
	assert.Equal(t, ErrCardNotInHand, err.Kind)
}

// Property 4: two reverses in succession restore direction and next player.
func TestDirectionSymmetry(t *testing.T) {
	r := newTestRoom()
	clients := seat(r, "p1", "p2", "p3")
	p1 := clients[0]
	r.roundInProgress = true
	r.playerToPlay = "p1"
	r.direction = 1
	r.discard.Push(number(cards.ColorRed, 1))

	rev1 := action(cards.ColorRed, cards.KindReverse)
	p1Filler := number(cards.ColorBlue, 8)
	p1.Hand = []*cards.Card{rev1, p1Filler}
	err := r.PlayCard("p1", []uint32{rev1.ID}, "")
	require.Nil(t, err)
	assert.Equal(t, -1, r.direction)
	firstNext := r.playerToPlay

	next := r.pool.Lookup(firstNext)
	rev2 := action(cards.ColorRed, cards.KindReverse)
	nextFiller := number(cards.ColorBlue, 2)
	next.Hand = []*cards.Card{rev2, nextFiller}
	err = r.PlayCard(firstNext, []uint32{rev2.ID}, "")
	require.Nil(t, err)

	assert.Equal(t, 1, r.direction)
	assert.Equal(t, ClientIdType("p1"), r.playerToPlay)
}

// Property 5: a spectator never appears in the eligible turn sequence.
func TestSpectatorExcludedFromTurnCycle(t *testing.T) {
	r := newTestRoom()
	clients := seat(r, "p1", "p2", "p3")
	clients[1].SetSpectator(true)

	eligible := r.pool.EligibleSeating()
	require.Len(t, eligible, 2)
	assert.Equal(t, ClientIdType("p1"), eligible[0].ID)
	assert.Equal(t, ClientIdType("p3"), eligible[1].ID)
}

func TestSpectatorLeaveDoesNotChangePlayerToPlay(t *testing.T) {
	r := newTestRoom()
	clients := seat(r, "p1", "p2", "p3")
	clients[1].SetSpectator(true)
	r.roundInProgress = true
	r.playerToPlay = "p1"

	r.Leave("p2")

	assert.Equal(t, ClientIdType("p1"), r.playerToPlay)
}

// Property 6: once winner_found has fired, no further card_played until
// next round starts — modeled here as round-in-progress flipping off.
func TestWinnerEndsRoundImmediately(t *testing.T) {
	r := newTestRoom()
	clients := seat(r, "p1", "p2")
	p1 := clients[0]
	r.roundInProgress = true
	r.playerToPlay = "p1"
	r.discard.Push(number(cards.ColorRed, 5))

	last := number(cards.ColorRed, 8)
	p1.Hand = []*cards.Card{last}

	err := r.PlayCard("p1", []uint32{last.ID}, "")
	require.Nil(t, err)

	assert.False(t, r.RoundInProgress())
	assert.Empty(t, p1.Hand)
}

func TestEndRoundScores(t *testing.T) {
	r := newTestRoom()
	clients := seat(r, "p1", "p2", "p3")
	clients[0].Hand = nil
	clients[1].Hand = []*cards.Card{number(cards.ColorRed, 7), action(cards.ColorBlue, cards.KindSkip)}
	clients[2].Hand = []*cards.Card{wild(cards.KindWildDrawFour)}

	scores := r.EndRoundScores("p1")
	assert.NotContains(t, scores, ClientIdType("p1"))
	assert.Equal(t, 27, scores["p2"])
	assert.Equal(t, 50, scores["p3"])
}

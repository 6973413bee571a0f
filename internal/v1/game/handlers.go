package game

import (
	"github.com/shedserver/shedserver/internal/v1/cards"
)

// PlayCard implements spec §4.3.4–§4.3.6: validates a play, and on
// success removes the cards from the hand, applies their effects in play
// order, appends them to the discard, checks for a winner, and otherwise
// advances the turn. On any validation failure the play is rejected
// atomically — no hand mutation, no discard change, no turn advancement.
//
// cardIDs is the ordered set of stable card ids the client declares from
// its hand; chosenColor is required (and only meaningful) when the first
// card played is a Wild or WildDrawFour.
func (r *Room) PlayCard(playerID ClientIdType, cardIDs []uint32, chosenColor cards.Color) *GameError {
	r.mu.Lock()
	defer r.mu.Unlock()

	player := r.pool.Lookup(playerID)
	if player == nil {
		return newError(ErrPlayerNotFound, "player not seated in this room")
	}
	if !r.roundInProgress {
		return newError(ErrNotYourTurn, "no round in progress")
	}
	if playerID != r.playerToPlay {
		return newError(ErrNotYourTurn, "not your turn")
	}
	if len(cardIDs) == 0 {
		return newError(ErrInvalidPlay, "play must include at least one card")
	}

	hand := player.HandSnapshot()
	played := make([]*cards.Card, 0, len(cardIDs))
	for _, id := range cardIDs {
		found := findCardByID(hand, id)
		if found == nil {
			return newError(ErrCardNotInHand, "card not in hand")
		}
		played = append(played, found)
	}

	if err := r.validatePlayLocked(played); err != nil {
		return err
	}

	// --- success: mutate ---
	r.removeCardsFromHandLocked(player, cardIDs)

	for _, c := range played {
		if c.IsWild() {
			c.Color = chosenColor
		}
	}
	r.applyEffectsLocked(playerID, played)

	for _, c := range played {
		r.discard.Push(c)
	}

	player.mu.Lock()
	playerHandCopy := make([]*cards.Card, len(player.Hand))
	copy(playerHandCopy, player.Hand)
	player.mu.Unlock()

	r.sendPrivateHandLocked(player)
	r.broadcastCardPlayedLocked(playerID, played)

	if len(playerHandCopy) == 0 && !player.IsSpectator() {
		r.broadcastWinnerLocked(playerID)
		r.endRoundLocked()
		r.broadcastGameStateLocked()
		return nil
	}

	r.advanceTurnLocked()
	r.broadcastUpdatePlayersLocked()
	r.broadcastGameStateLocked()
	r.sendYourTurnLocked()
	return nil
}

// validatePlayLocked checks §4.3.4's legality rules against the current
// discard top. Caller holds r.mu.
func (r *Room) validatePlayLocked(played []*cards.Card) *GameError {
	top := r.discard.Top()
	first := played[0]

	legal := first.IsWild() || first.Color == top.Color || sameFace(first, top)
	if !legal {
		return newError(ErrInvalidPlay, "first card does not match top of discard")
	}

	for _, c := range played[1:] {
		if !sameFace(c, first) {
			return newError(ErrInvalidPlay, "all cards in a multi-play must share the first card's value")
		}
	}
	return nil
}

// sameFace reports whether two cards share the same rank: same Kind, and
// for number cards, same Number.
func sameFace(a, b *cards.Card) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind == cards.KindNumber {
		return a.Number == b.Number
	}
	return true
}

func findCardByID(hand []*cards.Card, id uint32) *cards.Card {
	for _, c := range hand {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// removeCardsFromHandLocked deletes the named card ids from the player's
// hand in place. Caller holds r.mu.
func (r *Room) removeCardsFromHandLocked(player *Client, ids []uint32) {
	remove := make(map[uint32]bool, len(ids))
	for _, id := range ids {
		remove[id] = true
	}
	player.mu.Lock()
	defer player.mu.Unlock()
	kept := player.Hand[:0:0]
	for _, c := range player.Hand {
		if !remove[c.ID] {
			kept = append(kept, c)
		}
	}
	player.Hand = kept
}

// applyEffectsLocked applies each played card's effect in play order per
// spec §4.3.5. Caller holds r.mu; playerID is still player-to-play at
// entry (it is only reassigned here by a Skip/Reverse-as-skip effect).
func (r *Room) applyEffectsLocked(playerID ClientIdType, played []*cards.Card) {
	accumulatedDraw := 0

	for _, c := range played {
		switch c.Kind {
		case cards.KindDrawTwo:
			accumulatedDraw += 2
		case cards.KindWildDrawFour:
			accumulatedDraw += 4
		case cards.KindSkip:
			r.playerToPlay = r.nextEligibleAfterLocked(playerID)
		case cards.KindReverse:
			r.direction = -r.direction
			// Official shedding-game rule: with exactly two eligible
			// players, Reverse acts like Skip, since flipping direction
			// alone is unobservable in a 2-cycle.
			if len(r.pool.EligibleSeating()) == 2 {
				r.playerToPlay = r.nextEligibleAfterLocked(playerID)
			}
		}
	}

	if accumulatedDraw > 0 {
		target := r.nextEligibleAfterLocked(playerID)
		if c := r.pool.Lookup(target); c != nil {
			r.drawCardsIntoHandLocked(c, accumulatedDraw)
			r.sendPrivateHandLocked(c)
		}
	}
}

// drawCardsIntoHandLocked draws up to n cards into c's hand, reshuffling
// the discard into the deck as needed, per spec §4.3.6. Caller holds r.mu.
func (r *Room) drawCardsIntoHandLocked(c *Client, n int) {
	drawn := make([]*cards.Card, 0, n)
	for len(drawn) < n {
		if r.deck.IsEmpty() {
			r.discard.ReshuffleInto(r.deck)
			if r.deck.IsEmpty() {
				break // deck and discard both exhausted
			}
		}
		card := r.deck.Draw()
		if card == nil {
			break
		}
		drawn = append(drawn, card)
	}
	if len(drawn) == 0 {
		return
	}
	c.mu.Lock()
	c.Hand = append(c.Hand, drawn...)
	c.mu.Unlock()
}

// DrawCard implements spec §4.3.6: valid only on the caller's own turn.
// Reshuffles from discard if the deck is empty; fails with DeckEmpty if
// both are exhausted. On success the card is appended to the hand and the
// turn advances.
func (r *Room) DrawCard(playerID ClientIdType) *GameError {
	r.mu.Lock()
	defer r.mu.Unlock()

	player := r.pool.Lookup(playerID)
	if player == nil {
		return newError(ErrPlayerNotFound, "player not seated in this room")
	}
	if !r.roundInProgress || playerID != r.playerToPlay {
		return newError(ErrNotYourTurn, "not your turn")
	}

	if r.deck.IsEmpty() {
		r.discard.ReshuffleInto(r.deck)
	}
	if r.deck.IsEmpty() {
		return newError(ErrDeckEmpty, "deck and discard both exhausted")
	}

	card := r.deck.Draw()
	player.mu.Lock()
	player.Hand = append(player.Hand, card)
	player.mu.Unlock()

	r.sendPrivateHandLocked(player)
	r.advanceTurnLocked()
	r.broadcastGameStateLocked()
	r.sendYourTurnLocked()
	return nil
}

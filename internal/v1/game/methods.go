package game

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shedserver/shedserver/internal/v1/cards"
)

// checkAndStartRoundLocked starts a round when preconditions are met:
// at least 2 non-spectators seated and no round already in progress.
// Caller holds r.mu.
func (r *Room) checkAndStartRoundLocked() bool {
	if r.roundInProgress {
		return false
	}
	if len(r.pool.EligibleSeating()) < 2 {
		return false
	}
	r.startRoundLocked()
	return true
}

// startRoundLocked implements spec §4.3.3 in order: fresh shuffled deck,
// direction reset to +1, seed the discard with an unambiguous starter
// card, deal 7 to every non-spectator, select the first eligible seat as
// player-to-play, then broadcast state/hands/turn.
func (r *Room) startRoundLocked() {
	r.deck = cards.NewDeck()
	r.discard = cards.NewDiscardPile()
	r.direction = 1

	r.seedDiscardLocked()

	for _, c := range r.pool.EligibleSeating() {
		dealt := r.deck.DrawN(7)
		c.mu.Lock()
		c.Hand = dealt
		c.mu.Unlock()
	}

	eligible := r.pool.EligibleSeating()
	if len(eligible) > 0 {
		r.playerToPlay = eligible[0].ID
	}
	r.roundInProgress = true

	r.broadcastGameStateLocked()
	for _, c := range r.pool.EligibleSeating() {
		r.sendPrivateHandLocked(c)
	}
	r.sendYourTurnLocked()

	slog.Info("round started", "roomId", r.ID, "players", len(eligible))
}

// seedDiscardLocked draws the initial discard card, re-drawing while it is
// Wild, WildDrawFour, Skip, Reverse, or DrawTwo, guaranteeing the first
// legal move is unambiguous. Rejected cards are held under the starter and
// reshuffled back into the deck once a plain card lands. Caller holds r.mu
// and r.discard is freshly empty.
func (r *Room) seedDiscardLocked() {
	for {
		c := r.deck.Draw()
		if c == nil {
			// Deck somehow exhausted while seeding: rebuild and retry.
			r.deck = cards.NewDeck()
			r.discard = cards.NewDiscardPile()
			continue
		}
		r.discard.Push(c)
		switch c.Kind {
		case cards.KindWild, cards.KindWildDrawFour, cards.KindSkip, cards.KindReverse, cards.KindDrawTwo:
			continue
		default:
			r.discard.ReshuffleInto(r.deck)
			return
		}
	}
}

// endRoundLocked clears every hand and re-initializes deck/discard in
// place, transitioning RoundEnded -> WaitingForPlayers per spec §4.3.7.
func (r *Room) endRoundLocked() {
	for _, c := range r.pool.Seating() {
		c.mu.Lock()
		c.Hand = nil
		c.mu.Unlock()
	}
	r.deck = cards.NewDeck()
	r.discard = cards.NewDiscardPile()
	r.roundInProgress = false
}

// EndRoundScores returns the end-of-round point total for every
// non-winner's remaining hand, per spec §6's scoring table. Supplements
// the distillation with a queryable operation grounded on
// game_state.rs's calculate_points.
func (r *Room) EndRoundScores(winner ClientIdType) map[ClientIdType]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	scores := make(map[ClientIdType]int)
	for _, c := range r.pool.Seating() {
		if c.ID == winner {
			continue
		}
		total := 0
		for _, card := range c.HandSnapshot() {
			total += card.Points()
		}
		scores[c.ID] = total
	}
	return scores
}

// --- broadcast helpers: marshal once, send to every relevant recipient,
// matching session.Room.broadcast's "marshal once, iterate pool" shape.

func (r *Room) broadcastUpdatePlayersLocked() {
	snapshots := make([]CardSnapshot, 0, r.pool.Len())
	for _, c := range r.pool.Seating() {
		snapshots = append(snapshots, CardSnapshot{ID: c.ID, Name: c.DisplayName, CardCount: c.CardCount()})
	}
	frame := MustEnvelope(EventUpdatePlayers, snapshots)
	r.pool.Broadcast(frame)
	r.publishLocked(context.Background(), EventUpdatePlayers, frame, "")
}

func (r *Room) sendPrivateHandLocked(c *Client) {
	roomID := r.ID
	payload := PrivateHandUpdate{
		ID:          c.ID,
		Name:        c.DisplayName,
		Hand:        c.HandSnapshot(),
		CurrentGame: &roomID,
		IsSpectator: c.IsSpectator(),
	}
	frame := MustEnvelope(EventUpdatePlayer, payload)
	r.pool.Send(c.ID, frame)
}

func (r *Room) broadcastGameStateLocked() {
	var top json.RawMessage
	if t := r.discard.Top(); t != nil {
		top, _ = json.Marshal(t)
	}
	payload := GameStatePayload{
		RoomID:          r.ID,
		Direction:       r.direction,
		PlayerToPlay:    r.playerToPlay,
		TopOfDiscard:    top,
		DeckSize:        r.deck.Len(),
		PlayerCount:     r.pool.Len(),
		RoundInProgress: r.roundInProgress,
	}
	frame := MustEnvelope(EventUpdateGameState, payload)
	r.pool.Broadcast(frame)
	r.publishLocked(context.Background(), EventUpdateGameState, frame, "")
}

func (r *Room) sendYourTurnLocked() {
	frame := MustEnvelope(EventYourTurn, struct {
		PlayerID ClientIdType `json:"player_id"`
	}{r.playerToPlay})
	r.pool.Send(r.playerToPlay, frame)
}

func (r *Room) broadcastCardPlayedLocked(playerID ClientIdType, played []*cards.Card) {
	cardsJSON, _ := json.Marshal(played)
	frame := MustEnvelope(EventCardPlayed, CardPlayedPayload{PlayerID: playerID, Cards: cardsJSON})
	r.pool.Broadcast(frame)
	r.publishLocked(context.Background(), EventCardPlayed, frame, playerID)
}

func (r *Room) broadcastWinnerLocked(winner ClientIdType) {
	scores := make(map[ClientIdType]int)
	for _, c := range r.pool.Seating() {
		if c.ID == winner {
			continue
		}
		total := 0
		for _, card := range c.HandSnapshot() {
			total += card.Points()
		}
		scores[c.ID] = total
	}
	frame := MustEnvelope(EventWinnerFound, WinnerFoundPayload{WinnerID: winner, Scores: scores})
	r.pool.Broadcast(frame)
	r.publishLocked(context.Background(), EventWinnerFound, frame, winner)
}

func (r *Room) sendErrorTo(id ClientIdType, err *GameError) {
	r.pool.Send(id, MustEnvelope(EventError, err.Payload()))
}

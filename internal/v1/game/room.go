package game

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/shedserver/shedserver/internal/v1/cards"
)

// MaxSeats is the room capacity from spec §3: at most 6 seated participants.
const MaxSeats = 6

// Room is the per-room authoritative game engine (C4): it owns the deck,
// discard pile, turn order, direction of play, and the connection pool.
// Guarded by its own RWMutex, held for the duration of each engine call —
// never across a blocking send.
//
// Grounded on session.Room's struct shape (participant maps + mutex) and
// original_source/server/src/game_state.rs's GameState for the turn/round
// algorithms.
type Room struct {
	ID RoomIdType

	mu sync.RWMutex

	pool *Pool

	deck    *cards.Deck
	discard *cards.DiscardPile

	direction       int // +1 or -1
	playerToPlay    ClientIdType
	roundInProgress bool

	bus BusService
}

// NewRoom constructs an empty room with a fresh pool. bus may be nil, in
// which case the room runs in single-instance mode with no cross-process
// fan-out.
func NewRoom(id RoomIdType, bus BusService) *Room {
	r := &Room{
		ID:        id,
		pool:      NewPool(),
		deck:      cards.NewDeck(),
		discard:   cards.NewDiscardPile(),
		direction: 1,
		bus:       bus,
	}
	if bus != nil {
		bus.Subscribe(context.Background(), strconv.Itoa(int(id)), r.handleBusMessage)
	}
	return r
}

// PlayerCount returns the number of seated participants (spectators included).
func (r *Room) PlayerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pool.Len()
}

// RoundInProgress reports whether a round is currently underway.
func (r *Room) RoundInProgress() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.roundInProgress
}

// Join seats a participant per spec §4.3.2: rejected when the pool is full
// or the id already present; admitted as a spectator if a round is in
// progress, otherwise as an active player; the first joiner in an empty
// room becomes the initial player-to-play.
func (r *Room) Join(c *Client) *GameError {
	r.mu.Lock()

	if r.pool.Len() >= MaxSeats {
		r.mu.Unlock()
		return newError(ErrGameFull, "room is full")
	}
	if r.pool.Lookup(c.ID) != nil {
		r.mu.Unlock()
		return newError(ErrAlreadyInGame, "already seated in this room")
	}

	wasEmpty := r.pool.Len() == 0
	c.SetSpectator(r.roundInProgress)
	r.pool.Register(c)

	if wasEmpty && !c.IsSpectator() {
		r.playerToPlay = c.ID
	}

	r.broadcastUpdatePlayersLocked()
	started := r.checkAndStartRoundLocked()
	r.mu.Unlock()

	slog.Info("participant joined room", "roomId", r.ID, "clientId", c.ID, "spectator", c.IsSpectator(), "roundStarted", started)
	return nil
}

// Leave removes a participant from the pool per spec §4.3.2: if the leaver
// was player-to-play, the engine advances to the next eligible player
// first; if fewer than 2 non-spectators remain, the room transitions to
// waiting. The room itself is only destroyed by the lobby when the pool
// becomes empty.
func (r *Room) Leave(id ClientIdType) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wasCurrent := r.roundInProgress && r.playerToPlay == id
	if wasCurrent {
		r.advanceTurnLocked()
	}

	r.pool.Deregister(id)

	if r.roundInProgress && len(r.pool.EligibleSeating()) < 2 {
		r.roundInProgress = false
		slog.Info("room dropped below 2 eligible players, returning to waiting", "roomId", r.ID)
	}

	r.broadcastUpdatePlayersLocked()
	r.broadcastGameStateLocked()
}

// advanceTurnLocked locates the current player's index in the filtered
// eligible list, steps by direction, wraps modulo the filtered length, and
// sets player-to-play to the new index's participant. Caller holds r.mu.
func (r *Room) advanceTurnLocked() {
	eligible := r.pool.EligibleSeating()
	if len(eligible) == 0 {
		return
	}
	idx := -1
	for i, c := range eligible {
		if c.ID == r.playerToPlay {
			idx = i
			break
		}
	}
	if idx == -1 {
		r.playerToPlay = eligible[0].ID
		return
	}
	next := (idx + r.direction) % len(eligible)
	if next < 0 {
		next += len(eligible)
	}
	r.playerToPlay = eligible[next].ID
}

// nextEligibleAfterLocked returns the id of the eligible player who would
// be next after the given id under the current direction, without
// mutating player-to-play. Used by action-card effects that target "the
// next eligible player" distinct from the post-play turn advance.
func (r *Room) nextEligibleAfterLocked(id ClientIdType) ClientIdType {
	eligible := r.pool.EligibleSeating()
	if len(eligible) == 0 {
		return ""
	}
	idx := -1
	for i, c := range eligible {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return eligible[0].ID
	}
	next := (idx + r.direction) % len(eligible)
	if next < 0 {
		next += len(eligible)
	}
	return eligible[next].ID
}

func (r *Room) handleBusMessage(event string, payload []byte, senderID string) {
	// Cross-process room-state fan-out: re-broadcast locally, excluding
	// the original sender's pod to prevent echo. Grounded on
	// session.Room.handleRedisMessage's standard-broadcast branch,
	// simplified since the game domain has no role-filtered routing.
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.pool.Seating() {
		if string(c.ID) == senderID {
			continue
		}
		c.Send(payload)
	}
}

func (r *Room) publishLocked(ctx context.Context, event Event, payload []byte, senderID ClientIdType) {
	if r.bus == nil {
		return
	}
	go func() {
		if err := r.bus.Publish(ctx, strconv.Itoa(int(r.ID)), string(event), payload, string(senderID), nil); err != nil {
			slog.Error("failed to publish room event to bus", "roomId", r.ID, "event", event, "error", err)
		}
	}()
}

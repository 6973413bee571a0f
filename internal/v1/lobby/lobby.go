// Package lobby implements the room registry (C5): room creation, join,
// leave, listing, and lobby-wide broadcasts to clients not yet bound to
// any room. Participants in a room receive room-scoped updates from that
// room's engine; participants in the lobby receive lobby updates — the
// two streams never mix.
package lobby

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shedserver/shedserver/internal/v1/game"
)

// Lobby owns the room table and the set of client ids not yet bound to
// any room. Guarded by a single exclusive lock; all mutating calls
// acquire it for the duration of the call only. No engine operation is
// performed while holding this lock.
//
// Grounded on session.Hub's room-table shape, generalized from a
// JWT-gated meeting directory to an open room registry.
type Lobby struct {
	mu         sync.Mutex
	rooms      map[game.RoomIdType]*game.Room
	nextRoomID game.RoomIdType
	unseated   map[game.ClientIdType]*game.Client
	busFactory func(roomID game.RoomIdType) game.BusService
}

// New returns an empty lobby. busFactory, if non-nil, is called once per
// created room to obtain its optional cross-process bus wiring.
func New(busFactory func(roomID game.RoomIdType) game.BusService) *Lobby {
	return &Lobby{
		rooms:      make(map[game.RoomIdType]*game.Room),
		nextRoomID: 1,
		unseated:   make(map[game.ClientIdType]*game.Client),
		busFactory: busFactory,
	}
}

// RegisterClient adds a freshly connected client to the unseated set —
// it is now a lobby subscriber until it joins a room.
func (l *Lobby) RegisterClient(c *game.Client) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.unseated[c.ID] = c
}

// DeregisterClient removes a client from the lobby (on disconnect) and
// from its current room, if any.
func (l *Lobby) DeregisterClient(c *game.Client) {
	l.mu.Lock()
	room, id := l.roomForLocked(c)
	delete(l.unseated, c.ID)
	l.mu.Unlock()

	if room != nil {
		room.Leave(c.ID)
		l.pruneIfEmpty(id)
	}
}

func (l *Lobby) roomForLocked(c *game.Client) (*game.Room, game.RoomIdType) {
	roomID := c.Room()
	if roomID == nil {
		return nil, 0
	}
	return l.rooms[*roomID], *roomID
}

// CreateRoom allocates the next id, constructs an empty engine with a
// fresh pool, and broadcasts an updated room list to all lobby subscribers.
func (l *Lobby) CreateRoom() *game.Room {
	l.mu.Lock()
	id := l.nextRoomID
	l.nextRoomID++

	var bus game.BusService
	if l.busFactory != nil {
		bus = l.busFactory(id)
	}
	room := game.NewRoom(id, bus)
	l.rooms[id] = room
	l.mu.Unlock()

	slog.Info("room created", "roomId", id)
	l.BroadcastRoomList()
	return room
}

// JoinRoom looks up the room, delegates to the engine's join, and on
// success records the participant's current room and broadcasts the
// updated room list.
func (l *Lobby) JoinRoom(roomID game.RoomIdType, c *game.Client) *game.GameError {
	l.mu.Lock()
	room, ok := l.rooms[roomID]
	if ok {
		delete(l.unseated, c.ID)
	}
	l.mu.Unlock()

	if !ok {
		return newNotFound()
	}

	if err := room.Join(c); err != nil {
		l.mu.Lock()
		l.unseated[c.ID] = c
		l.mu.Unlock()
		return err
	}

	id := roomID
	c.SetRoom(&id)
	l.BroadcastRoomList()
	return nil
}

// LeaveRoom removes the participant from their current room; if the room
// becomes empty it is removed from the table.
func (l *Lobby) LeaveRoom(c *game.Client) {
	roomID := c.Room()
	if roomID == nil {
		return
	}
	l.mu.Lock()
	room, ok := l.rooms[*roomID]
	l.mu.Unlock()
	if !ok {
		return
	}

	room.Leave(c.ID)
	c.SetRoom(nil)

	l.mu.Lock()
	l.unseated[c.ID] = c
	l.mu.Unlock()

	l.pruneIfEmpty(*roomID)
	l.BroadcastRoomList()
}

func (l *Lobby) pruneIfEmpty(id game.RoomIdType) {
	l.mu.Lock()
	defer l.mu.Unlock()
	room, ok := l.rooms[id]
	if ok && room.PlayerCount() == 0 {
		delete(l.rooms, id)
		slog.Info("room destroyed: pool empty", "roomId", id)
	}
}

// ListRooms returns [{id, player_count, round_in_progress}, ...].
func (l *Lobby) ListRooms() []game.RoomListingEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries := make([]game.RoomListingEntry, 0, len(l.rooms))
	for id, room := range l.rooms {
		entries = append(entries, game.RoomListingEntry{
			ID:              id,
			PlayerCount:     room.PlayerCount(),
			RoundInProgress: room.RoundInProgress(),
		})
	}
	return entries
}

// BroadcastRoomList sends the current room list to every participant
// whose current room is none (the unseated set).
func (l *Lobby) BroadcastRoomList() {
	listing := l.ListRooms()
	frame := game.MustEnvelope(game.EventUpdateLobbyGamesList, listing)

	l.mu.Lock()
	targets := make([]*game.Client, 0, len(l.unseated))
	for _, c := range l.unseated {
		targets = append(targets, c)
	}
	l.mu.Unlock()

	for _, c := range targets {
		c.Send(frame)
	}
}

// RoomByID returns the room for id, or nil if not present.
func (l *Lobby) RoomByID(id game.RoomIdType) *game.Room {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rooms[id]
}

// Shutdown removes every room from the room table, used from main on
// SIGINT/SIGTERM. It does not notify or disconnect the rooms' participants.
func (l *Lobby) Shutdown(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id := range l.rooms {
		delete(l.rooms, id)
	}
	slog.Info("lobby shut down, all rooms drained")
}

func newNotFound() *game.GameError {
	return &game.GameError{Kind: game.ErrGameNotFound, Message: "game not found"}
}

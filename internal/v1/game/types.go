// Package game implements the per-room authoritative game engine: the
// participant record and connection pool (C2/C3), the turn state machine
// and play/draw validation (C4), and the outbound event envelopes the
// engine emits.
package game

import (
	"context"

	"github.com/shedserver/shedserver/internal/v1/cards"
)

// ClientIdType is the opaque, process-unique identifier assigned to a
// participant on connect.
type ClientIdType string

// RoomIdType is the monotonically increasing room identifier minted by the lobby.
type RoomIdType int

// DisplayNameType is the participant's human-readable name.
type DisplayNameType string

// Event is an outbound envelope event name, exactly the set in spec §6.
type Event string

const (
	EventPlayer               Event = "player"
	EventUpdateLobbyGamesList Event = "update_lobby_games_list"
	EventUpdatePlayers        Event = "update_players"
	EventUpdatePlayer         Event = "update_player"
	EventUpdateGameState      Event = "update_game_state"
	EventYourTurn             Event = "your_turn"
	EventCardPlayed           Event = "card_played"
	EventWinnerFound          Event = "winner_found"
	EventYouJoinedGame        Event = "you_joined_game"
	EventError                Event = "error"
)

// Action is an inbound command action name, exactly the set in spec §6.
type Action string

const (
	ActionFetchGames Action = "fetch_games"
	ActionCreateGame Action = "create_game"
	ActionJoinGame   Action = "join_game"
	ActionPlayCard   Action = "play_card"
	ActionDrawCard   Action = "draw_card"
)

// BusService is the subset of internal/v1/bus.Service the game engine needs
// for optional cross-process room-state fan-out. Mirrors the teacher's
// session.BusService seam so Room can be tested against a mock. The
// callback shape is kept primitive (event/payload/sender) rather than a
// bus-package struct, so this package does not need to import bus.
type BusService interface {
	Publish(ctx context.Context, roomID string, event string, payload any, senderID string, roles []string) error
	Subscribe(ctx context.Context, roomID string, handler func(event string, payload []byte, senderID string))
}

// Sender is the non-blocking outbound enqueue that *Client provides via
// Client.Send.
type Sender interface {
	Send(data []byte) bool
}

// CardSnapshot is the public participant view: id, name, card count — the
// "Participant snapshot (public)" shape from spec §6.
type CardSnapshot struct {
	ID        ClientIdType    `json:"id"`
	Name      DisplayNameType `json:"name"`
	CardCount int             `json:"card_count"`
}

// PrivateHandUpdate is the private per-participant view including the full
// hand, from spec §6.
type PrivateHandUpdate struct {
	ID          ClientIdType    `json:"id"`
	Name        DisplayNameType `json:"name"`
	Hand        []*cards.Card   `json:"hand"`
	CurrentGame *RoomIdType     `json:"current_game"`
	IsSpectator bool            `json:"is_spectator"`
}

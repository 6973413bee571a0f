// Package protocol is the client protocol adapter (C6): it decodes inbound
// client commands, dispatches them to the lobby or a specific room's
// engine, and wires the websocket transport to each client's read/write
// pumps. Grounded on session.Hub.ServeWs and session.Room.router,
// generalized from role-gated video-conference signaling to the card
// game's five inbound actions.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/shedserver/shedserver/internal/v1/cards"
	"github.com/shedserver/shedserver/internal/v1/game"
)

// inboundCommand is the wire shape from spec §6:
// {"action": <string>, "game_id"?: <integer>, "card"?: <card-object-or-list>, "chosen_color"?: <string>}.
type inboundCommand struct {
	Action      string          `json:"action"`
	GameID      *int            `json:"game_id,omitempty"`
	Card        json.RawMessage `json:"card,omitempty"`
	ChosenColor string          `json:"chosen_color,omitempty"`
}

// cardIDsFromRaw accepts either a single card object or a list of card
// objects and returns the ids in order — "play_card" allows a same-rank
// multi-card play per spec §4.3.4.
func cardIDsFromRaw(raw json.RawMessage) ([]uint32, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var list []cards.Card
	if err := json.Unmarshal(raw, &list); err == nil {
		ids := make([]uint32, len(list))
		for i, c := range list {
			ids[i] = c.ID
		}
		return ids, nil
	}

	var single cards.Card
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("protocol: invalid card payload: %w", err)
	}
	return []uint32{single.ID}, nil
}

func colorFromName(name string) cards.Color {
	switch name {
	case "Red":
		return cards.ColorRed
	case "Yellow":
		return cards.ColorYellow
	case "Green":
		return cards.ColorGreen
	case "Blue":
		return cards.ColorBlue
	default:
		return cards.ColorWild
	}
}

func gameIDFromCommand(cmd inboundCommand) (game.RoomIdType, bool) {
	if cmd.GameID == nil {
		return 0, false
	}
	return game.RoomIdType(*cmd.GameID), true
}

package game

import "encoding/json"

// envelope is the outbound wire shape from spec §6:
// {"sv": <event-name>, "data": <json-string>}. data is itself a
// JSON-encoded payload string, not a nested object.
type envelope struct {
	Sv   Event  `json:"sv"`
	Data string `json:"data"`
}

// Envelope marshals payload and wraps it in the outbound envelope shape.
func Envelope(event Event, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Sv: event, Data: string(data)})
}

// MustEnvelope panics on marshal failure. Only used for payload types that
// cannot fail to marshal (no channels, funcs, or cyclic pointers).
func MustEnvelope(event Event, payload any) []byte {
	data, err := Envelope(event, payload)
	if err != nil {
		panic(err)
	}
	return data
}

// ErrorPayload is the body of an "error" event — short textual reason,
// never a transport close, per spec §7.
type ErrorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// RoomListingEntry is one row of `list_rooms()` / `update_lobby_games_list`.
type RoomListingEntry struct {
	ID              RoomIdType `json:"id"`
	PlayerCount     int        `json:"player_count"`
	RoundInProgress bool       `json:"round_in_progress"`
}

// PlayerPayload is sent once on connect: the participant's own identity.
type PlayerPayload struct {
	ID   ClientIdType    `json:"id"`
	Name DisplayNameType `json:"name"`
}

// YouJoinedGamePayload confirms a successful join_game.
type YouJoinedGamePayload struct {
	GameID      RoomIdType `json:"game_id"`
	IsSpectator bool       `json:"is_spectator"`
}

// GameStatePayload is the public per-room snapshot: room id, direction,
// player-to-play, top of discard, deck size, player count, round flag.
type GameStatePayload struct {
	RoomID          RoomIdType      `json:"room_id"`
	Direction       int             `json:"direction"`
	PlayerToPlay    ClientIdType    `json:"player_to_play"`
	TopOfDiscard    json.RawMessage `json:"top_of_discard"`
	DeckSize        int             `json:"deck_size"`
	PlayerCount     int             `json:"player_count"`
	RoundInProgress bool            `json:"round_in_progress"`
}

// CardPlayedPayload announces a successful play.
type CardPlayedPayload struct {
	PlayerID ClientIdType    `json:"player_id"`
	Cards    json.RawMessage `json:"cards"`
}

// WinnerFoundPayload announces a round's winner plus end-of-round scores.
type WinnerFoundPayload struct {
	WinnerID ClientIdType         `json:"winner_id"`
	Scores   map[ClientIdType]int `json:"scores"`
}

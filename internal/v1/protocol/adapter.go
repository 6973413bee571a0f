package protocol

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/shedserver/shedserver/internal/v1/game"
	"github.com/shedserver/shedserver/internal/v1/lobby"
	"github.com/shedserver/shedserver/internal/v1/metrics"
	"github.com/shedserver/shedserver/internal/v1/ratelimit"
)

// Adapter owns the single websocket endpoint new clients connect to and
// dispatches their decoded commands to the lobby. Grounded on
// session.Hub, stripped of JWT/Auth0 authentication — spec Non-goals
// exclude authentication entirely, so a client's only identity is the
// uuid minted on connect.
type Adapter struct {
	Lobby          *lobby.Lobby
	AllowedOrigins []string
	RateLimiter    *ratelimit.RateLimiter
}

// New constructs an Adapter bound to lobby l. limiter may be nil, in
// which case inbound actions are never throttled.
func New(l *lobby.Lobby, allowedOrigins []string, limiter *ratelimit.RateLimiter) *Adapter {
	return &Adapter{Lobby: l, AllowedOrigins: allowedOrigins, RateLimiter: limiter}
}

func (a *Adapter) validateOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true // non-browser clients (tests, CLIs) are allowed through
	}
	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	for _, allowed := range a.AllowedOrigins {
		allowedURL, err := url.Parse(allowed)
		if err != nil {
			continue
		}
		if originURL.Scheme == allowedURL.Scheme && originURL.Host == allowedURL.Host {
			return true
		}
	}
	return false
}

// ServeWs upgrades the connection, mints a client identity, registers it
// with the lobby, sends the initial "player" identity frame, and starts
// the read/write pumps. Grounded on session.Hub.ServeWs, minus the
// token-extraction and room-id path parameter (room selection here
// happens entirely via inbound commands, not the URL).
func (a *Adapter) ServeWs(c *gin.Context) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return a.validateOrigin(r)
		},
		WriteBufferPool: &sync.Pool{
			New: func() any { return make([]byte, 4096) },
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("failed to upgrade connection", "error", err)
		return
	}

	clientID := game.ClientIdType(uuid.NewString())
	displayName := c.Query("name")
	if displayName == "" {
		displayName = string(clientID)
	}

	client := game.NewClient(clientID, game.DisplayNameType(displayName), conn)
	a.Lobby.RegisterClient(client)
	metrics.IncConnection()

	client.Send(game.MustEnvelope(game.EventPlayer, game.PlayerPayload{
		ID:   client.ID,
		Name: client.DisplayName,
	}))

	slog.Info("client connected", "clientId", client.ID)

	go client.WritePump()
	client.ReadPump(func(raw []byte) {
		a.dispatch(client, raw)
	})

	metrics.DecConnection()
	a.Lobby.DeregisterClient(client)
	slog.Info("client disconnected", "clientId", client.ID)
}

// dispatch decodes one inbound frame and routes it by action name, per
// spec §6's action table. Grounded on session.Room.router's
// switch-on-event-name shape, simplified since the game domain has no
// role-gated permission matrix.
func (a *Adapter) dispatch(client *game.Client, raw []byte) {
	start := time.Now()
	var cmd inboundCommand
	if err := json.Unmarshal(raw, &cmd); err != nil {
		slog.Warn("failed to decode inbound command", "clientId", client.ID, "error", err)
		metrics.WebsocketEvents.WithLabelValues("unknown", "error").Inc()
		return
	}

	defer func() {
		metrics.MessageProcessingDuration.WithLabelValues(cmd.Action).Observe(time.Since(start).Seconds())
	}()

	if a.RateLimiter != nil && !a.RateLimiter.CheckAction(context.Background(), string(client.ID)) {
		a.sendActionError(client, "rate limit exceeded")
		metrics.WebsocketEvents.WithLabelValues(cmd.Action, "rate_limited").Inc()
		return
	}

	switch cmd.Action {
	case string(game.ActionFetchGames):
		a.Lobby.BroadcastRoomList()

	case string(game.ActionCreateGame):
		room := a.Lobby.CreateRoom()
		a.joinRoom(client, room.ID)

	case string(game.ActionJoinGame):
		roomID, ok := gameIDFromCommand(cmd)
		if !ok {
			a.sendActionError(client, "join_game requires game_id")
			break
		}
		a.joinRoom(client, roomID)

	case string(game.ActionPlayCard):
		a.handlePlayCard(client, cmd)

	case string(game.ActionDrawCard):
		a.handleDrawCard(client, cmd)

	default:
		slog.Warn("unknown inbound action", "clientId", client.ID, "action", cmd.Action)
		metrics.WebsocketEvents.WithLabelValues(cmd.Action, "error").Inc()
		return
	}

	metrics.WebsocketEvents.WithLabelValues(cmd.Action, "success").Inc()
}

func (a *Adapter) joinRoom(client *game.Client, roomID game.RoomIdType) {
	gameErr := a.Lobby.JoinRoom(roomID, client)
	if gameErr != nil {
		client.Send(game.MustEnvelope(game.EventError, gameErr.Payload()))
		return
	}
	client.Send(game.MustEnvelope(game.EventYouJoinedGame, game.YouJoinedGamePayload{
		GameID:      roomID,
		IsSpectator: client.IsSpectator(),
	}))
}

func (a *Adapter) handlePlayCard(client *game.Client, cmd inboundCommand) {
	roomID, ok := gameIDFromCommand(cmd)
	if !ok {
		a.sendActionError(client, "play_card requires game_id")
		return
	}
	room := a.Lobby.RoomByID(roomID)
	if room == nil {
		a.sendActionError(client, "game not found")
		return
	}

	cardIDs, err := cardIDsFromRaw(cmd.Card)
	if err != nil {
		a.sendActionError(client, err.Error())
		return
	}

	chosenColor := colorFromName(cmd.ChosenColor)
	if gameErr := room.PlayCard(client.ID, cardIDs, chosenColor); gameErr != nil {
		client.Send(game.MustEnvelope(game.EventError, gameErr.Payload()))
	}
}

func (a *Adapter) handleDrawCard(client *game.Client, cmd inboundCommand) {
	roomID, ok := gameIDFromCommand(cmd)
	if !ok {
		a.sendActionError(client, "draw_card requires game_id")
		return
	}
	room := a.Lobby.RoomByID(roomID)
	if room == nil {
		a.sendActionError(client, "game not found")
		return
	}
	if gameErr := room.DrawCard(client.ID); gameErr != nil {
		client.Send(game.MustEnvelope(game.EventError, gameErr.Payload()))
	}
}

func (a *Adapter) sendActionError(client *game.Client, message string) {
	client.Send(game.MustEnvelope(game.EventError, game.ErrorPayload{
		Kind:    string(game.ErrInvalidPlay),
		Message: message,
	}))
}

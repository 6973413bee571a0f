package game

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shedserver/shedserver/internal/v1/cards"
)

// sendQueueCapacity is the bounded per-client outbound queue size from
// spec §5: "bounded (capacity ~32)".
const sendQueueCapacity = 32

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// wsConnection is the narrow slice of *websocket.Conn the client needs,
// grounded on session.wsConnection — kept identical in shape so a fake can
// substitute for it in tests without a live socket.
type wsConnection interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Client is a single connected participant: identity, hand, spectator
// status, and the outbound channel drained by WritePump. Grounded on
// session.Client, generalized from a video-conference peer to a seated
// card-game participant.
type Client struct {
	ID          ClientIdType
	DisplayName DisplayNameType

	conn wsConnection
	send chan []byte

	mu          sync.RWMutex
	Hand        []*cards.Card
	Spectator   bool
	CurrentRoom *RoomIdType
}

// NewClient constructs a client bound to a live connection.
func NewClient(id ClientIdType, name DisplayNameType, conn wsConnection) *Client {
	return &Client{
		ID:          id,
		DisplayName: name,
		conn:        conn,
		send:        make(chan []byte, sendQueueCapacity),
	}
}

// Send enqueues an outbound frame without blocking. If the client's queue
// is full the frame is dropped and a warning logged — per spec §5, a stuck
// client must never block engine progress.
func (c *Client) Send(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		slog.Warn("client send queue full, dropping message", "clientId", c.ID)
		return false
	}
}

// SetRoom records (or clears, with nil) the room this participant is
// currently seated in. A participant is in at most one room at a time.
func (c *Client) SetRoom(id *RoomIdType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CurrentRoom = id
}

// Room returns the participant's current room id, or nil if in the lobby.
func (c *Client) Room() *RoomIdType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.CurrentRoom
}

// IsSpectator reports whether the participant is excluded from the turn cycle.
func (c *Client) IsSpectator() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Spectator
}

// SetSpectator flips the participant's spectator flag.
func (c *Client) SetSpectator(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Spectator = v
}

// HandSnapshot returns a copy of the participant's current hand slice
// (shares card pointers; callers must not mutate card fields in place).
func (c *Client) HandSnapshot() []*cards.Card {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*cards.Card, len(c.Hand))
	copy(out, c.Hand)
	return out
}

// CardCount returns the number of cards in the participant's hand.
func (c *Client) CardCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.Hand)
}

// ReadPump pumps inbound frames from the transport to dispatch, blocking
// until the connection closes. Grounded on session.Client.readPump's
// deadline/pong-handler plumbing, reading JSON text frames instead of
// binary protobuf.
func (c *Client) ReadPump(dispatch func(raw []byte)) {
	defer c.conn.Close()
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("unexpected websocket close", "clientId", c.ID, "error", err)
			}
			return
		}
		dispatch(raw)
	}
}

// WritePump drains the outbound queue to the transport and sends periodic
// pings, exactly the teacher's writePump shape.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

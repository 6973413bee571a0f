package game

import (
	"context"

	"github.com/shedserver/shedserver/internal/v1/bus"
)

// BusAdapter wraps a *bus.Service to satisfy the BusService seam this
// package depends on, translating between bus.PubSubPayload and the
// primitive (event, payload, sender) shape Room expects. Kept as a thin
// adapter rather than importing bus types into this package's public
// surface, so room_test.go can substitute a mock without pulling in Redis.
type BusAdapter struct {
	Service *bus.Service
}

func (a *BusAdapter) Publish(ctx context.Context, roomID string, event string, payload any, senderID string, roles []string) error {
	return a.Service.Publish(ctx, roomID, event, payload, senderID, roles)
}

func (a *BusAdapter) Subscribe(ctx context.Context, roomID string, handler func(event string, payload []byte, senderID string)) {
	a.Service.Subscribe(ctx, roomID, nil, func(p bus.PubSubPayload) {
		handler(p.Event, p.Payload, p.SenderID)
	})
}

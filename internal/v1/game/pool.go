package game

import (
	"container/list"
)

// Pool is the set of (participant, outbound channel) pairs for one room,
// with targeted send and broadcast. Iteration order is insertion order,
// which determines seating order for the turn cycle.
//
// Grounded on session.Room's hosts/participants maps plus container/list
// ordering queues, generalized from role-partitioned UI ordering to a
// single seating-order pool (the game has no host/participant role split).
type Pool struct {
	order   *list.List
	entries map[ClientIdType]*list.Element
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{
		order:   list.New(),
		entries: make(map[ClientIdType]*list.Element),
	}
}

// Register adds a participant to the pool at the end of seating order.
// Returns false if the id is already present.
func (p *Pool) Register(c *Client) bool {
	if _, exists := p.entries[c.ID]; exists {
		return false
	}
	el := p.order.PushBack(c)
	p.entries[c.ID] = el
	return true
}

// Deregister removes a participant by id. Returns false if not present.
func (p *Pool) Deregister(id ClientIdType) bool {
	el, exists := p.entries[id]
	if !exists {
		return false
	}
	p.order.Remove(el)
	delete(p.entries, id)
	return true
}

// Lookup returns the participant by id, or nil if not present.
func (p *Pool) Lookup(id ClientIdType) *Client {
	el, exists := p.entries[id]
	if !exists {
		return nil
	}
	return el.Value.(*Client)
}

// Len returns the number of seated participants.
func (p *Pool) Len() int {
	return p.order.Len()
}

// Seating returns every participant in insertion (seating) order.
func (p *Pool) Seating() []*Client {
	out := make([]*Client, 0, p.order.Len())
	for el := p.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*Client))
	}
	return out
}

// EligibleSeating returns every non-spectator participant in seating
// order — the filtered sequence the turn cycle advances over.
func (p *Pool) EligibleSeating() []*Client {
	all := p.Seating()
	out := make([]*Client, 0, len(all))
	for _, c := range all {
		if !c.IsSpectator() {
			out = append(out, c)
		}
	}
	return out
}

// Send delivers a frame to one participant by id. Best-effort: a failed or
// dropped send is the client's own concern (logged in Client.Send) and
// never aborts the calling engine operation.
func (p *Pool) Send(id ClientIdType, data []byte) {
	if c := p.Lookup(id); c != nil {
		c.Send(data)
	}
}

// Broadcast delivers a frame to every seated participant.
func (p *Pool) Broadcast(data []byte) {
	for el := p.order.Front(); el != nil; el = el.Next() {
		el.Value.(*Client).Send(data)
	}
}

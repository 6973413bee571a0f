package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinFirstPlayerBecomesPlayerToPlay(t *testing.T) {
	r := NewRoom(1, nil)
	c1 := fakeSendClient("p1")

	err := r.Join(c1)
	require.Nil(t, err)
	assert.Equal(t, ClientIdType("p1"), r.playerToPlay)
	assert.False(t, c1.IsSpectator())
	assert.False(t, r.RoundInProgress()) // needs 2 non-spectators
}

func TestJoinStartsRoundAtTwoPlayers(t *testing.T) {
	r := NewRoom(1, nil)
	c1 := fakeSendClient("p1")
	c2 := fakeSendClient("p2")

	require.Nil(t, r.Join(c1))
	require.Nil(t, r.Join(c2))

	assert.True(t, r.RoundInProgress())
	assert.Len(t, c1.HandSnapshot(), 7)
	assert.Len(t, c2.HandSnapshot(), 7)
	assert.NotNil(t, r.discard.Top())
}

func TestJoinAdmitsSpectatorDuringRound(t *testing.T) {
	r := NewRoom(1, nil)
	require.Nil(t, r.Join(fakeSendClient("p1")))
	require.Nil(t, r.Join(fakeSendClient("p2")))
	require.True(t, r.RoundInProgress())

	late := fakeSendClient("p3")
	require.Nil(t, r.Join(late))
	assert.True(t, late.IsSpectator())
	assert.Empty(t, late.HandSnapshot())
}

func TestJoinRejectsAlreadyInGame(t *testing.T) {
	r := NewRoom(1, nil)
	c1 := fakeSendClient("p1")
	require.Nil(t, r.Join(c1))

	err := r.Join(fakeSendClient("p1"))
	require.NotNil(t, err)
	assert.Equal(t, ErrAlreadyInGame, err.Kind)
}

func TestJoinRejectsFullRoom(t *testing.T) {
	r := NewRoom(1, nil)
	for i := 0; i < MaxSeats; i++ {
		require.Nil(t, r.Join(fakeSendClient(ClientIdType(fmt.Sprintf("seat-%d", i)))))
	}
	err := r.Join(fakeSendClient("overflow"))
	require.NotNil(t, err)
	assert.Equal(t, ErrGameFull, err.Kind)
}

func TestLeaveAdvancesTurnWhenCurrentPlayerLeaves(t *testing.T) {
	// Three already-eligible players, seated directly (bypassing Join's
	// auto-start-on-second-joiner so all three remain non-spectators).
	r := NewRoom(1, nil)
	seat(r, "p1", "p2", "p3")
	r.roundInProgress = true
	r.playerToPlay = "p1"

	r.Leave("p1")

	assert.Equal(t, ClientIdType("p2"), r.playerToPlay)
	assert.Equal(t, 2, r.PlayerCount())
	assert.True(t, r.RoundInProgress())
}

func TestLeaveBelowTwoEligibleReturnsToWaiting(t *testing.T) {
	r := NewRoom(1, nil)
	require.Nil(t, r.Join(fakeSendClient("p1")))
	require.Nil(t, r.Join(fakeSendClient("p2")))
	require.True(t, r.RoundInProgress())

	r.Leave("p2")

	assert.False(t, r.RoundInProgress())
	assert.Equal(t, 1, r.PlayerCount())
}

func TestAdvanceTurnWrapsModuloFilteredLength(t *testing.T) {
	r := NewRoom(1, nil)
	p1, p2, p3 := fakeSendClient("p1"), fakeSendClient("p2"), fakeSendClient("p3")
	r.pool.Register(p1)
	r.pool.Register(p2)
	r.pool.Register(p3)
	r.direction = 1
	r.playerToPlay = "p3"

	r.advanceTurnLocked()
	assert.Equal(t, ClientIdType("p1"), r.playerToPlay)
}

func TestPoolSeatingOrderIsInsertionOrder(t *testing.T) {
	p := NewPool()
	p.Register(fakeSendClient("a"))
	p.Register(fakeSendClient("b"))
	p.Register(fakeSendClient("c"))

	seating := p.Seating()
	require.Len(t, seating, 3)
	assert.Equal(t, ClientIdType("a"), seating[0].ID)
	assert.Equal(t, ClientIdType("b"), seating[1].ID)
	assert.Equal(t, ClientIdType("c"), seating[2].ID)
}

func TestPoolDeregisterRemovesEntry(t *testing.T) {
	p := NewPool()
	p.Register(fakeSendClient("a"))
	require.NotNil(t, p.Lookup("a"))

	assert.True(t, p.Deregister("a"))
	assert.Nil(t, p.Lookup("a"))
	assert.False(t, p.Deregister("a"))
}

func TestClientSendDropsWhenQueueFull(t *testing.T) {
	c := fakeSendClient("p1")
	for i := 0; i < sendQueueCapacity; i++ {
		require.True(t, c.Send([]byte("x")))
	}
	assert.False(t, c.Send([]byte("overflow")))
}

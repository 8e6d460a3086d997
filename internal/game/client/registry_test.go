package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cooliokid956/sm64js-mmo-server/internal/game/auth"
	"github.com/Cooliokid956/sm64js-mmo-server/internal/game/message"
)

// fakeOutbound records deliveries and kicks.
type fakeOutbound struct {
	delivered [][]byte
	kicked    bool
}

func (f *fakeOutbound) Deliver(data []byte) error {
	f.delivered = append(f.delivered, data)
	return nil
}

func (f *fakeOutbound) Kick() { f.kicked = true }

func newTestClient(id uint32, accountID int32) (*Client, *fakeOutbound) {
	out := &fakeOutbound{}
	return New(id, out, auth.AccountInfo{ID: accountID}, "10.0.0.1", ""), out
}

func TestClient_LevelUnsetUntilJoin(t *testing.T) {
	c, _ := newTestClient(1, 100)

	_, ok := c.Level()
	assert.False(t, ok)

	c.SetLevel(5)
	level, ok := c.Level()
	require.True(t, ok)
	assert.Equal(t, uint32(5), level)
}

func TestClient_PosRequiresData(t *testing.T) {
	c, _ := newTestClient(1, 100)

	_, ok := c.Pos()
	assert.False(t, ok)

	c.SetData(&message.PlayerData{Pos: [3]float32{1, 2, 3}})
	pos, ok := c.Pos()
	require.True(t, ok)
	assert.Equal(t, [3]float32{1, 2, 3}, pos)
}

func TestRegistry_InsertRejectsDuplicate(t *testing.T) {
	r := NewRegistry()
	a, _ := newTestClient(1, 100)
	b, _ := newTestClient(1, 200)

	assert.True(t, r.Insert(a))
	assert.False(t, r.Insert(b))

	got, ok := r.Get(1)
	require.True(t, ok)
	assert.Equal(t, int32(100), got.AccountID())
}

func TestRegistry_RemoveIdempotent(t *testing.T) {
	r := NewRegistry()
	a, _ := newTestClient(1, 100)
	require.True(t, r.Insert(a))

	r.Remove(1)
	r.Remove(1)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_FindByAccountID(t *testing.T) {
	r := NewRegistry()
	a, _ := newTestClient(1, 100)
	b, _ := newTestClient(2, 200)
	require.True(t, r.Insert(a))
	require.True(t, r.Insert(b))

	got, ok := r.FindByAccountID(200)
	require.True(t, ok)
	assert.Equal(t, uint32(2), got.SocketID())

	_, ok = r.FindByAccountID(300)
	assert.False(t, ok)
}

func TestRegistry_DeliverDropsUnknown(t *testing.T) {
	r := NewRegistry()
	a, out := newTestClient(1, 100)
	require.True(t, r.Insert(a))

	r.Deliver(1, []byte("x"))
	r.Deliver(99, []byte("y"))

	require.Len(t, out.delivered, 1)
	assert.Equal(t, []byte("x"), out.delivered[0])
}

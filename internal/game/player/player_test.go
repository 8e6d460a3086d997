package player

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayer_Accessors(t *testing.T) {
	p := New(42, 5, "Mario")
	assert.Equal(t, uint32(42), p.SocketID())
	assert.Equal(t, uint32(5), p.Level())
	assert.Equal(t, "Mario", p.Name())
	assert.Nil(t, p.SkinData())
}

func TestPlayer_SetSkinData(t *testing.T) {
	p := New(1, 5, "Mario")
	p.SetSkinData([]byte{1, 2})
	assert.Equal(t, []byte{1, 2}, p.SkinData())
}

func TestPlayer_TryChatWindow(t *testing.T) {
	p := New(1, 5, "Mario")
	start := time.Unix(1000, 0)

	assert.True(t, p.TryChat(start, 3*time.Second))
	assert.False(t, p.TryChat(start.Add(time.Second), 3*time.Second))
	assert.True(t, p.TryChat(start.Add(3*time.Second), 3*time.Second))
}

func TestPlayer_ConcurrentReads(t *testing.T) {
	p := New(1, 5, "Mario")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = p.Name()
				_ = p.SkinData()
				p.SetSkinData([]byte{byte(j)})
			}
		}()
	}
	wg.Wait()
}

func TestRegistry_InsertGetRemove(t *testing.T) {
	r := NewRegistry()
	p := New(7, 5, "Mario")
	r.Insert(p)

	got, ok := r.Get(7)
	require.True(t, ok)
	assert.Same(t, p, got)
	assert.Equal(t, 1, r.Len())

	removed, ok := r.Remove(7)
	require.True(t, ok)
	assert.Same(t, p, removed)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_RemoveAbsent(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Remove(99)
	assert.False(t, ok)
}

func TestRegistry_Each(t *testing.T) {
	r := NewRegistry()
	r.Insert(New(1, 5, "Mario"))
	r.Insert(New(2, 5, "Luigi"))

	names := map[string]bool{}
	r.Each(func(p *Player) { names[p.Name()] = true })
	assert.Equal(t, map[string]bool{"Mario": true, "Luigi": true}, names)
}

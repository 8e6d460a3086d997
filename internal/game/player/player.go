// Package player tracks joined players: the in-room identity and mutable
// gameplay state tied to a connection.
package player

import (
	"sync"
	"time"
)

// Player is the record created when a connection is accepted into a room.
// It is shared between the coordinator's registry and the room that admitted
// it, so every field access goes through the per-record RWMutex: frequent
// readers (snapshots, broadcasts) do not serialize against each other, and
// writers (chat accept, skin change) are mutually exclusive.
type Player struct {
	mu       sync.RWMutex
	socketID uint32
	level    uint32
	name     string
	skinData []byte
	lastChat time.Time
}

// New creates a player record for the given connection, level, and display
// name. The name is already validated by the join protocol.
func New(socketID, level uint32, name string) *Player {
	return &Player{
		socketID: socketID,
		level:    level,
		name:     name,
	}
}

// SocketID returns the owning connection id.
func (p *Player) SocketID() uint32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.socketID
}

// Level returns the level id of the room the player joined.
func (p *Player) Level() uint32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.level
}

// Name returns the player's display name.
func (p *Player) Name() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.name
}

// SkinData returns the player's cosmetic payload, or nil if none was set.
func (p *Player) SkinData() []byte {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.skinData
}

// SetSkinData replaces the player's cosmetic payload.
func (p *Player) SetSkinData(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.skinData = data
}

// TryChat applies the spam window: it accepts the message iff at least
// interval has elapsed since the last accepted message, and on acceptance
// stamps now as the new last-accepted time.
func (p *Player) TryChat(now time.Time, interval time.Duration) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.lastChat.IsZero() && now.Sub(p.lastChat) < interval {
		return false
	}
	p.lastChat = now
	return true
}

// Registry maps connection ids to player records. Safe for concurrent use;
// reads (reporting snapshots, room broadcasts) never block on the
// coordinator's mutations for longer than a map operation.
type Registry struct {
	mu      sync.RWMutex
	players map[uint32]*Player
}

// NewRegistry creates an empty player Registry.
func NewRegistry() *Registry {
	return &Registry{players: make(map[uint32]*Player)}
}

// Insert registers a player under its connection id, replacing any previous
// record for that id.
func (r *Registry) Insert(p *Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players[p.SocketID()] = p
}

// Remove deletes the record for the given connection id and returns it.
// Removing an absent id is a no-op.
func (r *Registry) Remove(socketID uint32) (*Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[socketID]
	if ok {
		delete(r.players, socketID)
	}
	return p, ok
}

// Get returns the record for the given connection id.
func (r *Registry) Get(socketID uint32) (*Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.players[socketID]
	return p, ok
}

// Each calls fn for every registered player. fn must not call back into the
// registry.
func (r *Registry) Each(fn func(*Player)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.players {
		fn(p)
	}
}

// Len returns the number of joined players.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

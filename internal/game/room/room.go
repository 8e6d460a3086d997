// Package room provides the room collaborator contract the coordinator
// depends on, together with an in-memory implementation: per-level
// membership, broadcast fan-out, and capture-the-flag state.
package room

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/Cooliokid956/sm64js-mmo-server/internal/game/message"
	"github.com/Cooliokid956/sm64js-mmo-server/internal/game/player"
)

// grabRadius is the maximum horizontal distance at which a flag at rest can
// be grabbed.
const grabRadius = 50.0

// Room is the contract the coordinator consumes. Implementations must be
// internally synchronized; the coordinator calls them sequentially within
// one request stream but reporting may read concurrently.
//
// Membership cleanup contract: the coordinator calls RemoveMember on
// disconnect and kick. Rooms do not detect stale members on their own.
type Room interface {
	HasMember(socketID uint32) bool
	AddMember(socketID uint32, p *player.Player)
	RemoveMember(socketID uint32)
	ProcessAttack(flagID int, attackerPos [3]float32, targetID uint32)
	ProcessGrabFlag(flagID int, pos [3]float32, socketID uint32)
	Broadcast(payload []byte)
	// Cosmetics returns the serialized cosmetic payloads of all current
	// members, ordered by connection id. It fails if membership state is
	// internally inconsistent.
	Cosmetics() ([][]byte, error)
}

// Delivery is how a room pushes payloads to member connections. The
// connection registry implements it.
type Delivery interface {
	Deliver(socketID uint32, data []byte)
}

// flag is one capture flag: either held by a member or resting (possibly
// falling) at a world position.
type flag struct {
	pos      [3]float32
	startPos [3]float32
	heldBy   uint32
	held     bool
	falling  bool
}

// GameRoom is the in-memory Room implementation for one level.
type GameRoom struct {
	mu       sync.Mutex
	level    uint32
	name     string
	members  map[uint32]*player.Player
	flags    []*flag
	delivery Delivery
	randOff  func() float32 // horizontal scatter for dropped flags
}

// NewGameRoom creates a room for the given level with flags seeded at their
// start positions.
func NewGameRoom(level uint32, name string, flagStarts [][3]float32, delivery Delivery) *GameRoom {
	r := &GameRoom{
		level:    level,
		name:     name,
		members:  make(map[uint32]*player.Player),
		delivery: delivery,
		randOff:  func() float32 { return rand.Float32()*1000 - 500 },
	}
	for _, pos := range flagStarts {
		r.flags = append(r.flags, &flag{pos: pos, startPos: pos})
	}
	return r
}

// Level returns the level id the room hosts.
func (r *GameRoom) Level() uint32 { return r.level }

// Name returns the human-readable level name.
func (r *GameRoom) Name() string { return r.name }

// HasMember reports whether the connection already joined this room.
func (r *GameRoom) HasMember(socketID uint32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.members[socketID]
	return ok
}

// AddMember admits a player record under its connection id.
func (r *GameRoom) AddMember(socketID uint32, p *player.Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[socketID] = p
}

// RemoveMember drops the membership for the given connection id and releases
// any flag it was holding. Removing an absent id is a no-op.
func (r *GameRoom) RemoveMember(socketID uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, socketID)
	for _, f := range r.flags {
		if f.held && f.heldBy == socketID {
			f.held = false
			f.falling = true
		}
	}
}

// MemberCount returns the current membership size.
func (r *GameRoom) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// ProcessAttack applies an attack from attackerPos against targetID for the
// given flag. If the target holds the flag, it is knocked loose and scatters
// near the attacker.
func (r *GameRoom) ProcessAttack(flagID int, attackerPos [3]float32, targetID uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if flagID < 0 || flagID >= len(r.flags) {
		return
	}
	f := r.flags[flagID]
	if !f.held || f.heldBy != targetID {
		return
	}
	f.held = false
	f.falling = true
	f.pos = [3]float32{
		attackerPos[0] + r.randOff(),
		attackerPos[1] + 600,
		attackerPos[2] + r.randOff(),
	}
}

// ProcessGrabFlag attempts to grab the flag at pos on behalf of the
// connection. The grab succeeds iff the flag is unheld and pos is within the
// grab radius horizontally.
func (r *GameRoom) ProcessGrabFlag(flagID int, pos [3]float32, socketID uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if flagID < 0 || flagID >= len(r.flags) {
		return
	}
	f := r.flags[flagID]
	if f.held {
		return
	}
	dx := float64(pos[0] - f.pos[0])
	dz := float64(pos[2] - f.pos[2])
	if math.Sqrt(dx*dx+dz*dz) < grabRadius {
		f.held = true
		f.heldBy = socketID
		f.falling = false
	}
}

// FlagHolder returns the connection currently holding the flag.
func (r *GameRoom) FlagHolder(flagID int) (uint32, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if flagID < 0 || flagID >= len(r.flags) {
		return 0, false
	}
	f := r.flags[flagID]
	if !f.held {
		return 0, false
	}
	return f.heldBy, true
}

// Broadcast delivers an encoded payload to every current member.
func (r *GameRoom) Broadcast(payload []byte) {
	r.mu.Lock()
	ids := make([]uint32, 0, len(r.members))
	for id := range r.members {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		r.delivery.Deliver(id, payload)
	}
}

// Cosmetics returns each member's serialized cosmetic payload, ordered by
// connection id. Members that have not set a skin yet are skipped. A nil
// member record means membership and the player registry have diverged, and
// is reported as an error.
func (r *GameRoom) Cosmetics() ([][]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]uint32, 0, len(r.members))
	for id := range r.members {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	payloads := make([][]byte, 0, len(ids))
	for _, id := range ids {
		p := r.members[id]
		if p == nil {
			return nil, fmt.Errorf("room %d: member %d has no player record", r.level, id)
		}
		skin := p.SkinData()
		if skin == nil {
			continue
		}
		payloads = append(payloads, message.SkinPayload(message.Skin{
			SocketID: id,
			SkinData: skin,
		}))
	}
	return payloads, nil
}

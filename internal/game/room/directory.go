package room

import "sync"

// NoLevel is the reserved "no room" level sentinel. Join requests for it are
// always rejected.
const NoLevel uint32 = 0

// Directory resolves level ids to rooms.
type Directory interface {
	Get(level uint32) (Room, bool)
}

// StaticDirectory is a Directory over a fixed level catalog built at
// startup.
type StaticDirectory struct {
	mu    sync.RWMutex
	rooms map[uint32]*GameRoom
}

// NewStaticDirectory builds one GameRoom per level definition. Level ids
// must be unique and non-zero.
func NewStaticDirectory(levels []Level, delivery Delivery) (*StaticDirectory, error) {
	d := &StaticDirectory{rooms: make(map[uint32]*GameRoom, len(levels))}
	for _, lvl := range levels {
		if err := lvl.validate(); err != nil {
			return nil, err
		}
		if _, exists := d.rooms[lvl.ID]; exists {
			return nil, errDuplicateLevel(lvl.ID)
		}
		d.rooms[lvl.ID] = NewGameRoom(lvl.ID, lvl.Name, lvl.FlagStarts(), delivery)
	}
	return d, nil
}

// Get returns the room hosting the given level.
func (d *StaticDirectory) Get(level uint32) (Room, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.rooms[level]
	return r, ok
}

// GetGameRoom returns the concrete room, for operational inspection.
func (d *StaticDirectory) GetGameRoom(level uint32) (*GameRoom, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.rooms[level]
	return r, ok
}

// Len returns the number of hosted levels.
func (d *StaticDirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}

package client

import "sync"

// Registry is the connection registry: a concurrent map of live sessions
// keyed by connection id. Reads (snapshots, room broadcast delivery) are
// safe from any goroutine; mutations come only from the coordinator.
type Registry struct {
	mu      sync.RWMutex
	clients map[uint32]*Client
}

// NewRegistry creates an empty connection Registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[uint32]*Client)}
}

// Insert registers a client under its connection id. It reports false if
// the id is already taken, leaving the existing record untouched.
func (r *Registry) Insert(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.clients[c.SocketID()]; exists {
		return false
	}
	r.clients[c.SocketID()] = c
	return true
}

// Remove deletes the record for the given connection id. Removing an absent
// id is a no-op.
func (r *Registry) Remove(socketID uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, socketID)
}

// Get returns the record for the given connection id.
func (r *Registry) Get(socketID uint32) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[socketID]
	return c, ok
}

// FindByAccountID returns the client whose identity carries the given
// account id. Live connection counts are small relative to message rate, so
// a linear scan is fine here.
func (r *Registry) FindByAccountID(accountID int32) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.clients {
		if c.AccountID() == accountID {
			return c, true
		}
	}
	return nil, false
}

// Deliver forwards an encoded payload to the connection with the given id,
// dropping it if the connection is gone. Implements the room delivery
// contract.
func (r *Registry) Deliver(socketID uint32, data []byte) {
	r.mu.RLock()
	c, ok := r.clients[socketID]
	r.mu.RUnlock()
	if ok {
		c.Deliver(data)
	}
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Package client tracks live network sessions: one Client per websocket,
// keyed by a process-scoped random connection id.
package client

import (
	"sync"

	"github.com/Cooliokid956/sm64js-mmo-server/internal/game/auth"
	"github.com/Cooliokid956/sm64js-mmo-server/internal/game/message"
)

// Outbound is the capability the transport layer hands the core for one
// connection: deliver an encoded payload, or ask for the session to end.
// Both calls are fire-and-forget; the core never blocks on delivery.
type Outbound interface {
	Deliver(data []byte) error
	Kick()
}

// Client is one live network session. Created on connect, mutated by the
// join and position handlers, destroyed on disconnect. The record-level
// RWMutex lets the reporting snapshot read concurrently with the
// coordinator's mutations.
type Client struct {
	mu          sync.RWMutex
	socketID    uint32
	out         Outbound
	identity    auth.Identity
	ip          string
	forwardedIP string
	level       uint32 // 0 = not joined
	data        *message.PlayerData
}

// New creates a client record. forwardedIP may be empty when no proxy header
// was present.
func New(socketID uint32, out Outbound, identity auth.Identity, ip, forwardedIP string) *Client {
	return &Client{
		socketID:    socketID,
		out:         out,
		identity:    identity,
		ip:          ip,
		forwardedIP: forwardedIP,
	}
}

// SocketID returns the connection id.
func (c *Client) SocketID() uint32 { return c.socketID }

// Identity returns the credential bundle supplied at connect time.
func (c *Client) Identity() auth.Identity { return c.identity }

// IP returns the source address of the connection.
func (c *Client) IP() string { return c.ip }

// ForwardedIP returns the proxy-forwarded address, or "" if none.
func (c *Client) ForwardedIP() string { return c.forwardedIP }

// AccountID returns the account id from the identity bundle.
func (c *Client) AccountID() int32 { return c.identity.AccountID() }

// Deliver forwards an encoded payload to the connection's outbound handle.
// Delivery failures are the transport's concern; the core drops them.
func (c *Client) Deliver(data []byte) {
	_ = c.out.Deliver(data)
}

// Kick asks the transport to terminate the session.
func (c *Client) Kick() {
	c.out.Kick()
}

// Level returns the joined level id; ok is false while the connection has
// not joined a room.
func (c *Client) Level() (uint32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.level, c.level != 0
}

// SetLevel stamps the joined level id.
func (c *Client) SetLevel(level uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.level = level
}

// Data returns the last cached position/animation payload, or nil if the
// connection never reported one.
func (c *Client) Data() *message.PlayerData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data
}

// SetData caches the latest position/animation payload.
func (c *Client) SetData(data *message.PlayerData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = data
}

// Pos returns the position from the last cached payload.
func (c *Client) Pos() ([3]float32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data == nil {
		return [3]float32{}, false
	}
	return c.data.Pos, true
}

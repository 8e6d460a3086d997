package ws

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// conn wraps one websocket session and implements the client.Outbound
// capability: payloads are queued to a buffered channel drained by the
// write pump, so the coordinator never blocks on a slow socket.
type conn struct {
	ws           *websocket.Conn
	send         chan []byte
	writeTimeout time.Duration

	mu     sync.Mutex
	closed bool
	kick   chan struct{}
}

func newConn(ws *websocket.Conn, sendBuffer int, writeTimeout time.Duration) *conn {
	if sendBuffer <= 0 {
		sendBuffer = 64
	}
	return &conn{
		ws:           ws,
		send:         make(chan []byte, sendBuffer),
		writeTimeout: writeTimeout,
		kick:         make(chan struct{}),
	}
}

// Deliver enqueues an encoded payload for the write pump. A full queue or a
// closed connection drops the payload with an error; gameplay traffic
// tolerates loss.
func (c *conn) Deliver(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("connection closed")
	}
	select {
	case c.send <- data:
		return nil
	default:
		return fmt.Errorf("send buffer full")
	}
}

// Kick requests session termination. The write pump sends a close frame and
// tears the socket down.
func (c *conn) Kick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.kick)
	}
}

// writePump drains the send queue onto the socket. It exits when Kick is
// called or a write fails; either way the socket is closed, which also
// unblocks the read loop.
func (c *conn) writePump() {
	defer c.ws.Close()
	for {
		select {
		case data := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.ws.WriteMessage(websocket.BinaryMessage, data); err != nil {
				c.Kick()
				return
			}
		case <-c.kick:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			_ = c.ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

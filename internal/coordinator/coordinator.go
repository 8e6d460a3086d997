// Package coordinator owns the canonical mapping from network connections
// to in-game players. Every registry mutation flows through one sequential
// request loop, so no two gameplay requests interleave partially; reporting
// snapshots read the registries concurrently from outside the loop.
package coordinator

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Cooliokid956/sm64js-mmo-server/internal/game/auth"
	"github.com/Cooliokid956/sm64js-mmo-server/internal/game/chat"
	"github.com/Cooliokid956/sm64js-mmo-server/internal/game/client"
	"github.com/Cooliokid956/sm64js-mmo-server/internal/game/message"
	"github.com/Cooliokid956/sm64js-mmo-server/internal/game/player"
	"github.com/Cooliokid956/sm64js-mmo-server/internal/game/room"
)

// recordTimeout bounds a single fire-and-forget chat history write.
const recordTimeout = 5 * time.Second

// JoinAccepted is the result of a successful join request.
type JoinAccepted struct {
	Level uint32
	Name  string
}

// PlayerInfo is one row of the operational reporting snapshot.
type PlayerInfo struct {
	AccountID   int32
	SocketID    uint32
	IP          string
	ForwardedIP string
	Level       uint32
	Name        string
}

// Coordinator serializes all session mutations. Handlers never block on
// I/O: outbound delivery is fire-and-forget through the connection's
// outbound handle.
type Coordinator struct {
	clients  *client.Registry
	players  *player.Registry
	rooms    room.Directory
	policy   *chat.Policy
	commands *chat.CommandTable
	recorder chat.Recorder
	logger   *zap.Logger

	newID func() uint32

	requests chan func()
	quit     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithIDSource overrides the connection id generator, for tests.
func WithIDSource(newID func() uint32) Option {
	return func(c *Coordinator) { c.newID = newID }
}

// WithRecorder sets the chat history recorder.
func WithRecorder(r chat.Recorder) Option {
	return func(c *Coordinator) { c.recorder = r }
}

// New creates a Coordinator over the given registries and collaborators.
//
// Precondition: clients, rooms, policy, commands, and logger must be
// non-nil.
func New(
	clients *client.Registry,
	rooms room.Directory,
	policy *chat.Policy,
	commands *chat.CommandTable,
	logger *zap.Logger,
	opts ...Option,
) *Coordinator {
	c := &Coordinator{
		clients:  clients,
		players:  player.NewRegistry(),
		rooms:    rooms,
		policy:   policy,
		commands: commands,
		recorder: chat.NopRecorder{},
		logger:   logger,
		newID:    rand.Uint32,
		requests: make(chan func(), 256),
		quit:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start launches the request loop.
func (c *Coordinator) Start() {
	c.wg.Add(1)
	go c.run()
}

// Stop terminates the request loop. Requests submitted after Stop return
// zero values.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() { close(c.quit) })
	c.wg.Wait()
}

func (c *Coordinator) run() {
	defer c.wg.Done()
	for {
		select {
		case fn := <-c.requests:
			fn()
		case <-c.quit:
			return
		}
	}
}

// do runs fn on the request loop and waits for it to complete, giving each
// operation all-or-nothing semantics with respect to every other operation.
func (c *Coordinator) do(fn func()) {
	done := make(chan struct{})
	select {
	case c.requests <- func() {
		fn()
		close(done)
	}:
	case <-c.quit:
		return
	}
	select {
	case <-done:
	case <-c.quit:
	}
}

// Connect registers a new session and returns its connection id. Ids are
// drawn randomly from the full 32-bit space; on the unlikely collision with
// a live connection a fresh id is drawn.
func (c *Coordinator) Connect(out client.Outbound, identity auth.Identity, ip, forwardedIP string) uint32 {
	var id uint32
	c.do(func() {
		for {
			id = c.newID()
			if c.clients.Insert(client.New(id, out, identity, ip, forwardedIP)) {
				break
			}
		}
		c.logger.Info("client connected",
			zap.Uint32("socket_id", id),
			zap.Int32("account_id", identity.AccountID()),
			zap.String("ip", ip),
		)
	})
	return id
}

// Disconnect removes the connection and, if it had joined, its player record
// and room membership. Idempotent: unknown ids are a no-op.
func (c *Coordinator) Disconnect(socketID uint32) {
	c.do(func() { c.removeSession(socketID) })
}

func (c *Coordinator) removeSession(socketID uint32) {
	if p, ok := c.players.Remove(socketID); ok {
		if rm, ok := c.rooms.Get(p.Level()); ok {
			rm.RemoveMember(socketID)
		}
	}
	if _, ok := c.clients.Get(socketID); ok {
		c.clients.Remove(socketID)
		c.logger.Info("client disconnected", zap.Uint32("socket_id", socketID))
	}
}

// SetPosition caches the latest position/animation payload on the
// connection. Late messages for departed connections are dropped.
func (c *Coordinator) SetPosition(socketID uint32, data *message.PlayerData) {
	c.do(func() {
		if cl, ok := c.clients.Get(socketID); ok {
			cl.SetData(data)
		}
	})
}

// Attack delegates an attack to the sender's room. Dropped unless the
// sender has both a cached position and a joined room.
func (c *Coordinator) Attack(socketID, targetID uint32, flagID int) {
	c.do(func() {
		cl, ok := c.clients.Get(socketID)
		if !ok {
			return
		}
		level, ok := cl.Level()
		if !ok {
			return
		}
		pos, ok := cl.Pos()
		if !ok {
			return
		}
		if rm, ok := c.rooms.Get(level); ok {
			rm.ProcessAttack(flagID, pos, targetID)
		}
	})
}

// GrabFlag delegates a flag grab to the sender's room. Dropped if the
// sender has no joined room.
func (c *Coordinator) GrabFlag(socketID uint32, flagID int, pos [3]float32) {
	c.do(func() {
		cl, ok := c.clients.Get(socketID)
		if !ok {
			return
		}
		level, ok := cl.Level()
		if !ok {
			return
		}
		if rm, ok := c.rooms.Get(level); ok {
			rm.ProcessGrabFlag(flagID, pos, socketID)
		}
	})
}

// JoinGame runs the join protocol: resolve the room, resolve the display
// name, then create the player record, register the room membership, and
// stamp the connection. Every precondition is checked before the first
// mutation, so a rejection leaves no state behind.
func (c *Coordinator) JoinGame(socketID, level uint32, name string, useLinkedName bool) (JoinAccepted, bool) {
	var (
		accepted JoinAccepted
		ok       bool
	)
	c.do(func() {
		accepted, ok = c.join(socketID, level, name, useLinkedName)
	})
	return accepted, ok
}

func (c *Coordinator) join(socketID, level uint32, name string, useLinkedName bool) (JoinAccepted, bool) {
	cl, ok := c.clients.Get(socketID)
	if !ok {
		return JoinAccepted{}, false
	}
	if level == room.NoLevel {
		return JoinAccepted{}, false
	}
	rm, ok := c.rooms.Get(level)
	if !ok {
		return JoinAccepted{}, false
	}
	if rm.HasMember(socketID) {
		return JoinAccepted{}, false
	}

	if useLinkedName {
		linked, ok := cl.Identity().LinkedName()
		if !ok {
			return JoinAccepted{}, false
		}
		name = linked
	} else if !c.policy.IsNameValid(name) {
		return JoinAccepted{}, false
	}

	p := player.New(socketID, level, name)
	rm.AddMember(socketID, p)
	cl.SetLevel(level)
	c.players.Insert(p)

	c.logger.Info("player joined",
		zap.Uint32("socket_id", socketID),
		zap.Uint32("level", level),
		zap.String("name", name),
	)
	return JoinAccepted{Level: level, Name: name}, true
}

// SetSkin replaces the cosmetic payload of the connection's player record,
// if one exists.
func (c *Coordinator) SetSkin(socketID uint32, skinData []byte) {
	c.do(func() {
		if p, ok := c.players.Get(socketID); ok {
			p.SetSkinData(skinData)
		}
	})
}

// RequestCosmetics returns the serialized cosmetic payloads of every member
// of the sender's room, or nil if the sender has no room or the collection
// fails.
func (c *Coordinator) RequestCosmetics(socketID uint32) [][]byte {
	var payloads [][]byte
	c.do(func() {
		cl, ok := c.clients.Get(socketID)
		if !ok {
			return
		}
		level, ok := cl.Level()
		if !ok {
			return
		}
		rm, ok := c.rooms.Get(level)
		if !ok {
			return
		}
		all, err := rm.Cosmetics()
		if err != nil {
			c.logger.Warn("collecting cosmetics failed",
				zap.Uint32("level", level), zap.Error(err))
			return
		}
		payloads = all
	})
	return payloads
}

// SendChat handles one inbound chat message. Messages starting with the
// command prefix are dispatched as commands; everything else runs through
// the spam and sanitization policy. The return value, when non-nil, is a
// private reply for the sender only; accepted messages and command output
// are broadcast to the sender's room as a side effect.
func (c *Coordinator) SendChat(socketID uint32, text string, identity auth.Identity) []byte {
	var reply []byte
	c.do(func() {
		reply = c.handleChat(socketID, text, identity)
	})
	return reply
}

func (c *Coordinator) handleChat(socketID uint32, text string, identity auth.Identity) []byte {
	if chat.IsCommand(text) {
		if payload := c.commands.Dispatch(text, identity); payload != nil {
			c.broadcastToSenderRoom(socketID, payload)
		}
		return nil
	}

	p, ok := c.players.Get(socketID)
	if !ok {
		return nil
	}

	msg, err := c.policy.Accept(p, text)
	if err != nil {
		// Spam: private warning, no broadcast.
		return message.ChatPayload(message.Chat{
			SocketID: socketID,
			Sender:   chat.ServerSender,
			Message:  chat.SpamWarning,
		})
	}

	c.recordChat(socketID, p.Name(), msg)
	c.broadcastToSenderRoom(socketID, message.ChatPayload(message.Chat{
		SocketID: socketID,
		Sender:   p.Name(),
		Message:  msg,
		IsAdmin:  identity.InGameAdmin(),
	}))
	return nil
}

func (c *Coordinator) broadcastToSenderRoom(socketID uint32, payload []byte) {
	cl, ok := c.clients.Get(socketID)
	if !ok {
		return
	}
	level, ok := cl.Level()
	if !ok {
		return
	}
	if rm, ok := c.rooms.Get(level); ok {
		rm.Broadcast(payload)
	}
}

func (c *Coordinator) recordChat(socketID uint32, sender, msg string) {
	ip := ""
	if cl, ok := c.clients.Get(socketID); ok {
		ip = cl.IP()
	}
	entry := chat.NewEntry(socketID, sender, msg, ip, time.Now())
	logger := c.logger
	recorder := c.recorder
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := recorder.Record(ctx, entry); err != nil {
			logger.Warn("recording chat message",
				zap.Uint32("socket_id", socketID), zap.Error(err))
		}
	}()
}

// KickByAccountID terminates the session whose identity carries the given
// account id and removes its records. It reports whether such a session was
// found; kicking an unknown account succeeds as a no-op.
func (c *Coordinator) KickByAccountID(accountID int32) bool {
	var kicked bool
	c.do(func() {
		cl, ok := c.clients.FindByAccountID(accountID)
		if !ok {
			return
		}
		cl.Kick()
		c.removeSession(cl.SocketID())
		c.logger.Info("client kicked",
			zap.Int32("account_id", accountID),
			zap.Uint32("socket_id", cl.SocketID()),
		)
		kicked = true
	})
	return kicked
}

// Players returns the reporting snapshot of every joined player. It reads
// the registries directly, without passing through the request loop; rows
// are individually consistent but the snapshot as a whole is not atomic.
func (c *Coordinator) Players() []PlayerInfo {
	var infos []PlayerInfo
	c.players.Each(func(p *player.Player) {
		cl, ok := c.clients.Get(p.SocketID())
		if !ok {
			return
		}
		infos = append(infos, PlayerInfo{
			AccountID:   cl.AccountID(),
			SocketID:    p.SocketID(),
			IP:          cl.IP(),
			ForwardedIP: cl.ForwardedIP(),
			Level:       p.Level(),
			Name:        p.Name(),
		})
	})
	return infos
}

// Package ws is the websocket transport adapter: it decodes inbound frames
// into coordinator requests and carries the coordinator's payloads back to
// the sockets. The core never sees a websocket.
package ws

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Cooliokid956/sm64js-mmo-server/internal/config"
	"github.com/Cooliokid956/sm64js-mmo-server/internal/coordinator"
	"github.com/Cooliokid956/sm64js-mmo-server/internal/game/auth"
)

// Authenticator resolves an HTTP upgrade request to an identity bundle.
// Credential verification is upstream policy; the transport only attaches
// the result to the connection.
type Authenticator interface {
	Authenticate(r *http.Request) (auth.Identity, error)
}

// InsecureAuthenticator grants every connection an anonymous identity with
// no permissions. Development use only.
type InsecureAuthenticator struct {
	nextID atomic.Int32
}

// Authenticate returns a fresh anonymous identity.
func (a *InsecureAuthenticator) Authenticate(*http.Request) (auth.Identity, error) {
	return auth.AccountInfo{ID: a.nextID.Add(1)}, nil
}

// Handler serves the websocket endpoint and the reporting endpoint.
type Handler struct {
	coord    *coordinator.Coordinator
	authn    Authenticator
	cfg      config.ServerConfig
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates the transport handler.
//
// Precondition: coord, authn, and logger must be non-nil.
func NewHandler(coord *coordinator.Coordinator, authn Authenticator, cfg config.ServerConfig, logger *zap.Logger) *Handler {
	return &Handler{
		coord:  coord,
		authn:  authn,
		cfg:    cfg,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Mux returns an http.Handler routing the websocket and reporting
// endpoints.
func (h *Handler) Mux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.serveWS)
	mux.HandleFunc("/players", h.servePlayers)
	return mux
}

// servePlayers returns the reporting snapshot of all joined players.
func (h *Handler) servePlayers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.coord.Players()); err != nil {
		h.logger.Warn("encoding players snapshot", zap.Error(err))
	}
}

func (h *Handler) serveWS(w http.ResponseWriter, r *http.Request) {
	identity, err := h.authn.Authenticate(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	wsock, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newConn(wsock, h.cfg.SendBuffer, h.cfg.WriteTimeout)
	go c.writePump()

	ip := remoteIP(r)
	forwarded := forwardedIP(r)
	socketID := h.coord.Connect(c, identity, ip, forwarded)

	h.readLoop(c, socketID, identity)

	h.coord.Disconnect(socketID)
	c.Kick()
}

func (h *Handler) readLoop(c *conn, socketID uint32, identity auth.Identity) {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}

		var env clientEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			h.logger.Debug("dropping malformed frame",
				zap.Uint32("socket_id", socketID), zap.Error(err))
			continue
		}
		h.dispatch(c, socketID, identity, env)
	}
}

func (h *Handler) dispatch(c *conn, socketID uint32, identity auth.Identity, env clientEnvelope) {
	switch {
	case env.Join != nil:
		accepted, ok := h.coord.JoinGame(socketID, env.Join.Level, env.Join.Name, env.Join.UseLinkedName)
		reply := joinReply{Accepted: ok}
		if ok {
			reply.Level = accepted.Level
			reply.Name = accepted.Name
		}
		h.reply(c, serverFrame{Join: &reply})

	case env.Position != nil:
		pos := *env.Position
		pos.SocketID = socketID
		h.coord.SetPosition(socketID, &pos)

	case env.Attack != nil:
		h.coord.Attack(socketID, env.Attack.TargetSocketID, env.Attack.FlagID)

	case env.GrabFlag != nil:
		h.coord.GrabFlag(socketID, env.GrabFlag.FlagID, env.GrabFlag.Pos)

	case env.Chat != nil:
		if reply := h.coord.SendChat(socketID, env.Chat.Message, identity); reply != nil {
			_ = c.Deliver(reply)
		}

	case env.Skin != nil:
		h.coord.SetSkin(socketID, env.Skin.SkinData)

	case env.Cosmetics != nil:
		if skins := h.coord.RequestCosmetics(socketID); skins != nil {
			h.reply(c, serverFrame{Cosmetics: &cosmeticsReply{Skins: skins}})
		}
	}
}

func (h *Handler) reply(c *conn, frame serverFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error("encoding transport frame", zap.Error(err))
		return
	}
	_ = c.Deliver(data)
}

func remoteIP(r *http.Request) string {
	addr := r.RemoteAddr
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		return addr[:i]
	}
	return addr
}

func forwardedIP(r *http.Request) string {
	fwd := r.Header.Get("X-Forwarded-For")
	if fwd == "" {
		return ""
	}
	// First hop is the original client.
	if i := strings.Index(fwd, ","); i >= 0 {
		fwd = fwd[:i]
	}
	return strings.TrimSpace(fwd)
}

package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/thenoetrevino/boardsync/internal/events"
	"github.com/thenoetrevino/boardsync/internal/models"
	"github.com/thenoetrevino/boardsync/internal/services"
	"github.com/thenoetrevino/boardsync/internal/types"
)

const writeWait = 10 * time.Second

// client represents one websocket connection to a hub
type client struct {
	id     types.ConnID
	user   types.UserID
	hub    *hub
	conn   *websocket.Conn
	send   chan events.Message
	done   chan struct{}
	logger *slog.Logger

	closeOnce sync.Once

	// deliverMu keeps sequence numbers in queue order.
	deliverMu sync.Mutex
	seq       int64
}

// Deliver stamps the connection's next sequence number and queues the
// event without blocking. A full queue drops the event but keeps the
// number taken, which is how the client learns it missed something.
func (c *client) Deliver(ev events.Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()
	c.seq++
	ev.Seq = c.seq
	msg := events.Message{Version: events.ProtocolVersion, Type: events.TypeEvent, Event: &ev}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// reply queues an invocation result. Results are never dropped while the
// connection is open.
func (c *client) reply(msg events.Message) {
	select {
	case c.send <- msg:
	case <-c.done:
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// handleHub authenticates the handshake, resolves the connection's scope,
// upgrades, and serves the connection until it drops.
func (s *Server) handleHub(w http.ResponseWriter, r *http.Request) {
	h, ok := s.hubs[r.PathValue("hub")]
	if !ok {
		http.NotFound(w, r)
		return
	}

	user, err := s.auth.Authenticate(tokenFromRequest(r))
	if err != nil {
		s.metrics.IncRejectedHandshakes()
		s.logger.Debug("handshake rejected", "hub", h.name, "error", err)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	scope, err := h.resolveScope(r.Context(), r, user)
	if err != nil {
		s.metrics.IncRejectedHandshakes()
		s.logger.Debug("handshake rejected", "hub", h.name, "user", user, "error", err)
		http.Error(w, http.StatusText(handshakeStatus(err)), handshakeStatus(err))
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	id := types.ConnID(uuid.NewString())
	c := &client{
		id:     id,
		user:   user,
		hub:    h,
		conn:   conn,
		send:   make(chan events.Message, s.cfg.ClientBuffer),
		done:   make(chan struct{}),
		logger: s.logger.With("hub", h.name, "conn", id, "user", user),
	}

	if err := h.registry.Connect(c.id, user, scope, c); err != nil {
		c.logger.Warn("failed to register connection", "error", err)
		c.close()
		return
	}
	s.addClient(c)
	s.metrics.IncConnections()
	c.logger.Info("client connected", "scope", scope.ID, "clients", s.metrics.GetConnectedClients())

	go s.clientWriter(c)
	s.clientReader(c)

	h.registry.Disconnect(c.id)
	s.removeClient(c)
	c.logger.Info("client disconnected", "clients", s.metrics.GetConnectedClients())
}

// clientReader reads frames until the connection fails or is closed, and
// starts one goroutine per invocation.
func (s *Server) clientReader(c *client) {
	defer c.close()

	c.conn.SetReadLimit(s.cfg.MaxMessageBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug("connection read failed", "error", err)
			}
			return
		}

		var msg events.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.reply(events.Message{
				Version: events.ProtocolVersion,
				Type:    events.TypeResult,
				Error:   &events.Error{Code: events.CodeInvalidArgument, Message: "malformed frame"},
			})
			continue
		}

		if msg.Version != 0 && msg.Version != events.ProtocolVersion {
			c.logger.Warn("protocol version mismatch", "got", msg.Version, "want", events.ProtocolVersion)
		}
		if msg.Type != events.TypeInvoke {
			c.logger.Debug("ignoring frame", "type", msg.Type)
			continue
		}

		s.calls.Add(1)
		go s.invoke(c, msg)
	}
}

// clientWriter drains the send queue and keeps the connection alive with
// pings. It is the only goroutine that writes data frames.
func (s *Server) clientWriter(c *client) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()
	defer c.close()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return

		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Debug("write failed", "error", err)
				return
			}

		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.logger.Debug("ping failed", "error", err)
				return
			}
		}
	}
}

// invoke runs one call and queues its result. The call is not tied to the
// connection: a client that disconnects mid-call still gets its mutation
// committed and its notifications sent to everyone else.
func (s *Server) invoke(c *client, msg events.Message) {
	defer s.calls.Done()
	s.metrics.IncInvocations()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.CallTimeout)
	defer cancel()

	caller := services.Caller{UserID: c.user, ConnID: c.id}
	reply := events.Message{Version: events.ProtocolVersion, Type: events.TypeResult, ID: msg.ID}

	result, err := c.hub.call(ctx, caller, msg.Method, msg.Args)
	if err == nil && result != nil {
		reply.Result, err = json.Marshal(result)
	}
	if err != nil {
		s.metrics.IncInvocationErrors()
		reply.Result = nil
		reply.Error = s.classify(c, msg.Method, err)
	}
	c.reply(reply)
}

// classify converts err to its wire form and logs it at the level its
// class deserves.
func (s *Server) classify(c *client, method string, err error) *events.Error {
	wire, internal := events.ClassifyError(err)
	switch {
	case internal:
		c.logger.Error("invocation failed", "method", method, "error", err)
	case errors.Is(err, models.ErrForbidden):
		c.logger.Debug("invocation denied", "method", method, "error", err)
	default:
		c.logger.Debug("invocation rejected", "method", method, "code", wire.Code, "error", err)
	}
	return wire
}

// handshakeStatus maps a scope resolution failure onto an HTTP status.
func handshakeStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidArgument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

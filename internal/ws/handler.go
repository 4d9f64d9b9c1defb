package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mizucoffee/canislupus-server/internal/model"
	"github.com/mizucoffee/canislupus-server/internal/registry"
	"github.com/mizucoffee/canislupus-server/internal/services/sync"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 64 * 1024
)

// Client command types
const (
	commandJoin  = "join"
	commandLeave = "leave"
)

// Command is an inbound client message on the persistent channel
type Command struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
}

// errorEvent is pushed to a client whose command could not be carried out.
// The connection stays open.
type errorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Handler upgrades HTTP requests to websocket connections and bridges them
// to the synchronization engine.
type Handler struct {
	engine   *sync.Engine
	registry *registry.Registry
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a websocket handler
func NewHandler(engine *sync.Engine, reg *registry.Registry, logger *slog.Logger) *Handler {
	return &Handler{
		engine:   engine,
		registry: reg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The API carries no browser credentials, so cross-origin
			// connects are allowed.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "ws")),
	}
}

// ServeHTTP handles GET /ws
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error response
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	sub := registry.NewSubscriber(uuid.NewString())
	h.logger.Info("websocket connected",
		slog.String("connection_id", sub.ID()),
		slog.String("remote_addr", r.RemoteAddr))

	go h.writePump(conn, sub)
	h.readPump(r, conn, sub)
}

// readPump consumes client commands until the connection drops. Runs on the
// request goroutine; on exit the subscriber is removed from the registry,
// which closes the outbound channel and stops the write pump.
func (h *Handler) readPump(r *http.Request, conn *websocket.Conn, sub *registry.Subscriber) {
	defer func() {
		h.registry.LeaveAll(sub)
		_ = conn.Close()
		h.logger.Info("websocket disconnected", slog.String("connection_id", sub.ID()))
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("websocket read error",
					slog.String("connection_id", sub.ID()),
					slog.Any("error", err))
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(payload, &cmd); err != nil {
			h.sendError(sub, "malformed command")
			continue
		}

		h.handleCommand(r, sub, cmd)
	}
}

func (h *Handler) handleCommand(r *http.Request, sub *registry.Subscriber, cmd Command) {
	switch cmd.Type {
	case commandJoin:
		if cmd.SessionID == "" {
			h.sendError(sub, "session_id is required")
			return
		}
		if _, err := h.engine.Join(r.Context(), sub, model.SessionID(cmd.SessionID)); err != nil {
			if errors.Is(err, model.ErrSessionNotFound) {
				h.sendError(sub, "session not found")
				return
			}
			h.logger.Error("join failed",
				slog.String("connection_id", sub.ID()),
				slog.String("session_id", cmd.SessionID),
				slog.Any("error", err))
			h.sendError(sub, "join failed")
		}
	case commandLeave:
		if cmd.SessionID == "" {
			h.sendError(sub, "session_id is required")
			return
		}
		h.registry.Leave(sub, model.SessionID(cmd.SessionID))
	default:
		h.sendError(sub, "unknown command type")
	}
}

func (h *Handler) sendError(sub *registry.Subscriber, message string) {
	payload, err := json.Marshal(errorEvent{Type: "error", Message: message})
	if err != nil {
		return
	}
	h.registry.Send(sub, payload)
}

// writePump drains the subscriber's outbound channel to the socket and keeps
// the connection alive with pings. Exits when the channel is closed or a
// write fails.
func (h *Handler) writePump(conn *websocket.Conn, sub *registry.Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case message, ok := <-sub.Messages():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

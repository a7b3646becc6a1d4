package gateway

import (
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mcdev12/tourney/go/internal/events"
	"github.com/rs/zerolog/log"
)

// StateProvider returns the snapshot sent to a viewer on connect.
type StateProvider interface {
	Snapshot() events.StatePayload
}

// ConnectionConfig holds configuration for viewer connections.
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	AllowedOrigins  []string // empty or "*" allows any origin
}

// DefaultConnectionConfig returns default WebSocket configuration.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

// Handler upgrades viewers to WebSocket and streams hub events to them.
type Handler struct {
	hub      *Hub
	state    StateProvider
	config   ConnectionConfig
	upgrader websocket.Upgrader
}

// NewHandler creates the /ws handler.
func NewHandler(hub *Hub, state StateProvider, config ConnectionConfig) *Handler {
	def := DefaultConnectionConfig()
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = def.WriteTimeout
	}
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = def.ReadTimeout
	}
	if config.PingInterval <= 0 {
		config.PingInterval = def.PingInterval
	}
	if config.MaxMessageSize <= 0 {
		config.MaxMessageSize = def.MaxMessageSize
	}
	h := &Handler{hub: hub, state: state, config: config}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  config.ReadBufferSize,
		WriteBufferSize: config.WriteBufferSize,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origins := h.config.AllowedOrigins
	if len(origins) == 0 || slices.Contains(origins, "*") {
		return true
	}
	return slices.Contains(origins, r.Header.Get("Origin"))
}

// ServeHTTP sends a state snapshot first, then every hub event, until the
// viewer disconnects or a write fails.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	sub, err := h.hub.Subscribe(r.Context())
	if err != nil {
		log.Warn().Err(err).Msg("failed to subscribe viewer")
		return
	}
	defer h.hub.Unsubscribe(sub)

	log.Info().
		Str("subscriber_id", sub.ID).
		Str("remote_addr", r.RemoteAddr).
		Msg("WebSocket connection established")

	initial, err := json.Marshal(events.NewState(h.state.Snapshot()))
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal state snapshot")
		return
	}
	_ = conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, initial); err != nil {
		log.Warn().Err(err).Str("subscriber_id", sub.ID).Msg("failed to send state snapshot")
		return
	}

	go h.readPump(conn, sub)
	h.writePump(conn, sub)
}

// writePump sends queued events and pings. Any write failure ends the
// connection, which unsubscribes it.
func (h *Handler) writePump(conn *websocket.Conn, sub *Subscriber) {
	ticker := time.NewTicker(h.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-sub.Messages():
			_ = conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn().Err(err).Str("subscriber_id", sub.ID).Msg("failed to write message to WebSocket")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Warn().Err(err).Str("subscriber_id", sub.ID).Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump drains viewer frames so pongs and close frames are processed.
// When the viewer goes away it unsubscribes, which stops writePump.
func (h *Handler) readPump(conn *websocket.Conn, sub *Subscriber) {
	defer h.hub.Unsubscribe(sub)

	conn.SetReadLimit(h.config.MaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("subscriber_id", sub.ID).Msg("unexpected WebSocket close error")
			}
			log.Info().Str("subscriber_id", sub.ID).Msg("WebSocket connection closed")
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout))
	}
}

package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/fundwallet/fundwallet-backend/internal/progress"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512

	// Events buffered per client before the broadcaster starts dropping
	clientBuffer = 64
)

// ProgressHandler streams pipeline progress events over websockets.
type ProgressHandler struct {
	broadcaster *progress.Broadcaster
	upgrader    websocket.Upgrader
	logger      zerolog.Logger
}

// NewProgressHandler creates a ProgressHandler. checkOrigin may be nil to accept
// same-origin requests only.
func NewProgressHandler(b *progress.Broadcaster, checkOrigin func(*http.Request) bool, logger zerolog.Logger) *ProgressHandler {
	return &ProgressHandler{
		broadcaster: b,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		logger: logger.With().Str("component", "progress_ws").Logger(),
	}
}

// Stream upgrades the connection and sends each progress event as a JSON text
// frame, starting with the latest event if there is one.
//
// Endpoint: GET /api/progress/ws
func (h *ProgressHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an error response.
		h.logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	logger := h.logger.With().Str("client_id", uuid.New().String()).Logger()
	logger.Debug().Str("remote_addr", r.RemoteAddr).Msg("progress client connected")

	events, unsubscribe := h.broadcaster.Subscribe(clientBuffer)
	defer unsubscribe()

	closed := make(chan struct{})
	go readPump(conn, closed)
	writePump(conn, events, h.latest(), closed, logger)

	logger.Debug().Msg("progress client disconnected")
}

func (h *ProgressHandler) latest() *progress.Event {
	if ev, ok := h.broadcaster.Last(); ok {
		return &ev
	}
	return nil
}

// readPump discards client messages, keeps the read deadline fresh on pongs and
// closes closed when the peer goes away.
func readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writePump(conn *websocket.Conn, events <-chan progress.Event, first *progress.Event, closed <-chan struct{}, logger zerolog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	if first != nil {
		if err := writeEvent(conn, *first); err != nil {
			return
		}
	}

	for {
		select {
		case <-closed:
			return
		case ev, ok := <-events:
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := writeEvent(conn, ev); err != nil {
				logger.Debug().Err(err).Msg("progress write failed")
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

func writeEvent(conn *websocket.Conn, ev progress.Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(ev)
}

package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/nikolchaa/resuma/internal/logger"
	"github.com/nikolchaa/resuma/pkg/events"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 30 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = 25 * time.Second

	// Clients only send control frames
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// stream pushes events as JSON text frames, one event per frame.
// GET /api/v1/events?asset=<name>
func (s *Server) stream(c echo.Context) error {
	if s.broker == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "event stream unavailable")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Warn("WebSocket upgrade failed", logger.Fields{"error": err.Error()})
		return nil
	}

	sub := s.broker.Subscribe(c.QueryParam("asset"))
	logger.Debug("Event stream opened", logger.Fields{
		"asset":  c.QueryParam("asset"),
		"remote": c.RealIP(),
	})

	closed := make(chan struct{})
	go readPump(conn, closed)
	writePump(conn, sub.Events(), closed)

	sub.Close()
	_ = conn.Close()
	return nil
}

// readPump drains control frames until the peer goes away.
func readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("WebSocket read error", logger.Fields{"error": err.Error()})
			}
			return
		}
	}
}

func writePump(conn *websocket.Conn, stream <-chan events.Event, closed <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-stream:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "shutting down"))
				return
			}
			msg, err := json.Marshal(e)
			if err != nil {
				logger.Error("Failed to encode event", logger.Fields{"error": err.Error()})
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-closed:
			return
		}
	}
}

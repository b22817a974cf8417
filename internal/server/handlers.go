package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Dashboard is served from a separate origin
	},
}

func (s *Server) handleDashboard(c echo.Context) error {
	snapshot, err := s.feed.Snapshot(c.Request().Context())
	if err != nil {
		slog.Error("Failed to fetch dashboard snapshot", "error", err)
		return c.JSON(503, map[string]string{"error": "snapshot unavailable"})
	}
	return c.JSON(200, snapshot)
}

func (s *Server) handleWebSocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade WebSocket: %w", err)
	}

	if err := s.hub.Register(conn); err != nil {
		slog.Warn("Failed to register viewer", "error", err)
		_ = conn.Close()
		return nil
	}

	// Read pump. Viewers never send application data; this blocks until
	// the connection closes and keeps pong handling alive.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.hub.Unregister(conn)

	return nil //nolint:nilerr // ReadMessage err is block-scoped; outer err is nil
}

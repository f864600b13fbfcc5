package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// handleWebSocket handles WebSocket connections for change events
// @Summary WebSocket endpoint for inventory change events
// @Description Streams one JSON event per frame for every create, update, lifecycle and bulk action.
// @Tags websocket
// @Success 101 {string} string "Switching Protocols"
// @Router /ws/events [get]
func (s *Server) handleWebSocket(c echo.Context) error {
	// On failure the upgrader has already written the response.
	if err := s.hub.ServeWS(c.Response(), c.Request()); err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
	}
	return nil
}

// getWebSocketStats returns WebSocket connection statistics
// @Summary Get WebSocket statistics
// @Tags websocket
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /ws/stats [get]
func (s *Server) getWebSocketStats(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"connected_clients": s.hub.ClientCount(),
		"dropped_events":    s.hub.Dropped(),
		"status":            "operational",
	})
}

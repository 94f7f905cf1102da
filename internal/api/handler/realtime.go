package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/timmy/memebazaar/internal/api/middleware"
	"github.com/timmy/memebazaar/internal/config"
	"github.com/timmy/memebazaar/internal/logger"
	"github.com/timmy/memebazaar/internal/realtime"
)

// RealtimeHandler upgrades browser connections to the realtime channel.
type RealtimeHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
}

// NewRealtimeHandler creates a websocket handler.
// Parameters:
//   - hub: running realtime hub.
//   - cors: origins allowed to open a connection; requests without Origin are accepted.
// Returns:
//   - *RealtimeHandler: initialized handler.
func NewRealtimeHandler(hub *realtime.Hub, cors config.CORSConfig) *RealtimeHandler {
	return &RealtimeHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || middleware.IsOriginAllowed(origin, cors)
			},
		},
	}
}

// Connect handles GET /ws.
func (h *RealtimeHandler) Connect(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		logger.CtxWarn(c.Request.Context(), "Websocket upgrade failed: %v", err)
		return
	}

	// The connection outlives this handler; keep only the logging fields.
	realtime.Serve(context.WithoutCancel(c.Request.Context()), h.hub, conn)
}

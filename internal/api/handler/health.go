package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ConnectionCounter reports live realtime connections.
type ConnectionCounter interface {
	ConnectionCount() int
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	connections ConnectionCounter
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(connections ConnectionCounter) *HealthHandler {
	return &HealthHandler{connections: connections}
}

// Health returns the health status of the service
func (h *HealthHandler) Health(c *gin.Context) {
	resp := gin.H{
		"status": "ok",
	}
	if h.connections != nil {
		resp["connections"] = h.connections.ConnectionCount()
	}
	c.JSON(http.StatusOK, resp)
}

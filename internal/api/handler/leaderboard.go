package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/timmy/memebazaar/internal/service"
)

// LeaderboardHandler serves the cached top memes.
type LeaderboardHandler struct {
	leaderboard *service.Leaderboard
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(leaderboard *service.Leaderboard) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: leaderboard}
}

// Top handles GET /api/leaderboard?top=N.
func (h *LeaderboardHandler) Top(c *gin.Context) {
	top := h.leaderboard.DefaultTop()
	if raw := c.Query("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "top must be a positive integer",
			})
			return
		}
		top = n
	}

	memes, err := h.leaderboard.Top(c.Request.Context(), top)
	if err != nil {
		respondError(c, err, "fetch leaderboard")
		return
	}

	c.JSON(http.StatusOK, memes)
}

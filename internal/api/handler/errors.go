package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/timmy/memebazaar/internal/api/middleware"
	"github.com/timmy/memebazaar/internal/domain"
)

// respondError writes {"error": ...} with the status matching err's kind.
// Store and unexpected failures get a generic message; the cause is only logged.
func respondError(c *gin.Context, err error, action string) {
	status := http.StatusInternalServerError
	message := "Failed to " + action

	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case domain.KindValidation:
			status = http.StatusBadRequest
			message = appErr.Message
		case domain.KindNotFound:
			status = http.StatusNotFound
			message = appErr.Message
		}
	}

	if status >= http.StatusInternalServerError {
		middleware.GetLogger(c).WithError(err).Errorf("Failed to %s", action)
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": message})
}

// parseMemeID reads the :id path parameter.
func parseMemeID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid meme ID",
		})
		return 0, false
	}
	return id, true
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/memebazaar/internal/service"
)

// MemeHandler handles meme-related endpoints.
type MemeHandler struct {
	memeService *service.MemeService
}

// NewMemeHandler creates a new meme handler.
// Parameters:
//   - memeService: meme service instance.
// Returns:
//   - *MemeHandler: initialized handler.
func NewMemeHandler(memeService *service.MemeService) *MemeHandler {
	return &MemeHandler{
		memeService: memeService,
	}
}

// CreateMemeRequest is the POST /api/memes body.
type CreateMemeRequest struct {
	Title           string   `json:"title"`
	ImageURL        string   `json:"image_url"`
	Tags            []string `json:"tags"`
	OwnerID         int64    `json:"owner_id"`
	OverlayText     string   `json:"overlay_text"`
	OverlayPosition string   `json:"overlay_position"`
}

// VoteRequest is the POST /api/memes/:id/vote body.
type VoteRequest struct {
	VoteType string `json:"vote_type"`
	UserID   int64  `json:"user_id"`
}

// ListMemes handles GET /api/memes.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *MemeHandler) ListMemes(c *gin.Context) {
	memes, err := h.memeService.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "fetch memes")
		return
	}

	c.JSON(http.StatusOK, memes)
}

// CreateMeme handles POST /api/memes.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *MemeHandler) CreateMeme(c *gin.Context) {
	var req CreateMemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	meme, err := h.memeService.Create(c.Request.Context(), service.CreateMemeInput{
		Title:           req.Title,
		ImageURL:        req.ImageURL,
		Tags:            req.Tags,
		OwnerID:         req.OwnerID,
		OverlayText:     req.OverlayText,
		OverlayPosition: req.OverlayPosition,
	})
	if err != nil {
		respondError(c, err, "create meme")
		return
	}

	c.JSON(http.StatusOK, meme)
}

// Vote handles POST /api/memes/:id/vote.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *MemeHandler) Vote(c *gin.Context) {
	id, ok := parseMemeID(c)
	if !ok {
		return
	}

	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	meme, err := h.memeService.Vote(c.Request.Context(), id, req.VoteType)
	if err != nil {
		respondError(c, err, "vote")
		return
	}

	c.JSON(http.StatusOK, meme)
}

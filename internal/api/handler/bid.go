package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/memebazaar/internal/service"
)

// BidHandler handles bidding and user endpoints.
type BidHandler struct {
	bidService *service.BidService
}

// NewBidHandler creates a new bid handler.
func NewBidHandler(bidService *service.BidService) *BidHandler {
	return &BidHandler{
		bidService: bidService,
	}
}

// PlaceBidRequest is the POST /api/memes/:id/bid body.
type PlaceBidRequest struct {
	UserID  int64 `json:"user_id"`
	Credits int   `json:"credits"`
}

// PlaceBid handles POST /api/memes/:id/bid.
func (h *BidHandler) PlaceBid(c *gin.Context) {
	id, ok := parseMemeID(c)
	if !ok {
		return
	}

	var req PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	bid, err := h.bidService.Place(c.Request.Context(), id, req.UserID, req.Credits)
	if err != nil {
		respondError(c, err, "place bid")
		return
	}

	c.JSON(http.StatusOK, bid)
}

// ListBids handles GET /api/memes/:id/bids.
func (h *BidHandler) ListBids(c *gin.Context) {
	id, ok := parseMemeID(c)
	if !ok {
		return
	}

	bids, err := h.bidService.List(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "fetch bids")
		return
	}

	c.JSON(http.StatusOK, bids)
}

// ListUsers handles GET /api/users.
func (h *BidHandler) ListUsers(c *gin.Context) {
	c.JSON(http.StatusOK, h.bidService.Users())
}

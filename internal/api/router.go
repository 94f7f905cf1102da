package api

import (
	"github.com/gin-gonic/gin"
	"github.com/timmy/memebazaar/internal/api/handler"
	"github.com/timmy/memebazaar/internal/api/middleware"
	"github.com/timmy/memebazaar/internal/config"
	"github.com/timmy/memebazaar/internal/logger"
	"github.com/timmy/memebazaar/internal/metrics"
	"github.com/timmy/memebazaar/internal/realtime"
	"github.com/timmy/memebazaar/internal/service"
)

// Services bundles what the HTTP layer serves.
type Services struct {
	Memes       *service.MemeService
	Bids        *service.BidService
	Leaderboard *service.Leaderboard
	Hub         *realtime.Hub
	// Metrics is optional; nil disables /metrics.
	Metrics *metrics.Metrics
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(svc Services, cfg *config.ServerConfig, log *logger.Logger) *gin.Engine {
	// Set Gin mode
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(cfg.CORS))
	if svc.Metrics != nil {
		r.Use(middleware.Metrics(svc.Metrics))
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(svc.Metrics.Handler()))
	}

	// Create handlers
	healthHandler := handler.NewHealthHandler(svc.Hub)
	memeHandler := handler.NewMemeHandler(svc.Memes)
	bidHandler := handler.NewBidHandler(svc.Bids)
	leaderboardHandler := handler.NewLeaderboardHandler(svc.Leaderboard)
	realtimeHandler := handler.NewRealtimeHandler(svc.Hub, cfg.CORS)

	// Health check
	r.GET("/health", healthHandler.Health)

	// Realtime channel
	r.GET("/ws", realtimeHandler.Connect)

	apiGroup := r.Group("/api")
	{
		// Memes
		apiGroup.GET("/memes", memeHandler.ListMemes)
		apiGroup.POST("/memes", memeHandler.CreateMeme)
		apiGroup.POST("/memes/:id/vote", memeHandler.Vote)

		// Bids
		apiGroup.POST("/memes/:id/bid", bidHandler.PlaceBid)
		apiGroup.GET("/memes/:id/bids", bidHandler.ListBids)

		// Leaderboard
		apiGroup.GET("/leaderboard", leaderboardHandler.Top)

		// Users
		apiGroup.GET("/users", bidHandler.ListUsers)
	}

	return r
}

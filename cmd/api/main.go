package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/timmy/memebazaar/internal/api"
	"github.com/timmy/memebazaar/internal/config"
	"github.com/timmy/memebazaar/internal/domain"
	"github.com/timmy/memebazaar/internal/logger"
	"github.com/timmy/memebazaar/internal/metrics"
	"github.com/timmy/memebazaar/internal/realtime"
	"github.com/timmy/memebazaar/internal/repository"
	"github.com/timmy/memebazaar/internal/service"
)

func main() {
	// Initialize logger
	log := logger.New(logger.LoadFromEnv())
	logger.SetDefaultLogger(log)
	defer logger.Sync()

	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	ctx = log.WithContext(ctx)

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// Initialize repositories
	memeRepo := repository.NewMemeRepository(db)
	bidRepo := repository.NewBidRepository(db)

	// Redis is only needed for cross-instance fan-out or a shared memo
	var redisClient *redis.Client
	if cfg.Realtime.Broker == "redis" || cfg.Generator.Memo == "redis" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Fatal("Failed to connect to Redis at %s: %v", cfg.Redis.Addr, err)
		}
		logger.Info("Connected to Redis: addr=%s", cfg.Redis.Addr)
	}

	// Caption generation
	generator := service.NewChatCompletionGenerator(&service.GeneratorConfig{
		Model:   cfg.Generator.Model,
		APIKey:  cfg.Generator.APIKey,
		BaseURL: cfg.Generator.BaseURL,
		Timeout: cfg.Generator.Timeout,
	})
	if cfg.Generator.APIKey == "" {
		logger.Warn("No generator API key configured; captions will use fallbacks")
	}

	var memo service.Memo = service.NewMemoryMemo()
	if cfg.Generator.Memo == "redis" {
		memo = service.NewRedisMemo(redisClient, "memebazaar:memo:")
	}
	captionService := service.NewCaptionService(generator, memo)

	var appMetrics *metrics.Metrics
	if cfg.Server.Metrics {
		appMetrics = metrics.New()
		captionService.WithObserver(appMetrics)
	}

	// Realtime hub and publisher
	hub := realtime.NewHub(cfg.Realtime.SendBuffer)
	hubDone := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(hubDone)
	}()

	var publisher service.EventPublisher = realtime.NewLocalPublisher(hub)
	if cfg.Realtime.Broker == "redis" {
		subscriber := realtime.NewRedisSubscriber(redisClient, hub, cfg.Realtime.ChannelPrefix)
		if err := subscriber.Start(ctx); err != nil {
			logger.Fatal("Failed to start Redis subscriber: %v", err)
		}
		publisher = realtime.NewRedisPublisher(redisClient, cfg.Realtime.ChannelPrefix)
	}
	if appMetrics != nil {
		appMetrics.RegisterConnections(hub.ConnectionCount)
		publisher = appMetrics.WrapPublisher(publisher)
	}
	logger.Info("Realtime broker: %s", cfg.Realtime.Broker)

	// Initialize services
	memeService := service.NewMemeService(memeRepo, captionService, publisher, service.MemeConfig{
		ResponseWait:  cfg.Generator.ResponseWait,
		EnrichTimeout: 2 * cfg.Generator.Timeout,
	})
	bidService := service.NewBidService(bidRepo, domain.NewStaticDirectory(cfg.Users), publisher)
	leaderboard := service.NewLeaderboard(memeRepo, service.LeaderboardConfig{
		TTL:        cfg.Leaderboard.TTL,
		Size:       cfg.Leaderboard.Size,
		DefaultTop: cfg.Leaderboard.DefaultTop,
	})

	// Setup router
	router := api.SetupRouter(api.Services{
		Memes:       memeService,
		Bids:        bidService,
		Leaderboard: leaderboard,
		Hub:         hub,
		Metrics:     appMetrics,
	}, &cfg.Server, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting API server: port=%d, mode=%s, database=%s", cfg.Server.Port, cfg.Server.Mode, cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown: %v", err)
	}

	// Let in-flight enrichment land in the database before closing it
	memeService.Wait()
	stop()
	<-hubDone

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Info("Server exited")
}

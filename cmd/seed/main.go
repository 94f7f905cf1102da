package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/timmy/memebazaar/internal/config"
	"github.com/timmy/memebazaar/internal/logger"
	"github.com/timmy/memebazaar/internal/realtime"
	"github.com/timmy/memebazaar/internal/repository"
	"github.com/timmy/memebazaar/internal/service"
)

// seedMeme is one entry of the seed file.
type seedMeme struct {
	Title           string   `json:"title"`
	ImageURL        string   `json:"image_url"`
	Tags            []string `json:"tags"`
	OwnerID         int64    `json:"owner_id"`
	OverlayText     string   `json:"overlay_text"`
	OverlayPosition string   `json:"overlay_position"`
}

func main() {
	// Initialize logger first (with defaults)
	envCfg := logger.LoadFromEnv()
	envCfg.ServiceName = "memebazaar-seed"
	appLogger := logger.New(envCfg)
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Parse command line flags
	file := flag.String("file", "configs/seed.json", "JSON file with memes to create")
	limit := flag.Int("limit", 0, "Maximum number of memes to create (0 = all)")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	memes, err := readSeedFile(*file)
	if err != nil {
		appLogger.WithError(err).WithField("file", *file).Fatal("Failed to read seed file")
	}
	if *limit > 0 && *limit < len(memes) {
		memes = memes[:*limit]
	}

	appLogger.WithFields(logger.Fields{
		"file":  *file,
		"count": len(memes),
	}).Info("Starting seed")

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = appLogger.WithContext(ctx)

	// With the redis broker, running API instances push the new memes to their clients
	var publisher service.EventPublisher
	if cfg.Realtime.Broker == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		publisher = realtime.NewRedisPublisher(client, cfg.Realtime.ChannelPrefix)
	}

	generator := service.NewChatCompletionGenerator(&service.GeneratorConfig{
		Model:   cfg.Generator.Model,
		APIKey:  cfg.Generator.APIKey,
		BaseURL: cfg.Generator.BaseURL,
		Timeout: cfg.Generator.Timeout,
	})
	memeService := service.NewMemeService(
		repository.NewMemeRepository(db),
		service.NewCaptionService(generator, nil),
		publisher,
		service.MemeConfig{
			ResponseWait:  cfg.Generator.ResponseWait,
			EnrichTimeout: 2 * cfg.Generator.Timeout,
		},
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	var created, failed int
	for _, m := range memes {
		if ctx.Err() != nil {
			break
		}
		meme, err := memeService.Create(ctx, service.CreateMemeInput{
			Title:           m.Title,
			ImageURL:        m.ImageURL,
			Tags:            m.Tags,
			OwnerID:         m.OwnerID,
			OverlayText:     m.OverlayText,
			OverlayPosition: m.OverlayPosition,
		})
		if err != nil {
			failed++
			appLogger.WithError(err).WithField("title", m.Title).Warn("Failed to create meme")
			continue
		}
		created++
		appLogger.WithFields(logger.Fields{
			logger.FieldMemeID: meme.ID,
			"title":            meme.Title,
			"enriched":         meme.Enriched(),
		}).Info("Meme created")
	}

	// Enrichment that outlived the response wait still needs to be written
	memeService.Wait()

	appLogger.WithFields(logger.Fields{
		"total":   len(memes),
		"created": created,
		"failed":  failed,
	}).Info("Seed completed")
}

func readSeedFile(path string) ([]seedMeme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var memes []seedMeme
	if err := json.Unmarshal(data, &memes); err != nil {
		return nil, err
	}
	return memes, nil
}

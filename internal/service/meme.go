package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/timmy/memebazaar/internal/domain"
	"github.com/timmy/memebazaar/internal/logger"
	"golang.org/x/sync/errgroup"
)

// EventPublisher fans an event out to realtime subscribers of a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic, event string, payload interface{}) error
}

// MemeStore is the record store surface used for memes.
type MemeStore interface {
	List(ctx context.Context) ([]domain.Meme, error)
	Create(ctx context.Context, meme *domain.Meme) error
	GetByID(ctx context.Context, id int64) (*domain.Meme, error)
	UpdateUpvotes(ctx context.Context, id int64, delta int) (*domain.Meme, error)
	SetEnrichment(ctx context.Context, id int64, caption, vibe string) error
}

// Captioner generates meme caption and vibe text. Implementations never fail.
type Captioner interface {
	GenerateCaption(ctx context.Context, tags []string) string
	GenerateVibe(ctx context.Context, tags []string, title string) string
}

// CreateMemeInput is the data needed to upload a meme.
type CreateMemeInput struct {
	Title           string
	ImageURL        string
	Tags            []string
	OwnerID         int64
	OverlayText     string
	OverlayPosition string
}

// MemeConfig tunes meme creation.
type MemeConfig struct {
	// ResponseWait bounds how long Create waits for caption enrichment.
	ResponseWait time.Duration
	// EnrichTimeout bounds the background enrichment itself.
	EnrichTimeout time.Duration
}

// MemeService handles meme upload, listing and voting.
type MemeService struct {
	store     MemeStore
	captions  Captioner
	publisher EventPublisher
	cfg       MemeConfig

	inflight sync.WaitGroup
}

// NewMemeService creates a new meme service.
// Parameters:
//   - store: meme record store.
//   - captions: caption/vibe generator.
//   - publisher: realtime event publisher.
//   - cfg: creation timings; zero values get 3s wait and 30s enrichment timeout.
//
// Returns:
//   - *MemeService: initialized service.
func NewMemeService(store MemeStore, captions Captioner, publisher EventPublisher, cfg MemeConfig) *MemeService {
	if cfg.ResponseWait <= 0 {
		cfg.ResponseWait = 3 * time.Second
	}
	if cfg.EnrichTimeout <= 0 {
		cfg.EnrichTimeout = 30 * time.Second
	}
	return &MemeService{store: store, captions: captions, publisher: publisher, cfg: cfg}
}

// List returns all memes, most upvoted first. Clients call it to resync.
func (s *MemeService) List(ctx context.Context) ([]domain.Meme, error) {
	return s.store.List(ctx)
}

// Create persists a meme, then enriches it with generated caption and vibe text.
// The meme is stored before any generation happens. If enrichment finishes within
// ResponseWait the returned meme and the new_meme event carry it; otherwise both
// carry the bare meme and a meme_update event follows once enrichment completes.
// Parameters:
//   - ctx: request context.
//   - in: upload fields; Title and ImageURL are required.
//
// Returns:
//   - *domain.Meme: created meme.
//   - error: ValidationError for bad input, StoreError if the insert fails.
func (s *MemeService) Create(ctx context.Context, in CreateMemeInput) (*domain.Meme, error) {
	meme, err := newMeme(in)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, meme); err != nil {
		return nil, err
	}
	ctx = logger.WithField(ctx, logger.FieldMemeID, meme.ID)
	logger.CtxInfo(ctx, "Meme created: title=%q, tags=%d", meme.Title, len(meme.Tags))

	done := make(chan *domain.Meme)
	abandoned := make(chan struct{})
	bare := *meme

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.EnrichTimeout)
		defer cancel()

		enriched := s.enrich(bgCtx, bare)
		select {
		case done <- enriched:
		case <-abandoned:
			if enriched.Enriched() {
				s.publish(bgCtx, domain.TopicAll, domain.EventMemeUpdate, enriched)
			}
		}
	}()

	timer := time.NewTimer(s.cfg.ResponseWait)
	defer timer.Stop()

	result := meme
	select {
	case enriched := <-done:
		result = enriched
	case <-timer.C:
		logger.CtxWarn(ctx, "Enrichment still running after %s, responding without captions", s.cfg.ResponseWait)
	case <-ctx.Done():
	}

	s.publish(context.WithoutCancel(ctx), domain.TopicAll, domain.EventNewMeme, result)
	close(abandoned)
	return result, nil
}

// Wait blocks until background enrichment started by Create has finished.
func (s *MemeService) Wait() {
	s.inflight.Wait()
}

// enrich generates caption and vibe concurrently and stores them.
// On a store failure the meme is returned without the generated texts.
func (s *MemeService) enrich(ctx context.Context, meme domain.Meme) *domain.Meme {
	var caption, vibe string
	var g errgroup.Group
	g.Go(func() error {
		caption = s.captions.GenerateCaption(ctx, meme.Tags)
		return nil
	})
	g.Go(func() error {
		vibe = s.captions.GenerateVibe(ctx, meme.Tags, meme.Title)
		return nil
	})
	_ = g.Wait()

	if err := s.store.SetEnrichment(ctx, meme.ID, caption, vibe); err != nil {
		logger.CtxError(ctx, "Failed to store meme enrichment: %v", err)
		return &meme
	}
	meme.AICaption = &caption
	meme.VibeAnalysis = &vibe
	return &meme
}

// Vote applies an up (+1) or any other (-1) vote and broadcasts the new count.
// Parameters:
//   - ctx: request context.
//   - id: meme ID.
//   - voteType: "up" increments, anything else decrements.
//
// Returns:
//   - *domain.Meme: meme after the vote.
//   - error: NotFound for an unknown meme, StoreError otherwise.
func (s *MemeService) Vote(ctx context.Context, id int64, voteType string) (*domain.Meme, error) {
	delta := -1
	if voteType == "up" {
		delta = 1
	}

	meme, err := s.store.UpdateUpvotes(ctx, id, delta)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.TopicAll, domain.EventVoteUpdate, domain.VoteUpdate{
		MemeID:     meme.ID,
		NewUpvotes: meme.Upvotes,
	})
	return meme, nil
}

func (s *MemeService) publish(ctx context.Context, topic, event string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, topic, event, payload); err != nil {
		logger.CtxWarn(ctx, "Failed to publish %s to %s: %v", event, topic, err)
	}
}

func newMeme(in CreateMemeInput) (*domain.Meme, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.NewValidationError("title is required")
	}
	imageURL := strings.TrimSpace(in.ImageURL)
	if imageURL == "" {
		return nil, domain.NewValidationError("image_url is required")
	}

	position := domain.OverlayPosition(strings.ToLower(strings.TrimSpace(in.OverlayPosition)))
	if position == "" {
		position = domain.OverlayBottom
	}
	if !position.Valid() {
		return nil, domain.NewValidationError("overlay_position must be top, middle or bottom")
	}

	tags := domain.StringArray{}
	for _, t := range in.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	meme := &domain.Meme{
		Title:           title,
		ImageURL:        imageURL,
		Tags:            tags,
		OwnerID:         in.OwnerID,
		OverlayPosition: position,
	}
	if text := strings.TrimSpace(in.OverlayText); text != "" {
		meme.OverlayText = &text
	}
	return meme, nil
}

package service

import (
	"context"
	"sync"
	"time"

	"github.com/timmy/memebazaar/internal/domain"
)

type publishedEvent struct {
	topic   string
	event   string
	payload interface{}
}

// recordingPublisher keeps every published event in order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, topic, event string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{topic: topic, event: event, payload: payload})
	return nil
}

func (p *recordingPublisher) all() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]publishedEvent, len(p.events))
	copy(out, p.events)
	return out
}

func (p *recordingPublisher) named(event string) []publishedEvent {
	var out []publishedEvent
	for _, e := range p.all() {
		if e.event == event {
			out = append(out, e)
		}
	}
	return out
}

// memStore is an in-memory MemeStore and BidStore.
type memStore struct {
	mu     sync.Mutex
	nextID int64
	memes  map[int64]*domain.Meme
	bids   []domain.Bid
}

func newMemStore() *memStore {
	return &memStore{memes: make(map[int64]*domain.Meme)}
}

func (s *memStore) List(context.Context) ([]domain.Meme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Meme, 0, len(s.memes))
	for _, m := range s.memes {
		out = append(out, *m)
	}
	return out, nil
}

func (s *memStore) Create(_ context.Context, meme *domain.Meme) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	meme.ID = s.nextID
	meme.CreatedAt = time.Now()
	cp := *meme
	s.memes[meme.ID] = &cp
	return nil
}

func (s *memStore) GetByID(_ context.Context, id int64) (*domain.Meme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.memes[id]
	if !ok {
		return nil, domain.NewNotFoundError("meme not found", nil)
	}
	cp := *m
	return &cp, nil
}

func (s *memStore) UpdateUpvotes(_ context.Context, id int64, delta int) (*domain.Meme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.memes[id]
	if !ok {
		return nil, domain.NewNotFoundError("meme not found", nil)
	}
	m.Upvotes += delta
	cp := *m
	return &cp, nil
}

func (s *memStore) SetEnrichment(_ context.Context, id int64, caption, vibe string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.memes[id]
	if !ok {
		return domain.NewNotFoundError("meme not found", nil)
	}
	m.AICaption = &caption
	m.VibeAnalysis = &vibe
	return nil
}

func (s *memStore) ListByMeme(_ context.Context, memeID int64) ([]domain.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Bid
	for _, b := range s.bids {
		if b.MemeID == memeID {
			out = append(out, b)
		}
	}
	return out, nil
}

// bidStore adapts memStore to BidStore; Create collides with MemeStore.Create.
type bidStore struct{ *memStore }

func (s bidStore) Create(_ context.Context, bid *domain.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bid.ID = int64(len(s.bids) + 1)
	bid.CreatedAt = time.Now()
	s.bids = append(s.bids, *bid)
	return nil
}

// stubCaptioner returns fixed texts, optionally after a delay or a release signal.
type stubCaptioner struct {
	caption string
	vibe    string
	release chan struct{}
}

func (c *stubCaptioner) wait(ctx context.Context) {
	if c.release == nil {
		return
	}
	select {
	case <-c.release:
	case <-ctx.Done():
	}
}

func (c *stubCaptioner) GenerateCaption(ctx context.Context, _ []string) string {
	c.wait(ctx)
	return c.caption
}

func (c *stubCaptioner) GenerateVibe(ctx context.Context, _ []string, _ string) string {
	c.wait(ctx)
	return c.vibe
}

// funcGenerator adapts a function to TextGenerator.
type funcGenerator func(ctx context.Context, instruction string) (string, error)

func (f funcGenerator) Generate(ctx context.Context, instruction string) (string, error) {
	return f(ctx, instruction)
}

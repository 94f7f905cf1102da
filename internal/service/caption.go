package service

import (
	"context"
	"hash/fnv"
	"strings"
	"time"

	"github.com/timmy/memebazaar/internal/domain"
	"github.com/timmy/memebazaar/internal/logger"
	"github.com/timmy/memebazaar/internal/prompts"
	"golang.org/x/sync/singleflight"
)

// CaptionService turns tags (and a title) into caption and vibe text.
// Successful generations are memoized; failures are answered from a fallback
// list and left unmemoized so the next call retries the generator.
type CaptionService struct {
	generator TextGenerator
	memo      Memo
	observer  GenerationObserver
	group     singleflight.Group
}

// GenerationObserver is told the outcome of every caption or vibe request:
// "memo_hit", "generated" or "fallback".
type GenerationObserver interface {
	ObserveGeneration(result string)
}

// NewCaptionService creates a caption service.
// Parameters:
//   - generator: external text generator.
//   - memo: memo store; nil uses a fresh in-memory memo.
//
// Returns:
//   - *CaptionService: initialized service.
func NewCaptionService(generator TextGenerator, memo Memo) *CaptionService {
	if memo == nil {
		memo = NewMemoryMemo()
	}
	return &CaptionService{generator: generator, memo: memo}
}

// WithObserver sets o to receive generation outcomes and returns s.
func (s *CaptionService) WithObserver(o GenerationObserver) *CaptionService {
	s.observer = o
	return s
}

// GenerateCaption returns a short caption for tags. It never fails.
func (s *CaptionService) GenerateCaption(ctx context.Context, tags []string) string {
	norm := NormalizeTags(tags)
	key := "caption:" + strings.Join(norm, "_")
	return s.generate(ctx, key, prompts.CaptionPrompt(norm), prompts.CaptionFallbacks)
}

// GenerateVibe returns a 2-4 word vibe description for tags and title. It never fails.
func (s *CaptionService) GenerateVibe(ctx context.Context, tags []string, title string) string {
	norm := NormalizeTags(tags)
	title = strings.TrimSpace(title)
	key := "vibe:" + strings.Join(norm, "_") + ":" + title
	return s.generate(ctx, key, prompts.VibePrompt(norm, title), prompts.VibeFallbacks)
}

func (s *CaptionService) generate(ctx context.Context, key, instruction string, fallbacks []string) string {
	if cached, ok, err := s.memo.Get(ctx, key); err != nil {
		logger.CtxWarn(ctx, "Generation memo lookup failed: key=%s, error=%v", key, err)
	} else if ok {
		s.observe("memo_hit")
		return cached
	}

	start := time.Now()
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		// Shared by concurrent misses; the generator's own timeout bounds it.
		callCtx := context.WithoutCancel(ctx)
		text, err := s.generator.Generate(callCtx, instruction)
		if err != nil {
			return "", domain.NewGenerationError("text generation failed", err)
		}
		if err := s.memo.Set(callCtx, key, text); err != nil {
			logger.CtxWarn(ctx, "Generation memo store failed: key=%s, error=%v", key, err)
		}
		return text, nil
	})
	if err != nil {
		logger.With(logger.Fields{logger.FieldDurationMs: time.Since(start).Milliseconds()}).
			Warn(ctx, "Falling back after generation failure: key=%s, error=%v", key, err)
		s.observe("fallback")
		return pickFallback(key, fallbacks)
	}

	logger.With(logger.Fields{logger.FieldDurationMs: time.Since(start).Milliseconds()}).
		Debug(ctx, "Generated text: key=%s", key)
	s.observe("generated")
	return v.(string)
}

func (s *CaptionService) observe(result string) {
	if s.observer != nil {
		s.observer.ObserveGeneration(result)
	}
}

// NormalizeTags trims and lower-cases tags, dropping empties and keeping order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// pickFallback chooses a phrase by hashing the key, so a given input always
// falls back to the same phrase.
func pickFallback(key string, fallbacks []string) string {
	h := fnv.New32a()
	h.Write([]byte(key))
	return fallbacks[int(h.Sum32()%uint32(len(fallbacks)))]
}

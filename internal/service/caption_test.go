package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/memebazaar/internal/prompts"
)

func newCompletionServer(t *testing.T, content string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCaptionService_MemoizesSuccessfulGeneration(t *testing.T) {
	var calls atomic.Int32
	srv := newCompletionServer(t, `"Doge hacks the matrix"`, &calls)

	gen := NewChatCompletionGenerator(&GeneratorConfig{
		Model:   "test-model",
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Timeout: 2 * time.Second,
	})
	svc := NewCaptionService(gen, nil)
	ctx := context.Background()

	first := svc.GenerateCaption(ctx, []string{"doge", "stonks"})
	second := svc.GenerateCaption(ctx, []string{"doge", "stonks"})

	assert.Equal(t, "Doge hacks the matrix", first)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, calls.Load())
}

func TestCaptionService_NormalizedTagsShareMemo(t *testing.T) {
	var calls atomic.Int32
	gen := funcGenerator(func(context.Context, string) (string, error) {
		calls.Add(1)
		return "Stonks going to the digital moon", nil
	})
	memo := NewMemoryMemo()
	svc := NewCaptionService(gen, memo)
	ctx := context.Background()

	svc.GenerateCaption(ctx, []string{"Doge", " stonks "})
	svc.GenerateCaption(ctx, []string{"doge", "", "STONKS"})

	assert.EqualValues(t, 1, calls.Load())
	v, ok, err := memo.Get(ctx, "caption:doge_stonks")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Stonks going to the digital moon", v)
}

func TestCaptionService_CaptionAndVibeUseSeparateKeys(t *testing.T) {
	gen := funcGenerator(func(_ context.Context, instruction string) (string, error) {
		if strings.Contains(instruction, "vibe") {
			return "Neon Crypto Chaos", nil
		}
		return "Doge hacks the matrix", nil
	})
	memo := NewMemoryMemo()
	svc := NewCaptionService(gen, memo)
	ctx := context.Background()

	assert.Equal(t, "Doge hacks the matrix", svc.GenerateCaption(ctx, []string{"doge"}))
	assert.Equal(t, "Neon Crypto Chaos", svc.GenerateVibe(ctx, []string{"doge"}, "Doge Rocket"))
	assert.Equal(t, 2, memo.Len())
}

func TestCaptionService_FallbackWhenGeneratorUnreachable(t *testing.T) {
	gen := NewChatCompletionGenerator(&GeneratorConfig{
		Model:   "test-model",
		APIKey:  "test-key",
		BaseURL: "http://127.0.0.1:1",
		Timeout: time.Second,
	})
	memo := NewMemoryMemo()
	svc := NewCaptionService(gen, memo)
	ctx := context.Background()

	caption := svc.GenerateCaption(ctx, []string{"doge"})
	vibe := svc.GenerateVibe(ctx, []string{"doge"}, "Doge Rocket")

	assert.Contains(t, prompts.CaptionFallbacks, caption)
	assert.Contains(t, prompts.VibeFallbacks, vibe)
	assert.Equal(t, 0, memo.Len(), "fallbacks must not be memoized")
}

func TestCaptionService_FallbackIsStablePerInput(t *testing.T) {
	gen := funcGenerator(func(context.Context, string) (string, error) {
		return "", errors.New("quota exceeded")
	})
	svc := NewCaptionService(gen, nil)
	ctx := context.Background()

	first := svc.GenerateCaption(ctx, []string{"cats", "keyboard"})
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, svc.GenerateCaption(ctx, []string{"cats", "keyboard"}))
	}
}

func TestCaptionService_RetriesAfterFailure(t *testing.T) {
	var calls atomic.Int32
	gen := funcGenerator(func(context.Context, string) (string, error) {
		if calls.Add(1) == 1 {
			return "", errors.New("temporary outage")
		}
		return "Error 404: Chill not found", nil
	})
	svc := NewCaptionService(gen, nil)
	ctx := context.Background()

	assert.Contains(t, prompts.CaptionFallbacks, svc.GenerateCaption(ctx, []string{"chill"}))
	assert.Equal(t, "Error 404: Chill not found", svc.GenerateCaption(ctx, []string{"chill"}))
	assert.EqualValues(t, 2, calls.Load())
}

func TestCaptionService_ConcurrentMissesShareOneCall(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	gen := funcGenerator(func(context.Context, string) (string, error) {
		calls.Add(1)
		<-release
		return "Glitch mode", nil
	})
	svc := NewCaptionService(gen, nil)

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = svc.GenerateCaption(context.Background(), []string{"glitch"})
		}(i)
	}

	// Let every goroutine reach the in-flight call before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "Glitch mode", r)
	}
	assert.LessOrEqual(t, calls.Load(), int32(2))
}

func TestChatCompletionGenerator_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	gen := NewChatCompletionGenerator(&GeneratorConfig{Model: "m", APIKey: "k", BaseURL: srv.URL})
	_, err := gen.Generate(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, []string{}},
		{"lowercase and trim", []string{" Doge ", "STONKS"}, []string{"doge", "stonks"}},
		{"drops empties keeps order", []string{"b", "", "  ", "a"}, []string{"b", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTags(tt.in))
		})
	}
}

type countingObserver struct {
	mu     sync.Mutex
	counts map[string]int
}

func (o *countingObserver) ObserveGeneration(result string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.counts == nil {
		o.counts = make(map[string]int)
	}
	o.counts[result]++
}

func TestCaptionService_ReportsOutcomes(t *testing.T) {
	fail := true
	gen := funcGenerator(func(context.Context, string) (string, error) {
		if fail {
			return "", errors.New("down")
		}
		return "Hack the planet", nil
	})
	obs := &countingObserver{}
	svc := NewCaptionService(gen, nil).WithObserver(obs)
	ctx := context.Background()

	svc.GenerateCaption(ctx, []string{"hack"})
	fail = false
	svc.GenerateCaption(ctx, []string{"hack"})
	svc.GenerateCaption(ctx, []string{"hack"})

	assert.Equal(t, map[string]int{"fallback": 1, "generated": 1, "memo_hit": 1}, obs.counts)
}

func TestCaptionService_CancelledCallerDoesNotFallbackOthers(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	gen := funcGenerator(func(ctx context.Context, _ string) (string, error) {
		close(started)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-release:
			return "Glitch mode", nil
		}
	})
	svc := NewCaptionService(gen, nil)

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderDone := make(chan struct{})
	go func() {
		defer close(leaderDone)
		svc.GenerateCaption(leaderCtx, []string{"glitch"})
	}()
	<-started

	var follower string
	followerDone := make(chan struct{})
	go func() {
		defer close(followerDone)
		follower = svc.GenerateCaption(context.Background(), []string{"glitch"})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)
	close(release)

	<-followerDone
	<-leaderDone
	assert.Equal(t, "Glitch mode", follower)
}

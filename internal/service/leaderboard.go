package service

import (
	"context"
	"sync"
	"time"

	"github.com/timmy/memebazaar/internal/domain"
	"github.com/timmy/memebazaar/internal/logger"
	"golang.org/x/sync/singleflight"
)

// TopMemeLister reads the highest-voted memes from the record store.
type TopMemeLister interface {
	ListTop(ctx context.Context, limit int) ([]domain.Meme, error)
}

// refreshTimeout bounds a refresh shared by several requests.
const refreshTimeout = 10 * time.Second

// LeaderboardConfig holds the cache policy.
type LeaderboardConfig struct {
	TTL        time.Duration
	Size       int
	DefaultTop int
}

// Leaderboard is a read-through cache of the top memes.
// Writes do not invalidate it; a vote may take up to TTL to show.
type Leaderboard struct {
	store TopMemeLister
	cfg   LeaderboardConfig
	now   func() time.Time

	mu        sync.RWMutex
	memes     []domain.Meme
	updatedAt time.Time

	group singleflight.Group
}

// NewLeaderboard creates an empty leaderboard cache.
// Parameters:
//   - store: record store used on refresh.
//   - cfg: TTL, cached size and default topN; zero values get 30s, 50 and 10.
//
// Returns:
//   - *Leaderboard: cache instance.
func NewLeaderboard(store TopMemeLister, cfg LeaderboardConfig) *Leaderboard {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	if cfg.Size <= 0 {
		cfg.Size = 50
	}
	if cfg.DefaultTop <= 0 {
		cfg.DefaultTop = 10
	}
	return &Leaderboard{store: store, cfg: cfg, now: time.Now}
}

// DefaultTop is the topN used when the caller does not ask for one.
func (l *Leaderboard) DefaultTop() int {
	return l.cfg.DefaultTop
}

// Top returns the first topN memes of the cached ordering, refreshing it when stale.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - topN: number of memes wanted; <= 0 uses the default.
//
// Returns:
//   - []domain.Meme: at most topN memes, most upvoted first.
//   - error: StoreError if a refresh was needed and failed.
func (l *Leaderboard) Top(ctx context.Context, topN int) ([]domain.Meme, error) {
	if topN <= 0 {
		topN = l.cfg.DefaultTop
	}

	if memes, ok := l.fresh(); ok {
		return head(memes, topN), nil
	}

	v, err, _ := l.group.Do("leaderboard", func() (interface{}, error) {
		if memes, ok := l.fresh(); ok {
			return memes, nil
		}
		// Waiting requests share this query, so it must not die with the first caller.
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()

		start := time.Now()
		memes, err := l.store.ListTop(refreshCtx, l.cfg.Size)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.memes = memes
		l.updatedAt = l.now()
		l.mu.Unlock()

		logger.With(logger.Fields{logger.FieldComponent: "leaderboard"}).
			WithCount(len(memes)).
			WithDuration(time.Since(start).Milliseconds()).
			Debug(ctx, "Leaderboard refreshed")
		return memes, nil
	})
	if err != nil {
		return nil, err
	}
	return head(v.([]domain.Meme), topN), nil
}

func (l *Leaderboard) fresh() ([]domain.Meme, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.memes == nil || l.now().Sub(l.updatedAt) >= l.cfg.TTL {
		return nil, false
	}
	return l.memes, true
}

func head(memes []domain.Meme, n int) []domain.Meme {
	if n > len(memes) {
		n = len(memes)
	}
	return memes[:n:n]
}

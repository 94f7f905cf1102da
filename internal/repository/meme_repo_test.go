package repository_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/memebazaar/internal/domain"
	"github.com/timmy/memebazaar/internal/repository"
	"github.com/timmy/memebazaar/internal/repository/sqlitetest"
)

func seedMeme(t *testing.T, repo *repository.MemeRepository, title string, upvotes int) *domain.Meme {
	t.Helper()
	m := &domain.Meme{Title: title, ImageURL: "http://x/" + title + ".png", OwnerID: 1}
	require.NoError(t, repo.Create(context.Background(), m))
	if upvotes != 0 {
		updated, err := repo.UpdateUpvotes(context.Background(), m.ID, upvotes)
		require.NoError(t, err)
		m = updated
	}
	return m
}

func TestMemeRepository_CreateDefaults(t *testing.T) {
	repo := repository.NewMemeRepository(sqlitetest.Open(t))
	ctx := context.Background()

	m := &domain.Meme{Title: "Doge Rocket", ImageURL: "http://x/y.png", OwnerID: 1}
	require.NoError(t, repo.Create(ctx, m))

	assert.NotZero(t, m.ID)
	assert.False(t, m.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Upvotes)
	assert.Equal(t, domain.OverlayBottom, got.OverlayPosition)
	assert.Equal(t, domain.StringArray{}, got.Tags)
	assert.Nil(t, got.AICaption)
	assert.Nil(t, got.VibeAnalysis)
}

func TestMemeRepository_TagsKeepOrder(t *testing.T) {
	repo := repository.NewMemeRepository(sqlitetest.Open(t))
	ctx := context.Background()

	m := &domain.Meme{Title: "t", Tags: domain.StringArray{"stonks", "doge", "moon"}}
	require.NoError(t, repo.Create(ctx, m))

	got, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StringArray{"stonks", "doge", "moon"}, got.Tags)
}

func TestMemeRepository_ListOrdersByUpvotes(t *testing.T) {
	repo := repository.NewMemeRepository(sqlitetest.Open(t))

	seedMeme(t, repo, "low", -2)
	seedMeme(t, repo, "high", 7)
	seedMeme(t, repo, "mid", 3)

	memes, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, memes, 3)
	assert.Equal(t, []string{"high", "mid", "low"}, []string{memes[0].Title, memes[1].Title, memes[2].Title})

	top, err := repo.ListTop(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "high", top[0].Title)
	assert.Equal(t, "mid", top[1].Title)
}

func TestMemeRepository_UpdateUpvotes(t *testing.T) {
	repo := repository.NewMemeRepository(sqlitetest.Open(t))
	ctx := context.Background()
	m := seedMeme(t, repo, "ten", 10)
	require.Equal(t, 10, m.Upvotes)

	up, err := repo.UpdateUpvotes(ctx, m.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 11, up.Upvotes)

	down, err := repo.UpdateUpvotes(ctx, m.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, 10, down.Upvotes)
}

func TestMemeRepository_UpdateUpvotesNoFloor(t *testing.T) {
	repo := repository.NewMemeRepository(sqlitetest.Open(t))
	m := seedMeme(t, repo, "zero", 0)

	got, err := repo.UpdateUpvotes(context.Background(), m.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, -1, got.Upvotes)
}

func TestMemeRepository_UpdateUpvotesUnknownMeme(t *testing.T) {
	repo := repository.NewMemeRepository(sqlitetest.Open(t))

	_, err := repo.UpdateUpvotes(context.Background(), 404, 1)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

// Votes are applied with a single increment, so concurrent votes never lose updates.
func TestMemeRepository_ConcurrentVotesAreNotLost(t *testing.T) {
	repo := repository.NewMemeRepository(sqlitetest.Open(t))
	m := seedMeme(t, repo, "race", 0)

	const voters = 20
	var wg sync.WaitGroup
	errs := make(chan error, voters)
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.UpdateUpvotes(context.Background(), m.ID, 1); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := repo.GetByID(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, voters, got.Upvotes)
}

func TestMemeRepository_SetEnrichment(t *testing.T) {
	repo := repository.NewMemeRepository(sqlitetest.Open(t))
	ctx := context.Background()
	m := seedMeme(t, repo, "plain", 0)

	require.NoError(t, repo.SetEnrichment(ctx, m.ID, "Doge hacks the matrix", "Neon Crypto Chaos"))

	got, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AICaption)
	require.NotNil(t, got.VibeAnalysis)
	assert.Equal(t, "Doge hacks the matrix", *got.AICaption)
	assert.Equal(t, "Neon Crypto Chaos", *got.VibeAnalysis)
}

func TestMemeRepository_GetByIDNotFound(t *testing.T) {
	repo := repository.NewMemeRepository(sqlitetest.Open(t))

	_, err := repo.GetByID(context.Background(), 9)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

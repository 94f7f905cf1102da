package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/memebazaar/internal/domain"
)

func TestMemeService_CreateEnrichesWithinWait(t *testing.T) {
	store := newMemStore()
	pub := &recordingPublisher{}
	captions := &stubCaptioner{caption: "Doge hacks the matrix", vibe: "Neon Crypto Chaos"}
	svc := NewMemeService(store, captions, pub, MemeConfig{ResponseWait: 2 * time.Second})

	meme, err := svc.Create(context.Background(), CreateMemeInput{
		Title:    "Doge Rocket",
		ImageURL: "https://example.com/doge.png",
		Tags:     []string{"doge", " stonks "},
		OwnerID:  1,
	})
	require.NoError(t, err)
	svc.Wait()

	assert.NotZero(t, meme.ID)
	assert.Equal(t, 0, meme.Upvotes)
	assert.Equal(t, domain.OverlayBottom, meme.OverlayPosition)
	assert.Equal(t, domain.StringArray{"doge", "stonks"}, meme.Tags)
	require.NotNil(t, meme.AICaption)
	require.NotNil(t, meme.VibeAnalysis)
	assert.Equal(t, "Doge hacks the matrix", *meme.AICaption)
	assert.Equal(t, "Neon Crypto Chaos", *meme.VibeAnalysis)

	events := pub.all()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventNewMeme, events[0].event)
	assert.Equal(t, domain.TopicAll, events[0].topic)
	published := events[0].payload.(*domain.Meme)
	assert.Equal(t, meme.ID, published.ID)
	assert.True(t, published.Enriched())

	stored, err := store.GetByID(context.Background(), meme.ID)
	require.NoError(t, err)
	assert.True(t, stored.Enriched())
}

func TestMemeService_CreateRespondsBeforeSlowEnrichment(t *testing.T) {
	store := newMemStore()
	pub := &recordingPublisher{}
	captions := &stubCaptioner{caption: "Late caption", vibe: "Late Vibes", release: make(chan struct{})}
	svc := NewMemeService(store, captions, pub, MemeConfig{ResponseWait: 50 * time.Millisecond})

	meme, err := svc.Create(context.Background(), CreateMemeInput{
		Title:    "Slow Meme",
		ImageURL: "https://example.com/slow.png",
	})
	require.NoError(t, err)

	assert.Nil(t, meme.AICaption)
	assert.Nil(t, meme.VibeAnalysis)

	// Record exists before any generation has finished.
	stored, err := store.GetByID(context.Background(), meme.ID)
	require.NoError(t, err)
	assert.False(t, stored.Enriched())

	close(captions.release)
	svc.Wait()

	events := pub.all()
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventNewMeme, events[0].event)
	assert.False(t, events[0].payload.(*domain.Meme).Enriched())
	assert.Equal(t, domain.EventMemeUpdate, events[1].event)
	updated := events[1].payload.(*domain.Meme)
	assert.Equal(t, meme.ID, updated.ID)
	assert.Equal(t, "Late caption", *updated.AICaption)

	stored, err = store.GetByID(context.Background(), meme.ID)
	require.NoError(t, err)
	assert.Equal(t, "Late Vibes", *stored.VibeAnalysis)
}

func TestMemeService_CreateValidation(t *testing.T) {
	tests := []struct {
		name string
		in   CreateMemeInput
	}{
		{"missing title", CreateMemeInput{ImageURL: "https://example.com/a.png"}},
		{"blank title", CreateMemeInput{Title: "   ", ImageURL: "https://example.com/a.png"}},
		{"missing image", CreateMemeInput{Title: "No Image"}},
		{"bad overlay position", CreateMemeInput{Title: "t", ImageURL: "u", OverlayPosition: "sideways"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			pub := &recordingPublisher{}
			svc := NewMemeService(store, &stubCaptioner{}, pub, MemeConfig{})

			_, err := svc.Create(context.Background(), tt.in)
			require.Error(t, err)
			assert.True(t, domain.IsKind(err, domain.KindValidation))

			memes, _ := store.List(context.Background())
			assert.Empty(t, memes)
			assert.Empty(t, pub.all())
		})
	}
}

func TestMemeService_CreateOverlay(t *testing.T) {
	svc := NewMemeService(newMemStore(), &stubCaptioner{caption: "c", vibe: "v"}, nil, MemeConfig{})

	meme, err := svc.Create(context.Background(), CreateMemeInput{
		Title:           "Overlay",
		ImageURL:        "https://example.com/o.png",
		OverlayText:     "  SUCH WOW  ",
		OverlayPosition: "Top",
	})
	require.NoError(t, err)
	svc.Wait()

	require.NotNil(t, meme.OverlayText)
	assert.Equal(t, "SUCH WOW", *meme.OverlayText)
	assert.Equal(t, domain.OverlayTop, meme.OverlayPosition)
}

func TestMemeService_Vote(t *testing.T) {
	store := newMemStore()
	pub := &recordingPublisher{}
	svc := NewMemeService(store, &stubCaptioner{caption: "c", vibe: "v"}, pub, MemeConfig{})
	ctx := context.Background()

	meme, err := svc.Create(ctx, CreateMemeInput{Title: "Votable", ImageURL: "https://example.com/v.png"})
	require.NoError(t, err)
	svc.Wait()

	up, err := svc.Vote(ctx, meme.ID, "up")
	require.NoError(t, err)
	assert.Equal(t, 1, up.Upvotes)

	down, err := svc.Vote(ctx, meme.ID, "down")
	require.NoError(t, err)
	assert.Equal(t, 0, down.Upvotes)

	other, err := svc.Vote(ctx, meme.ID, "sideways")
	require.NoError(t, err)
	assert.Equal(t, -1, other.Upvotes, "any non-up vote decrements and there is no floor")

	votes := pub.named(domain.EventVoteUpdate)
	require.Len(t, votes, 3)
	assert.Equal(t, domain.VoteUpdate{MemeID: meme.ID, NewUpvotes: 1}, votes[0].payload)
	assert.Equal(t, domain.VoteUpdate{MemeID: meme.ID, NewUpvotes: -1}, votes[2].payload)
	assert.Equal(t, domain.TopicAll, votes[0].topic)
}

func TestMemeService_VoteUnknownMeme(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewMemeService(newMemStore(), &stubCaptioner{}, pub, MemeConfig{})

	_, err := svc.Vote(context.Background(), 404, "up")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
	assert.Empty(t, pub.all())
}

package service

import (
	"context"

	"github.com/timmy/memebazaar/internal/domain"
	"github.com/timmy/memebazaar/internal/logger"
)

// BidStore is the record store surface used for bids.
type BidStore interface {
	Create(ctx context.Context, bid *domain.Bid) error
	ListByMeme(ctx context.Context, memeID int64) ([]domain.Bid, error)
}

// BidService places and lists bids.
// Bid credits are not checked against the bidder's balance.
type BidService struct {
	store     BidStore
	users     domain.UserDirectory
	publisher EventPublisher
}

// NewBidService creates a new bid service.
func NewBidService(store BidStore, users domain.UserDirectory, publisher EventPublisher) *BidService {
	return &BidService{store: store, users: users, publisher: publisher}
}

// Place records a bid and broadcasts new_bid to the meme's room.
// Parameters:
//   - ctx: request context.
//   - memeID: meme being bid on.
//   - userID: bidder.
//   - credits: offer; must be positive.
//
// Returns:
//   - *domain.Bid: created bid.
//   - error: ValidationError for non-positive credits, StoreError if the insert fails.
func (s *BidService) Place(ctx context.Context, memeID, userID int64, credits int) (*domain.Bid, error) {
	if credits <= 0 {
		return nil, domain.NewValidationError("credits must be a positive integer")
	}

	bid := &domain.Bid{MemeID: memeID, UserID: userID, Credits: credits}
	if err := s.store.Create(ctx, bid); err != nil {
		return nil, err
	}

	ctx = logger.WithFields(ctx, logger.Fields{logger.FieldMemeID: memeID, logger.FieldUserID: userID})
	logger.CtxInfo(ctx, "Bid placed: credits=%d", credits)

	if s.publisher != nil {
		event := domain.NewBidEvent{MemeID: memeID, Bid: s.view(*bid)}
		if err := s.publisher.Publish(ctx, domain.MemeTopic(memeID), domain.EventNewBid, event); err != nil {
			logger.CtxWarn(ctx, "Failed to publish %s: %v", domain.EventNewBid, err)
		}
	}
	return bid, nil
}

// List returns a meme's bids, highest first, with bidder names resolved.
func (s *BidService) List(ctx context.Context, memeID int64) ([]domain.BidView, error) {
	bids, err := s.store.ListByMeme(ctx, memeID)
	if err != nil {
		return nil, err
	}
	views := make([]domain.BidView, 0, len(bids))
	for _, b := range bids {
		views = append(views, s.view(b))
	}
	return views, nil
}

// Users returns the reference user mapping keyed by handle.
func (s *BidService) Users() map[string]domain.User {
	if s.users == nil {
		return map[string]domain.User{}
	}
	return s.users.All()
}

func (s *BidService) view(b domain.Bid) domain.BidView {
	return domain.BidView{Bid: b, UserName: domain.DisplayName(s.users, b.UserID)}
}

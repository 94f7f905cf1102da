package repository

import (
	"context"

	"github.com/timmy/memebazaar/internal/domain"
	"gorm.io/gorm"
)

// BidRepository handles bid data operations.
type BidRepository struct {
	db *gorm.DB
}

// NewBidRepository creates a new BidRepository.
func NewBidRepository(db *gorm.DB) *BidRepository {
	return &BidRepository{db: db}
}

// Create inserts a bid. The meme reference is not checked here.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - bid: bid to persist; ID and CreatedAt are filled in.
// Returns:
//   - error: StoreError if the insert fails.
func (r *BidRepository) Create(ctx context.Context, bid *domain.Bid) error {
	if err := r.db.WithContext(ctx).Create(bid).Error; err != nil {
		return domain.NewStoreError("failed to create bid", err)
	}
	return nil
}

// ListByMeme returns a meme's bids, highest credits first, earliest first among equals.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - memeID: meme whose bids to list.
// Returns:
//   - []domain.Bid: bids for the meme.
//   - error: StoreError if the query fails.
func (r *BidRepository) ListByMeme(ctx context.Context, memeID int64) ([]domain.Bid, error) {
	bids := []domain.Bid{}
	if err := r.db.WithContext(ctx).
		Where("meme_id = ?", memeID).
		Order("credits DESC, created_at ASC, id ASC").
		Find(&bids).Error; err != nil {
		return nil, domain.NewStoreError("failed to list bids", err)
	}
	return bids, nil
}

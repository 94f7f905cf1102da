package repository

import (
	"context"
	"errors"

	"github.com/timmy/memebazaar/internal/domain"
	"gorm.io/gorm"
)

const memeOrder = "upvotes DESC, created_at DESC, id DESC"

// MemeRepository handles meme data operations.
type MemeRepository struct {
	db *gorm.DB
}

// NewMemeRepository creates a new MemeRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *MemeRepository: repository instance bound to db.
func NewMemeRepository(db *gorm.DB) *MemeRepository {
	return &MemeRepository{db: db}
}

// List returns every meme, most upvoted first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - []domain.Meme: all memes.
//   - error: StoreError if the query fails.
func (r *MemeRepository) List(ctx context.Context) ([]domain.Meme, error) {
	memes := []domain.Meme{}
	if err := r.db.WithContext(ctx).Order(memeOrder).Find(&memes).Error; err != nil {
		return nil, domain.NewStoreError("failed to list memes", err)
	}
	return memes, nil
}

// ListTop returns at most limit memes, most upvoted first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - limit: maximum number of records to return.
// Returns:
//   - []domain.Meme: top memes.
//   - error: StoreError if the query fails.
func (r *MemeRepository) ListTop(ctx context.Context, limit int) ([]domain.Meme, error) {
	memes := []domain.Meme{}
	if err := r.db.WithContext(ctx).Order(memeOrder).Limit(limit).Find(&memes).Error; err != nil {
		return nil, domain.NewStoreError("failed to list top memes", err)
	}
	return memes, nil
}

// Create inserts a new meme record; ID and CreatedAt are filled in by the store.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - meme: meme record to persist.
// Returns:
//   - error: StoreError if the insert fails.
func (r *MemeRepository) Create(ctx context.Context, meme *domain.Meme) error {
	if meme.OverlayPosition == "" {
		meme.OverlayPosition = domain.OverlayBottom
	}
	if meme.Tags == nil {
		meme.Tags = domain.StringArray{}
	}
	if err := r.db.WithContext(ctx).Create(meme).Error; err != nil {
		return domain.NewStoreError("failed to create meme", err)
	}
	return nil
}

// GetByID retrieves a meme by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: meme ID.
// Returns:
//   - *domain.Meme: meme record if found.
//   - error: NotFound if no such meme, StoreError otherwise.
func (r *MemeRepository) GetByID(ctx context.Context, id int64) (*domain.Meme, error) {
	return getMeme(r.db.WithContext(ctx), id)
}

// UpdateUpvotes adds delta to a meme's upvotes in a single UPDATE and returns the new row.
// Concurrent votes on the same meme cannot overwrite each other.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: meme ID.
//   - delta: signed change, normally +1 or -1.
// Returns:
//   - *domain.Meme: meme after the update.
//   - error: NotFound if no such meme, StoreError otherwise.
func (r *MemeRepository) UpdateUpvotes(ctx context.Context, id int64, delta int) (*domain.Meme, error) {
	var updated *domain.Meme
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Meme{}).
			Where("id = ?", id).
			UpdateColumn("upvotes", gorm.Expr("upvotes + ?", delta))
		if res.Error != nil {
			return domain.NewStoreError("failed to update upvotes", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.NewNotFoundError("meme not found", gorm.ErrRecordNotFound)
		}
		meme, err := getMeme(tx, id)
		if err != nil {
			return err
		}
		updated = meme
		return nil
	})
	if err != nil {
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, domain.NewStoreError("failed to update upvotes", err)
	}
	return updated, nil
}

// SetEnrichment stores the generated caption and vibe text of a meme.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: meme ID.
//   - caption: generated caption.
//   - vibe: generated vibe analysis.
// Returns:
//   - error: StoreError if the update fails.
func (r *MemeRepository) SetEnrichment(ctx context.Context, id int64, caption, vibe string) error {
	err := r.db.WithContext(ctx).Model(&domain.Meme{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"ai_caption":    caption,
			"vibe_analysis": vibe,
		}).Error
	if err != nil {
		return domain.NewStoreError("failed to store meme enrichment", err)
	}
	return nil
}

func getMeme(db *gorm.DB, id int64) (*domain.Meme, error) {
	var meme domain.Meme
	if err := db.First(&meme, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("meme not found", err)
		}
		return nil, domain.NewStoreError("failed to get meme", err)
	}
	return &meme, nil
}

package domain

import "time"

// Bid is a credit offer placed by a user on a meme. Bids are never updated.
type Bid struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	MemeID    int64     `gorm:"not null;index:idx_bids_meme" json:"meme_id"`
	UserID    int64     `gorm:"not null" json:"user_id"`
	Credits   int       `gorm:"not null" json:"credits"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Bid.
func (Bid) TableName() string {
	return "bids"
}

// BidView is a bid with the bidder's display name resolved.
type BidView struct {
	Bid
	UserName string `json:"user_name"`
}

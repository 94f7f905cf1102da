package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// OverlayPosition is where overlay text is rendered on a meme image.
type OverlayPosition string

const (
	OverlayTop    OverlayPosition = "top"
	OverlayMiddle OverlayPosition = "middle"
	OverlayBottom OverlayPosition = "bottom"
)

// Valid reports whether p is one of the known positions.
func (p OverlayPosition) Valid() bool {
	switch p {
	case OverlayTop, OverlayMiddle, OverlayBottom:
		return true
	}
	return false
}

// StringArray is a custom type for storing string arrays as JSON in the database.
type StringArray []string

// Value implements the driver.Valuer interface for database serialization.
// Parameters: none.
// Returns:
//   - driver.Value: JSON-encoded string representation of the slice.
//   - error: non-nil if marshaling fails.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
// Parameters:
//   - value: raw database value to decode.
// Returns:
//   - error: non-nil if decoding fails or the type is unexpected.
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan StringArray")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, a)
}

// MarshalJSON keeps nil tag lists rendered as [] rather than null.
func (a StringArray) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(a))
}

// Meme is an uploaded image post with its tags, overlay and vote count.
// AICaption and VibeAnalysis stay nil until enrichment has written them.
type Meme struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Title           string          `gorm:"type:text;not null" json:"title"`
	ImageURL        string          `gorm:"type:text" json:"image_url"`
	Tags            StringArray     `gorm:"type:text" json:"tags"`
	OwnerID         int64           `gorm:"index:idx_memes_owner" json:"owner_id"`
	AICaption       *string         `gorm:"type:text" json:"ai_caption"`
	VibeAnalysis    *string         `gorm:"type:text" json:"vibe_analysis"`
	Upvotes         int             `gorm:"not null;default:0;index:idx_memes_upvotes" json:"upvotes"`
	OverlayText     *string         `gorm:"type:text" json:"overlay_text"`
	OverlayPosition OverlayPosition `gorm:"type:text;default:bottom" json:"overlay_position"`
	CreatedAt       time.Time       `json:"created_at"`
}

// TableName returns the database table name for Meme.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Meme) TableName() string {
	return "memes"
}

// Enriched reports whether both generated texts are present.
func (m *Meme) Enriched() bool {
	return m.AICaption != nil && m.VibeAnalysis != nil
}

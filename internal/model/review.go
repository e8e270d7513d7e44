package model

import (
	"time"
)

// Review is an off-chain opinion record tied to an event and a wallet.
// At most one review exists per (event, author) pair; updates rewrite the
// same row rather than creating a second one.
type Review struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	EventID     int64  `json:"event_id" gorm:"not null;uniqueIndex:idx_review_event_author"`
	UserAddress string `json:"user_address" gorm:"not null;uniqueIndex:idx_review_event_author;size:42"`
	Rating      int    `json:"rating" gorm:"not null"`
	Comment     string `json:"comment" gorm:"type:text"`

	// Set once the author's ticket ownership was checked at creation time.
	IsVerified bool `json:"is_verified" gorm:"default:false"`
}

func (Review) TableName() string {
	return "review"
}

// ReviewStats is recomputed from the full review set on every read so the
// aggregates cannot drift from the stored records.
type ReviewStats struct {
	EventID       int64       `json:"event_id"`
	TotalReviews  int         `json:"total_reviews"`
	AverageRating float64     `json:"average_rating"`
	Distribution  map[int]int `json:"rating_distribution"`
}

package model

import (
	"time"
)

// AnchorAlert records an auction that was anchored on-chain but never
// registered off-chain. This is the one condition the system cannot
// self-heal; rows stay until support resolves them or a late registration
// arrives.
type AnchorAlert struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	DetectedAt time.Time `json:"detected_at"`

	AuctionID     int64  `json:"auction_id" gorm:"not null;uniqueIndex"`
	TicketID      int64  `json:"ticket_id"`
	SellerAddress string `json:"seller_address" gorm:"size:42"`
	MetadataHash  string `json:"metadata_hash"`
	Resolved      bool   `json:"resolved" gorm:"default:false;index"`
}

func (AnchorAlert) TableName() string {
	return "anchor_alert"
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bid is one accepted offer against an auction. Rejected bids are never
// persisted; accepted rows are immutable.
type Bid struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	AuctionID     int64           `json:"auction_id" gorm:"not null;index"`
	BidderAddress string          `json:"bidder_address" gorm:"not null;size:42;index"`
	BidAmount     decimal.Decimal `json:"bid_amount" gorm:"type:numeric(36,18);not null"`
	BidTime       time.Time       `json:"bid_time" gorm:"not null"`

	// EIP-191 signature over the message binding amount, auction and ticket.
	Signature string `json:"signature" gorm:"type:text;not null"`
	Message   string `json:"message" gorm:"type:text;not null"`

	// Optional content hash once the bid payload was anchored on-chain.
	BidHash string `json:"bid_hash"`
}

func (Bid) TableName() string {
	return "bid"
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuctionStatus is the off-chain listing state.
type AuctionStatus string

const (
	AuctionStatusActive AuctionStatus = "active"
	AuctionStatusEnded  AuctionStatus = "ended"
)

// Auction is the relational record of an on-chain-anchored listing. The
// primary key is the auction id assigned by the contract at anchor time,
// never a local sequence.
type Auction struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TicketID      int64           `json:"ticket_id" gorm:"not null;index"`
	EventID       int64           `json:"event_id" gorm:"not null;index"`
	SellerAddress string          `json:"seller_address" gorm:"not null;size:42;index"`
	StartingPrice decimal.Decimal `json:"starting_price" gorm:"type:numeric(36,18);not null"`
	CurrentPrice  decimal.Decimal `json:"current_price" gorm:"type:numeric(36,18);not null"`
	HighestBidder *string         `json:"highest_bidder" gorm:"size:42"`
	BidCount      int             `json:"bid_count" gorm:"default:0"`

	StartTime time.Time     `json:"start_time" gorm:"not null"`
	EndTime   time.Time     `json:"end_time" gorm:"not null"`
	Status    AuctionStatus `json:"status" gorm:"default:'active';index"`

	// Content hash of the immutable metadata document anchored on-chain.
	MetadataHash string `json:"ipfs_hash" gorm:"not null"`

	Bids []Bid `json:"bids,omitempty" gorm:"foreignKey:AuctionID"`
}

func (Auction) TableName() string {
	return "auction"
}

// Ended reports whether the auction is past its end time or already swept.
func (a *Auction) Ended(now time.Time) bool {
	return a.Status == AuctionStatusEnded || !now.Before(a.EndTime)
}

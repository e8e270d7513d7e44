package ipfs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Document type discriminators. Every pinned blob carries one so a hash
// swapped between contexts fails loudly instead of parsing into the wrong
// shape.
const (
	DocTypeAuctionMetadata = "auction-metadata"
	DocTypeBidData         = "bid-data"
)

// AuctionMetadata is the immutable listing document anchored on-chain.
type AuctionMetadata struct {
	Type          string          `json:"type"`
	TicketID      int64           `json:"ticket_id"`
	EventID       int64           `json:"event_id"`
	SellerAddress string          `json:"seller_address"`
	StartingPrice decimal.Decimal `json:"starting_price"`
	StartTime     string          `json:"start_time"`
	EndTime       string          `json:"end_time"`
	CreatedAt     string          `json:"created_at"`
}

// BidData is the immutable bid commitment document.
type BidData struct {
	Type          string          `json:"type"`
	AuctionID     int64           `json:"auction_id"`
	TicketID      int64           `json:"ticket_id"`
	BidderAddress string          `json:"bidder_address"`
	BidAmount     decimal.Decimal `json:"bid_amount"`
	BidTime       string          `json:"bid_time"`
	Signature     string          `json:"signature"`
}

// GetAuctionMetadata fetches and validates an auction metadata document.
func (c *Client) GetAuctionMetadata(ctx context.Context, cid string) (*AuctionMetadata, error) {
	raw, err := c.Fetch(ctx, cid)
	if err != nil {
		return nil, err
	}
	var doc AuctionMetadata
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	if doc.Type != DocTypeAuctionMetadata {
		return nil, fmt.Errorf("%w: got %q", ErrSchemaMismatch, doc.Type)
	}
	return &doc, nil
}

// GetBidData fetches and validates a bid commitment document.
func (c *Client) GetBidData(ctx context.Context, cid string) (*BidData, error) {
	raw, err := c.Fetch(ctx, cid)
	if err != nil {
		return nil, err
	}
	var doc BidData
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	if doc.Type != DocTypeBidData {
		return nil, fmt.Errorf("%w: got %q", ErrSchemaMismatch, doc.Type)
	}
	return &doc, nil
}

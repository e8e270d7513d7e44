package logic

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumina/lts/internal/model"
	"github.com/lumina/lts/internal/wallet"
)

func newActiveAuction(seller string) *model.Auction {
	now := time.Now()
	return &model.Auction{
		ID:            101,
		TicketID:      9,
		EventID:       7,
		SellerAddress: seller,
		StartingPrice: decimal.RequireFromString("0.1"),
		CurrentPrice:  decimal.RequireFromString("0.1"),
		StartTime:     now.Add(-time.Hour),
		EndTime:       now.Add(24 * time.Hour),
		Status:        model.AuctionStatusActive,
		MetadataHash:  "QmMeta",
	}
}

func signedBid(t *testing.T, signer *wallet.Signer, auctionID, ticketID int64, amount string) PlaceBidRequest {
	t.Helper()
	bidAmount := decimal.RequireFromString(amount)
	msg := wallet.BuildBidMessage(auctionID, ticketID, bidAmount, time.Now())
	sig, err := signer.SignMessage(msg)
	require.NoError(t, err)
	return PlaceBidRequest{
		BidAmount: bidAmount,
		Signature: sig,
		Message:   msg,
		BidHash:   "QmBid",
	}
}

func TestPlaceBidAccepted(t *testing.T) {
	db := newTestDB(t)
	seller := newTestSigner(t)
	bidder := newTestSigner(t)
	require.NoError(t, db.Create(newActiveAuction(seller.Address().Hex())).Error)
	logic := NewBidLogic(db, nil)

	fresh, err := logic.PlaceBid(context.Background(), 101, signedBid(t, bidder, 101, 9, "0.2"))
	require.NoError(t, err)

	assert.True(t, fresh.CurrentPrice.Equal(decimal.RequireFromString("0.2")))
	require.NotNil(t, fresh.HighestBidder)
	assert.Equal(t, bidder.Address().Hex(), *fresh.HighestBidder)
	assert.Equal(t, 1, fresh.BidCount)

	var bids []model.Bid
	require.NoError(t, db.Where("auction_id = ?", 101).Find(&bids).Error)
	require.Len(t, bids, 1)
	assert.Equal(t, bidder.Address().Hex(), bids[0].BidderAddress)
}

func TestPlaceBidBelowCurrentPriceIsStale(t *testing.T) {
	db := newTestDB(t)
	seller := newTestSigner(t)
	first := newTestSigner(t)
	second := newTestSigner(t)
	require.NoError(t, db.Create(newActiveAuction(seller.Address().Hex())).Error)
	logic := NewBidLogic(db, nil)

	_, err := logic.PlaceBid(context.Background(), 101, signedBid(t, first, 101, 9, "0.3"))
	require.NoError(t, err)

	// Computed against the original 0.1 baseline, beaten in the meantime.
	_, err = logic.PlaceBid(context.Background(), 101, signedBid(t, second, 101, 9, "0.2"))
	assert.ErrorIs(t, err, ErrStaleBid)

	var stale *StaleBidError
	require.ErrorAs(t, err, &stale)
	assert.True(t, stale.CurrentPrice.Equal(decimal.RequireFromString("0.3")),
		"stale rejection must carry the fresh price, got %s", stale.CurrentPrice)
}

func TestPlaceBidEqualToCurrentPriceIsStale(t *testing.T) {
	db := newTestDB(t)
	seller := newTestSigner(t)
	bidder := newTestSigner(t)
	require.NoError(t, db.Create(newActiveAuction(seller.Address().Hex())).Error)
	logic := NewBidLogic(db, nil)

	_, err := logic.PlaceBid(context.Background(), 101, signedBid(t, bidder, 101, 9, "0.1"))
	assert.ErrorIs(t, err, ErrStaleBid)
}

func TestPlaceBidOnEndedAuction(t *testing.T) {
	db := newTestDB(t)
	seller := newTestSigner(t)
	bidder := newTestSigner(t)
	auction := newActiveAuction(seller.Address().Hex())
	auction.EndTime = time.Now().Add(-time.Minute)
	require.NoError(t, db.Create(auction).Error)
	logic := NewBidLogic(db, nil)

	_, err := logic.PlaceBid(context.Background(), 101, signedBid(t, bidder, 101, 9, "0.2"))
	assert.ErrorIs(t, err, ErrAuctionEnded)
}

func TestPlaceBidUnknownAuction(t *testing.T) {
	db := newTestDB(t)
	bidder := newTestSigner(t)
	logic := NewBidLogic(db, nil)

	_, err := logic.PlaceBid(context.Background(), 404, signedBid(t, bidder, 404, 9, "0.2"))
	assert.ErrorIs(t, err, ErrAuctionNotFound)
}

func TestPlaceBidSellerCannotBid(t *testing.T) {
	db := newTestDB(t)
	seller := newTestSigner(t)
	require.NoError(t, db.Create(newActiveAuction(seller.Address().Hex())).Error)
	logic := NewBidLogic(db, nil)

	_, err := logic.PlaceBid(context.Background(), 101, signedBid(t, seller, 101, 9, "0.2"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPlaceBidRejectsCrossAuctionReplay(t *testing.T) {
	db := newTestDB(t)
	seller := newTestSigner(t)
	bidder := newTestSigner(t)
	require.NoError(t, db.Create(newActiveAuction(seller.Address().Hex())).Error)
	logic := NewBidLogic(db, nil)

	// Message signed for auction 999, submitted against 101.
	req := signedBid(t, bidder, 999, 9, "0.2")
	_, err := logic.PlaceBid(context.Background(), 101, req)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestPlaceBidInsufficientFunds(t *testing.T) {
	db := newTestDB(t)
	seller := newTestSigner(t)
	bidder := newTestSigner(t)
	require.NoError(t, db.Create(newActiveAuction(seller.Address().Hex())).Error)

	// Balance of 0.05 ETH against a 0.2 ETH bid.
	logic := NewBidLogic(db, &fakeBalances{wei: ethWei("50000000000000000")})

	_, err := logic.PlaceBid(context.Background(), 101, signedBid(t, bidder, 101, 9, "0.2"))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestPlaceBidPriceIsMonotonic(t *testing.T) {
	db := newTestDB(t)
	seller := newTestSigner(t)
	require.NoError(t, db.Create(newActiveAuction(seller.Address().Hex())).Error)
	logic := NewBidLogic(db, nil)

	amounts := []string{"0.2", "0.15", "0.3", "0.25", "0.4"}
	var wg sync.WaitGroup
	results := make([]error, len(amounts))
	for i, amount := range amounts {
		bidder := newTestSigner(t)
		req := signedBid(t, bidder, 101, 9, amount)
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = logic.PlaceBid(context.Background(), 101, req)
		}(i)
	}
	wg.Wait()

	accepted := 0
	for _, err := range results {
		if err == nil {
			accepted++
			continue
		}
		assert.True(t, errors.Is(err, ErrStaleBid),
			"only stale rejections expected, got %v", err)
	}
	require.Greater(t, accepted, 0)

	var auction model.Auction
	require.NoError(t, db.First(&auction, "id = ?", 101).Error)
	assert.Equal(t, accepted, auction.BidCount)

	// The accepted bid sequence must be strictly increasing and end at the
	// stored current price.
	var bids []model.Bid
	require.NoError(t, db.Where("auction_id = ?", 101).Order("id ASC").Find(&bids).Error)
	require.Len(t, bids, accepted)
	prev := decimal.RequireFromString("0.1")
	for _, bid := range bids {
		assert.True(t, bid.BidAmount.GreaterThan(prev),
			"bid %s must exceed prior price %s", bid.BidAmount, prev)
		prev = bid.BidAmount
	}
	assert.True(t, auction.CurrentPrice.Equal(prev))
}

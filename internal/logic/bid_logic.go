package logic

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lumina/lts/internal/chain"
	"github.com/lumina/lts/internal/model"
	"github.com/lumina/lts/internal/wallet"
)

// BalanceReader reads an account's native balance. Nil disables the funds
// check.
type BalanceReader interface {
	BalanceWei(ctx context.Context, addr common.Address) (*big.Int, error)
}

// BidLogic performs the authoritative bid acceptance. The price
// compare-and-swap is a single conditional UPDATE gated on the price being
// unchanged since it was read; a bid losing that race gets a StaleBidError
// carrying the fresh price.
type BidLogic struct {
	db       *gorm.DB
	balances BalanceReader
	now      func() time.Time
}

func NewBidLogic(db *gorm.DB, balances BalanceReader) *BidLogic {
	return &BidLogic{db: db, balances: balances, now: time.Now}
}

type PlaceBidRequest struct {
	BidAmount decimal.Decimal `json:"bidAmount" binding:"required"`
	Signature string          `json:"signature" binding:"required"`
	Message   string          `json:"message" binding:"required"`
	BidHash   string          `json:"bidHash"`
}

// PlaceBid validates and attempts to accept a bid. On acceptance it
// returns the fresh authoritative auction snapshot.
func (b *BidLogic) PlaceBid(ctx context.Context, auctionID int64, req PlaceBidRequest) (*model.Auction, error) {
	now := b.now()

	var auction model.Auction
	if err := b.db.First(&auction, "id = ?", auctionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuctionNotFound
		}
		return nil, err
	}
	if auction.Ended(now) {
		return nil, ErrAuctionEnded
	}

	bidder, err := wallet.RecoverAddress(req.Message, req.Signature)
	if err != nil {
		return nil, ErrInvalidSignature
	}
	if err := wallet.CheckBidMessage(req.Message, auctionID, auction.TicketID, req.BidAmount, now); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if strings.EqualFold(bidder.Hex(), auction.SellerAddress) {
		return nil, fmt.Errorf("%w: seller cannot bid on own auction", ErrValidation)
	}

	if !req.BidAmount.GreaterThan(auction.CurrentPrice) {
		return nil, &StaleBidError{CurrentPrice: auction.CurrentPrice}
	}

	if b.balances != nil {
		balance, err := b.balances.BalanceWei(ctx, bidder)
		if err != nil {
			return nil, fmt.Errorf("failed to read bidder balance: %w", err)
		}
		if chain.WeiToEther(balance).LessThan(req.BidAmount) {
			return nil, ErrInsufficientFunds
		}
	}

	accepted := false
	err = b.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Auction{}).
			Where("id = ? AND status = ? AND current_price = ?",
				auctionID, model.AuctionStatusActive, auction.CurrentPrice).
			Updates(map[string]interface{}{
				"current_price":  req.BidAmount,
				"highest_bidder": bidder.Hex(),
				"bid_count":      gorm.Expr("bid_count + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Another bid moved the price between our read and the update.
			return nil
		}

		accepted = true
		return tx.Create(&model.Bid{
			AuctionID:     auctionID,
			BidderAddress: bidder.Hex(),
			BidAmount:     req.BidAmount,
			BidTime:       now,
			Signature:     req.Signature,
			Message:       req.Message,
			BidHash:       req.BidHash,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	var fresh model.Auction
	if err := b.db.First(&fresh, "id = ?", auctionID).Error; err != nil {
		return nil, err
	}

	if !accepted {
		if fresh.Ended(now) {
			return nil, ErrAuctionEnded
		}
		return nil, &StaleBidError{CurrentPrice: fresh.CurrentPrice}
	}
	return &fresh, nil
}

// GetBids lists an auction's accepted bids, highest first.
func (b *BidLogic) GetBids(auctionID int64) ([]model.Bid, error) {
	var bids []model.Bid
	if err := b.db.
		Where("auction_id = ?", auctionID).
		Order("bid_amount DESC").
		Find(&bids).Error; err != nil {
		return nil, err
	}
	return bids, nil
}

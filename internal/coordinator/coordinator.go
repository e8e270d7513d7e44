// Package coordinator runs the client side of the three-phase auction
// protocol: prepare against the marketplace, anchor on-chain, register
// with the marketplace. The contract assigns the auction id; the
// marketplace holds the mutable listing state.
package coordinator

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/lumina/lts/internal/chain"
	"github.com/lumina/lts/internal/ipfs"
	"github.com/lumina/lts/internal/logger"
	"github.com/lumina/lts/internal/logic"
	"github.com/lumina/lts/internal/model"
	"github.com/lumina/lts/internal/monitoring"
	"github.com/lumina/lts/internal/wallet"
)

// Phase marks how far a create-auction attempt got.
type Phase string

const (
	PhasePrepared   Phase = "prepared"
	PhaseAnchored   Phase = "anchored"
	PhaseRegistered Phase = "registered"
)

// MarketplaceAPI is the backend surface the coordinator drives.
type MarketplaceAPI interface {
	PrepareAuction(ctx context.Context, req logic.PrepareAuctionRequest) (*logic.PrepareAuctionResult, error)
	RegisterAuction(ctx context.Context, req logic.RegisterAuctionRequest) (*model.Auction, error)
	GetAuction(ctx context.Context, auctionID int64) (*model.Auction, error)
	PlaceBid(ctx context.Context, auctionID int64, req logic.PlaceBidRequest) (*model.Auction, error)
}

// Anchorer writes auction and bid pointers to the contract.
type Anchorer interface {
	CreateAuction(ctx context.Context, ticketID int64, metadataHash string) (int64, error)
	RecordBid(ctx context.Context, auctionID int64, bidHash string) error
}

// Pinner persists an immutable JSON document and returns its content hash.
// Nil disables bid anchoring.
type Pinner interface {
	Pin(ctx context.Context, doc interface{}) (string, error)
}

// Balancer reads an account's native balance. Nil disables the funds
// fast-fail.
type Balancer interface {
	BalanceWei(ctx context.Context, addr common.Address) (*big.Int, error)
}

type Coordinator struct {
	api         MarketplaceAPI
	anchor      Anchorer
	pinner      Pinner
	balances    Balancer
	signer      *wallet.Signer
	minDuration time.Duration
	now         func() time.Time
}

func New(api MarketplaceAPI, anchor Anchorer, pinner Pinner, balances Balancer, signer *wallet.Signer, minDuration time.Duration) *Coordinator {
	if minDuration <= 0 {
		minDuration = time.Hour
	}
	return &Coordinator{
		api:         api,
		anchor:      anchor,
		pinner:      pinner,
		balances:    balances,
		signer:      signer,
		minDuration: minDuration,
		now:         time.Now,
	}
}

type CreateAuctionParams struct {
	TicketID      int64
	EventID       int64
	StartingPrice decimal.Decimal
	StartTime     time.Time
	EndTime       time.Time
}

// CreateAuctionResult reports the terminal phase of an attempt. An
// Anchored result with a non-nil error is the partial-failure state: the
// chain holds the listing but the marketplace does not know about it yet.
type CreateAuctionResult struct {
	Phase        Phase
	AuctionID    int64
	MetadataHash string
	Auction      *model.Auction
}

// CreateAuction runs prepare, anchor, register. Validation failures before
// the anchor are cheap and leave no trace anywhere. A failure after the
// anchor is surfaced as ErrRegistrationFailed with the result carrying the
// auction id and hash needed to finish registration later.
func (c *Coordinator) CreateAuction(ctx context.Context, p CreateAuctionParams) (*CreateAuctionResult, error) {
	if c.signer == nil {
		return nil, ErrWalletNotConnected
	}
	now := c.now()
	if err := model.ValidateAuctionWindow(p.StartingPrice, p.StartTime, p.EndTime, now, c.minDuration); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	message := wallet.BuildListingMessage(p.TicketID, p.EventID, p.StartingPrice, now)
	signature, err := c.signer.SignMessage(message)
	if err != nil {
		return nil, fmt.Errorf("failed to sign listing: %w", err)
	}

	prepared, err := c.api.PrepareAuction(ctx, logic.PrepareAuctionRequest{
		TicketID:      p.TicketID,
		EventID:       p.EventID,
		StartingPrice: p.StartingPrice,
		StartTime:     p.StartTime,
		EndTime:       p.EndTime,
		Signature:     signature,
		Message:       message,
	})
	if err != nil {
		return nil, err
	}
	result := &CreateAuctionResult{Phase: PhasePrepared, MetadataHash: prepared.MetadataHash}

	auctionID, err := c.anchor.CreateAuction(ctx, p.TicketID, prepared.MetadataHash)
	if err != nil {
		return result, err
	}
	result.Phase = PhaseAnchored
	result.AuctionID = auctionID

	auction, err := c.api.RegisterAuction(ctx, logic.RegisterAuctionRequest{
		AuctionID:    auctionID,
		MetadataHash: prepared.MetadataHash,
		Metadata:     prepared.Metadata,
		Signature:    signature,
		Message:      message,
	})
	if err != nil {
		logger.Error("Auction %d anchored but registration failed: %v", auctionID, err)
		return result, fmt.Errorf("%w: auction %d, hash %s: %v",
			ErrRegistrationFailed, auctionID, prepared.MetadataHash, err)
	}

	monitoring.AuctionsRegistered.Inc()
	result.Phase = PhaseRegistered
	result.Auction = auction
	return result, nil
}

// CompleteRegistration retries phase three for an anchored auction whose
// registration failed. Registration is idempotent server-side, so this is
// safe to call repeatedly.
func (c *Coordinator) CompleteRegistration(ctx context.Context, auctionID int64, metadataHash string, metadata ipfs.AuctionMetadata, signature, message string) (*model.Auction, error) {
	return c.api.RegisterAuction(ctx, logic.RegisterAuctionRequest{
		AuctionID:    auctionID,
		MetadataHash: metadataHash,
		Metadata:     metadata,
		Signature:    signature,
		Message:      message,
	})
}

// PlaceBid signs and submits a bid. Local checks only skip doomed
// requests; the returned snapshot replaces any local auction state
// wholesale. A stale rejection surfaces the server's fresh price.
func (c *Coordinator) PlaceBid(ctx context.Context, auctionID int64, amount decimal.Decimal) (*model.Auction, error) {
	if c.signer == nil {
		return nil, ErrWalletNotConnected
	}
	now := c.now()

	auction, err := c.api.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if auction.Ended(now) {
		return nil, ErrAuctionEnded
	}
	if !amount.GreaterThan(auction.CurrentPrice) {
		return nil, &StaleBidError{CurrentPrice: auction.CurrentPrice}
	}
	if c.balances != nil {
		balance, err := c.balances.BalanceWei(ctx, c.signer.Address())
		if err != nil {
			return nil, fmt.Errorf("failed to read wallet balance: %w", err)
		}
		if chain.WeiToEther(balance).LessThan(amount) {
			return nil, fmt.Errorf("%w: have %s, need %s",
				ErrInsufficientFunds, chain.WeiToEther(balance), amount)
		}
	}

	message := wallet.BuildBidMessage(auctionID, auction.TicketID, amount, now)
	signature, err := c.signer.SignMessage(message)
	if err != nil {
		return nil, fmt.Errorf("failed to sign bid: %w", err)
	}

	bidHash := ""
	if c.pinner != nil {
		doc := ipfs.BidData{
			Type:          ipfs.DocTypeBidData,
			AuctionID:     auctionID,
			TicketID:      auction.TicketID,
			BidderAddress: c.signer.Address().Hex(),
			BidAmount:     amount,
			BidTime:       now.UTC().Format(time.RFC3339),
			Signature:     signature,
		}
		if bidHash, err = c.pinner.Pin(ctx, doc); err != nil {
			logger.Warn("Could not pin bid document for auction %d: %v", auctionID, err)
			bidHash = ""
		}
	}

	fresh, err := c.api.PlaceBid(ctx, auctionID, logic.PlaceBidRequest{
		BidAmount: amount,
		Signature: signature,
		Message:   message,
		BidHash:   bidHash,
	})
	if err != nil {
		return nil, err
	}

	// Bid pointer anchoring is best-effort: the marketplace already
	// accepted the bid and the append-only chain record is an audit trail.
	if c.anchor != nil && bidHash != "" {
		if err := c.anchor.RecordBid(ctx, auctionID, bidHash); err != nil {
			logger.Warn("Could not anchor bid for auction %d: %v", auctionID, err)
		}
	}
	return fresh, nil
}

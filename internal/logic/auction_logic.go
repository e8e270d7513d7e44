package logic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lumina/lts/internal/ipfs"
	"github.com/lumina/lts/internal/logger"
	"github.com/lumina/lts/internal/model"
	"github.com/lumina/lts/internal/wallet"
)

// Pinner persists an immutable JSON document to content-addressed storage.
type Pinner interface {
	Pin(ctx context.Context, doc interface{}) (string, error)
}

// AnchorChecker verifies that an auction id was anchored on-chain. Nil
// disables the check (tests, chainless deployments).
type AnchorChecker interface {
	AuctionExists(ctx context.Context, auctionID int64) (bool, error)
}

// AuctionLogic is the backend side of the three-phase auction protocol:
// prepare (validate + pin metadata) and register (persist keyed by the
// on-chain auction id). The anchor phase in between belongs to the client.
type AuctionLogic struct {
	db          *gorm.DB
	pinner      Pinner
	anchors     AnchorChecker
	minDuration time.Duration
	now         func() time.Time
}

func NewAuctionLogic(db *gorm.DB, pinner Pinner, anchors AnchorChecker, minDuration time.Duration) *AuctionLogic {
	if minDuration <= 0 {
		minDuration = time.Hour
	}
	return &AuctionLogic{db: db, pinner: pinner, anchors: anchors, minDuration: minDuration, now: time.Now}
}

type PrepareAuctionRequest struct {
	TicketID      int64           `json:"ticketId" binding:"required"`
	EventID       int64           `json:"eventId" binding:"required"`
	StartingPrice decimal.Decimal `json:"startingPrice" binding:"required"`
	StartTime     time.Time       `json:"startTime" binding:"required"`
	EndTime       time.Time       `json:"endTime" binding:"required"`
	Signature     string          `json:"signature" binding:"required"`
	Message       string          `json:"message" binding:"required"`
}

type PrepareAuctionResult struct {
	MetadataHash string               `json:"metadataHash"`
	Metadata     ipfs.AuctionMetadata `json:"metadata"`
}

// Prepare validates the listing, rejects tickets already under an active
// auction, pins the immutable metadata document, and returns its hash.
// Nothing is committed: the client may still walk away before anchoring.
func (a *AuctionLogic) Prepare(ctx context.Context, req PrepareAuctionRequest) (*PrepareAuctionResult, error) {
	now := a.now()
	if err := model.ValidateAuctionWindow(req.StartingPrice, req.StartTime, req.EndTime, now, a.minDuration); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	seller, err := wallet.RecoverAddress(req.Message, req.Signature)
	if err != nil {
		return nil, ErrInvalidSignature
	}
	if err := wallet.CheckListingMessage(req.Message, req.TicketID, req.EventID, req.StartingPrice, now); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	active, err := a.hasActiveAuction(req.TicketID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, ErrDuplicateListing
	}

	metadata := ipfs.AuctionMetadata{
		Type:          ipfs.DocTypeAuctionMetadata,
		TicketID:      req.TicketID,
		EventID:       req.EventID,
		SellerAddress: seller.Hex(),
		StartingPrice: req.StartingPrice,
		StartTime:     req.StartTime.UTC().Format(time.RFC3339),
		EndTime:       req.EndTime.UTC().Format(time.RFC3339),
		CreatedAt:     now.UTC().Format(time.RFC3339),
	}

	hash, err := a.pinner.Pin(ctx, metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to pin auction metadata: %w", err)
	}

	return &PrepareAuctionResult{MetadataHash: hash, Metadata: metadata}, nil
}

type RegisterAuctionRequest struct {
	AuctionID    int64                `json:"auctionId" binding:"required"`
	MetadataHash string               `json:"metadataHash" binding:"required"`
	Metadata     ipfs.AuctionMetadata `json:"metadata" binding:"required"`
	Signature    string               `json:"signature" binding:"required"`
	Message      string               `json:"message" binding:"required"`
}

// Register persists the full relational record keyed by the on-chain
// auction id. Registration is idempotent for the same (id, hash) so a
// retried phase-3 call after a timeout cannot fail a second time.
func (a *AuctionLogic) Register(ctx context.Context, req RegisterAuctionRequest) (*model.Auction, error) {
	if req.AuctionID <= 0 || req.MetadataHash == "" {
		return nil, fmt.Errorf("%w: auction id and metadata hash required", ErrValidation)
	}

	seller, err := wallet.RecoverAddress(req.Message, req.Signature)
	if err != nil {
		return nil, ErrInvalidSignature
	}
	meta := req.Metadata
	if meta.SellerAddress != seller.Hex() {
		return nil, ErrInvalidSignature
	}

	startingPrice := meta.StartingPrice
	startTime, err1 := time.Parse(time.RFC3339, meta.StartTime)
	endTime, err2 := time.Parse(time.RFC3339, meta.EndTime)
	if err1 != nil || err2 != nil {
		return nil, fmt.Errorf("%w: malformed metadata timestamps", ErrValidation)
	}

	if a.anchors != nil {
		anchored, err := a.anchors.AuctionExists(ctx, req.AuctionID)
		if err != nil {
			logger.Warn("Could not verify anchor for auction %d: %v", req.AuctionID, err)
		} else if !anchored {
			return nil, fmt.Errorf("%w: auction %d not anchored on-chain", ErrValidation, req.AuctionID)
		}
	}

	var existing model.Auction
	err = a.db.First(&existing, "id = ?", req.AuctionID).Error
	if err == nil {
		if existing.MetadataHash == req.MetadataHash {
			return &existing, nil
		}
		return nil, fmt.Errorf("%w: auction %d already registered with different metadata", ErrValidation, req.AuctionID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	auction := &model.Auction{
		ID:            req.AuctionID,
		TicketID:      meta.TicketID,
		EventID:       meta.EventID,
		SellerAddress: meta.SellerAddress,
		StartingPrice: startingPrice,
		CurrentPrice:  startingPrice,
		StartTime:     startTime,
		EndTime:       endTime,
		Status:        model.AuctionStatusActive,
		MetadataHash:  req.MetadataHash,
	}
	if err := a.db.Create(auction).Error; err != nil {
		return nil, err
	}

	// A pending alert for this id means the monitor saw the anchor before
	// the registration arrived; the late registration resolves it.
	a.db.Model(&model.AnchorAlert{}).
		Where("auction_id = ? AND resolved = ?", req.AuctionID, false).
		Update("resolved", true)

	return auction, nil
}

// ListFilter narrows the marketplace auction listing.
type ListFilter struct {
	Status        string
	EventID       int64
	SellerAddress string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	SortBy        string
}

// List returns auctions matching the filter.
func (a *AuctionLogic) List(filter ListFilter) ([]model.Auction, error) {
	query := a.db.Model(&model.Auction{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.EventID > 0 {
		query = query.Where("event_id = ?", filter.EventID)
	}
	if filter.SellerAddress != "" {
		query = query.Where("lower(seller_address) = lower(?)", filter.SellerAddress)
	}
	if filter.MinPrice != nil {
		query = query.Where("current_price >= ?", filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("current_price <= ?", filter.MaxPrice)
	}

	switch filter.SortBy {
	case "price_asc":
		query = query.Order("current_price ASC")
	case "price_desc":
		query = query.Order("current_price DESC")
	case "ending_soon":
		query = query.Order("end_time ASC")
	default:
		query = query.Order("created_at DESC")
	}

	var auctions []model.Auction
	if err := query.Find(&auctions).Error; err != nil {
		return nil, err
	}
	return auctions, nil
}

// Get returns one auction by its on-chain id.
func (a *AuctionLogic) Get(auctionID int64) (*model.Auction, error) {
	var auction model.Auction
	if err := a.db.First(&auction, "id = ?", auctionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuctionNotFound
		}
		return nil, err
	}
	return &auction, nil
}

// TicketListed reports whether a ticket is under an active, unexpired
// auction.
func (a *AuctionLogic) TicketListed(ticketID int64) (bool, error) {
	return a.hasActiveAuction(ticketID)
}

// SweepExpired flips active auctions past their end time to ended and
// returns how many were swept.
func (a *AuctionLogic) SweepExpired() (int64, error) {
	res := a.db.Model(&model.Auction{}).
		Where("status = ? AND end_time <= ?", model.AuctionStatusActive, a.now()).
		Update("status", model.AuctionStatusEnded)
	return res.RowsAffected, res.Error
}

func (a *AuctionLogic) hasActiveAuction(ticketID int64) (bool, error) {
	var count int64
	err := a.db.Model(&model.Auction{}).
		Where("ticket_id = ? AND status = ? AND end_time > ?",
			ticketID, model.AuctionStatusActive, a.now()).
		Count(&count).Error
	return count > 0, err
}

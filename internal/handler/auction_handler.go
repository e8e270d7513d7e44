package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/lumina/lts/internal/chain"
	"github.com/lumina/lts/internal/logger"
	"github.com/lumina/lts/internal/logic"
	"github.com/lumina/lts/internal/monitoring"
	"github.com/lumina/lts/internal/wallet"
)

// TicketReader is the chain surface the marketplace endpoints need.
type TicketReader interface {
	GetTicket(ctx context.Context, ticketID int64) (*chain.TicketRecord, error)
	GetTicketsByOwner(ctx context.Context, owner common.Address, eventID int64) ([]int64, error)
}

type AuctionHandler struct {
	auctions *logic.AuctionLogic
	bids     *logic.BidLogic
	tickets  TicketReader
}

func NewAuctionHandler(auctions *logic.AuctionLogic, bids *logic.BidLogic, tickets TicketReader) *AuctionHandler {
	return &AuctionHandler{auctions: auctions, bids: bids, tickets: tickets}
}

// ListAuctions handles GET /api/v1/marketplace/auctions.
func (h *AuctionHandler) ListAuctions(c *gin.Context) {
	filter := logic.ListFilter{
		Status:        c.Query("status"),
		SellerAddress: c.Query("seller"),
		SortBy:        c.Query("sortBy"),
	}
	if raw := c.Query("eventId"); raw != "" {
		eventID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			Fail(c, http.StatusBadRequest, "invalid event id")
			return
		}
		filter.EventID = eventID
	}
	if raw := c.Query("minPrice"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			Fail(c, http.StatusBadRequest, "invalid min price")
			return
		}
		filter.MinPrice = &price
	}
	if raw := c.Query("maxPrice"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			Fail(c, http.StatusBadRequest, "invalid max price")
			return
		}
		filter.MaxPrice = &price
	}

	auctions, err := h.auctions.List(filter)
	if err != nil {
		logger.Error("Failed to list auctions: %v", err)
		FailFromError(c, err)
		return
	}
	Success(c, auctions)
}

// GetAuction handles GET /api/v1/marketplace/auctions/:id.
func (h *AuctionHandler) GetAuction(c *gin.Context) {
	auctionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || auctionID <= 0 {
		Fail(c, http.StatusBadRequest, "invalid auction id")
		return
	}

	auction, err := h.auctions.Get(auctionID)
	if err != nil {
		FailFromError(c, err)
		return
	}
	Success(c, auction)
}

// PrepareAuction handles POST /api/v1/marketplace/auctions/prepare.
func (h *AuctionHandler) PrepareAuction(c *gin.Context) {
	var req logic.PrepareAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.auctions.Prepare(c.Request.Context(), req)
	if err != nil {
		FailFromError(c, err)
		return
	}
	Success(c, result)
}

// RegisterAuction handles POST /api/v1/marketplace/register.
func (h *AuctionHandler) RegisterAuction(c *gin.Context) {
	var req logic.RegisterAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	auction, err := h.auctions.Register(c.Request.Context(), req)
	if err != nil {
		FailFromError(c, err)
		return
	}
	Created(c, auction)
}

// PlaceBid handles POST /api/v1/marketplace/auctions/:id/bid.
func (h *AuctionHandler) PlaceBid(c *gin.Context) {
	auctionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || auctionID <= 0 {
		Fail(c, http.StatusBadRequest, "invalid auction id")
		return
	}

	var req logic.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	auction, err := h.bids.PlaceBid(c.Request.Context(), auctionID, req)
	if err != nil {
		monitoring.BidsRejected.WithLabelValues(rejectionReason(err)).Inc()
		FailFromError(c, err)
		return
	}

	monitoring.BidsAccepted.Inc()
	Success(c, auction)
}

// GetBids handles GET /api/v1/marketplace/auctions/:id/bids.
func (h *AuctionHandler) GetBids(c *gin.Context) {
	auctionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || auctionID <= 0 {
		Fail(c, http.StatusBadRequest, "invalid auction id")
		return
	}

	bids, err := h.bids.GetBids(auctionID)
	if err != nil {
		logger.Error("Failed to list bids for auction %d: %v", auctionID, err)
		FailFromError(c, err)
		return
	}
	Success(c, bids)
}

// GetUserTickets handles GET /api/v1/marketplace/user-tickets/:address.
// The eventId query narrows to one event.
func (h *AuctionHandler) GetUserTickets(c *gin.Context) {
	address := c.Param("address")
	if !wallet.ValidAddress(address) {
		Fail(c, http.StatusBadRequest, "invalid address")
		return
	}
	eventID, err := strconv.ParseInt(c.Query("eventId"), 10, 64)
	if err != nil || eventID <= 0 {
		Fail(c, http.StatusBadRequest, "eventId query parameter required")
		return
	}

	ids, err := h.tickets.GetTicketsByOwner(c.Request.Context(), common.HexToAddress(address), eventID)
	if err != nil {
		logger.Error("Failed to read tickets for %s: %v", address, err)
		FailFromError(c, err)
		return
	}
	Success(c, gin.H{"address": address, "eventId": eventID, "ticketIds": ids})
}

// CheckTicket handles GET /api/v1/marketplace/check-ticket/:ticketId. It
// reports the on-chain ticket state plus whether the ticket is under an
// active listing.
func (h *AuctionHandler) CheckTicket(c *gin.Context) {
	ticketID, err := strconv.ParseInt(c.Param("ticketId"), 10, 64)
	if err != nil || ticketID <= 0 {
		Fail(c, http.StatusBadRequest, "invalid ticket id")
		return
	}

	ticket, err := h.tickets.GetTicket(c.Request.Context(), ticketID)
	if err != nil {
		FailFromError(c, err)
		return
	}

	listed, err := h.auctions.TicketListed(ticketID)
	if err != nil {
		logger.Error("Failed to check listing state for ticket %d: %v", ticketID, err)
		FailFromError(c, err)
		return
	}

	Success(c, gin.H{
		"ticketId": ticket.ID,
		"eventId":  ticket.EventID,
		"owner":    ticket.Owner.Hex(),
		"isUsed":   ticket.IsUsed,
		"listed":   listed,
	})
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, logic.ErrStaleBid):
		return "stale"
	case errors.Is(err, logic.ErrAuctionEnded):
		return "ended"
	case errors.Is(err, logic.ErrInsufficientFunds):
		return "funds"
	case errors.Is(err, logic.ErrInvalidSignature):
		return "signature"
	case errors.Is(err, logic.ErrAuctionNotFound):
		return "not_found"
	default:
		return "other"
	}
}

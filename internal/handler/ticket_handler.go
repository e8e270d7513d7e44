package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lumina/lts/internal/lifecycle"
	"github.com/lumina/lts/internal/qr"
)

// TicketHandler exposes the lifecycle operations. These endpoints only
// work on deployments configured with a signing key; without one every
// mutation fails with a recoverable wallet-not-connected condition.
type TicketHandler struct {
	lifecycle *lifecycle.Manager
}

func NewTicketHandler(manager *lifecycle.Manager) *TicketHandler {
	return &TicketHandler{lifecycle: manager}
}

type buyRequest struct {
	EventID    int64 `json:"eventId" binding:"required"`
	TicketType int64 `json:"ticketType"`
	Quantity   int64 `json:"quantity" binding:"required"`
}

// Buy handles POST /api/v1/tickets/buy.
func (h *TicketHandler) Buy(c *gin.Context) {
	var req buyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	cmd, err := h.lifecycle.RequestBuy(c.Request.Context(), req.EventID, req.TicketType, req.Quantity)
	if err != nil {
		h.failLifecycle(c, err)
		return
	}
	Success(c, cmd)
}

type transferRequest struct {
	To string `json:"to" binding:"required"`
}

// Transfer handles POST /api/v1/tickets/:ticketId/transfer.
func (h *TicketHandler) Transfer(c *gin.Context) {
	ticketID, err := strconv.ParseInt(c.Param("ticketId"), 10, 64)
	if err != nil || ticketID <= 0 {
		Fail(c, http.StatusBadRequest, "invalid ticket id")
		return
	}
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	cmd, err := h.lifecycle.RequestTransfer(c.Request.Context(), ticketID, req.To)
	if err != nil {
		h.failLifecycle(c, err)
		return
	}
	Success(c, cmd)
}

// Use handles POST /api/v1/tickets/:ticketId/use.
func (h *TicketHandler) Use(c *gin.Context) {
	ticketID, err := strconv.ParseInt(c.Param("ticketId"), 10, 64)
	if err != nil || ticketID <= 0 {
		Fail(c, http.StatusBadRequest, "invalid ticket id")
		return
	}

	cmd, err := h.lifecycle.RequestUse(c.Request.Context(), ticketID)
	if err != nil {
		h.failLifecycle(c, err)
		return
	}
	Success(c, cmd)
}

type checkInRequest struct {
	Payload string `json:"payload" binding:"required"`
	EventID int64  `json:"eventId" binding:"required"`
}

// CheckIn handles POST /api/v1/tickets/check-in: decode a scanned QR
// payload and mark the ticket used.
func (h *TicketHandler) CheckIn(c *gin.Context) {
	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.lifecycle.CheckIn(c.Request.Context(), req.Payload, req.EventID)
	if err != nil {
		h.failLifecycle(c, err)
		return
	}
	Success(c, result)
}

// QRPayload handles GET /api/v1/tickets/:ticketId/qr and returns the
// payload a wallet renders as a QR code.
func (h *TicketHandler) QRPayload(c *gin.Context) {
	ticketID, err := strconv.ParseInt(c.Param("ticketId"), 10, 64)
	if err != nil || ticketID <= 0 {
		Fail(c, http.StatusBadRequest, "invalid ticket id")
		return
	}
	eventID, err := strconv.ParseInt(c.Query("eventId"), 10, 64)
	if err != nil || eventID <= 0 {
		Fail(c, http.StatusBadRequest, "eventId query parameter required")
		return
	}
	Success(c, gin.H{"payload": qr.Encode(eventID, ticketID)})
}

func (h *TicketHandler) failLifecycle(c *gin.Context, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrWalletNotConnected):
		Fail(c, http.StatusServiceUnavailable, "no signing wallet configured")
	case errors.Is(err, qr.ErrBadPayload):
		Fail(c, http.StatusBadRequest, err.Error())
	default:
		FailFromError(c, err)
	}
}

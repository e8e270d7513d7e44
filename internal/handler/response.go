package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lumina/lts/internal/chain"
	"github.com/lumina/lts/internal/logic"
)

// Response is the uniform envelope every endpoint returns.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Message: "ok", Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Message: "created", Data: data})
}

func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Success: false, Message: message})
}

func FailWithData(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Success: false, Message: message, Data: data})
}

// FailFromError maps business and chain rejections onto HTTP statuses. The
// stale-bid conflict carries the authoritative price in the data field so
// clients can re-bid without another round trip.
func FailFromError(c *gin.Context, err error) {
	var stale *logic.StaleBidError
	if errors.As(err, &stale) {
		FailWithData(c, http.StatusConflict, "bid is below the current price",
			gin.H{"currentPrice": stale.CurrentPrice})
		return
	}

	switch {
	case errors.Is(err, logic.ErrInvalidSignature):
		Fail(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, logic.ErrTicketRequired), errors.Is(err, logic.ErrNotAuthor):
		Fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, logic.ErrReviewNotFound), errors.Is(err, logic.ErrAuctionNotFound), errors.Is(err, chain.ErrNotFound):
		Fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, logic.ErrAlreadyReviewed), errors.Is(err, logic.ErrDuplicateListing),
		errors.Is(err, chain.ErrDuplicateListing), errors.Is(err, chain.ErrAlreadyUsed),
		errors.Is(err, chain.ErrSoldOut):
		Fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, chain.ErrInsufficientPayment):
		Fail(c, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, chain.ErrNotTicketOwner):
		Fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, logic.ErrAuctionEnded):
		Fail(c, http.StatusGone, err.Error())
	case errors.Is(err, logic.ErrInsufficientFunds):
		Fail(c, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, logic.ErrValidation), errors.Is(err, chain.ErrValidation):
		Fail(c, http.StatusBadRequest, err.Error())
	default:
		Fail(c, http.StatusInternalServerError, "internal error")
	}
}

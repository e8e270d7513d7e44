package logic

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Business rejection categories. Handlers map these onto HTTP statuses and
// the distinct user-facing error strings the clients key on.
var (
	ErrValidation       = errors.New("logic: invalid request")
	ErrInvalidSignature = errors.New("logic: invalid signature")

	ErrTicketRequired  = errors.New("logic: ticket required")
	ErrAlreadyReviewed = errors.New("logic: already reviewed")
	ErrNotAuthor       = errors.New("logic: not the review author")
	ErrReviewNotFound  = errors.New("logic: review not found")

	ErrAuctionNotFound   = errors.New("logic: auction not found")
	ErrAuctionEnded      = errors.New("logic: auction ended")
	ErrDuplicateListing  = errors.New("logic: ticket already listed")
	ErrInsufficientFunds = errors.New("logic: insufficient funds")

	// ErrStaleBid is the category sentinel; the concrete error is a
	// StaleBidError carrying the fresh price so the caller can re-bid
	// immediately.
	ErrStaleBid = errors.New("logic: bid lost the race")
)

// StaleBidError reports a bid computed against a superseded price
// baseline. CurrentPrice is re-read after the conditional update failed,
// so it reflects the bid that won.
type StaleBidError struct {
	CurrentPrice decimal.Decimal
}

func (e *StaleBidError) Error() string {
	return fmt.Sprintf("bid is not above the current price of %s", e.CurrentPrice.String())
}

func (e *StaleBidError) Is(target error) bool {
	return target == ErrStaleBid
}

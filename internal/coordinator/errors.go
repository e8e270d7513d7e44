package coordinator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrRegistrationFailed means the auction is anchored on-chain but the
	// marketplace never registered it. The on-chain listing cannot be
	// undone; the caller must keep the auction id and metadata hash for
	// later registration instead of retrying creation from scratch.
	ErrRegistrationFailed = errors.New("coordinator: auction anchored but not registered")

	ErrWalletNotConnected = errors.New("coordinator: wallet not connected")
	ErrDuplicateListing   = errors.New("coordinator: ticket already listed")
	ErrAuctionEnded       = errors.New("coordinator: auction has ended")
	ErrAuctionNotFound    = errors.New("coordinator: auction not found")
	ErrValidation         = errors.New("coordinator: validation failed")
	ErrStaleBid           = errors.New("coordinator: bid below current price")
	ErrInsufficientFunds  = errors.New("coordinator: wallet balance below bid amount")
)

// StaleBidError reports a bid that lost the price race, carrying the
// authoritative price so the caller can rebid without a second round trip.
type StaleBidError struct {
	CurrentPrice decimal.Decimal
}

func (e *StaleBidError) Error() string {
	return fmt.Sprintf("bid is stale, current price is %s", e.CurrentPrice)
}

func (e *StaleBidError) Is(target error) bool {
	return target == ErrStaleBid
}

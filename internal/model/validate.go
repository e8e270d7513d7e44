package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ValidateAuctionWindow applies the listing rules shared by the client
// coordinator (fail fast, before any network call) and the backend
// (authoritative re-check): positive starting price, start strictly in the
// future, end strictly after start, and a minimum duration.
func ValidateAuctionWindow(startingPrice decimal.Decimal, start, end, now time.Time, minDuration time.Duration) error {
	if !startingPrice.IsPositive() {
		return errors.New("starting price must be greater than zero")
	}
	if !start.After(now) {
		return errors.New("start time must be in the future")
	}
	if !end.After(start) {
		return errors.New("end time must be after start time")
	}
	if end.Sub(start) < minDuration {
		return fmt.Errorf("auction must run for at least %s", minDuration)
	}
	return nil
}

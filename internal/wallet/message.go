package wallet

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Challenge messages bind the semantic content of each mutating request so
// a signature cannot be replayed against a different event, auction or
// price baseline. The server re-parses the message and checks the bound
// values against the request body.

var (
	ErrMessageMismatch = errors.New("wallet: message does not bind the request")
	ErrMessageExpired  = errors.New("wallet: message timestamp too old")
)

// MaxMessageAge bounds how long a signed challenge stays acceptable.
const MaxMessageAge = 10 * time.Minute

type ReviewAction string

const (
	ReviewActionCreate ReviewAction = "create"
	ReviewActionUpdate ReviewAction = "update"
)

// BuildReviewMessage returns the challenge for a review create or update.
func BuildReviewMessage(eventID int64, action ReviewAction, at time.Time) string {
	return fmt.Sprintf("Lumina Tickets: Review %s for event %d at %s",
		action, eventID, at.UTC().Format(time.RFC3339))
}

// BuildListingMessage returns the challenge for listing a ticket at auction.
func BuildListingMessage(ticketID, eventID int64, startingPrice decimal.Decimal, at time.Time) string {
	return fmt.Sprintf("Lumina Tickets: List ticket %d (event %d) for auction at %s ETH, signed %s",
		ticketID, eventID, startingPrice.String(), at.UTC().Format(time.RFC3339))
}

// BuildBidMessage returns the challenge for a bid. The amount, auction and
// ticket identity are all bound so a stale or cross-auction replay fails.
func BuildBidMessage(auctionID, ticketID int64, amount decimal.Decimal, at time.Time) string {
	return fmt.Sprintf("Lumina Tickets: Bid %s ETH on auction %d (ticket %d) at %s",
		amount.String(), auctionID, ticketID, at.UTC().Format(time.RFC3339))
}

// CheckReviewMessage verifies that msg is a review challenge for the given
// event and action and that it is fresh.
func CheckReviewMessage(msg string, eventID int64, action ReviewAction, now time.Time) error {
	var got string
	var gotEvent int64
	var ts string
	if _, err := fmt.Sscanf(msg, "Lumina Tickets: Review %s for event %d at %s", &got, &gotEvent, &ts); err != nil {
		return ErrMessageMismatch
	}
	if ReviewAction(got) != action || gotEvent != eventID {
		return ErrMessageMismatch
	}
	return checkFreshness(ts, now)
}

// CheckListingMessage verifies a listing challenge against the prepared
// request.
func CheckListingMessage(msg string, ticketID, eventID int64, startingPrice decimal.Decimal, now time.Time) error {
	var gotTicket, gotEvent int64
	var price, ts string
	if _, err := fmt.Sscanf(msg, "Lumina Tickets: List ticket %d (event %d) for auction at %s ETH, signed %s",
		&gotTicket, &gotEvent, &price, &ts); err != nil {
		return ErrMessageMismatch
	}
	parsed, err := decimal.NewFromString(price)
	if err != nil || gotTicket != ticketID || gotEvent != eventID || !parsed.Equal(startingPrice) {
		return ErrMessageMismatch
	}
	return checkFreshness(ts, now)
}

// CheckBidMessage verifies a bid challenge against the submitted bid.
func CheckBidMessage(msg string, auctionID, ticketID int64, amount decimal.Decimal, now time.Time) error {
	var gotAuction, gotTicket int64
	var amt, ts string
	if _, err := fmt.Sscanf(msg, "Lumina Tickets: Bid %s ETH on auction %d (ticket %d) at %s",
		&amt, &gotAuction, &gotTicket, &ts); err != nil {
		return ErrMessageMismatch
	}
	parsed, err := decimal.NewFromString(amt)
	if err != nil || gotAuction != auctionID || gotTicket != ticketID || !parsed.Equal(amount) {
		return ErrMessageMismatch
	}
	return checkFreshness(ts, now)
}

func checkFreshness(ts string, now time.Time) error {
	at, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ErrMessageMismatch
	}
	if now.Sub(at) > MaxMessageAge || at.Sub(now) > time.Minute {
		return ErrMessageExpired
	}
	return nil
}

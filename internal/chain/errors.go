package chain

import (
	"errors"
	"fmt"
	"strings"
)

// Connectivity and authorization failures. These are recoverable by user
// action (connect a provider, switch network, approve the key) and are
// kept distinct from contract-logic failures so callers can decide
// between a reconnect prompt and a business error.
var (
	ErrNotConnected  = errors.New("chain: provider not connected")
	ErrWrongNetwork  = errors.New("chain: connected to wrong network")
	ErrSignerMissing = errors.New("chain: signer required for write operation")
	ErrAuthorization = errors.New("chain: account authorization declined")
)

// Read and validation failures.
var (
	ErrNotFound   = errors.New("chain: record not found")
	ErrValidation = errors.New("chain: invalid arguments")
)

// Contract-logic failure categories, matched from revert reasons.
var (
	ErrInsufficientPayment = errors.New("chain: insufficient payment")
	ErrSoldOut             = errors.New("chain: not enough tickets remaining")
	ErrAlreadyUsed         = errors.New("chain: ticket already used")
	ErrNotTicketOwner      = errors.New("chain: caller does not own ticket")
	ErrDuplicateListing    = errors.New("chain: ticket already listed for auction")
)

// RevertError is a confirmed-but-reverted transaction, carrying the revert
// reason string where the node surfaced one. errors.Is matches the mapped
// category sentinel so callers never parse reason strings themselves.
type RevertError struct {
	Reason   string
	category error
}

func (e *RevertError) Error() string {
	if e.Reason == "" {
		return "chain: transaction reverted"
	}
	return fmt.Sprintf("chain: transaction reverted: %s", e.Reason)
}

func (e *RevertError) Is(target error) bool {
	return e.category != nil && target == e.category
}

// NewRevertError categorizes a revert reason string into one of the known
// contract-logic failures. Unrecognized reasons stay uncategorized but
// keep the verbatim reason.
func NewRevertError(reason string) *RevertError {
	e := &RevertError{Reason: reason}
	lower := strings.ToLower(reason)
	switch {
	case strings.Contains(lower, "insufficient payment"):
		e.category = ErrInsufficientPayment
	case strings.Contains(lower, "not enough tickets"), strings.Contains(lower, "sold out"):
		e.category = ErrSoldOut
	case strings.Contains(lower, "already used"):
		e.category = ErrAlreadyUsed
	case strings.Contains(lower, "not ticket owner"), strings.Contains(lower, "not the owner"):
		e.category = ErrNotTicketOwner
	case strings.Contains(lower, "already listed"), strings.Contains(lower, "active auction"):
		e.category = ErrDuplicateListing
	}
	return e
}

// reasonFromCallError extracts the revert reason from a replayed call
// error, which nodes format as "execution reverted: <reason>".
func reasonFromCallError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	const marker = "execution reverted"
	idx := strings.Index(msg, marker)
	if idx < 0 {
		return ""
	}
	rest := strings.TrimPrefix(msg[idx+len(marker):], ":")
	return strings.TrimSpace(rest)
}

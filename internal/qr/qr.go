// Package qr encodes and decodes the capability payload embedded in a
// ticket's QR code. The payload is shown by the ticket holder and decoded
// by the organizer's scanner; it carries identifiers only, never proof of
// ownership.
package qr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const scheme = "lumina://"

// ErrBadPayload marks a scan result that is not a ticket payload.
var ErrBadPayload = errors.New("qr: malformed ticket payload")

// Encode builds the payload for a ticket: lumina://<eventId>/<ticketId>.
func Encode(eventID, ticketID int64) string {
	return fmt.Sprintf("%s%d/%d", scheme, eventID, ticketID)
}

// Decode parses a scanned payload back into its identifiers.
func Decode(payload string) (eventID, ticketID int64, err error) {
	rest, ok := strings.CutPrefix(payload, scheme)
	if !ok {
		return 0, 0, ErrBadPayload
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		return 0, 0, ErrBadPayload
	}
	eventID, err = strconv.ParseInt(parts[0], 10, 64)
	if err != nil || eventID <= 0 {
		return 0, 0, ErrBadPayload
	}
	ticketID, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil || ticketID <= 0 {
		return 0, 0, ErrBadPayload
	}
	return eventID, ticketID, nil
}

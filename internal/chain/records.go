package chain

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// EventRecord is the decoded on-chain event struct. Contract return tuples
// are decoded into this record once, at this boundary; nothing above the
// accessor sees positional indexes.
type EventRecord struct {
	ID          int64
	Title       string
	Description string
	Date        string
	Location    string
	PriceWei    *big.Int
	ImageURL    string
	Organizer   common.Address
	TotalTickets int64
	SoldTickets  int64
	Category    string
	IsActive    bool
	RoyaltyBps  int64
}

// PriceETH converts the primary sale price to display units.
func (e *EventRecord) PriceETH() decimal.Decimal {
	return WeiToEther(e.PriceWei)
}

// Remaining returns the unsold capacity.
func (e *EventRecord) Remaining() int64 {
	return e.TotalTickets - e.SoldTickets
}

// TicketRecord is the decoded on-chain ticket struct.
type TicketRecord struct {
	ID           int64
	EventID      int64
	Owner        common.Address
	PurchaseTime time.Time
	QRCodeData   string
	IsUsed       bool
	TicketType   int64
}

// decodeEventRecord maps the 13-field events(uint256) tuple into an
// EventRecord. A zero event id means the slot was never assigned.
func decodeEventRecord(out []interface{}) (*EventRecord, error) {
	if len(out) < 13 {
		return nil, fmt.Errorf("%w: event tuple has %d fields", ErrValidation, len(out))
	}

	id, err := asBig(out[0], "eventId")
	if err != nil {
		return nil, err
	}
	if id.Sign() == 0 {
		return nil, ErrNotFound
	}

	price, err := asBig(out[5], "priceETH")
	if err != nil {
		return nil, err
	}
	organizer, err := asAddress(out[7], "organizer")
	if err != nil {
		return nil, err
	}
	total, err := asBig(out[8], "totalTickets")
	if err != nil {
		return nil, err
	}
	sold, err := asBig(out[9], "soldTickets")
	if err != nil {
		return nil, err
	}
	royalty, err := asBig(out[12], "royaltyPercentage")
	if err != nil {
		return nil, err
	}

	return &EventRecord{
		ID:           id.Int64(),
		Title:        asString(out[1]),
		Description:  asString(out[2]),
		Date:         asString(out[3]),
		Location:     asString(out[4]),
		PriceWei:     price,
		ImageURL:     asString(out[6]),
		Organizer:    organizer,
		TotalTickets: total.Int64(),
		SoldTickets:  sold.Int64(),
		Category:     asString(out[10]),
		IsActive:     asBool(out[11]),
		RoyaltyBps:   royalty.Int64(),
	}, nil
}

// decodeTicketRecord maps the 7-field getTicket tuple into a TicketRecord.
func decodeTicketRecord(out []interface{}) (*TicketRecord, error) {
	if len(out) < 7 {
		return nil, fmt.Errorf("%w: ticket tuple has %d fields", ErrValidation, len(out))
	}

	id, err := asBig(out[0], "ticketId")
	if err != nil {
		return nil, err
	}
	if id.Sign() == 0 {
		return nil, ErrNotFound
	}

	eventID, err := asBig(out[1], "eventId")
	if err != nil {
		return nil, err
	}
	owner, err := asAddress(out[2], "ownerAddress")
	if err != nil {
		return nil, err
	}
	purchased, err := asBig(out[3], "purchaseDate")
	if err != nil {
		return nil, err
	}
	ticketType, err := asBig(out[6], "ticketType")
	if err != nil {
		return nil, err
	}

	return &TicketRecord{
		ID:           id.Int64(),
		EventID:      eventID.Int64(),
		Owner:        owner,
		PurchaseTime: time.Unix(purchased.Int64(), 0).UTC(),
		QRCodeData:   asString(out[4]),
		IsUsed:       asBool(out[5]),
		TicketType:   ticketType.Int64(),
	}, nil
}

func asBig(v interface{}, field string) (*big.Int, error) {
	b, ok := v.(*big.Int)
	if !ok || b == nil {
		return nil, fmt.Errorf("%w: field %s is not uint256", ErrValidation, field)
	}
	return b, nil
}

func asAddress(v interface{}, field string) (common.Address, error) {
	a, ok := v.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%w: field %s is not address", ErrValidation, field)
	}
	return a, nil
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}

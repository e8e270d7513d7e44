package chain

import (
	"encoding/json"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// EventType discriminates the typed domain events decoded from contract
// logs.
type EventType string

const (
	TypeEventCreated      EventType = "EventCreated"
	TypeTicketMinted      EventType = "TicketMinted"
	TypeTicketTransferred EventType = "TicketTransferred"
	TypeTicketUsed        EventType = "TicketUsed"
	TypeRoyaltyWithdrawn  EventType = "RoyaltyWithdrawn"
	TypeAuctionCreated    EventType = "AuctionCreated"
	TypeBidRecorded       EventType = "BidRecorded"
)

// ErrUnknownEvent marks a log whose signature is not part of the ticketing
// ABI.
var ErrUnknownEvent = errors.New("chain: unknown event signature")

// DomainEvent is one decoded contract log. Only the fields relevant to the
// event type are populated.
type DomainEvent struct {
	Type        EventType `json:"type"`
	BlockNumber uint64    `json:"block_number"`
	TxHash      string    `json:"tx_hash"`
	LogIndex    uint      `json:"log_index"`

	EventID   int64 `json:"event_id,omitempty"`
	TicketID  int64 `json:"ticket_id,omitempty"`
	AuctionID int64 `json:"auction_id,omitempty"`

	Organizer string `json:"organizer,omitempty"`
	Buyer     string `json:"buyer,omitempty"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Seller    string `json:"seller,omitempty"`
	Bidder    string `json:"bidder,omitempty"`

	TicketType   int64  `json:"ticket_type,omitempty"`
	Title        string `json:"title,omitempty"`
	MetadataHash string `json:"metadata_hash,omitempty"`
	BidHash      string `json:"bid_hash,omitempty"`
	AmountWei    string `json:"amount_wei,omitempty"`
}

func (e *DomainEvent) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

func UnmarshalDomainEvent(data []byte) (*DomainEvent, error) {
	var e DomainEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// DecodeLog maps a raw contract log onto a typed DomainEvent.
func (c *Client) DecodeLog(log types.Log) (*DomainEvent, error) {
	if len(log.Topics) == 0 {
		return nil, ErrUnknownEvent
	}

	e := &DomainEvent{
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash.Hex(),
		LogIndex:    log.Index,
	}

	switch log.Topics[0] {
	case c.abi.Events["EventCreated"].ID:
		e.Type = TypeEventCreated
		e.EventID = topicInt(log, 1)
		e.Organizer = topicAddr(log, 2)
		if vals, err := c.abi.Unpack("EventCreated", log.Data); err == nil && len(vals) > 0 {
			e.Title = asString(vals[0])
		}

	case c.abi.Events["TicketMinted"].ID:
		e.Type = TypeTicketMinted
		e.TicketID = topicInt(log, 1)
		e.EventID = topicInt(log, 2)
		e.Buyer = topicAddr(log, 3)
		if vals, err := c.abi.Unpack("TicketMinted", log.Data); err == nil && len(vals) > 0 {
			if t, ok := vals[0].(*big.Int); ok {
				e.TicketType = t.Int64()
			}
		}

	case c.abi.Events["TicketTransferred"].ID:
		e.Type = TypeTicketTransferred
		e.TicketID = topicInt(log, 1)
		e.From = topicAddr(log, 2)
		e.To = topicAddr(log, 3)

	case c.abi.Events["TicketUsed"].ID:
		e.Type = TypeTicketUsed
		e.TicketID = topicInt(log, 1)

	case c.abi.Events["RoyaltyWithdrawn"].ID:
		e.Type = TypeRoyaltyWithdrawn
		e.Organizer = topicAddr(log, 1)
		if vals, err := c.abi.Unpack("RoyaltyWithdrawn", log.Data); err == nil && len(vals) > 0 {
			if amount, ok := vals[0].(*big.Int); ok {
				e.AmountWei = amount.String()
			}
		}

	case c.abi.Events["AuctionCreated"].ID:
		e.Type = TypeAuctionCreated
		e.AuctionID = topicInt(log, 1)
		e.TicketID = topicInt(log, 2)
		e.Seller = topicAddr(log, 3)
		if vals, err := c.abi.Unpack("AuctionCreated", log.Data); err == nil && len(vals) > 0 {
			e.MetadataHash = asString(vals[0])
		}

	case c.abi.Events["BidRecorded"].ID:
		e.Type = TypeBidRecorded
		e.AuctionID = topicInt(log, 1)
		e.Bidder = topicAddr(log, 2)
		if vals, err := c.abi.Unpack("BidRecorded", log.Data); err == nil && len(vals) > 0 {
			e.BidHash = asString(vals[0])
		}

	default:
		return nil, ErrUnknownEvent
	}

	return e, nil
}

func topicInt(log types.Log, i int) int64 {
	if len(log.Topics) <= i {
		return 0
	}
	return new(big.Int).SetBytes(log.Topics[i].Bytes()).Int64()
}

func topicAddr(log types.Log, i int) string {
	if len(log.Topics) <= i {
		return ""
	}
	return common.BytesToAddress(log.Topics[i].Bytes()).Hex()
}

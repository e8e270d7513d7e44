package chain

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/panjf2000/ants/v2"
	"github.com/shopspring/decimal"

	"github.com/lumina/lts/internal/logger"
)

// CreateEventParams carries everything the contract needs for a new event.
// One price and one supply per tier, index-aligned.
type CreateEventParams struct {
	Title       string
	Description string
	Date        string
	Location    string
	TierPrices  []decimal.Decimal // display units per tier
	TierSupply  []int64
	ImageRef    string
	Category    string
	RoyaltyBps  int64
}

// CreateEvent submits the event and returns the contract-assigned id,
// parsed from the EventCreated log of the confirmed receipt.
func (c *Client) CreateEvent(ctx context.Context, p CreateEventParams) (int64, error) {
	if len(p.TierPrices) == 0 || len(p.TierPrices) != len(p.TierSupply) {
		return 0, fmt.Errorf("%w: prices and supplies must align", ErrValidation)
	}
	if p.RoyaltyBps < 0 || p.RoyaltyBps > 10000 {
		return 0, fmt.Errorf("%w: royalty must be 0-10000 basis points", ErrValidation)
	}

	prices := make([]*big.Int, len(p.TierPrices))
	supplies := make([]*big.Int, len(p.TierSupply))
	for i := range p.TierPrices {
		if p.TierPrices[i].IsNegative() {
			return 0, fmt.Errorf("%w: tier price must not be negative", ErrValidation)
		}
		prices[i] = EtherToWei(p.TierPrices[i])
		supplies[i] = big.NewInt(p.TierSupply[i])
	}

	receipt, err := c.transact(ctx, nil, "createEvent",
		p.Title, p.Description, p.Date, p.Location,
		prices, supplies, p.ImageRef, p.Category, big.NewInt(p.RoyaltyBps))
	if err != nil {
		return 0, err
	}

	eventID, err := c.idFromLogs(receipt, "EventCreated", 1)
	if err != nil {
		return 0, err
	}
	return eventID, nil
}

// GetEvent reads one event record.
func (c *Client) GetEvent(ctx context.Context, eventID int64) (*EventRecord, error) {
	out, err := c.call(ctx, "events", big.NewInt(eventID))
	if err != nil {
		return nil, err
	}
	return decodeEventRecord(out)
}

// GetAllEvents reads a bounded trailing window of the most recently
// created events. Individual read failures are skipped rather than
// aborting the scan; results are most-recent first. The window reads run
// on a worker pool since each is an independent RPC.
func (c *Client) GetAllEvents(ctx context.Context) ([]*EventRecord, error) {
	out, err := c.call(ctx, "nextEventId")
	if err != nil {
		return nil, err
	}
	next, err := asBig(out[0], "nextEventId")
	if err != nil {
		return nil, err
	}

	nextID := next.Int64()
	window := int64(c.cfg.EventWindow)
	if window <= 0 {
		window = 10
	}
	startID := nextID - window
	if startID < 1 {
		startID = 1
	}
	if nextID <= startID {
		return nil, nil
	}

	pool, err := ants.NewPool(8)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		records []*EventRecord
	)
	for id := startID; id < nextID; id++ {
		id := id
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			record, err := c.GetEvent(ctx, id)
			if err != nil {
				logger.Warn("Skipping unreadable event %d: %v", id, err)
				return
			}
			mu.Lock()
			records = append(records, record)
			mu.Unlock()
		}); err != nil {
			wg.Done()
			logger.Warn("Failed to schedule event read %d: %v", id, err)
		}
	}
	wg.Wait()

	sort.Slice(records, func(i, j int) bool { return records[i].ID > records[j].ID })
	return records, nil
}

// BuyTickets computes the required payment from the event's tier price and
// attaches it to the transaction. The contract is the authority on both
// payment and remaining supply.
func (c *Client) BuyTickets(ctx context.Context, eventID, ticketType, quantity int64) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	event, err := c.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	total := new(big.Int).Mul(event.PriceWei, big.NewInt(quantity))

	_, err = c.transact(ctx, total, "buyTickets",
		big.NewInt(eventID), big.NewInt(ticketType), big.NewInt(quantity))
	return err
}

// MintTickets is the organizer-side mint to an explicit buyer address.
func (c *Client) MintTickets(ctx context.Context, eventID, ticketType, quantity int64, buyer common.Address) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	event, err := c.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	total := new(big.Int).Mul(event.PriceWei, big.NewInt(quantity))

	_, err = c.transact(ctx, total, "mintTickets",
		big.NewInt(eventID), big.NewInt(ticketType), big.NewInt(quantity), buyer)
	return err
}

// AirdropTickets mints one free ticket per recipient (organizer only).
func (c *Client) AirdropTickets(ctx context.Context, eventID, ticketType int64, recipients []common.Address) error {
	if len(recipients) == 0 {
		return fmt.Errorf("%w: no recipients", ErrValidation)
	}
	_, err := c.transact(ctx, nil, "airdropTickets",
		big.NewInt(eventID), big.NewInt(ticketType), recipients)
	return err
}

// TransferTicket moves a ticket to a new owner. Royalty accrual to the
// organizer is a contract side effect of the transfer.
func (c *Client) TransferTicket(ctx context.Context, ticketID int64, to common.Address) error {
	_, err := c.transact(ctx, nil, "transferTicket", big.NewInt(ticketID), to)
	return err
}

// UseTicket marks a ticket used and burns the token unit. Not idempotent:
// a second call fails with ErrAlreadyUsed.
func (c *Client) UseTicket(ctx context.Context, ticketID int64) error {
	_, err := c.transact(ctx, nil, "useTicket", big.NewInt(ticketID))
	return err
}

// GetTicket reads one ticket record.
func (c *Client) GetTicket(ctx context.Context, ticketID int64) (*TicketRecord, error) {
	out, err := c.call(ctx, "getTicket", big.NewInt(ticketID))
	if err != nil {
		return nil, err
	}
	return decodeTicketRecord(out)
}

// GetTicketsByOwner lists the ticket ids an address holds for an event.
func (c *Client) GetTicketsByOwner(ctx context.Context, owner common.Address, eventID int64) ([]int64, error) {
	out, err := c.call(ctx, "getTicketsByOwner", owner, big.NewInt(eventID))
	if err != nil {
		return nil, err
	}
	raw, ok := out[0].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected getTicketsByOwner shape", ErrValidation)
	}
	ids := make([]int64, len(raw))
	for i, id := range raw {
		ids[i] = id.Int64()
	}
	return ids, nil
}

// OwnsTicketForEvent reports whether an address holds at least one ticket
// for the event. Used to gate review creation.
func (c *Client) OwnsTicketForEvent(ctx context.Context, owner common.Address, eventID int64) (bool, error) {
	ids, err := c.GetTicketsByOwner(ctx, owner, eventID)
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

// BalanceOf reads the multi-token balance for (owner, tokenId).
func (c *Client) BalanceOf(ctx context.Context, owner common.Address, tokenID *big.Int) (*big.Int, error) {
	out, err := c.call(ctx, "balanceOf", owner, tokenID)
	if err != nil {
		return nil, err
	}
	return asBig(out[0], "balance")
}

// OrganizerRoyalties reads the accrued, withdrawable royalty balance.
func (c *Client) OrganizerRoyalties(ctx context.Context, organizer common.Address) (decimal.Decimal, error) {
	out, err := c.call(ctx, "organizerRoyalties", organizer)
	if err != nil {
		return decimal.Zero, err
	}
	wei, err := asBig(out[0], "royalties")
	if err != nil {
		return decimal.Zero, err
	}
	return WeiToEther(wei), nil
}

// WithdrawRoyalties pays accrued royalties out to the signer.
func (c *Client) WithdrawRoyalties(ctx context.Context) error {
	_, err := c.transact(ctx, nil, "withdrawRoyalties")
	return err
}

// CreateAuction anchors an auction pointer on-chain and returns the
// contract-assigned auction id from the AuctionCreated log.
func (c *Client) CreateAuction(ctx context.Context, ticketID int64, metadataHash string) (int64, error) {
	if metadataHash == "" {
		return 0, fmt.Errorf("%w: empty metadata hash", ErrValidation)
	}
	receipt, err := c.transact(ctx, nil, "createAuction", big.NewInt(ticketID), metadataHash)
	if err != nil {
		return 0, err
	}
	return c.idFromLogs(receipt, "AuctionCreated", 1)
}

// RecordBid anchors a bid pointer on-chain (append-only).
func (c *Client) RecordBid(ctx context.Context, auctionID int64, bidHash string) error {
	if bidHash == "" {
		return fmt.Errorf("%w: empty bid hash", ErrValidation)
	}
	_, err := c.transact(ctx, nil, "recordBid", big.NewInt(auctionID), bidHash)
	return err
}

// GetAuctionMetadataHash reads the anchored metadata pointer.
func (c *Client) GetAuctionMetadataHash(ctx context.Context, auctionID int64) (string, error) {
	out, err := c.call(ctx, "getAuctionMetadataHash", big.NewInt(auctionID))
	if err != nil {
		return "", err
	}
	return asString(out[0]), nil
}

// GetAuctionBidHashes reads all anchored bid pointers for an auction.
func (c *Client) GetAuctionBidHashes(ctx context.Context, auctionID int64) ([]string, error) {
	out, err := c.call(ctx, "getAuctionBidHashes", big.NewInt(auctionID))
	if err != nil {
		return nil, err
	}
	hashes, ok := out[0].([]string)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected getAuctionBidHashes shape", ErrValidation)
	}
	return hashes, nil
}

// GetAuctionBidCount reads the number of anchored bids.
func (c *Client) GetAuctionBidCount(ctx context.Context, auctionID int64) (int, error) {
	out, err := c.call(ctx, "getAuctionBidCount", big.NewInt(auctionID))
	if err != nil {
		return 0, err
	}
	count, err := asBig(out[0], "bidCount")
	if err != nil {
		return 0, err
	}
	return int(count.Int64()), nil
}

// AuctionExists reports whether an auction id was ever anchored.
func (c *Client) AuctionExists(ctx context.Context, auctionID int64) (bool, error) {
	out, err := c.call(ctx, "auctionExists", big.NewInt(auctionID))
	if err != nil {
		return false, err
	}
	return asBool(out[0]), nil
}

// idFromLogs extracts the indexed uint256 at topicIndex from the named
// event in a confirmed receipt.
func (c *Client) idFromLogs(receipt *types.Receipt, eventName string, topicIndex int) (int64, error) {
	event, ok := c.abi.Events[eventName]
	if !ok {
		return 0, fmt.Errorf("event %s not in ABI", eventName)
	}
	for _, log := range receipt.Logs {
		if len(log.Topics) <= topicIndex || log.Topics[0] != event.ID {
			continue
		}
		return new(big.Int).SetBytes(log.Topics[topicIndex].Bytes()).Int64(), nil
	}
	return 0, fmt.Errorf("%s log not found in receipt", eventName)
}

// Package lifecycle drives ticket state transitions (buy, transfer, use)
// against the contract. The contract is the sole authority on every
// transition; this layer adds advisory fast-fail prechecks, an optimistic
// sold-count view that is rolled back when a transaction fails, and cache
// invalidation after every confirmed write.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/lumina/lts/internal/chain"
	"github.com/lumina/lts/internal/logger"
	"github.com/lumina/lts/internal/monitoring"
	"github.com/lumina/lts/internal/qr"
	"github.com/lumina/lts/internal/wallet"
)

// ErrWalletNotConnected is a recoverable condition: the caller can connect
// a signing wallet and retry the same operation.
var ErrWalletNotConnected = errors.New("lifecycle: wallet not connected")

// ChainAccessor is the contract surface the manager drives.
type ChainAccessor interface {
	HasSigner() bool
	SignerAddress() (common.Address, error)
	GetEvent(ctx context.Context, eventID int64) (*chain.EventRecord, error)
	GetTicket(ctx context.Context, ticketID int64) (*chain.TicketRecord, error)
	BuyTickets(ctx context.Context, eventID, ticketType, quantity int64) error
	TransferTicket(ctx context.Context, ticketID int64, to common.Address) error
	UseTicket(ctx context.Context, ticketID int64) error
}

// Invalidator drops cached chain views after a confirmed write. Nil
// disables invalidation.
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// CacheKeys mirrors the cache package key builders without importing it,
// so the manager stays decoupled from the cache implementation.
type CacheKeys struct {
	Events func() string
	Event  func(eventID int64) string
	Ticket func(ticketID int64) string
}

// Manager owns the optimistic per-event sold-count deltas. Deltas exist
// only between submit and confirmation; a confirmed or rolled-back command
// leaves no delta behind.
type Manager struct {
	chain ChainAccessor
	cache Invalidator
	keys  CacheKeys
	now   func() time.Time

	mu     sync.Mutex
	deltas map[int64]int64 // eventID -> optimistic sold tickets in flight
}

func NewManager(accessor ChainAccessor, cache Invalidator, keys CacheKeys) *Manager {
	return &Manager{
		chain:  accessor,
		cache:  cache,
		keys:   keys,
		now:    time.Now,
		deltas: make(map[int64]int64),
	}
}

// EventView returns the event record with the in-flight optimistic sold
// count applied. Reads during a pending buy see the anticipated state.
func (m *Manager) EventView(ctx context.Context, eventID int64) (*chain.EventRecord, error) {
	record, err := m.chain.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	record.SoldTickets += m.deltas[eventID]
	m.mu.Unlock()
	return record, nil
}

// RequestBuy purchases tickets. The capacity precheck is advisory only:
// passing it never guarantees the purchase, and the contract's verdict is
// final. The sold count is bumped optimistically while the transaction is
// in flight and restored if it fails.
func (m *Manager) RequestBuy(ctx context.Context, eventID, ticketType, quantity int64) (*Command, error) {
	cmd := newCommand("buy", m.now())
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", chain.ErrValidation)
	}
	if !m.chain.HasSigner() {
		return nil, ErrWalletNotConnected
	}

	view, err := m.EventView(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if view.Remaining() < quantity {
		return nil, fmt.Errorf("%w: %d remaining", chain.ErrSoldOut, view.Remaining())
	}

	m.applyDelta(eventID, quantity)
	if err := m.chain.BuyTickets(ctx, eventID, ticketType, quantity); err != nil {
		m.applyDelta(eventID, -quantity)
		return cmd.rollback(m.now(), err), err
	}
	m.applyDelta(eventID, -quantity)

	monitoring.TicketsSold.Add(float64(quantity))
	m.invalidate(ctx, m.keys.Events(), m.keys.Event(eventID))
	return cmd.confirm(m.now()), nil
}

// RequestTransfer moves a ticket to another address. Address shape and the
// used flag are checked up front to avoid a doomed transaction; ownership
// and the final used check belong to the contract.
func (m *Manager) RequestTransfer(ctx context.Context, ticketID int64, to string) (*Command, error) {
	cmd := newCommand("transfer", m.now())
	if !m.chain.HasSigner() {
		return nil, ErrWalletNotConnected
	}
	if !wallet.ValidAddress(to) {
		return nil, fmt.Errorf("%w: %q is not an address", chain.ErrValidation, to)
	}

	ticket, err := m.chain.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.IsUsed {
		return nil, chain.ErrAlreadyUsed
	}

	if err := m.chain.TransferTicket(ctx, ticketID, common.HexToAddress(to)); err != nil {
		return cmd.rollback(m.now(), err), err
	}

	m.invalidate(ctx, m.keys.Ticket(ticketID))
	return cmd.confirm(m.now()), nil
}

// RequestUse marks a ticket used. The transition is terminal: a second
// use fails and nothing here retries it.
func (m *Manager) RequestUse(ctx context.Context, ticketID int64) (*Command, error) {
	cmd := newCommand("use", m.now())
	if !m.chain.HasSigner() {
		return nil, ErrWalletNotConnected
	}

	ticket, err := m.chain.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.IsUsed {
		return nil, chain.ErrAlreadyUsed
	}

	if err := m.chain.UseTicket(ctx, ticketID); err != nil {
		return cmd.rollback(m.now(), err), err
	}

	monitoring.TicketsUsed.Inc()
	m.invalidate(ctx, m.keys.Ticket(ticketID), m.keys.Event(ticket.EventID))
	return cmd.confirm(m.now()), nil
}

// CheckInResult is what a scanner shows after processing a QR payload.
type CheckInResult struct {
	TicketID int64    `json:"ticket_id"`
	EventID  int64    `json:"event_id"`
	Owner    string   `json:"owner"`
	Command  *Command `json:"command"`
}

// CheckIn decodes a scanned QR payload, verifies the ticket belongs to the
// event being checked, and marks it used.
func (m *Manager) CheckIn(ctx context.Context, payload string, eventID int64) (*CheckInResult, error) {
	scannedEvent, ticketID, err := qr.Decode(payload)
	if err != nil {
		return nil, err
	}
	if scannedEvent != eventID {
		return nil, fmt.Errorf("%w: ticket belongs to event %d", chain.ErrValidation, scannedEvent)
	}

	ticket, err := m.chain.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.EventID != eventID {
		return nil, fmt.Errorf("%w: ticket %d is for event %d", chain.ErrValidation, ticketID, ticket.EventID)
	}

	cmd, err := m.RequestUse(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	return &CheckInResult{
		TicketID: ticketID,
		EventID:  eventID,
		Owner:    ticket.Owner.Hex(),
		Command:  cmd,
	}, nil
}

func (m *Manager) applyDelta(eventID, delta int64) {
	m.mu.Lock()
	m.deltas[eventID] += delta
	if m.deltas[eventID] == 0 {
		delete(m.deltas, eventID)
	}
	m.mu.Unlock()
}

func (m *Manager) invalidate(ctx context.Context, keys ...string) {
	if m.cache == nil {
		return
	}
	if err := m.cache.Invalidate(ctx, keys...); err != nil {
		logger.Warn("Cache invalidation failed for %v: %v", keys, err)
	}
}

// Package reconcile consumes the decoded chain event stream and keeps the
// off-chain state consistent with what the contract already committed. Its
// main job is spotting auctions that were anchored on-chain but never
// registered with the marketplace.
package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"gorm.io/gorm"

	"github.com/lumina/lts/internal/chain"
	"github.com/lumina/lts/internal/logger"
	"github.com/lumina/lts/internal/model"
	"github.com/lumina/lts/internal/monitoring"
)

// Invalidator drops cached chain views touched by an event. Nil disables
// invalidation.
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// CacheKeys mirrors the cache key builders without importing the cache
// package.
type CacheKeys struct {
	Events func() string
	Event  func(eventID int64) string
	Ticket func(ticketID int64) string
}

// Reconciler subscribes to the chain event topic. An AuctionCreated event
// starts a grace-period timer; if no registration lands before it fires,
// the auction is flagged as anchored-but-unregistered.
type Reconciler struct {
	db          *gorm.DB
	subscriber  message.Subscriber
	cache       Invalidator
	keys        CacheKeys
	gracePeriod time.Duration

	cancel context.CancelFunc
}

func New(db *gorm.DB, subscriber message.Subscriber, cache Invalidator, keys CacheKeys, gracePeriod time.Duration) *Reconciler {
	if gracePeriod <= 0 {
		gracePeriod = 5 * time.Minute
	}
	return &Reconciler{
		db:          db,
		subscriber:  subscriber,
		cache:       cache,
		keys:        keys,
		gracePeriod: gracePeriod,
	}
}

func (r *Reconciler) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	messages, err := r.subscriber.Subscribe(ctx, chain.EventsTopic)
	if err != nil {
		cancel()
		return err
	}

	go func() {
		for msg := range messages {
			r.handle(ctx, msg)
			msg.Ack()
		}
	}()
	logger.Info("Reconciler subscribed to %s", chain.EventsTopic)
	return nil
}

func (r *Reconciler) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
}

func (r *Reconciler) handle(ctx context.Context, msg *message.Message) {
	event, err := chain.UnmarshalDomainEvent(msg.Payload)
	if err != nil {
		logger.Warn("Dropping undecodable chain event %s: %v", msg.UUID, err)
		return
	}

	switch event.Type {
	case chain.TypeAuctionCreated:
		r.watchAnchor(ctx, event)
	case chain.TypeTicketMinted:
		r.invalidate(ctx, r.keys.Events(), r.keys.Event(event.EventID))
	case chain.TypeTicketTransferred, chain.TypeTicketUsed:
		r.invalidate(ctx, r.keys.Ticket(event.TicketID))
	case chain.TypeEventCreated:
		r.invalidate(ctx, r.keys.Events())
	}
}

// watchAnchor gives the client the grace period to finish phase three,
// then records an alert if the auction is still unknown to the
// marketplace. Registration arriving later resolves the alert.
func (r *Reconciler) watchAnchor(ctx context.Context, event *chain.DomainEvent) {
	auctionID := event.AuctionID
	seller := event.Seller
	ticketID := event.TicketID
	hash := event.MetadataHash

	go func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(r.gracePeriod):
		}

		var auction model.Auction
		err := r.db.First(&auction, "id = ?", auctionID).Error
		if err == nil {
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Could not check registration of auction %d: %v", auctionID, err)
			return
		}

		alert := &model.AnchorAlert{
			DetectedAt:    time.Now(),
			AuctionID:     auctionID,
			TicketID:      ticketID,
			SellerAddress: seller,
			MetadataHash:  hash,
		}
		if err := r.db.Where("auction_id = ?", auctionID).FirstOrCreate(alert).Error; err != nil {
			logger.Error("Could not record anchor alert for auction %d: %v", auctionID, err)
			return
		}
		logger.Warn("Auction %d anchored by %s but never registered", auctionID, seller)
		r.refreshGauge()
	}()
}

// refreshGauge recounts open alerts so the gauge survives restarts and
// resolutions alike.
func (r *Reconciler) refreshGauge() {
	var open int64
	if err := r.db.Model(&model.AnchorAlert{}).Where("resolved = ?", false).Count(&open).Error; err != nil {
		return
	}
	monitoring.UnregisteredAnchors.Set(float64(open))
}

func (r *Reconciler) invalidate(ctx context.Context, keys ...string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Invalidate(ctx, keys...); err != nil {
		logger.Warn("Cache invalidation failed for %v: %v", keys, err)
	}
}

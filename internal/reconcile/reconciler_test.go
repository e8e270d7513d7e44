package reconcile

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lumina/lts/internal/chain"
	"github.com/lumina/lts/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "reconcile.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Auction{}, &model.AnchorAlert{}))
	return db
}

type recordingCache struct {
	mu   sync.Mutex
	keys []string
}

func (r *recordingCache) Invalidate(_ context.Context, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, keys...)
	return nil
}

func (r *recordingCache) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.keys...)
}

func testKeys() CacheKeys {
	return CacheKeys{
		Events: func() string { return "events" },
		Event:  func(id int64) string { return "event:7" },
		Ticket: func(id int64) string { return "ticket:21" },
	}
}

func newTestBus(t *testing.T) *gochannel.GoChannel {
	t.Helper()
	bus := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	t.Cleanup(func() { bus.Close() })
	return bus
}

func publish(t *testing.T, bus message.Publisher, event *chain.DomainEvent) {
	t.Helper()
	payload, err := event.Marshal()
	require.NoError(t, err)
	require.NoError(t, bus.Publish(chain.EventsTopic, message.NewMessage(watermill.NewUUID(), payload)))
}

func TestUnregisteredAnchorRaisesAlert(t *testing.T) {
	db := newTestDB(t)
	bus := newTestBus(t)

	r := New(db, bus, nil, testKeys(), 50*time.Millisecond)
	require.NoError(t, r.Start())
	defer r.Stop()

	publish(t, bus, &chain.DomainEvent{
		Type:         chain.TypeAuctionCreated,
		AuctionID:    101,
		TicketID:     9,
		Seller:       "0x2222222222222222222222222222222222222222",
		MetadataHash: "QmMeta",
	})

	require.Eventually(t, func() bool {
		var count int64
		db.Model(&model.AnchorAlert{}).Where("auction_id = ?", 101).Count(&count)
		return count == 1
	}, 2*time.Second, 20*time.Millisecond)

	var alert model.AnchorAlert
	require.NoError(t, db.First(&alert, "auction_id = ?", 101).Error)
	assert.Equal(t, int64(9), alert.TicketID)
	assert.Equal(t, "0x2222222222222222222222222222222222222222", alert.SellerAddress)
	assert.Equal(t, "QmMeta", alert.MetadataHash)
	assert.False(t, alert.Resolved)
	assert.False(t, alert.DetectedAt.IsZero())
}

func TestRegisteredAnchorStaysQuiet(t *testing.T) {
	db := newTestDB(t)
	bus := newTestBus(t)

	require.NoError(t, db.Create(&model.Auction{
		ID:            101,
		TicketID:      9,
		SellerAddress: "0x2222222222222222222222222222222222222222",
		StartingPrice: decimal.RequireFromString("0.5"),
		CurrentPrice:  decimal.RequireFromString("0.5"),
		StartTime:     time.Now(),
		EndTime:       time.Now().Add(time.Hour),
		Status:        model.AuctionStatusActive,
		MetadataHash:  "QmMeta",
	}).Error)

	r := New(db, bus, nil, testKeys(), 50*time.Millisecond)
	require.NoError(t, r.Start())
	defer r.Stop()

	publish(t, bus, &chain.DomainEvent{
		Type:      chain.TypeAuctionCreated,
		AuctionID: 101,
	})

	time.Sleep(300 * time.Millisecond)
	var count int64
	db.Model(&model.AnchorAlert{}).Count(&count)
	assert.Zero(t, count)
}

func TestDuplicateAnchorEventsCreateOneAlert(t *testing.T) {
	db := newTestDB(t)
	bus := newTestBus(t)

	r := New(db, bus, nil, testKeys(), 10*time.Millisecond)
	require.NoError(t, r.Start())
	defer r.Stop()

	// The monitor re-reads blocks after a restart, so the same anchor can
	// arrive more than once.
	for i := 0; i < 3; i++ {
		publish(t, bus, &chain.DomainEvent{Type: chain.TypeAuctionCreated, AuctionID: 101})
	}

	require.Eventually(t, func() bool {
		var count int64
		db.Model(&model.AnchorAlert{}).Where("auction_id = ?", 101).Count(&count)
		return count == 1
	}, 2*time.Second, 20*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	var count int64
	db.Model(&model.AnchorAlert{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestTicketEventsInvalidateCache(t *testing.T) {
	db := newTestDB(t)
	bus := newTestBus(t)
	rc := &recordingCache{}

	r := New(db, bus, rc, testKeys(), time.Minute)
	require.NoError(t, r.Start())
	defer r.Stop()

	publish(t, bus, &chain.DomainEvent{Type: chain.TypeTicketUsed, TicketID: 21})
	publish(t, bus, &chain.DomainEvent{Type: chain.TypeTicketMinted, TicketID: 21, EventID: 7})
	publish(t, bus, &chain.DomainEvent{Type: chain.TypeEventCreated, EventID: 7})

	require.Eventually(t, func() bool {
		return len(rc.snapshot()) >= 5
	}, 2*time.Second, 20*time.Millisecond)

	keys := rc.snapshot()
	assert.Contains(t, keys, "ticket:21")
	assert.Contains(t, keys, "event:7")
	assert.Contains(t, keys, "events")
}

func TestUndecodablePayloadIsDropped(t *testing.T) {
	db := newTestDB(t)
	bus := newTestBus(t)

	r := New(db, bus, nil, testKeys(), 10*time.Millisecond)
	require.NoError(t, r.Start())
	defer r.Stop()

	require.NoError(t, bus.Publish(chain.EventsTopic,
		message.NewMessage(watermill.NewUUID(), []byte("not json"))))
	publish(t, bus, &chain.DomainEvent{Type: chain.TypeAuctionCreated, AuctionID: 102})

	// The bad message is acked and the stream keeps flowing.
	require.Eventually(t, func() bool {
		var count int64
		db.Model(&model.AnchorAlert{}).Where("auction_id = ?", 102).Count(&count)
		return count == 1
	}, 2*time.Second, 20*time.Millisecond)
}

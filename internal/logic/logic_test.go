package logic

import (
	"context"
	"fmt"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lumina/lts/internal/model"
	"github.com/lumina/lts/internal/wallet"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "logic.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Review{}, &model.Auction{}, &model.Bid{}, &model.AnchorAlert{},
	))
	return db
}

func newTestSigner(t *testing.T) *wallet.Signer {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return wallet.NewSigner(key)
}

// fakeVerifier answers ticket-ownership checks from a fixed set.
type fakeVerifier struct {
	owners map[string]bool
	err    error
}

func (f *fakeVerifier) OwnsTicketForEvent(_ context.Context, owner common.Address, eventID int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.owners[fmt.Sprintf("%s/%d", owner.Hex(), eventID)], nil
}

func (f *fakeVerifier) grant(owner common.Address, eventID int64) {
	if f.owners == nil {
		f.owners = make(map[string]bool)
	}
	f.owners[fmt.Sprintf("%s/%d", owner.Hex(), eventID)] = true
}

// fakePinner returns a deterministic hash per pinned document.
type fakePinner struct {
	pins int
	err  error
}

func (f *fakePinner) Pin(_ context.Context, _ interface{}) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.pins++
	return fmt.Sprintf("QmPinned%d", f.pins), nil
}

// fakeAnchors answers AuctionExists from a fixed set.
type fakeAnchors struct {
	anchored map[int64]bool
}

func (f *fakeAnchors) AuctionExists(_ context.Context, auctionID int64) (bool, error) {
	return f.anchored[auctionID], nil
}

// fakeBalances reports one balance for every address.
type fakeBalances struct {
	wei *big.Int
}

func (f *fakeBalances) BalanceWei(_ context.Context, _ common.Address) (*big.Int, error) {
	return f.wei, nil
}

func ethWei(eth string) *big.Int {
	wei, ok := new(big.Int).SetString(eth, 10)
	if !ok {
		panic("bad wei literal " + eth)
	}
	return wei
}

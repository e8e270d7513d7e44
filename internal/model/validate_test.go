package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateAuctionWindow(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	price := decimal.RequireFromString("0.1")
	start := now.Add(time.Minute)

	t.Run("valid window", func(t *testing.T) {
		assert.NoError(t, ValidateAuctionWindow(price, start, start.Add(2*time.Hour), now, time.Hour))
	})

	t.Run("exactly minimum duration passes", func(t *testing.T) {
		assert.NoError(t, ValidateAuctionWindow(price, start, start.Add(time.Hour), now, time.Hour))
	})

	t.Run("one second under minimum fails", func(t *testing.T) {
		err := ValidateAuctionWindow(price, start, start.Add(time.Hour-time.Second), now, time.Hour)
		assert.Error(t, err)
	})

	t.Run("zero price fails", func(t *testing.T) {
		err := ValidateAuctionWindow(decimal.Zero, start, start.Add(2*time.Hour), now, time.Hour)
		assert.Error(t, err)
	})

	t.Run("negative price fails", func(t *testing.T) {
		err := ValidateAuctionWindow(decimal.RequireFromString("-1"), start, start.Add(2*time.Hour), now, time.Hour)
		assert.Error(t, err)
	})

	t.Run("start in the past fails", func(t *testing.T) {
		err := ValidateAuctionWindow(price, now.Add(-time.Second), now.Add(2*time.Hour), now, time.Hour)
		assert.Error(t, err)
	})

	t.Run("start exactly now fails", func(t *testing.T) {
		err := ValidateAuctionWindow(price, now, now.Add(2*time.Hour), now, time.Hour)
		assert.Error(t, err)
	})

	t.Run("end before start fails", func(t *testing.T) {
		err := ValidateAuctionWindow(price, start, start.Add(-time.Minute), now, time.Hour)
		assert.Error(t, err)
	})
}

func TestAuctionEnded(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	active := Auction{Status: AuctionStatusActive, EndTime: now.Add(time.Hour)}
	assert.False(t, active.Ended(now))

	past := Auction{Status: AuctionStatusActive, EndTime: now.Add(-time.Second)}
	assert.True(t, past.Ended(now))

	atBoundary := Auction{Status: AuctionStatusActive, EndTime: now}
	assert.True(t, atBoundary.Ended(now))

	swept := Auction{Status: AuctionStatusEnded, EndTime: now.Add(time.Hour)}
	assert.True(t, swept.Ended(now))
}

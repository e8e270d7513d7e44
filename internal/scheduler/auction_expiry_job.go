package scheduler

import (
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/lumina/lts/internal/config"
	"github.com/lumina/lts/internal/logger"
	"github.com/lumina/lts/internal/logic"
)

// AuctionExpiryJob flips active auctions past their end time to ended.
// Expiry is time-based and needs no external trigger.
type AuctionExpiryJob struct {
	auctions *logic.AuctionLogic
	config   *config.Config
}

func NewAuctionExpiryJob(auctions *logic.AuctionLogic, cfg *config.Config) *AuctionExpiryJob {
	return &AuctionExpiryJob{auctions: auctions, config: cfg}
}

func (j *AuctionExpiryJob) GetName() string {
	return "auction_expiry_sweeper"
}

func (j *AuctionExpiryJob) GetSchedule() gocron.JobDefinition {
	interval := time.Duration(j.config.Task.Interval) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	return gocron.DurationJob(interval)
}

func (j *AuctionExpiryJob) Execute() {
	swept, err := j.auctions.SweepExpired()
	if err != nil {
		logger.Error("Auction expiry sweep failed: %v", err)
		return
	}
	if swept > 0 {
		logger.Info("Auction expiry sweep ended %d auctions", swept)
	}
}

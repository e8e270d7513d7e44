package scheduler

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"

	"github.com/lumina/lts/internal/config"
	"github.com/lumina/lts/internal/logger"
	"github.com/lumina/lts/internal/model"
	"github.com/lumina/lts/internal/monitoring"
)

// AnchorReportJob counts open anchored-but-unregistered alerts, keeps the
// gauge current, and logs each open case for the support workflow.
type AnchorReportJob struct {
	db     *gorm.DB
	config *config.Config
}

func NewAnchorReportJob(db *gorm.DB, cfg *config.Config) *AnchorReportJob {
	return &AnchorReportJob{db: db, config: cfg}
}

func (j *AnchorReportJob) GetName() string {
	return "anchor_alert_reporter"
}

func (j *AnchorReportJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(10 * time.Minute)
}

func (j *AnchorReportJob) Execute() {
	var alerts []model.AnchorAlert
	if err := j.db.Where("resolved = ?", false).Find(&alerts).Error; err != nil {
		logger.Error("Anchor alert scan failed: %v", err)
		return
	}

	monitoring.UnregisteredAnchors.Set(float64(len(alerts)))
	for _, alert := range alerts {
		logger.Warn("Auction %d (ticket %d, seller %s) anchored since %s without registration",
			alert.AuctionID, alert.TicketID, alert.SellerAddress,
			alert.DetectedAt.UTC().Format(time.RFC3339))
	}
}

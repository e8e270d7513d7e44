package scheduler

import (
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"

	"github.com/lumina/lts/internal/config"
	"github.com/lumina/lts/internal/logger"
	"github.com/lumina/lts/internal/logic"
)

// Manager owns the background jobs: the auction expiry sweep and the
// anchored-but-unregistered report.
type Manager struct {
	scheduler gocron.Scheduler
	db        *gorm.DB
	auctions  *logic.AuctionLogic
	config    *config.Config
}

func NewManager(db *gorm.DB, auctions *logic.AuctionLogic, cfg *config.Config) (*Manager, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Manager{
		scheduler: s,
		db:        db,
		auctions:  auctions,
		config:    cfg,
	}, nil
}

// Start registers all jobs and starts the scheduler.
func (m *Manager) Start() {
	m.RegisterJobs()
	m.scheduler.Start()
	logger.Info("Task manager started")
}

func (m *Manager) RegisterJobs() {
	m.register(NewAuctionExpiryJob(m.auctions, m.config))
	m.register(NewAnchorReportJob(m.db, m.config))
}

// Job is one schedulable unit of background work.
type Job interface {
	GetName() string
	GetSchedule() gocron.JobDefinition
	Execute()
}

func (m *Manager) register(job Job) {
	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Error("Failed to register job %s: %v", job.GetName(), err)
	}
}

func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Task manager stopped")
}

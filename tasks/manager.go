package tasks

import (
	"time"

	"mostralo-api/logger"
	"mostralo-api/notify"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// Manager owns the background scheduler.
type Manager struct {
	scheduler gocron.Scheduler
	db        *gorm.DB
	hub       *notify.Hub
}

func NewManager(db *gorm.DB, hub *notify.Hub) (*Manager, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Manager{scheduler: s, db: db, hub: hub}, nil
}

// Start registers all jobs and launches the scheduler.
func (m *Manager) Start(reconcileEvery time.Duration) error {
	job := NewReconcileJob(m.db, m.hub)
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(reconcileEvery),
		gocron.NewTask(job.Execute),
		gocron.WithName("assignment-reconcile"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	m.scheduler.Start()
	logger.Info("task manager started, reconcile every %s", reconcileEvery)
	return nil
}

// Stop shuts the scheduler down.
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("task manager shutdown: %v", err)
	}
}

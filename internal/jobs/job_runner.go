package jobs

import (
	"database/sql"

	"borrowly-backend/internal/config"
	"borrowly-backend/internal/logger"
	"borrowly-backend/internal/payment"
	"borrowly-backend/internal/repository/postgres"
	"borrowly-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	db        *sql.DB
	store     *postgres.Store
	processor payment.Processor
	notifier  service.Notifier
	config    *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(db *sql.DB, store *postgres.Store, processor payment.Processor, notifier service.Notifier, cfg *config.Config) *JobRunner {
	return &JobRunner{
		db:        db,
		store:     store,
		processor: processor,
		notifier:  notifier,
		config:    cfg,
	}
}

// Config exposes the configuration for schedule registration
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.SendOverdueReminders()
	jr.ReconcilePayments()
}

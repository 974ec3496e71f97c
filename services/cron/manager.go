package cron

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/teachme/platform-api/model"
	"github.com/teachme/platform-api/services"
	"github.com/teachme/platform-api/utils/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	jobExpirePayments = "expire_pending_payments"
	jobPruneLogs      = "prune_cron_logs"

	defaultPendingTTL = 24 * time.Hour
	logRetention      = 30 * 24 * time.Hour
)

// Config holds the job settings
type Config struct {
	PendingPaymentTTL time.Duration
}

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron     *cron.Cron
	db       *gorm.DB
	payments *services.PaymentService
	cfg      Config
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB, cfg Config) *CronManager {
	if cfg.PendingPaymentTTL <= 0 {
		cfg.PendingPaymentTTL = defaultPendingTTL
	}

	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron:     c,
		db:       db,
		payments: services.NewPaymentService(db, nil),
		cfg:      cfg,
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	logger.L().Info("starting cron jobs")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()

	logger.L().Info("cron jobs started", zap.Int("jobs", len(m.cron.Entries())))
	return nil
}

// Stop stops all cron jobs and waits for running ones to finish
func (m *CronManager) Stop() {
	logger.L().Info("stopping cron jobs")
	ctx := m.cron.Stop()
	<-ctx.Done()
	logger.L().Info("cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	// Every 15 minutes: expire abandoned checkout sessions
	if _, err := m.cron.AddFunc("0 */15 * * * *", m.ExpirePendingPayments); err != nil {
		return err
	}

	// Daily at 3 AM: drop old job logs
	if _, err := m.cron.AddFunc("0 0 3 * * *", m.PruneJobLogs); err != nil {
		return err
	}

	return nil
}

// logJobStart records a running job and returns its log row
func (m *CronManager) logJobStart(jobName string) *model.CronJobLog {
	logger.L().Info("cron job started", zap.String("job", jobName))

	entry := &model.CronJobLog{
		JobName:   jobName,
		Status:    "running",
		StartedAt: time.Now(),
	}
	if err := m.db.Create(entry).Error; err != nil {
		logger.L().Warn("failed to write cron log", zap.String("job", jobName), zap.Error(err))
	}
	return entry
}

// logJobComplete marks entry completed
func (m *CronManager) logJobComplete(entry *model.CronJobLog, message string) {
	logger.L().Info("cron job completed", zap.String("job", entry.JobName), zap.String("result", message))
	m.finish(entry, map[string]interface{}{
		"status":  "completed",
		"message": message,
	})
}

// logJobError marks entry failed
func (m *CronManager) logJobError(entry *model.CronJobLog, err error) {
	logger.L().Error("cron job failed", zap.String("job", entry.JobName), zap.Error(err))
	m.finish(entry, map[string]interface{}{
		"status":    "failed",
		"error_msg": err.Error(),
	})
}

func (m *CronManager) finish(entry *model.CronJobLog, updates map[string]interface{}) {
	if entry.ID == 0 {
		return
	}
	now := time.Now()
	updates["completed_at"] = now
	updates["duration"] = now.Sub(entry.StartedAt).Milliseconds()
	if err := m.db.Model(entry).Updates(updates).Error; err != nil {
		logger.L().Warn("failed to update cron log", zap.String("job", entry.JobName), zap.Error(err))
	}
}

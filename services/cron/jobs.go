package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/teachme/platform-api/model"
)

// ExpirePendingPayments marks checkout sessions that were never paid as expired.
// Runs every 15 minutes.
func (m *CronManager) ExpirePendingPayments() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	entry := m.logJobStart(jobExpirePayments)

	n, err := m.payments.ExpirePending(ctx, m.cfg.PendingPaymentTTL)
	if err != nil {
		m.logJobError(entry, err)
		return
	}

	m.logJobComplete(entry, fmt.Sprintf("Expired %d pending payments", n))
}

// PruneJobLogs deletes job logs older than the retention window.
// Runs daily.
func (m *CronManager) PruneJobLogs() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	entry := m.logJobStart(jobPruneLogs)

	cutoff := time.Now().Add(-logRetention)
	result := m.db.WithContext(ctx).
		Where("started_at < ?", cutoff).
		Delete(&model.CronJobLog{})
	if result.Error != nil {
		m.logJobError(entry, fmt.Errorf("failed to delete old cron logs: %w", result.Error))
		return
	}

	m.logJobComplete(entry, fmt.Sprintf("Deleted %d old cron logs", result.RowsAffected))
}

package cron

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teachme/platform-api/database/dbtest"
	"github.com/teachme/platform-api/model"
)

func TestExpirePendingPaymentsJob(t *testing.T) {
	db := dbtest.Open(t)
	user := dbtest.CreateUser(t, db, "buyer@example.com")
	course := dbtest.CreateCourse(t, db, "Go Basics", 49, true)

	stale := model.Payment{UserID: user.ID, CourseID: course.ID, SessionID: "cs_stale", Amount: 4900, Currency: "usd", Status: model.PaymentStatusPending}
	require.NoError(t, db.Create(&stale).Error)
	require.NoError(t, db.Model(&stale).UpdateColumn("created_at", time.Now().Add(-2*time.Hour)).Error)

	m := NewCronManager(db, Config{PendingPaymentTTL: time.Hour})
	m.ExpirePendingPayments()

	require.NoError(t, db.First(&stale, stale.ID).Error)
	assert.Equal(t, model.PaymentStatusExpired, stale.Status)

	var entry model.CronJobLog
	require.NoError(t, db.Where("job_name = ?", jobExpirePayments).First(&entry).Error)
	assert.Equal(t, "completed", entry.Status)
	assert.Equal(t, "Expired 1 pending payments", entry.Message)
	assert.NotNil(t, entry.CompletedAt)
}

func TestPruneJobLogs(t *testing.T) {
	db := dbtest.Open(t)
	old := model.CronJobLog{JobName: "x", Status: "completed", StartedAt: time.Now().Add(-60 * 24 * time.Hour)}
	recent := model.CronJobLog{JobName: "x", Status: "completed", StartedAt: time.Now()}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Create(&recent).Error)

	NewCronManager(db, Config{}).PruneJobLogs()

	var names []string
	require.NoError(t, db.Model(&model.CronJobLog{}).Order("id").Pluck("job_name", &names).Error)
	assert.Equal(t, []string{"x", jobPruneLogs}, names)
}

func TestRegisterJobs(t *testing.T) {
	m := NewCronManager(dbtest.Open(t), Config{})
	require.NoError(t, m.registerJobs())
	assert.Len(t, m.cron.Entries(), 2)
	assert.Equal(t, 24*time.Hour, m.cfg.PendingPaymentTTL)
}

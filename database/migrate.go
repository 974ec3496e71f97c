package database

import (
	"github.com/teachme/platform-api/model"
	"github.com/teachme/platform-api/utils/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// postgresPatches are idempotent fixes for databases created before the
// current schema. Failures are logged and do not stop startup.
var postgresPatches = []struct {
	name string
	sql  string
}{
	{
		name: "courses.price",
		sql:  `ALTER TABLE courses ADD COLUMN IF NOT EXISTS price INTEGER DEFAULT 0`,
	},
	{
		name: "enrollments",
		sql: `CREATE TABLE IF NOT EXISTS enrollments (
			id SERIAL PRIMARY KEY,
			user_id INTEGER REFERENCES users(id),
			course_id INTEGER REFERENCES courses(id),
			enrolled_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	},
}

// Migrate runs AutoMigrate for every model, then the postgres-only patches.
func Migrate(db *gorm.DB) error {
	logger.L().Info("running AutoMigrate")

	err := db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Module{},
		&model.Video{},
		&model.Enrollment{},
		&model.Payment{},
		&model.CronJobLog{},
	)
	if err != nil {
		logger.L().Error("AutoMigrate failed", zap.Error(err))
		return err
	}

	if db.Dialector.Name() == "postgres" {
		for _, p := range postgresPatches {
			if err := db.Exec(p.sql).Error; err != nil {
				logger.L().Warn("schema patch failed", zap.String("patch", p.name), zap.Error(err))
			}
		}
	}

	logger.L().Info("AutoMigrate completed")
	return nil
}

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/teachme/platform-api/config"
	"github.com/teachme/platform-api/utils/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type GORMStore struct {
	db *gorm.DB
}

// NewGORMStore wraps an already opened connection.
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{db: db}
}

// StartGORM opens the PostgreSQL connection described by cfg.DatabaseURL,
// retrying with backoff while the database comes up.
func StartGORM(ctx context.Context, cfg *config.Config) (*GORMStore, error) {
	logLevel := gormlogger.Warn
	if cfg.IsProduction() {
		logLevel = gormlogger.Error
	}

	b := backoff{maxRetries: 5, delay: 500 * time.Millisecond, maxDelay: 5 * time.Second}

	var db *gorm.DB
	var err error
	for attempt := 0; ; attempt++ {
		db, err = gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
			Logger:      NewZapLogger(logger.L(), logLevel),
			PrepareStmt: true,
		})
		if err == nil {
			break
		}
		if attempt >= b.maxRetries {
			return nil, fmt.Errorf("open postgres failed after retries: %w", err)
		}
		logger.L().Warn("postgres not ready, retrying", zap.Int("attempt", attempt+1), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("open postgres canceled: %w", ctx.Err())
		case <-time.After(b.nextDelay(attempt)):
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	logger.L().Info("connected to PostgreSQL")
	return &GORMStore{db: db}, nil
}

// Init creates or updates the schema
func (s *GORMStore) Init() error {
	return Migrate(s.db)
}

// Close closes the database connection
func (s *GORMStore) Close() error {
	logger.L().Info("closing PostgreSQL connection")
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB returns the GORM handle shared by handlers and jobs
func (s *GORMStore) GetDB() *gorm.DB {
	return s.db
}

// HealthCheck verifies the database connection is alive
func (s *GORMStore) HealthCheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

type backoff struct {
	maxRetries int
	delay      time.Duration
	maxDelay   time.Duration
}

func (b backoff) nextDelay(attempt int) time.Duration {
	d := b.delay << attempt
	if d > b.maxDelay {
		return b.maxDelay
	}
	return d
}

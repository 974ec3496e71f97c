// Package dbtest opens migrated in-memory databases for tests.
package dbtest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/teachme/platform-api/database"
	"github.com/teachme/platform-api/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open returns a fresh migrated sqlite database that lives until the test ends.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to file::memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser inserts an active user with a placeholder password hash.
func CreateUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, HashedPassword: "x", IsActive: true}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateCourse inserts a course with the given price and publish flag.
func CreateCourse(t *testing.T, db *gorm.DB, title string, price int, published bool) *model.Course {
	t.Helper()
	course := &model.Course{Title: title, Price: price, IsPublished: published}
	require.NoError(t, db.Create(course).Error)
	return course
}

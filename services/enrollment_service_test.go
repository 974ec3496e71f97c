package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teachme/platform-api/database/dbtest"
	"github.com/teachme/platform-api/model"
	"github.com/teachme/platform-api/utils/apperr"
)

func TestEnrollUserIsIdempotent(t *testing.T) {
	db := dbtest.Open(t)
	user := dbtest.CreateUser(t, db, "student@example.com")
	course := dbtest.CreateCourse(t, db, "Go Basics", 49, true)
	ctx := context.Background()

	created, err := EnrollUser(ctx, db, user.ID, course.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = EnrollUser(ctx, db, user.ID, course.ID)
	require.NoError(t, err)
	assert.False(t, created)

	var count int64
	require.NoError(t, db.Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id = ?", user.ID, course.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEnrollUserMissingCourse(t *testing.T) {
	db := dbtest.Open(t)
	user := dbtest.CreateUser(t, db, "student@example.com")

	_, err := EnrollUser(context.Background(), db, user.ID, 999)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}

func TestEnrolledCourses(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewEnrollmentService(db)
	user := dbtest.CreateUser(t, db, "student@example.com")
	ctx := context.Background()

	courses, err := svc.EnrolledCourses(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, courses)
	assert.Empty(t, courses)

	first := dbtest.CreateCourse(t, db, "First", 10, true)
	second := dbtest.CreateCourse(t, db, "Second", 20, false)
	module := model.Module{Title: "Intro", CourseID: first.ID}
	require.NoError(t, db.Create(&module).Error)
	require.NoError(t, db.Create(&model.Video{Title: "Hello", URL: "/static/a.mp4", ModuleID: module.ID}).Error)

	now := time.Now()
	require.NoError(t, db.Create(&model.Enrollment{UserID: user.ID, CourseID: second.ID, EnrolledAt: now}).Error)
	require.NoError(t, db.Create(&model.Enrollment{UserID: user.ID, CourseID: first.ID, EnrolledAt: now.Add(time.Minute)}).Error)

	courses, err = svc.EnrolledCourses(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, second.ID, courses[0].ID)
	assert.Equal(t, first.ID, courses[1].ID)
	require.Len(t, courses[1].Modules, 1)
	require.Len(t, courses[1].Modules[0].Videos, 1)
	assert.Equal(t, "/static/a.mp4", courses[1].Modules[0].Videos[0].URL)
}

package services

import (
	"context"
	"errors"

	"github.com/teachme/platform-api/model"
	"github.com/teachme/platform-api/utils/apperr"
	"gorm.io/gorm"
)

// EnrollmentService manages course enrollments
type EnrollmentService struct {
	db *gorm.DB
}

// NewEnrollmentService creates a new enrollment service
func NewEnrollmentService(db *gorm.DB) *EnrollmentService {
	return &EnrollmentService{db: db}
}

// EnrollUser enrolls userID in courseID. It reports false when the
// enrollment already existed. The existence check and the insert are
// separate statements, so two concurrent calls can both insert.
func EnrollUser(ctx context.Context, db *gorm.DB, userID, courseID uint) (bool, error) {
	tx := db.WithContext(ctx)

	var course model.Course
	if err := tx.Select("id").First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apperr.New(apperr.CodeNotFound, "Course not found")
		}
		return false, apperr.Wrap(err, apperr.CodeInternal, "Failed to fetch course")
	}

	var count int64
	if err := tx.Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error; err != nil {
		return false, apperr.Wrap(err, apperr.CodeInternal, "Failed to check enrollment")
	}
	if count > 0 {
		return false, nil
	}

	enrollment := model.Enrollment{UserID: userID, CourseID: courseID}
	if err := tx.Create(&enrollment).Error; err != nil {
		return false, apperr.Wrap(err, apperr.CodeInternal, "Failed to enroll")
	}
	return true, nil
}

// Enroll is EnrollUser on the service's connection
func (s *EnrollmentService) Enroll(ctx context.Context, userID, courseID uint) (bool, error) {
	return EnrollUser(ctx, s.db, userID, courseID)
}

// EnrolledCourses returns the user's courses with their outline, oldest
// enrollment first. The result is never nil.
func (s *EnrollmentService) EnrolledCourses(ctx context.Context, userID uint) ([]model.Course, error) {
	courses := make([]model.Course, 0)
	err := model.WithOutline(s.db.WithContext(ctx)).
		Joins("JOIN enrollments ON enrollments.course_id = courses.id").
		Where("enrollments.user_id = ?", userID).
		Order("enrollments.enrolled_at ASC, enrollments.id ASC").
		Find(&courses).Error
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "Failed to fetch enrolled courses")
	}
	return courses, nil
}

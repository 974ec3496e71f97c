package model

import "time"

// Enrollment links a user to a course. The (user_id, course_id) pair is kept
// unique by a read-then-write check in EnrollUser, not by a constraint.
type Enrollment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	CourseID   uint      `gorm:"not null;index" json:"course_id"`
	EnrolledAt time.Time `gorm:"autoCreateTime" json:"enrolled_at"`

	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}

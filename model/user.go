package model

import (
	"time"
)

// User represents a registered learner or instructor
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"` // always stored lower-cased
	HashedPassword string    `gorm:"not null" json:"-"`
	FirstName      *string   `json:"first_name"`
	LastName       *string   `json:"last_name"`
	Username       *string   `gorm:"uniqueIndex" json:"username"`
	PhoneNumber    *string   `json:"phone_number"`
	Address        *string   `json:"address"`
	Country        *string   `json:"country"`
	DateOfBirth    *string   `json:"date_of_birth"`
	IsActive       bool      `gorm:"not null" json:"is_active"` // no gorm default: false must persist
	IsSuperuser    bool      `gorm:"default:false" json:"is_superuser"`

	// Relationships
	Enrollments []Enrollment `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Payments    []Payment    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

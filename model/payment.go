package model

import (
	"time"

	"gorm.io/datatypes"
)

// PaymentStatus tracks a checkout session through its lifecycle
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusExpired   PaymentStatus = "expired"
)

// Payment records one hosted checkout session for a course
type Payment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	CourseID  uint           `gorm:"not null;index" json:"course_id"`
	Provider  string         `gorm:"type:varchar(20);not null;default:'stripe'" json:"provider"`
	SessionID string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"session_id"`
	Amount    int64          `gorm:"not null" json:"amount"` // minor units
	Currency  string         `gorm:"type:varchar(10);not null;default:'usd'" json:"currency"`
	Status    PaymentStatus  `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Metadata  datatypes.JSON `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`

	// Relationships
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "course_payments"
}

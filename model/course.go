package model

import (
	"time"

	"gorm.io/gorm"
)

// Course is a purchasable set of modules. Price is in whole US dollars.
type Course struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Title       string    `gorm:"not null;index" json:"title"`
	Description *string   `gorm:"type:text" json:"description"`
	Price       int       `gorm:"not null;default:0" json:"price"`
	IsPublished bool      `gorm:"not null;default:false" json:"is_published"`

	// Relationships
	Modules     []Module     `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"modules"`
	Enrollments []Enrollment `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

// Module is an ordered section of a course
type Module struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Title    string `gorm:"not null" json:"title"`
	Order    int    `gorm:"column:order;not null;default:0" json:"order"`
	CourseID uint   `gorm:"not null;index" json:"course_id"`

	Videos []Video `gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE" json:"videos"`
}

// Video is an uploaded lesson. URL is the retrieval path returned by storage.
type Video struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Title       string  `gorm:"not null" json:"title"`
	Description *string `gorm:"type:text" json:"description"`
	URL         string  `gorm:"not null" json:"url"`
	Duration    int     `gorm:"not null;default:0" json:"duration"` // seconds
	ModuleID    uint    `gorm:"not null;index" json:"module_id"`
}

// WithOutline eager loads the Module -> Video tree in display order.
func WithOutline(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Modules", func(tx *gorm.DB) *gorm.DB {
			return tx.Order(`"order" ASC, id ASC`)
		}).
		Preload("Modules.Videos", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("id ASC")
		})
}

package database

import (
	"fmt"

	"github.com/teachme/platform-api/model"
	"github.com/teachme/platform-api/utils/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

type seedModule struct {
	title  string
	videos []string
}

type seedCourse struct {
	title       string
	description string
	price       int
	published   bool
	modules     []seedModule
}

var demoCatalog = []seedCourse{
	{
		title:       "Go for Backend Developers",
		description: "Build HTTP services, work with databases and ship to production.",
		price:       49,
		published:   true,
		modules: []seedModule{
			{title: "Getting Started", videos: []string{"Installing Go", "Your first HTTP server"}},
			{title: "Persistence", videos: []string{"Modelling with GORM", "Migrations"}},
		},
	},
	{
		title:       "Intro to Machine Learning",
		description: "Core ideas behind supervised learning, explained without heavy math.",
		price:       0,
		published:   true,
		modules: []seedModule{
			{title: "Foundations", videos: []string{"What is a model?", "Training and evaluation"}},
		},
	},
	{
		title:       "Advanced Distributed Systems",
		description: "Draft course, not yet visible in the public catalog.",
		price:       99,
		published:   false,
	},
}

// SeedCourses inserts the demo catalog. Courses that already exist by title are skipped.
func (s *Seeder) SeedCourses() (int, error) {
	created := 0
	for _, sc := range demoCatalog {
		var count int64
		if err := s.db.Model(&model.Course{}).Where("title = ?", sc.title).Count(&count).Error; err != nil {
			return created, err
		}
		if count > 0 {
			logger.L().Info("course already exists, skipping", zap.String("title", sc.title))
			continue
		}

		description := sc.description
		course := model.Course{
			Title:       sc.title,
			Description: &description,
			Price:       sc.price,
			IsPublished: sc.published,
		}
		for i, sm := range sc.modules {
			module := model.Module{Title: sm.title, Order: i}
			for _, v := range sm.videos {
				module.Videos = append(module.Videos, model.Video{Title: v, URL: "/static/demo.mp4"})
			}
			course.Modules = append(course.Modules, module)
		}

		if err := s.db.Create(&course).Error; err != nil {
			return created, fmt.Errorf("failed to seed course %q: %w", sc.title, err)
		}
		created++
	}
	return created, nil
}

// RunSeeds is the entry point used by cmd/seed
func RunSeeds(db *gorm.DB) error {
	created, err := NewSeeder(db).SeedCourses()
	if err != nil {
		return err
	}
	logger.L().Info("seeding completed", zap.Int("courses_created", created))
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/teachme/platform-api/config"
	"github.com/teachme/platform-api/database"
	"github.com/teachme/platform-api/utils/logger"
	"go.uber.org/zap"
)

func main() {
	cfg := config.MustLoad()

	if _, err := logger.Init(cfg.LogLevel, "console"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Initialize database connection using GORM
	store, err := database.StartGORM(context.Background(), cfg)
	if err != nil {
		logger.L().Fatal("failed to connect to database", zap.Error(err))
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		logger.L().Fatal("failed to run migrations", zap.Error(err))
	}

	separator := strings.Repeat("=", 60)
	fmt.Println(separator)
	fmt.Println(cfg.ProjectName + " - Database Seeding")
	fmt.Println(separator)

	if err := database.RunSeeds(store.GetDB()); err != nil {
		logger.L().Fatal("seeding failed", zap.Error(err))
	}

	fmt.Println(separator)
	fmt.Println("Seeding completed successfully")
	fmt.Println(separator)
}

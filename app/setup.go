package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/teachme/platform-api/api"
	"github.com/teachme/platform-api/config"
	"github.com/teachme/platform-api/database"
	"github.com/teachme/platform-api/router"
	"github.com/teachme/platform-api/services/chat"
	"github.com/teachme/platform-api/services/cron"
	"github.com/teachme/platform-api/services/payment"
	"github.com/teachme/platform-api/services/storage"
	"github.com/teachme/platform-api/utils/auth"
	"github.com/teachme/platform-api/utils/cache"
	"github.com/teachme/platform-api/utils/logger"
	"github.com/teachme/platform-api/utils/middleware"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func SetupAndRunServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if _, err := logger.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize GORM database connection
	store, err := database.StartGORM(ctx, cfg)
	if err != nil {
		log.Error("check whether Postgres is running and DATABASE_URL is correct", zap.Error(err))
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}()

	if err := store.Init(); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	db := store.GetDB()

	// Redis is optional; login throttling is disabled without it
	var bruteForce *middleware.BruteForceProtection
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, brute force protection disabled", zap.Error(err))
		} else {
			defer redisCache.Close()
			bruteForce = middleware.NewBruteForceProtection(redisCache)
		}
	}

	uploads, err := storage.New(cfg)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret: cfg.SecretKey,
		Expiry: cfg.AccessTokenExpire,
		Issuer: cfg.JWTIssuer,
	})

	gateway := payment.NewStripeGateway(cfg.StripeSecretKey, cfg.FrontendURL)

	relay := chat.NewRelay(chat.NewHub(), chat.NewClient(chat.Config{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
		Timeout: cfg.ChatTimeout,
	}), chat.RelayConfig{
		RatePerSecond: cfg.ChatRatePerSecond,
		Burst:         cfg.ChatBurst,
	})
	if cfg.OpenAIAPIKey == "" {
		log.Warn("OPENAI_API_KEY not set, chat replies are disabled")
	}

	// Initialize Cron Manager (only if enabled)
	var cronManager *cron.CronManager
	if cfg.CronEnabled {
		cronManager = cron.NewCronManager(db, cron.Config{PendingPaymentTTL: cfg.PaymentPendingTTL})
		if err := cronManager.Start(); err != nil {
			// Don't fail the app, just log the warning
			log.Warn("failed to start cron jobs", zap.Error(err))
			cronManager = nil
		}
	}

	server := api.NewAPIServer(fmt.Sprintf(":%d", cfg.Port), cfg.ProjectName, cfg.UploadLimitBytes())
	app := server.GetEngine()

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    cfg.AllowedOrigins(),
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
	})

	if cfg.StorageDriver == "local" {
		// read-only, with range requests so players can seek
		app.Static(storage.PublicPrefix, cfg.UploadDir, fiber.Static{
			ByteRange: true,
			MaxAge:    3600,
		})
	}

	router.SetupRoutes(app, router.Dependencies{
		DB:                  db,
		Health:              store,
		JWT:                 jwtManager,
		BruteForce:          bruteForce,
		Storage:             uploads,
		Gateway:             gateway,
		StripeWebhookSecret: cfg.StripeWebhookSecret,
		Relay:               relay,
		ChatTimeout:         cfg.ChatTimeout,
	})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Run()
	}()

	select {
	case err := <-serverErr:
		if cronManager != nil {
			cronManager.Stop()
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	if cronManager != nil {
		cronManager.Stop()
	}
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

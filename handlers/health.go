package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/teachme/platform-api/utils/logger"
	"github.com/teachme/platform-api/utils/response"
	"go.uber.org/zap"
)

// Pinger reports whether a backing service is reachable
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler serves liveness and welcome endpoints
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	if err := h.db.HealthCheck(ctx); err != nil {
		logger.L().Warn("health check failed", zap.Error(err))
		return response.ServiceUnavailable(c, "Database unavailable")
	}

	return response.Success(c, fiber.Map{"status": "healthy", "service": "platform-api"})
}

// Root handles GET /
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return response.Success(c, fiber.Map{"message": "Welcome to TeachMe Platform API"})
}

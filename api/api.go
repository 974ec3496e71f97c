package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/teachme/platform-api/utils/logger"
	"github.com/teachme/platform-api/utils/response"
	"go.uber.org/zap"
)

type APIServer struct {
	app           *fiber.App
	listenAddress string
}

// NewAPIServer creates the fiber app. Errors returned by handlers are
// rendered through the response envelope.
func NewAPIServer(listenAddress, appName string, bodyLimit int) *APIServer {
	app := fiber.New(fiber.Config{
		AppName:      appName,
		BodyLimit:    bodyLimit,
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  2 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return response.FromError(c, err)
		},
	})

	return &APIServer{
		app:           app,
		listenAddress: listenAddress,
	}
}

func (s *APIServer) GetEngine() *fiber.App {
	return s.app
}

func (s *APIServer) Run() error {
	logger.L().Info("starting API server", zap.String("address", s.listenAddress))
	return s.app.Listen(s.listenAddress)
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx is done.
func (s *APIServer) Shutdown(ctx context.Context) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		return s.app.Shutdown()
	}
	return s.app.ShutdownWithTimeout(time.Until(deadline))
}

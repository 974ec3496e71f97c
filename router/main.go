package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/teachme/platform-api/handlers"
	auth_handlers "github.com/teachme/platform-api/handlers/auth"
	chat_handlers "github.com/teachme/platform-api/handlers/chat"
	course_handlers "github.com/teachme/platform-api/handlers/course"
	enrollment_handlers "github.com/teachme/platform-api/handlers/enrollment"
	payment_handlers "github.com/teachme/platform-api/handlers/payment"
	"github.com/teachme/platform-api/services"
	"github.com/teachme/platform-api/services/chat"
	"github.com/teachme/platform-api/services/payment"
	"github.com/teachme/platform-api/services/storage"
	"github.com/teachme/platform-api/utils/auth"
	"github.com/teachme/platform-api/utils/middleware"
	"gorm.io/gorm"
)

// Dependencies are the shared services every route group is built from.
// BruteForce may be nil when no cache is available.
type Dependencies struct {
	DB                  *gorm.DB
	Health              handlers.Pinger
	JWT                 *auth.JWTManager
	BruteForce          *middleware.BruteForceProtection
	Storage             storage.Storage
	Gateway             payment.Gateway
	StripeWebhookSecret string
	Relay               *chat.Relay
	ChatTimeout         time.Duration
}

// SetupRoutes registers every route on app
func SetupRoutes(app *fiber.App, deps Dependencies) {
	db := deps.DB

	authMiddleware := middleware.NewAuthMiddleware(deps.JWT, db)

	healthHandler := handlers.NewHealthHandler(deps.Health)
	authHandler := auth_handlers.NewAuthHandler(db, deps.JWT, deps.BruteForce)
	courseHandler := course_handlers.NewCourseHandler(db, deps.Storage)
	enrollmentHandler := enrollment_handlers.NewEnrollmentHandler(services.NewEnrollmentService(db))
	paymentHandler := payment_handlers.NewPaymentHandler(services.NewPaymentService(db, deps.Gateway), deps.StripeWebhookSecret)
	chatHandler := chat_handlers.NewChatHandler(deps.Relay, deps.ChatTimeout)

	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.Health)

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/signup", authHandler.Signup)
	if deps.BruteForce != nil {
		authGroup.Post("/login", deps.BruteForce.Check(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}
	authGroup.Get("/me", authMiddleware.Required(), authHandler.Me)

	// Course routes
	courses := api.Group("/courses")
	courses.Get("/", courseHandler.ListCourses)
	courses.Post("/", courseHandler.CreateCourse)
	courses.Get("/my-courses", authMiddleware.Required(), courseHandler.ListMyCourses)
	courses.Get("/:id", courseHandler.GetCourse)
	courses.Patch("/:id", authMiddleware.Required(), courseHandler.UpdateCourse)
	courses.Post("/:id/modules", courseHandler.CreateModule)
	courses.Post("/:id/videos", courseHandler.UploadVideo)

	// Module routes
	api.Post("/modules/:id/videos", courseHandler.UploadVideo)

	// Enrollment routes
	enrollments := api.Group("/enrollments", authMiddleware.Required())
	enrollments.Get("/my-courses", enrollmentHandler.MyCourses)
	enrollments.Post("/:course_id", enrollmentHandler.Enroll)

	// Payment routes
	payments := api.Group("/payments")
	payments.Post("/create-checkout-session/:course_id", authMiddleware.Required(), paymentHandler.CreateCheckoutSession)
	payments.Post("/webhook", paymentHandler.Webhook)

	// Chat relay
	api.Get("/ws/chat/:room_id", chatHandler.Upgrade, chatHandler.Room())
}

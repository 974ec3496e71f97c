package payment

import (
	"github.com/gofiber/fiber/v2"
	"github.com/teachme/platform-api/services"
	paymentsvc "github.com/teachme/platform-api/services/payment"
	"github.com/teachme/platform-api/utils/apperr"
	"github.com/teachme/platform-api/utils/logger"
	"github.com/teachme/platform-api/utils/middleware"
	"github.com/teachme/platform-api/utils/response"
	"go.uber.org/zap"
)

// PaymentHandler handles checkout requests and provider callbacks
type PaymentHandler struct {
	payments      *services.PaymentService
	webhookSecret string
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(payments *services.PaymentService, webhookSecret string) *PaymentHandler {
	return &PaymentHandler{
		payments:      payments,
		webhookSecret: webhookSecret,
	}
}

// CheckoutResponse carries the hosted checkout page URL
type CheckoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
}

// CreateCheckoutSession handles POST /api/v1/payments/create-checkout-session/:course_id
func (h *PaymentHandler) CreateCheckoutSession(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	courseID, err := c.ParamsInt("course_id")
	if err != nil || courseID <= 0 {
		return response.BadRequest(c, "Invalid course ID")
	}

	url, err := h.payments.StartCheckout(c.UserContext(), userID, uint(courseID))
	if err != nil {
		if apperr.IsCode(err, apperr.CodeUpstream) {
			logger.L().Error("checkout session failed",
				zap.Uint("user_id", userID),
				zap.Int("course_id", courseID),
				zap.Error(err))
		}
		return response.FromError(c, err)
	}

	return response.Success(c, CheckoutResponse{CheckoutURL: url})
}

// Webhook handles POST /api/v1/payments/webhook
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	if h.webhookSecret == "" {
		return response.ServiceUnavailable(c, "Payment webhook is not configured")
	}

	done, err := paymentsvc.ParseCompletedCheckout(c.Body(), c.Get("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		logger.L().Warn("rejected payment webhook", zap.Error(err))
		return response.FromError(c, err)
	}
	if done == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}

	if err := h.payments.Fulfil(c.UserContext(), done); err != nil {
		logger.L().Error("payment fulfilment failed", zap.String("session_id", done.SessionID), zap.Error(err))
		return response.FromError(c, err)
	}

	logger.L().Info("payment fulfilled",
		zap.String("session_id", done.SessionID),
		zap.Uint("user_id", done.UserID),
		zap.Uint("course_id", done.CourseID))

	return response.SuccessWithMessage(c, "Payment processed", nil)
}

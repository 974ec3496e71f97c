package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/teachme/platform-api/model"
	authutil "github.com/teachme/platform-api/utils/auth"
	"github.com/teachme/platform-api/utils/response"
	"github.com/teachme/platform-api/utils/validation"
	"gorm.io/gorm"
)

const invalidCredentials = "Incorrect email or password"

// LoginRequest represents a user login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is returned on successful login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // in seconds
}

// Login handles user login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// Validate request
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	ip := c.IP()
	email := strings.ToLower(validation.SanitizeString(req.Email))

	// Find user by email
	var user model.User
	if err := h.db.WithContext(c.UserContext()).Where("email = ?", email).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return response.InternalServerError(c, "Failed to load user")
		}
		h.recordFailure(c, ip)
		return response.BadRequest(c, invalidCredentials)
	}

	// Verify password
	if err := authutil.VerifyPassword(user.HashedPassword, req.Password); err != nil {
		h.recordFailure(c, ip)
		return response.BadRequest(c, invalidCredentials)
	}

	if !user.IsActive {
		return response.BadRequest(c, "Inactive user")
	}

	// Clear failed attempts on successful login
	if h.bruteForceProtection != nil {
		h.bruteForceProtection.RecordSuccess(c.UserContext(), ip)
	}

	accessToken, err := h.jwtManager.IssueToken(user.ID, 0)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate access token")
	}

	return response.Success(c, TokenResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresIn:   int(h.jwtManager.Expiry().Seconds()),
	})
}

func (h *AuthHandler) recordFailure(c *fiber.Ctx, ip string) {
	if h.bruteForceProtection != nil {
		h.bruteForceProtection.RecordFailure(c.UserContext(), ip)
	}
}

package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/teachme/platform-api/model"
	authutil "github.com/teachme/platform-api/utils/auth"
	"github.com/teachme/platform-api/utils/middleware"
	"github.com/teachme/platform-api/utils/response"
	"github.com/teachme/platform-api/utils/validation"
	"gorm.io/gorm"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	db                   *gorm.DB
	jwtManager           *authutil.JWTManager
	validator            *validation.Validator
	bruteForceProtection *middleware.BruteForceProtection
}

// NewAuthHandler creates a new auth handler. bruteForceProtection may be nil.
func NewAuthHandler(db *gorm.DB, jwtManager *authutil.JWTManager, bruteForceProtection *middleware.BruteForceProtection) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		jwtManager:           jwtManager,
		validator:            validation.NewValidator(),
		bruteForceProtection: bruteForceProtection,
	}
}

// SignupRequest represents a user registration request
type SignupRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,max=72"`
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	Username    *string `json:"username,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Address     *string `json:"address,omitempty"`
	Country     *string `json:"country,omitempty"`
	DateOfBirth *string `json:"date_of_birth,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	IsSuperuser *bool   `json:"is_superuser,omitempty"`
}

// Signup handles user registration
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// Validate request
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	email := strings.ToLower(validation.SanitizeString(req.Email))

	// Check if user already exists
	var existing model.User
	err := h.db.WithContext(c.UserContext()).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return response.BadRequest(c, "The user with this email already exists in the system.")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return response.InternalServerError(c, "Failed to check existing user")
	}

	// Hash password
	hashedPassword, err := authutil.HashPassword(req.Password)
	if errors.Is(err, authutil.ErrPasswordTooLong) {
		// multi-byte passwords can pass the rune count and still exceed bcrypt's byte limit
		return response.ValidationError(c, map[string]string{
			"password": "password must be at most 72 bytes",
		})
	}
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	user := model.User{
		Email:          email,
		HashedPassword: hashedPassword,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Username:       req.Username,
		PhoneNumber:    req.PhoneNumber,
		Address:        req.Address,
		Country:        req.Country,
		DateOfBirth:    req.DateOfBirth,
		IsActive:       true,
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.IsSuperuser != nil {
		user.IsSuperuser = *req.IsSuperuser
	}

	if err := h.db.WithContext(c.UserContext()).Create(&user).Error; err != nil {
		return response.InternalServerError(c, "Failed to create user")
	}

	return response.Created(c, user)
}

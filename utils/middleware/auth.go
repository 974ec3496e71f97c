package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/teachme/platform-api/model"
	"github.com/teachme/platform-api/utils/auth"
	"github.com/teachme/platform-api/utils/response"
	"gorm.io/gorm"
)

const credentialsError = "Could not validate credentials"

// AuthMiddleware resolves bearer tokens to users
type AuthMiddleware struct {
	jwtManager *auth.JWTManager
	db         *gorm.DB
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *auth.JWTManager, db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		db:         db,
	}
}

// Required rejects the request unless it carries a valid token for an existing user.
// Every token problem yields the same 401 so callers cannot tell causes apart.
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return response.Unauthorized(c, credentialsError)
		}

		userID, err := m.jwtManager.ResolveToken(tokenString)
		if err != nil {
			return response.Unauthorized(c, credentialsError)
		}

		var user model.User
		if err := m.db.WithContext(c.UserContext()).First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NotFound(c, "User not found")
			}
			return response.InternalServerError(c, "Failed to load user")
		}

		c.Locals("user_id", user.ID)
		c.Locals("user", &user)

		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// GetUserID extracts user ID from context
func GetUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("user_id").(uint)
	return id, ok
}

// GetUser extracts full user object from context
func GetUser(c *fiber.Ctx) (*model.User, bool) {
	u, ok := c.Locals("user").(*model.User)
	return u, ok && u != nil
}

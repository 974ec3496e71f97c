package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/teachme/platform-api/utils/middleware"
	"github.com/teachme/platform-api/utils/response"
)

// Me returns the authenticated user
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}
	return response.Success(c, user)
}

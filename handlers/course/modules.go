package course

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/teachme/platform-api/model"
	"github.com/teachme/platform-api/utils/response"
	"github.com/teachme/platform-api/utils/validation"
	"gorm.io/gorm"
)

// CreateModuleRequest represents the request body for creating a module
type CreateModuleRequest struct {
	Title string `json:"title" validate:"required,min=1,max=255"`
	Order int    `json:"order" validate:"gte=0"`
}

// CreateModule handles POST /api/v1/courses/:id/modules
func (h *CourseHandler) CreateModule(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("id")
	if err != nil || courseID <= 0 {
		return response.BadRequest(c, "Invalid course ID")
	}

	var req CreateModuleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// Validate request
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	// Verify course exists
	var course model.Course
	if err := h.db.WithContext(c.UserContext()).Select("id").First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to verify course")
	}

	module := model.Module{
		Title:    validation.SanitizeString(req.Title),
		Order:    req.Order,
		CourseID: course.ID,
		Videos:   []model.Video{},
	}
	if err := h.db.WithContext(c.UserContext()).Create(&module).Error; err != nil {
		return response.InternalServerError(c, "Failed to create module")
	}

	return response.Created(c, module)
}

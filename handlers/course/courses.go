package course

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/teachme/platform-api/model"
	"github.com/teachme/platform-api/services/storage"
	"github.com/teachme/platform-api/utils/response"
	"github.com/teachme/platform-api/utils/validation"
	"gorm.io/gorm"
)

const (
	defaultLimit = 100
	maxLimit     = 100
)

// CourseHandler handles course, module and video requests
type CourseHandler struct {
	db        *gorm.DB
	storage   storage.Storage
	validator *validation.Validator
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(db *gorm.DB, store storage.Storage) *CourseHandler {
	return &CourseHandler{
		db:        db,
		storage:   store,
		validator: validation.NewValidator(),
	}
}

// CreateCourseRequest represents the request body for creating a course
type CreateCourseRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=255"`
	Description *string `json:"description"`
	Price       int     `json:"price" validate:"gte=0"`
	IsPublished bool    `json:"is_published"`
}

// UpdateCourseRequest is a partial update; absent fields are left alone.
// An explicit null clears description and is rejected for the other fields.
type UpdateCourseRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	Price       *int    `json:"price" validate:"omitempty,gte=0"`
	IsPublished *bool   `json:"is_published"`
}

// pagination reads skip and limit the way every list endpoint accepts them
func pagination(c *fiber.Ctx) (int, int) {
	skip := c.QueryInt("skip", 0)
	if skip < 0 {
		skip = 0
	}
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 || limit > maxLimit {
		limit = maxLimit
	}
	return skip, limit
}

// ListCourses handles GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	skip, limit := pagination(c)

	courses := make([]model.Course, 0)
	if err := model.WithOutline(h.db.WithContext(c.UserContext())).
		Where("is_published = ?", true).
		Order("id ASC").
		Offset(skip).
		Limit(limit).
		Find(&courses).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}

	return response.Success(c, courses)
}

// ListMyCourses handles GET /api/v1/courses/my-courses.
// Courses have no owner yet, so every course is returned, drafts included.
func (h *CourseHandler) ListMyCourses(c *fiber.Ctx) error {
	skip, limit := pagination(c)

	courses := make([]model.Course, 0)
	if err := model.WithOutline(h.db.WithContext(c.UserContext())).
		Order("id ASC").
		Offset(skip).
		Limit(limit).
		Find(&courses).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}

	return response.Success(c, courses)
}

// GetCourse handles GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid course ID")
	}

	course, err := h.loadCourse(c, uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	return response.Success(c, course)
}

// CreateCourse handles POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	var req CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// Validate request
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	course := model.Course{
		Title:       validation.SanitizeString(req.Title),
		Description: req.Description,
		Price:       req.Price,
		IsPublished: req.IsPublished,
		Modules:     []model.Module{},
	}

	if err := h.db.WithContext(c.UserContext()).Create(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to create course")
	}

	return response.Created(c, course)
}

// UpdateCourse handles PATCH /api/v1/courses/:id
func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid course ID")
	}

	var req UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// Validate request
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	present := payloadKeys(c.Body())
	nulls := make(map[string]string)
	for _, field := range []string{"title", "price", "is_published"} {
		if isNull(present, field) {
			nulls[field] = field + " cannot be null"
		}
	}
	if len(nulls) > 0 {
		return response.ValidationError(c, nulls)
	}

	var course model.Course
	if err := h.db.WithContext(c.UserContext()).First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	// Only fields present in the payload are written
	updates := map[string]interface{}{"updated_at": time.Now()}
	if req.Title != nil {
		updates["title"] = validation.SanitizeString(*req.Title)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	} else if isNull(present, "description") {
		updates["description"] = nil
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.IsPublished != nil {
		updates["is_published"] = *req.IsPublished
	}

	if err := h.db.WithContext(c.UserContext()).Model(&course).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update course")
	}

	updated, err := h.loadCourse(c, course.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch updated course")
	}

	return response.Success(c, updated)
}

// payloadKeys returns the top-level keys of a JSON object body with their raw values
func payloadKeys(body []byte) map[string]json.RawMessage {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(body, &keys); err != nil {
		return nil
	}
	return keys
}

func isNull(keys map[string]json.RawMessage, field string) bool {
	raw, ok := keys[field]
	return ok && bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// loadCourse fetches a course with its module and video outline
func (h *CourseHandler) loadCourse(c *fiber.Ctx, id uint) (*model.Course, error) {
	var course model.Course
	if err := model.WithOutline(h.db.WithContext(c.UserContext())).First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

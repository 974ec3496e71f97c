package enrollment

import (
	"github.com/gofiber/fiber/v2"
	"github.com/teachme/platform-api/services"
	"github.com/teachme/platform-api/utils/middleware"
	"github.com/teachme/platform-api/utils/response"
)

// EnrollmentHandler handles enrollment requests
type EnrollmentHandler struct {
	enrollments *services.EnrollmentService
}

// NewEnrollmentHandler creates a new enrollment handler
func NewEnrollmentHandler(enrollments *services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// MessageResponse is the body of enrollment results
type MessageResponse struct {
	Message string `json:"message"`
}

// Enroll handles POST /api/v1/enrollments/:course_id.
// Enrolling twice is not an error.
func (h *EnrollmentHandler) Enroll(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	courseID, err := c.ParamsInt("course_id")
	if err != nil || courseID <= 0 {
		return response.BadRequest(c, "Invalid course ID")
	}

	created, err := h.enrollments.Enroll(c.UserContext(), userID, uint(courseID))
	if err != nil {
		return response.FromError(c, err)
	}

	if !created {
		return response.Success(c, MessageResponse{Message: "Already enrolled"})
	}
	return response.Success(c, MessageResponse{Message: "Successfully enrolled"})
}

// MyCourses handles GET /api/v1/enrollments/my-courses
func (h *EnrollmentHandler) MyCourses(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	courses, err := h.enrollments.EnrolledCourses(c.UserContext(), userID)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, courses)
}

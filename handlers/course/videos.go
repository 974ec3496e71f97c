package course

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/teachme/platform-api/model"
	"github.com/teachme/platform-api/services/storage"
	"github.com/teachme/platform-api/utils/logger"
	"github.com/teachme/platform-api/utils/response"
	"github.com/teachme/platform-api/utils/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UploadVideo handles POST /api/v1/modules/:id/videos (multipart: title, file,
// description, duration). The same handler serves /courses/:id/videos, where
// :id is also a module id.
func (h *CourseHandler) UploadVideo(c *fiber.Ctx) error {
	moduleID, err := c.ParamsInt("id")
	if err != nil || moduleID <= 0 {
		return response.BadRequest(c, "Invalid module ID")
	}

	title := validation.SanitizeString(c.FormValue("title"))
	if title == "" {
		return response.ValidationError(c, map[string]string{"title": "title is required"})
	}

	duration := 0
	if raw := c.FormValue("duration"); raw != "" {
		duration, err = strconv.Atoi(raw)
		if err != nil || duration < 0 {
			return response.ValidationError(c, map[string]string{"duration": "duration must be a non-negative integer"})
		}
	}

	var description *string
	if raw := validation.SanitizeString(c.FormValue("description")); raw != "" {
		description = &raw
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.ValidationError(c, map[string]string{"file": "file is required"})
	}

	// Verify module exists before storing anything
	var module model.Module
	if err := h.db.WithContext(c.UserContext()).Select("id").First(&module, moduleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Module not found")
		}
		return response.InternalServerError(c, "Failed to verify module")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.BadRequest(c, "Failed to read uploaded file")
	}
	defer file.Close()

	key := storage.GenerateKey(fileHeader.Filename)
	url, err := h.storage.Store(c.UserContext(), file, key)
	if err != nil {
		logger.L().Error("video upload failed", zap.String("key", key), zap.Error(err))
		return response.InternalServerError(c, "Failed to store video")
	}

	// transcription is not implemented; uploads are stored as-is

	video := model.Video{
		Title:       title,
		Description: description,
		URL:         url,
		Duration:    duration,
		ModuleID:    module.ID,
	}
	if err := h.db.WithContext(c.UserContext()).Create(&video).Error; err != nil {
		return response.InternalServerError(c, "Failed to save video")
	}

	return response.Created(c, video)
}

package server

import (
	"github.com/gofiber/fiber/v2"

	"flock/internal/models"
)

// maxUploadSize limits media uploads to 5 MB.
const maxUploadSize = 5 << 20

// UploadMedia stores an uploaded image and returns its public URL.
func (s *Server) UploadMedia(c *fiber.Ctx) error {
	if s.media == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewInvalidOperationError("Media uploads are not enabled"))
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Missing file field"))
	}
	if fileHeader.Size > maxUploadSize {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("File exceeds the 5MB limit"))
	}

	f, err := fileHeader.Open()
	if err != nil {
		return respondServiceError(c, models.NewInternalError(err))
	}
	defer f.Close()

	url, err := s.media.Upload(c.UserContext(), fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"), f)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"url": url})
}

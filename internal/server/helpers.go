package server

import (
	"context"
	"errors"
	"strconv"

	"flock/internal/middleware"
	"flock/internal/models"

	"github.com/gofiber/fiber/v2"
)

func contextWithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, middleware.UserIDKey, userID)
}

// parseID reads a positive integer route parameter.
func parseID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("Invalid " + name)
	}
	return uint(id), nil
}

// parsePage reads page/page_size query params with defaults of 1 and 10.
func parsePage(c *fiber.Ctx) (int, int) {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.Query("page_size", "10"))
	if err != nil || pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	return page, pageSize
}

// respondServiceError maps application error codes to HTTP statuses.
func respondServiceError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	status := fiber.StatusInternalServerError
	switch appErr.Code {
	case models.CodeNotFound:
		status = fiber.StatusNotFound
	case models.CodeValidation, models.CodeInvalidOperation:
		status = fiber.StatusBadRequest
	case models.CodeUnauthorized:
		status = fiber.StatusForbidden
	case models.CodeMediaUpload:
		status = fiber.StatusBadGateway
	case models.CodeTransientStore:
		status = fiber.StatusServiceUnavailable
	}
	return models.RespondWithError(c, status, err)
}

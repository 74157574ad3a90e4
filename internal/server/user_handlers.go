package server

import (
	"github.com/gofiber/fiber/v2"

	"flock/internal/models"
)

// GetMe returns the authenticated user.
func (s *Server) GetMe(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	user, err := s.users.GetByID(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

type updateProfileRequest struct {
	Name     *string `json:"name"`
	Bio      *string `json:"bio"`
	Location *string `json:"location"`
	Website  *string `json:"website"`
	Avatar   *string `json:"avatar"`
	Cover    *string `json:"cover"`
}

// UpdateMe updates the authenticated user's profile fields. Only fields
// present in the request body are changed.
func (s *Server) UpdateMe(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	user, err := s.users.GetByID(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Location != nil {
		user.Location = *req.Location
	}
	if req.Website != nil {
		user.Website = *req.Website
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}
	if req.Cover != nil {
		user.Cover = *req.Cover
	}

	if err := s.users.Update(c.UserContext(), user); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// GetProfile returns a user profile by username with viewer-relative fields.
func (s *Server) GetProfile(c *fiber.Ctx) error {
	username := c.Params("username")
	viewerID := s.optionalUserID(c)

	user, err := s.timeline.GetProfile(c.UserContext(), username, viewerID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// SearchUsers finds users by name or username.
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	users, err := s.timeline.SearchUsers(c.UserContext(), c.Query("q"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// GetSuggestions returns accounts the viewer might want to follow.
func (s *Server) GetSuggestions(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	limit := c.QueryInt("limit", 5)

	users, err := s.graph.SuggestUsers(c.UserContext(), userID, limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

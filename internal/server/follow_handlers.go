package server

import (
	"github.com/gofiber/fiber/v2"
)

// ToggleFollow flips the follow edge from the viewer toward the target user.
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	targetID, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	following, err := s.graph.ToggleFollow(c.UserContext(), userID, targetID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"following": following})
}

// GetFollowers lists the users following the target user.
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	users, err := s.graph.Followers(c.UserContext(), targetID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// GetFollowing lists the users the target user follows.
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	users, err := s.graph.Following(c.UserContext(), targetID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

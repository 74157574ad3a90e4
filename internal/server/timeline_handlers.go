package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetTimeline returns the viewer's home feed page.
func (s *Server) GetTimeline(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	page, pageSize := parsePage(c)

	posts, err := s.timeline.GetTimeline(c.UserContext(), userID, page, pageSize)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"posts":     posts,
		"page":      page,
		"page_size": pageSize,
	})
}

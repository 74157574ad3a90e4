package server

import (
	"github.com/gofiber/fiber/v2"

	"flock/internal/models"
)

type createPostRequest struct {
	Content   string `json:"content"`
	ImageURL  string `json:"image_url"`
	ReplyToID *uint  `json:"reply_to_id"`
}

// CreatePost creates a post or a reply authored by the viewer.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	post, err := s.interactions.CreatePost(c.UserContext(), userID, req.Content, req.ImageURL, req.ReplyToID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost returns a single post with viewer-relative flags.
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}
	viewerID := s.optionalUserID(c)

	post, err := s.timeline.GetPost(c.UserContext(), postID, viewerID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// GetThread returns a post with its direct replies.
func (s *Server) GetThread(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}
	viewerID := s.optionalUserID(c)

	post, replies, err := s.timeline.GetThread(c.UserContext(), postID, viewerID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"post": post, "replies": replies})
}

// DeletePost removes the viewer's own post and its direct replies.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	postID, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	if err := s.interactions.DeletePost(c.UserContext(), userID, postID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// ToggleLike flips the viewer's like on a post.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	postID, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	liked, err := s.interactions.ToggleLike(c.UserContext(), userID, postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"liked": liked})
}

// ToggleRepost flips the viewer's repost of a post.
func (s *Server) ToggleRepost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	postID, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	reposted, err := s.interactions.ToggleRepost(c.UserContext(), userID, postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"reposted": reposted})
}

type pinRequest struct {
	Pinned bool `json:"pinned"`
}

// PinPost pins or unpins one of the viewer's own posts.
func (s *Server) PinPost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	postID, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	var req pinRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	post, err := s.interactions.SetPinned(c.UserContext(), userID, postID, req.Pinned)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// SearchPosts finds posts by content substring.
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	viewerID := s.optionalUserID(c)
	posts, err := s.timeline.SearchPosts(c.UserContext(), c.Query("q"), viewerID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// GetUserPosts returns a user's non-reply posts, newest first.
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}
	viewerID := s.optionalUserID(c)

	posts, err := s.timeline.GetUserPosts(c.UserContext(), targetID, viewerID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

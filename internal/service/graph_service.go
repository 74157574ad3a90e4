// Package service contains the business logic of the application.
package service

import (
	"context"

	"flock/internal/middleware"
	"flock/internal/models"
	"flock/internal/repository"
)

// GraphService manages the directed follow graph between users.
type GraphService struct {
	users   repository.UserRepository
	follows repository.FollowRepository
}

// NewGraphService returns a new GraphService.
func NewGraphService(users repository.UserRepository, follows repository.FollowRepository) *GraphService {
	return &GraphService{users: users, follows: follows}
}

// ToggleFollow flips the actor's follow edge toward the target and reports
// whether the actor follows the target after the call. Following yourself is
// rejected before any write.
func (s *GraphService) ToggleFollow(ctx context.Context, actorID, targetID uint) (bool, error) {
	if actorID == targetID {
		return false, models.NewInvalidOperationError("You cannot follow yourself")
	}

	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return false, err
	}

	following, err := s.follows.Toggle(ctx, actorID, targetID)
	if err != nil {
		return false, err
	}

	direction := "off"
	if following {
		direction = "on"
	}
	middleware.GraphMutations.WithLabelValues("follow", direction).Inc()

	return following, nil
}

// Followers lists the users following the given user.
func (s *GraphService) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.follows.Followers(ctx, userID)
}

// Following lists the users the given user follows.
func (s *GraphService) Following(ctx context.Context, userID uint) ([]models.User, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.follows.Following(ctx, userID)
}

// SuggestUsers returns accounts the viewer does not follow yet.
func (s *GraphService) SuggestUsers(ctx context.Context, viewerID uint, limit int) ([]models.User, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.users.Suggest(ctx, viewerID, limit)
}

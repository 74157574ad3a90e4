package service

import (
	"context"
	"time"

	"flock/internal/cache"
	"flock/internal/middleware"
	"flock/internal/models"
	"flock/internal/repository"
)

// MaxSearchResults caps search result sets for both posts and users.
const MaxSearchResults = 20

// TimelineService assembles feeds, threads and profiles for a viewer.
type TimelineService struct {
	posts repository.PostRepository
	users repository.UserRepository
}

// NewTimelineService returns a new TimelineService.
func NewTimelineService(posts repository.PostRepository, users repository.UserRepository) *TimelineService {
	return &TimelineService{posts: posts, users: users}
}

// GetTimeline assembles the viewer's home feed page: non-reply posts from the
// viewer and the accounts they follow, newest first. Feeds are assembled on
// read; nothing is fanned out at write time.
func (s *TimelineService) GetTimeline(ctx context.Context, viewerID uint, page, pageSize int) ([]*models.Post, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	start := time.Now()
	posts, err := s.posts.Timeline(ctx, viewerID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	middleware.TimelineAssembly.WithLabelValues("home").Observe(time.Since(start).Seconds())

	return posts, nil
}

// GetUserPosts returns a user's non-reply posts, newest first, with flags
// relative to the viewer.
func (s *TimelineService) GetUserPosts(ctx context.Context, userID, viewerID uint) ([]*models.Post, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	start := time.Now()
	posts, err := s.posts.ByAuthor(ctx, userID, viewerID)
	if err != nil {
		return nil, err
	}
	middleware.TimelineAssembly.WithLabelValues("author").Observe(time.Since(start).Seconds())

	return posts, nil
}

// GetThread returns a post together with its direct replies.
func (s *TimelineService) GetThread(ctx context.Context, postID, viewerID uint) (*models.Post, []*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID, viewerID)
	if err != nil {
		return nil, nil, err
	}
	replies, err := s.posts.Replies(ctx, postID, viewerID)
	if err != nil {
		return nil, nil, err
	}
	return post, replies, nil
}

// GetPost returns a single post with viewer-relative flags.
func (s *TimelineService) GetPost(ctx context.Context, postID, viewerID uint) (*models.Post, error) {
	return s.posts.GetByID(ctx, postID, viewerID)
}

// GetProfile returns a user profile with computed counts. Anonymous profile
// reads are cached; authenticated ones are not, since is_following depends on
// the viewer.
func (s *TimelineService) GetProfile(ctx context.Context, username string, viewerID uint) (*models.User, error) {
	if viewerID == 0 {
		var user models.User
		err := cache.Aside(ctx, cache.ProfileKey(username), &user, cache.ProfileTTL, func() error {
			u, err := s.users.GetProfile(ctx, username, 0)
			if err != nil {
				return err
			}
			user = *u
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &user, nil
	}
	return s.users.GetProfile(ctx, username, viewerID)
}

// SearchPosts finds posts whose content contains the query, newest first.
func (s *TimelineService) SearchPosts(ctx context.Context, query string, viewerID uint) ([]*models.Post, error) {
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return s.posts.Search(ctx, query, MaxSearchResults, viewerID)
}

// SearchUsers finds users whose name or username contains the query.
func (s *TimelineService) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return s.users.Search(ctx, query, MaxSearchResults)
}

package service

import (
	"context"

	"flock/internal/middleware"
	"flock/internal/models"
	"flock/internal/repository"
	"flock/internal/validation"
)

// InteractionService manages post creation, likes, reposts and deletion.
type InteractionService struct {
	posts repository.PostRepository
}

// NewInteractionService returns a new InteractionService.
func NewInteractionService(posts repository.PostRepository) *InteractionService {
	return &InteractionService{posts: posts}
}

// CreatePost creates a plain post, or a reply when replyToID is set. The
// returned post carries its computed counts and viewer flags.
func (s *InteractionService) CreatePost(ctx context.Context, userID uint, content, imageURL string, replyToID *uint) (*models.Post, error) {
	if err := validation.PostContent(content, imageURL != ""); err != nil {
		return nil, err
	}

	if replyToID != nil {
		if _, err := s.posts.GetByID(ctx, *replyToID, userID); err != nil {
			return nil, err
		}
	}

	post := &models.Post{
		UserID:    userID,
		Content:   content,
		ImageURL:  imageURL,
		ReplyToID: replyToID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.posts.GetByID(ctx, post.ID, userID)
}

// ToggleLike flips the user's membership in the post's liked-by set and
// reports whether the post is liked after the call.
func (s *InteractionService) ToggleLike(ctx context.Context, userID, postID uint) (bool, error) {
	if _, err := s.posts.GetByID(ctx, postID, userID); err != nil {
		return false, err
	}

	liked, err := s.posts.IsLiked(ctx, userID, postID)
	if err != nil {
		return false, err
	}

	if liked {
		if err := s.posts.Unlike(ctx, userID, postID); err != nil {
			return false, err
		}
		middleware.GraphMutations.WithLabelValues("like", "off").Inc()
		return false, nil
	}

	if err := s.posts.Like(ctx, userID, postID); err != nil {
		return false, err
	}
	middleware.GraphMutations.WithLabelValues("like", "on").Inc()
	return true, nil
}

// ToggleRepost flips the user's repost of the post and reports whether the
// repost exists after the call. Toggling a repost-wrapper operates on the
// original post it wraps.
func (s *InteractionService) ToggleRepost(ctx context.Context, userID, postID uint) (bool, error) {
	post, err := s.posts.GetByID(ctx, postID, userID)
	if err != nil {
		return false, err
	}
	if post.RepostOfID != nil {
		postID = *post.RepostOfID
	}

	reposted, err := s.posts.ToggleRepost(ctx, userID, postID)
	if err != nil {
		return false, err
	}

	direction := "off"
	if reposted {
		direction = "on"
	}
	middleware.GraphMutations.WithLabelValues("repost", direction).Inc()

	return reposted, nil
}

// DeletePost removes the author's own post together with its direct replies.
func (s *InteractionService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.posts.GetByID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewUnauthorizedError("You can only delete your own posts")
	}
	return s.posts.DeleteCascade(ctx, postID)
}

// SetPinned pins or unpins one of the author's own posts.
func (s *InteractionService) SetPinned(ctx context.Context, userID, postID uint, pinned bool) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, models.NewUnauthorizedError("You can only pin your own posts")
	}
	if post.Pinned == pinned {
		return post, nil
	}
	post.Pinned = pinned
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

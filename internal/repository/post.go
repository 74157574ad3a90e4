package repository

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"flock/internal/cache"
	"flock/internal/middleware"
	"flock/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines persistence operations for posts, likes and reposts.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error)
	Timeline(ctx context.Context, viewerID uint, limit, offset int) ([]*models.Post, error)
	ByAuthor(ctx context.Context, userID, viewerID uint) ([]*models.Post, error)
	Replies(ctx context.Context, postID, viewerID uint) ([]*models.Post, error)
	Search(ctx context.Context, query string, limit int, viewerID uint) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	DeleteCascade(ctx context.Context, id uint) error
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	Like(ctx context.Context, userID, postID uint) error
	Unlike(ctx context.Context, userID, postID uint) error
	// ToggleRepost flips the viewer's membership in the post's reposted-by
	// set and reports whether the membership exists after the call. The
	// membership row and its companion wrapper post move together.
	ToggleRepost(ctx context.Context, userID, postID uint) (bool, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// withViewerDetails annotates a posts query with the computed count columns
// and the viewer-relative liked/reposted flags. For anonymous reads both flags
// select a constant false.
func (r *postRepository) withViewerDetails(q *gorm.DB, viewerID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count, " +
		"(SELECT COUNT(*) FROM reposts WHERE reposts.post_id = posts.id) AS reposts_count, " +
		"(SELECT COUNT(*) FROM posts AS replies WHERE replies.reply_to_id = posts.id AND replies.deleted_at IS NULL) AS replies_count"

	if viewerID != 0 {
		return q.Select(selectQuery+
			", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) AS liked"+
			", EXISTS(SELECT 1 FROM reposts WHERE reposts.post_id = posts.id AND reposts.user_id = ?) AS reposted",
			viewerID, viewerID)
	}
	return q.Select(selectQuery + ", false AS liked, false AS reposted")
}

func (r *postRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("User").
		Preload("RepostOf").
		Preload("RepostOf.User")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return storeErr(err)
	}
	if post.ReplyToID != nil {
		cache.InvalidatePost(ctx, *post.ReplyToID)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	var post models.Post
	q := r.withViewerDetails(r.preloaded(ctx), viewerID)
	if err := q.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, storeErr(err)
	}
	return &post, nil
}

// Timeline returns the viewer's home feed: non-reply posts authored by the
// viewer or by accounts the viewer follows, newest first.
func (r *postRepository) Timeline(ctx context.Context, viewerID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	q := r.withViewerDetails(r.preloaded(ctx), viewerID).
		Where("posts.reply_to_id IS NULL").
		Where("posts.user_id = ? OR posts.user_id IN (SELECT followee_id FROM follows WHERE follower_id = ?)",
			viewerID, viewerID).
		Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset)
	if err := q.Find(&posts).Error; err != nil {
		return nil, storeErr(err)
	}
	return posts, nil
}

func (r *postRepository) ByAuthor(ctx context.Context, userID, viewerID uint) ([]*models.Post, error) {
	var posts []*models.Post
	q := r.withViewerDetails(r.preloaded(ctx), viewerID).
		Where("posts.user_id = ?", userID).
		Where("posts.reply_to_id IS NULL").
		Order("posts.created_at DESC")
	if err := q.Find(&posts).Error; err != nil {
		return nil, storeErr(err)
	}
	return posts, nil
}

func (r *postRepository) Replies(ctx context.Context, postID, viewerID uint) ([]*models.Post, error) {
	var posts []*models.Post
	q := r.withViewerDetails(r.preloaded(ctx), viewerID).
		Where("posts.reply_to_id = ?", postID).
		Order("posts.created_at DESC")
	if err := q.Find(&posts).Error; err != nil {
		return nil, storeErr(err)
	}
	return posts, nil
}

func (r *postRepository) Search(ctx context.Context, query string, limit int, viewerID uint) ([]*models.Post, error) {
	var posts []*models.Post
	like := "%" + strings.ToLower(query) + "%"
	q := r.withViewerDetails(r.preloaded(ctx), viewerID).
		Where("LOWER(posts.content) LIKE ?", like).
		Order("posts.created_at DESC").
		Limit(limit)
	if err := q.Find(&posts).Error; err != nil {
		return nil, storeErr(err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return storeErr(err)
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

// DeleteCascade removes a post and its direct replies in one transaction.
// The cascade stops at one level: replies-to-replies and repost-wrappers of
// the deleted post are left in place.
func (r *postRepository) DeleteCascade(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Post{}, id).Error; err != nil {
			return err
		}
		return tx.Where("reply_to_id = ?", id).Delete(&models.Post{}).Error
	})
	if err != nil {
		return storeErr(err)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, storeErr(err)
	}
	return count > 0, nil
}

func (r *postRepository) Like(ctx context.Context, userID, postID uint) error {
	// ON CONFLICT keeps a repeated like idempotent under racing requests.
	err := r.db.WithContext(ctx).Exec(
		"INSERT INTO likes (user_id, post_id, created_at) VALUES (?, ?, ?) ON CONFLICT (user_id, post_id) DO NOTHING",
		userID, postID, nowUTC(),
	).Error
	if err != nil {
		return storeErr(err)
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{}).Error; err != nil {
		return storeErr(err)
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}

func (r *postRepository) ToggleRepost(ctx context.Context, userID, postID uint) (bool, error) {
	var reposted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).
			Delete(&models.Repost{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			del := tx.Where("user_id = ? AND repost_of_id = ?", userID, postID).
				Delete(&models.Post{})
			if del.Error != nil {
				return del.Error
			}
			if del.RowsAffected == 0 {
				// Dangling membership without a wrapper. Removing the
				// membership alone restores consistency.
				middleware.Logger.WarnContext(ctx, "repost wrapper missing on removal",
					slog.Uint64("user_id", uint64(userID)),
					slog.Uint64("post_id", uint64(postID)),
				)
			}
			reposted = false
			return nil
		}

		if err := tx.Create(&models.Repost{UserID: userID, PostID: postID}).Error; err != nil {
			return err
		}
		wrapper := &models.Post{UserID: userID, RepostOfID: &postID}
		if err := tx.Create(wrapper).Error; err != nil {
			return err
		}
		reposted = true
		return nil
	})
	if err != nil {
		return false, storeErr(err)
	}
	cache.InvalidatePost(ctx, postID)
	return reposted, nil
}

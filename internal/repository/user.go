// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"flock/internal/cache"
	"flock/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetProfile(ctx context.Context, username string, viewerID uint) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Search(ctx context.Context, query string, limit int) ([]models.User, error)
	Suggest(ctx context.Context, viewerID uint, limit int) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return storeErr(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeErr(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeErr(err)
	}
	return &user, nil
}

// GetProfile loads a user by username together with computed edge counts, the
// non-reply post count and the viewer-relative is_following flag. None of the
// computed fields are persisted; they are derived fresh on every read.
func (r *userRepository) GetProfile(ctx context.Context, username string, viewerID uint) (*models.User, error) {
	var user models.User

	selectQuery := "users.*, " +
		"(SELECT COUNT(*) FROM follows WHERE follows.followee_id = users.id) AS followers_count, " +
		"(SELECT COUNT(*) FROM follows WHERE follows.follower_id = users.id) AS following_count, " +
		"(SELECT COUNT(*) FROM posts WHERE posts.user_id = users.id AND posts.reply_to_id IS NULL AND posts.deleted_at IS NULL) AS post_count"

	q := r.db.WithContext(ctx)
	if viewerID != 0 {
		q = q.Select(selectQuery+
			", EXISTS(SELECT 1 FROM follows WHERE follows.follower_id = ? AND follows.followee_id = users.id) AS is_following",
			viewerID)
	} else {
		q = q.Select(selectQuery + ", false AS is_following")
	}

	if err := q.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", username)
		}
		return nil, storeErr(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("User already exists")
		}
		return storeErr(err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return storeErr(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	cache.Invalidate(ctx, cache.ProfileKey(user.Username))
	return nil
}

// Search matches name or username case-insensitively. Results are ordered by
// id ascending; the order is implementation-defined, fixed for reproducibility.
func (r *userRepository) Search(ctx context.Context, query string, limit int) ([]models.User, error) {
	var users []models.User
	like := "%" + strings.ToLower(query) + "%"
	if err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(username) LIKE ?", like, like).
		Order("id ASC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, storeErr(err)
	}
	return users, nil
}

// Suggest returns candidate users to follow: everyone except the viewer and
// the accounts the viewer already follows. Ordered by id ascending
// (implementation-defined).
func (r *userRepository) Suggest(ctx context.Context, viewerID uint, limit int) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Where("id <> ?", viewerID).
		Where("id NOT IN (SELECT followee_id FROM follows WHERE follower_id = ?)", viewerID).
		Order("id ASC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, storeErr(err)
	}
	return users, nil
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505; sqlite reports "UNIQUE constraint failed"
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

package repository

import (
	"context"

	"flock/internal/models"

	"gorm.io/gorm"
)

// FollowRepository defines persistence operations for the follow graph.
type FollowRepository interface {
	// Toggle flips the follow edge follower->followee and reports whether the
	// edge exists after the call.
	Toggle(ctx context.Context, followerID, followeeID uint) (bool, error)
	IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error)
	Followers(ctx context.Context, userID uint) ([]models.User, error)
	Following(ctx context.Context, userID uint) ([]models.User, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository returns a new FollowRepository implementation.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Toggle(ctx context.Context, followerID, followeeID uint) (bool, error) {
	var following bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Delete first: removal doubles as the membership probe.
		res := tx.Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
			Delete(&models.Follow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			following = false
			return nil
		}
		if err := tx.Create(&models.Follow{FollowerID: followerID, FolloweeID: followeeID}).Error; err != nil {
			return err
		}
		following = true
		return nil
	})
	if err != nil {
		return false, storeErr(err)
	}
	return following, nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error; err != nil {
		return false, storeErr(err)
	}
	return count > 0, nil
}

func (r *followRepository) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followee_id = ?", userID).
		Where("users.deleted_at IS NULL").
		Order("follows.created_at DESC").
		Find(&users).Error; err != nil {
		return nil, storeErr(err)
	}
	return users, nil
}

func (r *followRepository) Following(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN follows ON follows.followee_id = users.id").
		Where("follows.follower_id = ?", userID).
		Where("users.deleted_at IS NULL").
		Order("follows.created_at DESC").
		Find(&users).Error; err != nil {
		return nil, storeErr(err)
	}
	return users, nil
}

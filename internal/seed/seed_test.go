package seed

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"flock/internal/database"
	"flock/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func TestRunCreatesConnectedData(t *testing.T) {
	db := newTestDB(t)

	opts := Options{Users: 10, PostsPerUser: 3, Seed: 42}
	require.NoError(t, Run(db, opts))

	var userCount, postCount, followCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&postCount).Error)
	require.NoError(t, db.Model(&models.Follow{}).Count(&followCount).Error)

	assert.EqualValues(t, 10, userCount)
	assert.GreaterOrEqual(t, postCount, int64(30), "top-level posts plus replies")
	assert.Greater(t, followCount, int64(0))

	// Every repost membership has its wrapper post.
	var reposts []models.Repost
	require.NoError(t, db.Find(&reposts).Error)
	for _, r := range reposts {
		var n int64
		require.NoError(t, db.Model(&models.Post{}).
			Where("user_id = ? AND repost_of_id = ?", r.UserID, r.PostID).
			Count(&n).Error)
		assert.EqualValues(t, 1, n)
	}

	// No self-follows in the generated mesh.
	var selfFollows int64
	require.NoError(t, db.Model(&models.Follow{}).
		Where("follower_id = followee_id").
		Count(&selfFollows).Error)
	assert.Zero(t, selfFollows)
}

package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"flock/internal/database"
	"flock/internal/models"
	"flock/internal/repository"
)

// newTestDB opens a fresh in-memory sqlite database migrated with the full
// schema. A single connection keeps the shared-cache memory DB alive for the
// duration of the test.
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

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		Name:     username,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

type fixture struct {
	db           *gorm.DB
	posts        repository.PostRepository
	users        repository.UserRepository
	follows      repository.FollowRepository
	graph        *GraphService
	interactions *InteractionService
	timeline     *TimelineService
}

func newFixture(t *testing.T) *fixture {
	db := newTestDB(t)
	posts := repository.NewPostRepository(db)
	users := repository.NewUserRepository(db)
	follows := repository.NewFollowRepository(db)
	return &fixture{
		db:           db,
		posts:        posts,
		users:        users,
		follows:      follows,
		graph:        NewGraphService(users, follows),
		interactions: NewInteractionService(posts),
		timeline:     NewTimelineService(posts, users),
	}
}

func (f *fixture) mustCreatePost(t *testing.T, userID uint, content string) *models.Post {
	t.Helper()
	post, err := f.interactions.CreatePost(context.Background(), userID, content, "", nil)
	require.NoError(t, err)
	return post
}

// Package seed populates a development database with fake data.
package seed

import (
	"fmt"

	"flock/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options controls how much data Run generates.
type Options struct {
	Users        int
	PostsPerUser int
	Seed         int64
}

// DefaultOptions returns a small but connected dataset.
func DefaultOptions() Options {
	return Options{Users: 20, PostsPerUser: 5, Seed: 0}
}

// Run fills the database with users, a follow mesh, posts, replies, likes and
// reposts. It is idempotent enough for development use: usernames are random,
// so repeated runs simply add more data.
func Run(db *gorm.DB, opts Options) error {
	faker := gofakeit.New(opts.Seed)

	users, err := createUsers(db, faker, opts.Users)
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	if err := createFollows(db, faker, users); err != nil {
		return fmt.Errorf("seed follows: %w", err)
	}
	posts, err := createPosts(db, faker, users, opts.PostsPerUser)
	if err != nil {
		return fmt.Errorf("seed posts: %w", err)
	}
	if err := createInteractions(db, faker, users, posts); err != nil {
		return fmt.Errorf("seed interactions: %w", err)
	}
	return nil
}

func createUsers(db *gorm.DB, faker *gofakeit.Faker, n int) ([]models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		user := models.User{
			Username: fmt.Sprintf("%s%d", faker.Username(), i),
			Email:    fmt.Sprintf("user%d@%s", i, faker.DomainName()),
			Password: string(hash),
			Name:     faker.Name(),
			Bio:      faker.Sentence(8),
			Location: faker.City(),
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// createFollows gives every user a handful of outgoing edges.
func createFollows(db *gorm.DB, faker *gofakeit.Faker, users []models.User) error {
	for _, u := range users {
		n := faker.Number(1, 5)
		seen := map[uint]bool{u.ID: true}
		for j := 0; j < n; j++ {
			target := users[faker.Number(0, len(users)-1)]
			if seen[target.ID] {
				continue
			}
			seen[target.ID] = true
			follow := models.Follow{FollowerID: u.ID, FolloweeID: target.ID}
			if err := db.Create(&follow).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func createPosts(db *gorm.DB, faker *gofakeit.Faker, users []models.User, perUser int) ([]models.Post, error) {
	var posts []models.Post
	for _, u := range users {
		for j := 0; j < perUser; j++ {
			post := models.Post{
				UserID:  u.ID,
				Content: faker.Sentence(faker.Number(3, 20)),
			}
			if err := db.Create(&post).Error; err != nil {
				return nil, err
			}
			posts = append(posts, post)
		}
	}

	// A few replies to random posts.
	for i := 0; i < len(posts)/3; i++ {
		parent := posts[faker.Number(0, len(posts)-1)]
		author := users[faker.Number(0, len(users)-1)]
		reply := models.Post{
			UserID:    author.ID,
			Content:   faker.Sentence(faker.Number(3, 12)),
			ReplyToID: &parent.ID,
		}
		if err := db.Create(&reply).Error; err != nil {
			return nil, err
		}
	}
	return posts, nil
}

func createInteractions(db *gorm.DB, faker *gofakeit.Faker, users []models.User, posts []models.Post) error {
	for _, u := range users {
		likes := faker.Number(0, 8)
		seen := map[uint]bool{}
		for j := 0; j < likes; j++ {
			post := posts[faker.Number(0, len(posts)-1)]
			if seen[post.ID] {
				continue
			}
			seen[post.ID] = true
			if err := db.Create(&models.Like{UserID: u.ID, PostID: post.ID}).Error; err != nil {
				return err
			}
		}

		if faker.Bool() {
			post := posts[faker.Number(0, len(posts)-1)]
			if post.UserID == u.ID {
				continue
			}
			if err := db.Create(&models.Repost{UserID: u.ID, PostID: post.ID}).Error; err != nil {
				return err
			}
			wrapper := models.Post{UserID: u.ID, RepostOfID: &post.ID}
			if err := db.Create(&wrapper).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

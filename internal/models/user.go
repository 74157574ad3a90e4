// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a user in the Flock application.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"unique;not null" json:"username"`
	Email    string `gorm:"unique;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Name     string `json:"name"`
	Bio      string `json:"bio"`
	Location string `json:"location"`
	Website  string `json:"website"`
	Avatar   string `json:"avatar"`
	Cover    string `json:"cover"`
	Verified bool   `gorm:"default:false" json:"verified"`
	// FollowersCount is not persisted; computed at query time
	FollowersCount int `gorm:"->" json:"followers_count"`
	// FollowingCount is not persisted; computed at query time
	FollowingCount int `gorm:"->" json:"following_count"`
	// PostCount is not persisted; computed at query time (non-reply posts only)
	PostCount int `gorm:"->" json:"post_count"`
	// IsFollowing indicates whether the current requesting user follows this user (computed)
	IsFollowing bool           `gorm:"->" json:"is_following"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// MaxContentLen is the maximum number of characters allowed in a post body.
const MaxContentLen = 280

// Post represents a post in the Flock application. A post is a plain post, a
// reply (ReplyToID set) or a repost-wrapper (RepostOfID set). Creation paths
// only ever set one of the two reference fields.
type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	User     User   `gorm:"foreignKey:UserID" json:"user"`
	Content  string `gorm:"type:varchar(280)" json:"content"`
	ImageURL string `json:"image_url,omitempty"`
	// ReplyToID references the parent post when this post is a reply.
	// Replies are excluded from top-level feeds.
	ReplyToID *uint `gorm:"index" json:"reply_to_id,omitempty"`
	// RepostOfID references the original post when this post is a
	// repost-wrapper. The wrapper and the author's membership row in the
	// original's reposted-by set are created and destroyed together.
	RepostOfID *uint `gorm:"index" json:"repost_of_id,omitempty"`
	RepostOf   *Post `gorm:"foreignKey:RepostOfID" json:"repost_of,omitempty"`
	Pinned     bool  `gorm:"default:false" json:"pinned"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// RepostsCount is not persisted; computed at query time
	RepostsCount int `gorm:"->" json:"reposts_count"`
	// RepliesCount is not persisted; computed at query time
	RepliesCount int `gorm:"->" json:"replies_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked bool `gorm:"->" json:"liked"`
	// Reposted indicates whether the current requesting user reposted this post (computed)
	Reposted  bool           `gorm:"->" json:"reposted"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Like represents a user's membership in a post's liked-by set.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Repost represents a user's membership in a post's reposted-by set. For each
// row there is exactly one live repost-wrapper Post with the same author and
// original while the toggle is on.
type Repost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_repost_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_repost_user_post;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

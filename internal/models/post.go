package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a post in the DevLink application.
type Post struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	UserID   uint     `gorm:"not null;index" json:"user_id"`
	User     User     `gorm:"foreignKey:UserID" json:"user"`
	Content  string   `gorm:"type:text;not null" json:"content"`
	ImageURL string   `json:"image_url,omitempty"`
	TechTags []string `gorm:"serializer:json" json:"tech_tags"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked     bool           `gorm:"->" json:"liked"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Like records a user's like on a post. The (UserID, PostID) pair is unique,
// which makes the like action an idempotent toggle rather than an accumulator.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is an append-only entry on a post.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a developer profile in the DevLink application.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"unique;not null" json:"username"`
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"unique;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	Bio       string         `json:"bio"`
	Avatar    string         `json:"avatar"`
	TechStack []string       `gorm:"serializer:json" json:"tech_stack"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// UserSummary is the denormalized author shape embedded in feed items,
// messages, and notification payloads.
type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
}

// Summary returns the compact representation of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Avatar:   u.Avatar,
	}
}

// PlaceholderAuthor stands in for an author whose account no longer resolves.
// Posts with dangling author references are kept in the feed, never dropped.
func PlaceholderAuthor() UserSummary {
	return UserSummary{Name: "Unknown User"}
}

// Follow is a directed edge in the follow graph. A single row captures both
// sides of the relation (A follows B), so follower/following views can never
// drift apart.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follow_edge" json:"follower_id"`
	FolloweeID uint      `gorm:"not null;uniqueIndex:idx_follow_edge;index" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// UserStats aggregates profile counters.
type UserStats struct {
	PostsCount     int64 `json:"posts_count"`
	ProjectsCount  int64 `json:"projects_count"`
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
	LikesReceived  int64 `json:"likes_received"`
}

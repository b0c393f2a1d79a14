package models

import (
	"time"

	"gorm.io/gorm"
)

// Project is a portfolio entry on a user's profile.
type Project struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text;not null" json:"description"`
	TechUsed    []string       `gorm:"serializer:json" json:"tech_used"`
	DemoURL     string         `json:"demo_url,omitempty"`
	RepoURL     string         `json:"repo_url,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

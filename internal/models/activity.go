package models

import "time"

// ActivityType discriminates audit-trail entries. Each type carries only the
// target references that apply to it (TargetUserID for follow, PostID for
// like/comment, ProjectID for project).
type ActivityType string

const (
	ActivityPost    ActivityType = "post"
	ActivityLike    ActivityType = "like"
	ActivityComment ActivityType = "comment"
	ActivityFollow  ActivityType = "follow"
	ActivityProject ActivityType = "project"
)

// Activity is a best-effort audit entry of a social action. Retention is
// bounded to the 100 most recent entries per user.
type Activity struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	UserID       uint         `gorm:"not null;index:idx_activity_user" json:"user_id"`
	User         User         `gorm:"foreignKey:UserID" json:"user"`
	Type         ActivityType `gorm:"type:varchar(16);not null" json:"type"`
	TargetUserID *uint        `json:"target_user_id,omitempty"`
	TargetUser   *User        `gorm:"foreignKey:TargetUserID" json:"target_user,omitempty"`
	PostID       *uint        `json:"post_id,omitempty"`
	ProjectID    *uint        `json:"project_id,omitempty"`
	Text         string       `gorm:"not null" json:"text"`
	CreatedAt    time.Time    `gorm:"index:idx_activity_user" json:"created_at"`
}

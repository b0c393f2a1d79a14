package models

import "time"

// NotificationType discriminates the notification variants. Only the fields
// relevant to a given type are populated (PostID for like/comment).
type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationFollow  NotificationType = "follow"
	NotificationMessage NotificationType = "message"
)

// Notification is a social event addressed to a single recipient.
type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RecipientID uint             `gorm:"not null;index:idx_notification_recipient" json:"recipient_id"`
	SenderID    uint             `gorm:"not null" json:"sender_id"`
	Sender      User             `gorm:"foreignKey:SenderID" json:"sender"`
	Type        NotificationType `gorm:"type:varchar(16);not null" json:"type"`
	PostID      *uint            `json:"post_id,omitempty"`
	Text        string           `gorm:"not null" json:"text"`
	Read        bool             `gorm:"not null;default:false" json:"read"`
	CreatedAt   time.Time        `gorm:"index:idx_notification_recipient" json:"created_at"`
}

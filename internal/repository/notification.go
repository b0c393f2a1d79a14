package repository

import (
	"context"
	"time"

	"devlink/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification storage.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	// HasRecentDuplicate reports whether an identical-shape notification
	// (recipient, sender, type, post) exists at or after `since`.
	HasRecentDuplicate(ctx context.Context, recipientID, senderID uint, typ models.NotificationType, postID *uint, since time.Time) (bool, error)
	ListForRecipient(ctx context.Context, recipientID uint, limit int) ([]*models.Notification, error)
	CountUnread(ctx context.Context, recipientID uint) (int64, error)
	MarkAllRead(ctx context.Context, recipientID uint) error
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepository) HasRecentDuplicate(
	ctx context.Context,
	recipientID, senderID uint,
	typ models.NotificationType,
	postID *uint,
	since time.Time,
) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND sender_id = ? AND type = ? AND created_at >= ?",
			recipientID, senderID, typ, since)
	if postID != nil {
		q = q.Where("post_id = ?", *postID)
	} else {
		q = q.Where("post_id IS NULL")
	}

	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *notificationRepository) ListForRecipient(ctx context.Context, recipientID uint, limit int) ([]*models.Notification, error) {
	var notifications []*models.Notification
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Preload("Sender").
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND read = false", recipientID).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID uint) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND read = false", recipientID).
		Update("read", true).Error
}

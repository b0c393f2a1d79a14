package service

import (
	"context"
	"time"

	"devlink/internal/models"
	"devlink/internal/notifications"
	"devlink/internal/observability"
	"devlink/internal/repository"
)

// notificationDedupWindow suppresses repeated like/follow notifications for
// the same (recipient, sender, type, post) shape.
const notificationDedupWindow = 24 * time.Hour

const notificationListLimit = 50

// EventPusher delivers a typed event to a user's live connection. Satisfied
// by notifications.Dispatcher.
type EventPusher interface {
	PushUser(ctx context.Context, userID uint, eventType string, payload any) error
}

// NotifyInput describes a notification to be created.
type NotifyInput struct {
	RecipientID uint
	SenderID    uint
	Type        models.NotificationType
	PostID      *uint
	Text        string
}

// NotificationService persists notifications and pushes them to live
// connections.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	pusher           EventPusher
	now              func() time.Time
}

// NewNotificationService returns a new NotificationService. pusher may be nil,
// in which case notifications are stored but not pushed.
func NewNotificationService(notificationRepo repository.NotificationRepository, userRepo repository.UserRepository, pusher EventPusher) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		pusher:           pusher,
		now:              time.Now,
	}
}

// Notify creates a notification and pushes it to the recipient's connection.
// Self-notifications and recent like/follow duplicates are suppressed without
// error.
func (s *NotificationService) Notify(ctx context.Context, input NotifyInput) (*models.Notification, error) {
	if input.RecipientID == input.SenderID {
		observability.NotificationsSuppressed.WithLabelValues("self").Inc()
		return nil, nil
	}

	if input.Type == models.NotificationLike || input.Type == models.NotificationFollow {
		since := s.now().Add(-notificationDedupWindow)
		dup, err := s.notificationRepo.HasRecentDuplicate(ctx, input.RecipientID, input.SenderID, input.Type, input.PostID, since)
		if err != nil {
			return nil, err
		}
		if dup {
			observability.NotificationsSuppressed.WithLabelValues("duplicate").Inc()
			return nil, nil
		}
	}

	n := &models.Notification{
		RecipientID: input.RecipientID,
		SenderID:    input.SenderID,
		Type:        input.Type,
		PostID:      input.PostID,
		Text:        input.Text,
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return nil, err
	}
	observability.NotificationsCreated.WithLabelValues(string(input.Type)).Inc()

	if sender, err := s.userRepo.GetByID(ctx, input.SenderID); err == nil {
		n.Sender = *sender
	}

	s.push(ctx, n)
	return n, nil
}

// push delivers the notification and the recipient's refreshed unread count.
// Push failures are logged, never returned; the row is already persisted.
func (s *NotificationService) push(ctx context.Context, n *models.Notification) {
	if s.pusher == nil {
		return
	}
	if err := s.pusher.PushUser(ctx, n.RecipientID, notifications.EventNewNotification, n); err != nil {
		observability.Log.Warn("notification push failed",
			"recipient_id", n.RecipientID, "type", string(n.Type), "error", err)
		return
	}
	count, err := s.notificationRepo.CountUnread(ctx, n.RecipientID)
	if err != nil {
		observability.Log.Warn("unread count lookup failed",
			"recipient_id", n.RecipientID, "error", err)
		return
	}
	if err := s.pusher.PushUser(ctx, n.RecipientID, notifications.EventUnreadCount,
		notifications.UnreadCountPayload{Count: count}); err != nil {
		observability.Log.Warn("unread count push failed",
			"recipient_id", n.RecipientID, "error", err)
	}
}

// NotifyAsync runs Notify on a fresh goroutine. Failures are logged and never
// reach the caller; a notification must not fail the action that caused it.
func (s *NotificationService) NotifyAsync(input NotifyInput) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				observability.Log.Error("panic in async notify", "panic", r)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := s.Notify(ctx, input); err != nil {
			observability.Log.Warn("async notify failed",
				"recipient_id", input.RecipientID, "type", string(input.Type), "error", err)
		}
	}()
}

// List returns the recipient's newest notifications plus the unread count.
func (s *NotificationService) List(ctx context.Context, recipientID uint) ([]*models.Notification, int64, error) {
	items, err := s.notificationRepo.ListForRecipient(ctx, recipientID, notificationListLimit)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.notificationRepo.CountUnread(ctx, recipientID)
	if err != nil {
		return nil, 0, err
	}
	return items, unread, nil
}

// UnreadCount returns how many notifications the recipient has not read.
func (s *NotificationService) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, recipientID)
}

// MarkAllRead flips every unread notification for the recipient and pushes
// the zeroed count.
func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID uint) error {
	if err := s.notificationRepo.MarkAllRead(ctx, recipientID); err != nil {
		return err
	}
	if s.pusher != nil {
		if err := s.pusher.PushUser(ctx, recipientID, notifications.EventUnreadCount,
			notifications.UnreadCountPayload{Count: 0}); err != nil {
			observability.Log.Warn("unread count push failed",
				"recipient_id", recipientID, "error", err)
		}
	}
	return nil
}

package service

import (
	"context"
	"time"

	"devlink/internal/models"
	"devlink/internal/observability"
	"devlink/internal/repository"
)

const (
	// activityDedupWindow suppresses repeated like/follow entries of the
	// same shape.
	activityDedupWindow = 5 * time.Minute

	// activityRetention caps the log at the most recent entries per user.
	activityRetention = 100

	activityListLimit = 20
)

// RecordInput describes an activity entry to be recorded.
type RecordInput struct {
	UserID       uint
	Type         models.ActivityType
	Text         string
	TargetUserID *uint
	PostID       *uint
	ProjectID    *uint
}

// ActivityService maintains the bounded per-user activity log.
type ActivityService struct {
	activityRepo repository.ActivityRepository
	now          func() time.Time
}

// NewActivityService returns a new ActivityService.
func NewActivityService(activityRepo repository.ActivityRepository) *ActivityService {
	return &ActivityService{activityRepo: activityRepo, now: time.Now}
}

// Record inserts an activity entry, evicting the user's oldest entry when the
// retention cap is reached. Like/follow entries repeated within the dedup
// window are dropped silently.
func (s *ActivityService) Record(ctx context.Context, input RecordInput) error {
	if input.Type == models.ActivityLike || input.Type == models.ActivityFollow {
		since := s.now().Add(-activityDedupWindow)
		dup, err := s.activityRepo.HasRecentDuplicate(ctx, input.UserID, input.Type,
			input.TargetUserID, input.PostID, input.ProjectID, since)
		if err != nil {
			return err
		}
		if dup {
			return nil
		}
	}

	count, err := s.activityRepo.CountForUser(ctx, input.UserID)
	if err != nil {
		return err
	}
	if count >= activityRetention {
		if err := s.activityRepo.DeleteOldest(ctx, input.UserID); err != nil {
			return err
		}
	}

	return s.activityRepo.Create(ctx, &models.Activity{
		UserID:       input.UserID,
		Type:         input.Type,
		TargetUserID: input.TargetUserID,
		PostID:       input.PostID,
		ProjectID:    input.ProjectID,
		Text:         input.Text,
	})
}

// RecordAsync runs Record on a fresh goroutine. The log is best-effort;
// failures never reach the action that triggered them.
func (s *ActivityService) RecordAsync(input RecordInput) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				observability.Log.Error("panic in async activity record", "panic", r)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Record(ctx, input); err != nil {
			observability.Log.Warn("async activity record failed",
				"user_id", input.UserID, "type", string(input.Type), "error", err)
		}
	}()
}

// ListForUser returns the user's newest activity entries.
func (s *ActivityService) ListForUser(ctx context.Context, userID uint) ([]*models.Activity, error) {
	return s.activityRepo.ListForUser(ctx, userID, activityListLimit)
}

package repository

import (
	"context"
	"time"

	"devlink/internal/models"

	"gorm.io/gorm"
)

// ActivityRepository defines the interface for the bounded activity log.
type ActivityRepository interface {
	Create(ctx context.Context, a *models.Activity) error
	CountForUser(ctx context.Context, userID uint) (int64, error)
	// DeleteOldest removes the user's single oldest entry.
	DeleteOldest(ctx context.Context, userID uint) error
	// HasRecentDuplicate reports whether an identical-shape entry
	// (user, type, target user, post, project) exists at or after `since`.
	HasRecentDuplicate(ctx context.Context, userID uint, typ models.ActivityType, targetUserID, postID, projectID *uint, since time.Time) (bool, error)
	ListForUser(ctx context.Context, userID uint, limit int) ([]*models.Activity, error)
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new activity repository.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, a *models.Activity) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *activityRepository) CountForUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Activity{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *activityRepository) DeleteOldest(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Exec(
		`DELETE FROM activities WHERE id = (
			SELECT id FROM activities WHERE user_id = ? ORDER BY created_at ASC, id ASC LIMIT 1
		)`, userID,
	).Error
}

func (r *activityRepository) HasRecentDuplicate(
	ctx context.Context,
	userID uint,
	typ models.ActivityType,
	targetUserID, postID, projectID *uint,
	since time.Time,
) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.Activity{}).
		Where("user_id = ? AND type = ? AND created_at >= ?", userID, typ, since)

	q = whereOptionalRef(q, "target_user_id", targetUserID)
	q = whereOptionalRef(q, "post_id", postID)
	q = whereOptionalRef(q, "project_id", projectID)

	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func whereOptionalRef(q *gorm.DB, column string, val *uint) *gorm.DB {
	if val != nil {
		return q.Where(column+" = ?", *val)
	}
	return q.Where(column + " IS NULL")
}

func (r *activityRepository) ListForUser(ctx context.Context, userID uint, limit int) ([]*models.Activity, error) {
	var activities []*models.Activity
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("User").
		Preload("TargetUser").
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}

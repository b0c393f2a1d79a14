// Package repository contains data access layers for the application's entities.
package repository

import (
	"context"
	"errors"

	"devlink/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user and follow-graph operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Search(ctx context.Context, name, tech string) ([]*models.User, error)

	Follow(ctx context.Context, followerID, followeeID uint) error
	Unfollow(ctx context.Context, followerID, followeeID uint) error
	IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error)
	FollowingIDs(ctx context.Context, userID uint) ([]uint, error)
	FollowerIDs(ctx context.Context, userID uint) ([]uint, error)
	CountFollows(ctx context.Context, userID uint) (followers int64, following int64, err error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", email)
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) Search(ctx context.Context, name, tech string) ([]*models.User, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if name != "" {
		q = q.Where("name ILIKE ?", "%"+name+"%")
	}
	if tech != "" {
		// TechStack is a JSON-serialized array; match on its text form.
		q = q.Where("tech_stack::text ILIKE ?", "%"+tech+"%")
	}

	var users []*models.User
	err := q.Order("created_at DESC").Limit(100).Find(&users).Error
	return users, err
}

func (r *userRepository) Follow(ctx context.Context, followerID, followeeID uint) error {
	// ON CONFLICT DO NOTHING keeps the edge idempotent under races.
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO follows (follower_id, followee_id, created_at)
		 VALUES (?, ?, NOW())
		 ON CONFLICT (follower_id, followee_id) DO NOTHING`,
		followerID, followeeID,
	).Error
}

func (r *userRepository) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	return r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{}).Error
}

func (r *userRepository) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("followee_id", &ids).Error
	return ids, err
}

func (r *userRepository) FollowerIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("followee_id = ?", userID).
		Pluck("follower_id", &ids).Error
	return ids, err
}

func (r *userRepository) CountFollows(ctx context.Context, userID uint) (int64, int64, error) {
	var followers, following int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("followee_id = ?", userID).Count(&followers).Error; err != nil {
		return 0, 0, err
	}
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", userID).Count(&following).Error; err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}

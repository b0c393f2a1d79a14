package repository

import (
	"context"
	"errors"

	"devlink/internal/models"

	"gorm.io/gorm"
)

// ProjectRepository defines the interface for project portfolio entries.
type ProjectRepository interface {
	Create(ctx context.Context, p *models.Project) error
	GetByID(ctx context.Context, id uint) (*models.Project, error)
	GetByUserID(ctx context.Context, userID uint) ([]*models.Project, error)
	CountForUser(ctx context.Context, userID uint) (int64, error)
	Delete(ctx context.Context, id uint) error
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, p *models.Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *projectRepository) GetByID(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).First(&project, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Project", id)
		}
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) GetByUserID(ctx context.Context, userID uint) ([]*models.Project, error) {
	var projects []*models.Project
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, err
}

func (r *projectRepository) CountForUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *projectRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Project{}, id).Error
}

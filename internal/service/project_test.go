package service

import (
	"context"
	"testing"

	"devlink/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type projectRepoStub struct {
	createFn       func(context.Context, *models.Project) error
	getByIDFn      func(context.Context, uint) (*models.Project, error)
	getByUserIDFn  func(context.Context, uint) ([]*models.Project, error)
	countForUserFn func(context.Context, uint) (int64, error)
	deleteFn       func(context.Context, uint) error
}

func (s *projectRepoStub) Create(ctx context.Context, p *models.Project) error {
	return s.createFn(ctx, p)
}
func (s *projectRepoStub) GetByID(ctx context.Context, id uint) (*models.Project, error) {
	return s.getByIDFn(ctx, id)
}
func (s *projectRepoStub) GetByUserID(ctx context.Context, userID uint) ([]*models.Project, error) {
	return s.getByUserIDFn(ctx, userID)
}
func (s *projectRepoStub) CountForUser(ctx context.Context, userID uint) (int64, error) {
	return s.countForUserFn(ctx, userID)
}
func (s *projectRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func TestCreateProject_RequiresTitle(t *testing.T) {
	svc := NewProjectService(&projectRepoStub{}, nil)

	_, err := svc.Create(context.Background(), 1, "  ", "", "", "", nil)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.ErrCodeValidation, appErr.Code)
}

func TestCreateProject_Persists(t *testing.T) {
	repo := &projectRepoStub{
		createFn: func(_ context.Context, p *models.Project) error {
			p.ID = 6
			return nil
		},
	}
	svc := NewProjectService(repo, nil)

	project, err := svc.Create(context.Background(), 1, "devlink", "a social network", "https://example.com/repo", "", []string{"go", "postgres"})
	require.NoError(t, err)
	assert.Equal(t, uint(6), project.ID)
	assert.Equal(t, "devlink", project.Title)
}

func TestDeleteProject_OwnerOnly(t *testing.T) {
	deleted := false
	repo := &projectRepoStub{
		getByIDFn: func(context.Context, uint) (*models.Project, error) {
			return &models.Project{ID: 6, UserID: 1}, nil
		},
		deleteFn: func(context.Context, uint) error {
			deleted = true
			return nil
		},
	}
	svc := NewProjectService(repo, nil)

	err := svc.Delete(context.Background(), 6, 2)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.ErrCodeForbidden, appErr.Code)
	assert.False(t, deleted)

	require.NoError(t, svc.Delete(context.Background(), 6, 1))
	assert.True(t, deleted)
}

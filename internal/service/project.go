package service

import (
	"context"
	"strings"

	"devlink/internal/models"
	"devlink/internal/repository"
)

// ProjectService manages portfolio project entries.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	activity    *ActivityService
}

// NewProjectService returns a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, activity *ActivityService) *ProjectService {
	return &ProjectService{projectRepo: projectRepo, activity: activity}
}

// Create adds a project to the user's portfolio and records the activity.
func (s *ProjectService) Create(ctx context.Context, userID uint, title, description, repoURL, demoURL string, techUsed []string) (*models.Project, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, models.NewValidationError("Project title is required")
	}

	project := &models.Project{
		UserID:      userID,
		Title:       title,
		Description: description,
		RepoURL:     repoURL,
		DemoURL:     demoURL,
		TechUsed:    techUsed,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	if s.activity != nil {
		projectID := project.ID
		s.activity.RecordAsync(RecordInput{
			UserID:    userID,
			Type:      models.ActivityProject,
			ProjectID: &projectID,
			Text:      "added a project",
		})
	}

	return project, nil
}

// GetByUserID returns the user's projects.
func (s *ProjectService) GetByUserID(ctx context.Context, userID uint) ([]*models.Project, error) {
	return s.projectRepo.GetByUserID(ctx, userID)
}

// Delete removes a project. Only the owner may delete.
func (s *ProjectService) Delete(ctx context.Context, projectID, userID uint) error {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if project.UserID != userID {
		return models.NewForbiddenError("You can only delete your own projects")
	}
	return s.projectRepo.Delete(ctx, projectID)
}

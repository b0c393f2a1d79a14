package server

import (
	"devlink/internal/models"
	"devlink/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// CreateProject handles POST /api/projects
func (s *Server) CreateProject(c *fiber.Ctx) error {
	var req struct {
		Title       string   `json:"title" validate:"required,max=120"`
		Description string   `json:"description" validate:"max=4096"`
		RepoURL     string   `json:"repo_url" validate:"omitempty,url"`
		DemoURL     string   `json:"demo_url" validate:"omitempty,url"`
		TechUsed    []string `json:"tech_used" validate:"max=20"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := validation.Struct(req); err != nil {
		return respondForError(c, err)
	}

	project, err := s.projectService.Create(c.Context(), currentUserID(c),
		req.Title, req.Description, req.RepoURL, req.DemoURL, req.TechUsed)
	if err != nil {
		return respondForError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

// GetUserProjects handles GET /api/users/:id/projects
func (s *Server) GetUserProjects(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	projects, err := s.projectService.GetByUserID(c.Context(), id)
	if err != nil {
		return respondForError(c, err)
	}
	return c.JSON(projects)
}

// DeleteProject handles DELETE /api/projects/:id
func (s *Server) DeleteProject(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.projectService.Delete(c.Context(), id, currentUserID(c)); err != nil {
		return respondForError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Project deleted"})
}

package server

import (
	"devlink/internal/models"
	"devlink/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, stats, err := s.userService.GetProfile(c.Context(), currentUserID(c))
	if err != nil {
		return respondForError(c, err)
	}
	return c.JSON(fiber.Map{
		"user":  user,
		"stats": stats,
	})
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Name      string   `json:"name" validate:"max=100"`
		Bio       string   `json:"bio" validate:"max=500"`
		Avatar    string   `json:"avatar" validate:"omitempty,url"`
		TechStack []string `json:"tech_stack" validate:"max=30"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := validation.Struct(req); err != nil {
		return respondForError(c, err)
	}

	user, err := s.userService.UpdateProfile(c.Context(), currentUserID(c), req.Name, req.Bio, req.Avatar, req.TechStack)
	if err != nil {
		return respondForError(c, err)
	}
	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, stats, err := s.userService.GetProfile(c.Context(), id)
	if err != nil {
		return respondForError(c, err)
	}

	following, err := s.userService.IsFollowing(c.Context(), currentUserID(c), id)
	if err != nil {
		return respondForError(c, err)
	}

	return c.JSON(fiber.Map{
		"user":      user,
		"stats":     stats,
		"following": following,
	})
}

// SearchUsers handles GET /api/users/search?name=&tech=
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	users, err := s.userService.Search(c.Context(), c.Query("name"), c.Query("tech"))
	if err != nil {
		return respondForError(c, err)
	}
	return c.JSON(users)
}

// ToggleFollow handles POST /api/users/:id/follow
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	following, err := s.userService.ToggleFollow(c.Context(), currentUserID(c), id)
	if err != nil {
		return respondForError(c, err)
	}
	return c.JSON(fiber.Map{"following": following})
}

// GetFollowers handles GET /api/users/:id/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	users, err := s.userService.Followers(c.Context(), id)
	if err != nil {
		return respondForError(c, err)
	}
	return c.JSON(users)
}

// GetFollowing handles GET /api/users/:id/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	users, err := s.userService.Following(c.Context(), id)
	if err != nil {
		return respondForError(c, err)
	}
	return c.JSON(users)
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	posts, err := s.postService.GetByUserID(c.Context(), id, currentUserID(c))
	if err != nil {
		return respondForError(c, err)
	}
	return c.JSON(posts)
}

// GetUserActivity handles GET /api/users/:id/activity
func (s *Server) GetUserActivity(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	entries, err := s.activityService.ListForUser(c.Context(), id)
	if err != nil {
		return respondForError(c, err)
	}
	return c.JSON(entries)
}

// GetOnlineUsers handles GET /api/presence/online
func (s *Server) GetOnlineUsers(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"online": s.hub.ListOnline()})
}

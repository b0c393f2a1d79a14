package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/feed?page=&limit=
func (s *Server) GetFeed(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)

	feed, err := s.feedService.GetFeed(c.Context(), currentUserID(c), page, limit)
	if err != nil {
		return respondForError(c, err)
	}
	return c.JSON(feed)
}

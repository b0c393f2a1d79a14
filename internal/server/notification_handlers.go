package server

import (
	"fmt"
	"time"

	"devlink/internal/cache"

	"github.com/gofiber/fiber/v2"
)

const unreadCountCacheTTL = 30 * time.Second

func unreadCountKey(userID uint) string {
	return fmt.Sprintf("unread_count:%d", userID)
}

// GetNotifications handles GET /api/notifications
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	items, unread, err := s.notificationService.List(c.Context(), currentUserID(c))
	if err != nil {
		return respondForError(c, err)
	}
	return c.JSON(fiber.Map{
		"notifications": items,
		"unread_count":  unread,
	})
}

// GetUnreadCount handles GET /api/notifications/unread-count
func (s *Server) GetUnreadCount(c *fiber.Ctx) error {
	userID := currentUserID(c)
	key := unreadCountKey(userID)

	var cached int64
	if cache.GetJSON(c.Context(), s.redis, key, &cached) {
		return c.JSON(fiber.Map{"count": cached})
	}

	count, err := s.notificationService.UnreadCount(c.Context(), userID)
	if err != nil {
		return respondForError(c, err)
	}
	cache.SetJSON(c.Context(), s.redis, key, count, unreadCountCacheTTL)

	return c.JSON(fiber.Map{"count": count})
}

// MarkAllNotificationsRead handles POST /api/notifications/read-all
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if err := s.notificationService.MarkAllRead(c.Context(), userID); err != nil {
		return respondForError(c, err)
	}
	cache.Invalidate(c.Context(), s.redis, unreadCountKey(userID))

	return c.JSON(fiber.Map{"message": "All notifications marked read"})
}

package server

import (
	"devlink/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateConversation handles POST /api/conversations
func (s *Server) CreateConversation(c *fiber.Ctx) error {
	var req struct {
		UserID uint `json:"user_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.UserID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("user_id is required"))
	}

	conv, err := s.chatService.FindOrCreateConversation(c.Context(), currentUserID(c), req.UserID)
	if err != nil {
		return respondForError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(conv)
}

// GetConversations handles GET /api/conversations
func (s *Server) GetConversations(c *fiber.Ctx) error {
	convs, err := s.chatService.GetConversations(c.Context(), currentUserID(c))
	if err != nil {
		return respondForError(c, err)
	}
	return c.JSON(convs)
}

// GetMessages handles GET /api/conversations/:id/messages
func (s *Server) GetMessages(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	msgs, err := s.chatService.GetMessages(c.Context(), id, currentUserID(c))
	if err != nil {
		return respondForError(c, err)
	}
	return c.JSON(msgs)
}

// SendMessage handles POST /api/conversations/:id/messages. The HTTP path is
// a fallback for clients without a live WebSocket; delivery fan-out is the
// same as for socket sends.
func (s *Server) SendMessage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		ReceiverID uint   `json:"receiver_id"`
		Text       string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	res, err := s.chatService.SendMessage(c.Context(), currentUserID(c), req.ReceiverID, req.Text, id)
	if err != nil {
		return respondForError(c, err)
	}

	s.deliverMessage(c.Context(), res)
	return c.Status(fiber.StatusCreated).JSON(res.Message)
}

// MarkConversationRead handles POST /api/conversations/:id/read
func (s *Server) MarkConversationRead(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	flipped, err := s.chatService.MarkRead(c.Context(), id, currentUserID(c))
	if err != nil {
		return respondForError(c, err)
	}
	return c.JSON(fiber.Map{"marked_read": flipped})
}

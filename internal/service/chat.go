package service

import (
	"context"
	"strings"

	"devlink/internal/models"
	"devlink/internal/observability"
	"devlink/internal/repository"
)

const maxMessageLength = 4096

// SendResult carries the persisted message plus whether this send opened a
// brand-new conversation, so the transport layer can emit new_conversation.
type SendResult struct {
	Message             *models.Message
	Conversation        *models.Conversation
	CreatedConversation bool
}

// ChatService provides direct-message business logic.
type ChatService struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
}

// NewChatService returns a new ChatService.
func NewChatService(chatRepo repository.ChatRepository, userRepo repository.UserRepository) *ChatService {
	return &ChatService{chatRepo: chatRepo, userRepo: userRepo}
}

// FindOrCreateConversation resolves the conversation between two users,
// creating it if absent.
func (s *ChatService) FindOrCreateConversation(ctx context.Context, userID, peerID uint) (*models.Conversation, error) {
	if userID == peerID {
		return nil, models.NewValidationError("Cannot start a conversation with yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, peerID); err != nil {
		return nil, err
	}
	conv, _, err := s.chatRepo.GetOrCreateConversation(ctx, userID, peerID)
	return conv, err
}

// SendMessage validates and persists a direct message. When conversationID is
// zero the conversation is resolved (or created) from the participant pair.
func (s *ChatService) SendMessage(ctx context.Context, senderID, receiverID uint, text string, conversationID uint) (*SendResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, models.NewValidationError("Message text is required")
	}
	if len(text) > maxMessageLength {
		return nil, models.NewValidationError("Message text is too long")
	}
	if receiverID == 0 {
		return nil, models.NewValidationError("Receiver is required")
	}
	if senderID == receiverID {
		return nil, models.NewValidationError("Cannot message yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, receiverID); err != nil {
		return nil, err
	}

	var (
		conv    *models.Conversation
		created bool
		err     error
	)
	if conversationID != 0 {
		conv, err = s.chatRepo.GetConversation(ctx, conversationID)
		if err != nil {
			return nil, err
		}
		if !conv.HasParticipant(senderID) || !conv.HasParticipant(receiverID) {
			return nil, models.NewUnauthorizedError("You are not part of this conversation")
		}
	} else {
		conv, created, err = s.chatRepo.GetOrCreateConversation(ctx, senderID, receiverID)
		if err != nil {
			return nil, err
		}
	}

	msg := &models.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Text:           text,
	}
	if err := s.chatRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.chatRepo.SetLastMessage(ctx, conv.ID, msg.ID); err != nil {
		// The message is already persisted; a stale pointer only affects the
		// conversation list preview and heals on the next send.
		observability.Log.Warn("failed to update last message pointer",
			"conversation_id", conv.ID, "message_id", msg.ID, "error", err)
	}

	return &SendResult{Message: msg, Conversation: conv, CreatedConversation: created}, nil
}

// GetConversations returns the user's conversations, most recently active
// first, with per-conversation unread counts.
func (s *ChatService) GetConversations(ctx context.Context, userID uint) ([]*models.Conversation, error) {
	return s.chatRepo.GetUserConversations(ctx, userID)
}

// GetMessages returns a conversation's messages in ascending send order.
// Only participants may read them.
func (s *ChatService) GetMessages(ctx context.Context, conversationID, userID uint) ([]*models.Message, error) {
	conv, err := s.chatRepo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, models.NewUnauthorizedError("You are not part of this conversation")
	}
	return s.chatRepo.GetMessages(ctx, conversationID)
}

// MarkRead flips every unread message addressed to the reader in one update
// and returns how many were flipped.
func (s *ChatService) MarkRead(ctx context.Context, conversationID, readerID uint) (int64, error) {
	conv, err := s.chatRepo.GetConversation(ctx, conversationID)
	if err != nil {
		return 0, err
	}
	if !conv.HasParticipant(readerID) {
		return 0, models.NewUnauthorizedError("You are not part of this conversation")
	}
	return s.chatRepo.MarkConversationRead(ctx, conversationID, readerID)
}

// UnreadCount returns how many messages addressed to the user remain unread
// in the conversation.
func (s *ChatService) UnreadCount(ctx context.Context, conversationID, userID uint) (int64, error) {
	return s.chatRepo.CountUnread(ctx, conversationID, userID)
}

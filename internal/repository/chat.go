package repository

import (
	"context"
	"errors"

	"devlink/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChatRepository defines the interface for conversation and message operations.
type ChatRepository interface {
	// GetOrCreateConversation resolves the conversation for an unordered user
	// pair, creating it atomically when absent. The boolean reports whether a
	// new conversation was created by this call.
	GetOrCreateConversation(ctx context.Context, userA, userB uint) (*models.Conversation, bool, error)
	GetConversation(ctx context.Context, id uint) (*models.Conversation, error)
	GetUserConversations(ctx context.Context, userID uint) ([]*models.Conversation, error)

	CreateMessage(ctx context.Context, msg *models.Message) error
	SetLastMessage(ctx context.Context, convID, msgID uint) error
	GetMessages(ctx context.Context, convID uint) ([]*models.Message, error)
	MarkConversationRead(ctx context.Context, convID, readerID uint) (int64, error)
	CountUnread(ctx context.Context, convID, userID uint) (int64, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new chat repository.
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) GetOrCreateConversation(ctx context.Context, userA, userB uint) (*models.Conversation, bool, error) {
	a, b := models.NormalizePair(userA, userB)

	conv := &models.Conversation{UserAID: a, UserBID: b}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_a_id"}, {Name: "user_b_id"}},
			DoNothing: true,
		}).
		Create(conv)
	if res.Error != nil {
		return nil, false, res.Error
	}
	created := res.RowsAffected > 0

	// On a lost race (conflict) the insert assigns no ID; fetch the winner.
	if conv.ID == 0 {
		if err := r.db.WithContext(ctx).
			Where("user_a_id = ? AND user_b_id = ?", a, b).
			First(conv).Error; err != nil {
			return nil, false, err
		}
		created = false
	}

	full, err := r.GetConversation(ctx, conv.ID)
	if err != nil {
		return nil, false, err
	}
	return full, created, nil
}

func (r *chatRepository) GetConversation(ctx context.Context, id uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.WithContext(ctx).
		Preload("UserA").
		Preload("UserB").
		Preload("LastMessage").
		First(&conv, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Conversation", id)
		}
		return nil, err
	}
	return &conv, nil
}

func (r *chatRepository) GetUserConversations(ctx context.Context, userID uint) ([]*models.Conversation, error) {
	var conversations []*models.Conversation
	err := r.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Select("conversations.*, "+
			"(SELECT COUNT(*) FROM messages WHERE messages.conversation_id = conversations.id "+
			"AND messages.receiver_id = ? AND messages.read = false) as unread_count", userID).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Preload("UserA").
		Preload("UserB").
		Preload("LastMessage").
		Preload("LastMessage.Sender").
		Order("conversations.updated_at DESC").
		Find(&conversations).Error
	return conversations, err
}

func (r *chatRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *chatRepository) SetLastMessage(ctx context.Context, convID, msgID uint) error {
	return r.db.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ?", convID).
		Update("last_message_id", msgID).Error
}

func (r *chatRepository) GetMessages(ctx context.Context, convID uint) ([]*models.Message, error) {
	var messages []*models.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Preload("Sender").
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

func (r *chatRepository) MarkConversationRead(ctx context.Context, convID, readerID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND receiver_id = ? AND read = false", convID, readerID).
		Update("read", true)
	return res.RowsAffected, res.Error
}

func (r *chatRepository) CountUnread(ctx context.Context, convID, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND receiver_id = ? AND read = false", convID, userID).
		Count(&count).Error
	return count, err
}

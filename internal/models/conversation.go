package models

import "time"

// Conversation is a two-party chat thread. Participants are stored in
// normalized order (UserAID < UserBID) under a composite unique index, so at
// most one conversation can exist per unordered pair even when two first
// messages race each other.
type Conversation struct {
	ID            uint     `gorm:"primaryKey" json:"id"`
	UserAID       uint     `gorm:"not null;uniqueIndex:idx_conversation_pair" json:"user_a_id"`
	UserBID       uint     `gorm:"not null;uniqueIndex:idx_conversation_pair" json:"user_b_id"`
	UserA         User     `gorm:"foreignKey:UserAID" json:"user_a"`
	UserB         User     `gorm:"foreignKey:UserBID" json:"user_b"`
	LastMessageID *uint    `json:"last_message_id,omitempty"`
	LastMessage   *Message `gorm:"foreignKey:LastMessageID" json:"last_message,omitempty"`
	// UnreadCount is not persisted; computed per requesting user at query time
	UnreadCount int64     `gorm:"->" json:"unread_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NormalizePair orders two participant IDs so the pair (A,B) and (B,A) map to
// the same conversation row.
func NormalizePair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}

// HasParticipant reports whether the user is one of the two participants.
func (c *Conversation) HasParticipant(userID uint) bool {
	return c.UserAID == userID || c.UserBID == userID
}

// OtherParticipant returns the peer of the given participant.
func (c *Conversation) OtherParticipant(userID uint) uint {
	if c.UserAID == userID {
		return c.UserBID
	}
	return c.UserAID
}

// Message is a direct message within a conversation. Immutable once created
// except for the read flag.
type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"not null;index" json:"conversation_id"`
	SenderID       uint      `gorm:"not null" json:"sender_id"`
	Sender         User      `gorm:"foreignKey:SenderID" json:"sender"`
	ReceiverID     uint      `gorm:"not null;index" json:"receiver_id"`
	Text           string    `gorm:"type:text;not null" json:"text"`
	Read           bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt      time.Time `json:"created_at"`
}

// Package notifications provides real-time delivery over websocket
// connections: the presence hub, client pumps, and Redis pub/sub fan-out.
package notifications

import "encoding/json"

// Client → server event types.
const (
	EventSendMessage = "send_message"
	EventTyping      = "typing"
	EventStopTyping  = "stop_typing"
	EventMarkRead    = "mark_read"
)

// Server → client event types.
const (
	EventReceiveMessage  = "receive_message"
	EventMessageSent     = "message_sent"
	EventNewConversation = "new_conversation"
	EventDisplayTyping   = "display_typing"
	EventHideTyping      = "hide_typing"
	EventUserStatus      = "user_status"
	EventNewNotification = "newNotification"
	EventUnreadCount     = "unreadCountUpdate"
	EventError           = "error"
)

// Event is the envelope for every websocket message in both directions.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEvent wraps a payload into an envelope.
func NewEvent(eventType string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: eventType, Payload: data}, nil
}

// Encode marshals the full envelope for the wire.
func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// UserStatusPayload announces a presence transition to all connected clients.
type UserStatusPayload struct {
	UserID uint `json:"userId"`
	Online bool `json:"online"`
}

// TypingPayload identifies who is typing to the receiving peer.
type TypingPayload struct {
	SenderID uint `json:"senderId"`
}

// NewConversationPayload carries the identifier of a just-created conversation.
type NewConversationPayload struct {
	ConversationID uint `json:"conversationId"`
}

// UnreadCountPayload refreshes the recipient's unread notification counter.
type UnreadCountPayload struct {
	Count int64 `json:"count"`
}

// ErrorPayload reports a rejected inbound event to the client.
type ErrorPayload struct {
	Message string `json:"message"`
}

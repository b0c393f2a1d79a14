package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"devlink/internal/middleware"
	"devlink/internal/models"
	"devlink/internal/notifications"
	"devlink/internal/observability"
	"devlink/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketHandler handles WebSocket connections for messaging, typing
// indicators, read receipts, and notification delivery.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		observability.ActiveWebSockets.Inc()
		defer observability.ActiveWebSockets.Dec()

		userIDVal := conn.Locals("userID")
		if userIDVal == nil {
			log.Printf("WebSocket: unauthenticated connection attempt")
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}
		userID := userIDVal.(uint)

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			log.Printf("WebSocket: failed to register user %d: %v", userID, err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		client.IncomingHandler = func(c *notifications.Client, message []byte) {
			s.handleSocketEvent(userID, c, message)
		}

		go client.WritePump()
		client.ReadPump()
	})
}

// handleSocketEvent dispatches one inbound socket event. Unknown types are
// dropped.
func (s *Server) handleSocketEvent(userID uint, client *notifications.Client, message []byte) {
	var event notifications.Event
	if err := json.Unmarshal(message, &event); err != nil {
		observability.Log.Debug("invalid socket event", "user_id", userID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ctx = context.WithValue(ctx, middleware.UserIDKey, userID)

	switch event.Type {
	case notifications.EventSendMessage:
		s.handleSendMessage(ctx, userID, client, event.Payload)
	case notifications.EventTyping:
		s.handleTyping(ctx, userID, event.Payload, true)
	case notifications.EventStopTyping:
		s.handleTyping(ctx, userID, event.Payload, false)
	case notifications.EventMarkRead:
		s.handleMarkRead(ctx, userID, client, event.Payload)
	default:
		observability.Log.Debug("unknown socket event type",
			"user_id", userID, "type", event.Type)
	}
}

// wsAllowed applies per-sender flood control to socket events. Limiter errors
// fail open, matching the HTTP rate-limit middleware.
func (s *Server) wsAllowed(ctx context.Context, resource string, userID uint, limit int, window time.Duration) bool {
	id := fmt.Sprintf("user:%d", userID)
	allowed, err := middleware.CheckRateLimit(ctx, s.redis, resource, id, limit, window)
	return err != nil || allowed
}

func (s *Server) handleSendMessage(ctx context.Context, userID uint, client *notifications.Client, payload json.RawMessage) {
	var req struct {
		ReceiverID     uint   `json:"receiverId"`
		Text           string `json:"text"`
		ConversationID uint   `json:"conversationId"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		client.SendEvent(notifications.EventError, notifications.ErrorPayload{Message: "Invalid payload"})
		return
	}

	// Per-sender flood control
	if !s.wsAllowed(ctx, "ws_send", userID, 30, time.Minute) {
		client.SendEvent(notifications.EventError, notifications.ErrorPayload{Message: "Rate limit exceeded"})
		return
	}

	res, err := s.chatService.SendMessage(ctx, userID, req.ReceiverID, req.Text, req.ConversationID)
	if err != nil {
		client.SendEvent(notifications.EventError, notifications.ErrorPayload{Message: err.Error()})
		return
	}

	s.deliverMessage(ctx, res)
}

// deliverMessage fans a persisted message out: receive_message to the
// receiver, message_sent echo to the sender, new_conversation to the receiver
// when this send opened the thread, and the message notification async.
func (s *Server) deliverMessage(ctx context.Context, res *service.SendResult) {
	msg := res.Message

	if res.CreatedConversation {
		if err := s.dispatcher.PushUser(ctx, msg.ReceiverID, notifications.EventNewConversation,
			notifications.NewConversationPayload{ConversationID: msg.ConversationID}); err != nil {
			observability.Log.Warn("new_conversation push failed",
				"conversation_id", msg.ConversationID, "error", err)
		}
	}

	if err := s.dispatcher.PushUser(ctx, msg.ReceiverID, notifications.EventReceiveMessage, msg); err != nil {
		observability.MessagesDelivered.WithLabelValues("error").Inc()
		observability.Log.Warn("message delivery failed",
			"message_id", msg.ID, "receiver_id", msg.ReceiverID, "error", err)
	} else {
		observability.MessagesDelivered.WithLabelValues("ok").Inc()
	}

	if err := s.dispatcher.PushUser(ctx, msg.SenderID, notifications.EventMessageSent, msg); err != nil {
		observability.Log.Warn("message echo failed",
			"message_id", msg.ID, "sender_id", msg.SenderID, "error", err)
	}

	s.notificationService.NotifyAsync(service.NotifyInput{
		RecipientID: msg.ReceiverID,
		SenderID:    msg.SenderID,
		Type:        models.NotificationMessage,
		Text:        "sent you a message",
	})
}

func (s *Server) handleTyping(ctx context.Context, userID uint, payload json.RawMessage, isTyping bool) {
	var req struct {
		ReceiverID uint `json:"receiverId"`
	}
	if err := json.Unmarshal(payload, &req); err != nil || req.ReceiverID == 0 {
		return
	}

	// Typing indicators are spammy; drop over-limit ones silently.
	if !s.wsAllowed(ctx, "typing", userID, 10, 10*time.Second) {
		return
	}

	eventType := notifications.EventHideTyping
	if isTyping {
		eventType = notifications.EventDisplayTyping
	}
	if err := s.dispatcher.PushUser(ctx, req.ReceiverID, eventType,
		notifications.TypingPayload{SenderID: userID}); err != nil {
		observability.Log.Debug("typing push failed",
			"receiver_id", req.ReceiverID, "error", err)
	}
}

func (s *Server) handleMarkRead(ctx context.Context, userID uint, client *notifications.Client, payload json.RawMessage) {
	var req struct {
		ConversationID uint `json:"conversationId"`
	}
	if err := json.Unmarshal(payload, &req); err != nil || req.ConversationID == 0 {
		return
	}

	if _, err := s.chatService.MarkRead(ctx, req.ConversationID, userID); err != nil {
		client.SendEvent(notifications.EventError, notifications.ErrorPayload{Message: err.Error()})
	}
}

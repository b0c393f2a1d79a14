package notifications

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/gofiber/websocket/v2"
)

// Max total connections accepted by one instance.
const maxTotalConns = 10000

// Hub is the session registry: it maps each online user to their single live
// websocket client. A second connection for the same user replaces the first
// (last connection wins). The hub is the process's only shared mutable state;
// it is rebuilt from scratch as users reconnect after a restart.
type Hub struct {
	mu    sync.RWMutex
	conns map[uint]*Client
}

// NewHub creates an empty session registry.
func NewHub() *Hub {
	return &Hub{conns: make(map[uint]*Client)}
}

// Register adds a connection for an authenticated user and announces the
// online transition. An existing connection for the same user is closed and
// replaced.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	if len(h.conns) >= maxTotalConns {
		h.mu.Unlock()
		return nil, errors.New("server connection limit reached")
	}

	old := h.conns[userID]
	client := newClient(h, conn, userID)
	h.conns[userID] = client
	h.mu.Unlock()

	if old != nil {
		// Drop the superseded connection; its pumps exit on the closed channel.
		if old.Conn != nil {
			_ = old.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "Replaced by a newer connection"))
			_ = old.Conn.Close()
		}
		close(old.Send)
	} else {
		h.broadcastStatus(userID, true)
	}

	return client, nil
}

// Unregister removes a client and announces the offline transition. A stale
// client that has already been replaced is ignored.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	current, ok := h.conns[client.UserID]
	if !ok || current != client {
		h.mu.Unlock()
		return
	}
	delete(h.conns, client.UserID)
	h.mu.Unlock()

	h.broadcastStatus(client.UserID, false)
}

// Resolve returns the live client for a user, or nil when offline.
func (h *Hub) Resolve(userID uint) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.conns[userID]
}

// IsOnline reports whether the user currently has a live connection.
func (h *Hub) IsOnline(userID uint) bool {
	return h.Resolve(userID) != nil
}

// ListOnline returns the IDs of all currently connected users.
func (h *Hub) ListOnline() []uint {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]uint, 0, len(h.conns))
	for id := range h.conns {
		ids = append(ids, id)
	}
	return ids
}

// SendToUser delivers an event to a user's live connection. Returns false when
// the user is offline; the event is simply dropped in that case.
func (h *Hub) SendToUser(userID uint, eventType string, payload any) bool {
	client := h.Resolve(userID)
	if client == nil {
		return false
	}
	client.SendEvent(eventType, payload)
	return true
}

// Broadcast queues a raw message to every connected client.
func (h *Hub) Broadcast(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.conns {
		c.TrySend(message)
	}
}

// broadcastStatus announces a presence transition to all connected clients.
func (h *Hub) broadcastStatus(userID uint, online bool) {
	event, err := NewEvent(EventUserStatus, UserStatusPayload{UserID: userID, Online: online})
	if err != nil {
		return
	}
	data, err := event.Encode()
	if err != nil {
		return
	}
	h.Broadcast(data)
}

// deliverRaw forwards an already-encoded payload to a user's connection.
func (h *Hub) deliverRaw(userID uint, payload string) {
	if client := h.Resolve(userID); client != nil {
		client.TrySend([]byte(payload))
	}
}

// StartWiring subscribes the hub to Redis user channels so events published by
// any instance reach clients connected to this one.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartUserSubscriber(ctx, func(channel, payload string) {
		if !strings.HasPrefix(channel, userChannelPrefix) {
			log.Printf("Hub: invalid channel: %s", channel)
			return
		}
		var userID uint
		if _, err := fmt.Sscanf(channel, userChannelPrefix+"%d", &userID); err != nil {
			log.Printf("Hub: invalid channel: %s", channel)
			return
		}
		h.deliverRaw(userID, payload)
	})
}

// Shutdown gracefully closes all websocket connections.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, client := range h.conns {
		if client.Conn == nil {
			continue
		}
		if err := client.Conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
			log.Printf("failed to write close message for user %d: %v", userID, err)
		}
		if err := client.Conn.Close(); err != nil {
			log.Printf("failed to close websocket for user %d: %v", userID, err)
		}
	}
	h.conns = make(map[uint]*Client)

	return nil
}

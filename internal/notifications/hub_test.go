package notifications

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drainEvent(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case raw := <-c.Send:
		var ev Event
		require.NoError(t, json.Unmarshal(raw, &ev))
		return ev
	default:
		t.Fatal("expected a queued event")
		return Event{}
	}
}

func TestHub_RegisterResolveUnregister(t *testing.T) {
	hub := NewHub()

	client, err := hub.Register(10, nil)
	require.NoError(t, err)
	assert.True(t, hub.IsOnline(10))
	assert.Same(t, client, hub.Resolve(10))
	assert.Equal(t, []uint{10}, hub.ListOnline())

	// The online transition was broadcast to all connections (here, itself).
	ev := drainEvent(t, client)
	assert.Equal(t, EventUserStatus, ev.Type)
	var status UserStatusPayload
	require.NoError(t, json.Unmarshal(ev.Payload, &status))
	assert.Equal(t, uint(10), status.UserID)
	assert.True(t, status.Online)

	hub.Unregister(client)
	assert.False(t, hub.IsOnline(10))
	assert.Nil(t, hub.Resolve(10))
	assert.Empty(t, hub.ListOnline())
}

func TestHub_LastConnectionWins(t *testing.T) {
	hub := NewHub()

	first, err := hub.Register(7, nil)
	require.NoError(t, err)
	second, err := hub.Register(7, nil)
	require.NoError(t, err)

	assert.Same(t, second, hub.Resolve(7))

	// The replaced client's channel is closed so its pumps exit.
	_, open := <-first.Send
	for open {
		_, open = <-first.Send
	}

	// Unregistering the stale client must not evict the replacement.
	hub.Unregister(first)
	assert.True(t, hub.IsOnline(7))
	assert.Same(t, second, hub.Resolve(7))

	hub.Unregister(second)
	assert.False(t, hub.IsOnline(7))
}

func TestHub_SendToUser(t *testing.T) {
	hub := NewHub()

	client, err := hub.Register(3, nil)
	require.NoError(t, err)
	drainEvent(t, client) // own online status

	delivered := hub.SendToUser(3, EventDisplayTyping, TypingPayload{SenderID: 9})
	assert.True(t, delivered)

	ev := drainEvent(t, client)
	assert.Equal(t, EventDisplayTyping, ev.Type)
	var typing TypingPayload
	require.NoError(t, json.Unmarshal(ev.Payload, &typing))
	assert.Equal(t, uint(9), typing.SenderID)

	// Offline receivers simply drop the event.
	assert.False(t, hub.SendToUser(99, EventDisplayTyping, TypingPayload{SenderID: 9}))
}

func TestHub_StatusBroadcastReachesPeers(t *testing.T) {
	hub := NewHub()

	a, err := hub.Register(1, nil)
	require.NoError(t, err)
	drainEvent(t, a) // a's own online event

	b, err := hub.Register(2, nil)
	require.NoError(t, err)

	// Both a and b observe b coming online.
	for _, c := range []*Client{a, b} {
		ev := drainEvent(t, c)
		assert.Equal(t, EventUserStatus, ev.Type)
		var status UserStatusPayload
		require.NoError(t, json.Unmarshal(ev.Payload, &status))
		assert.Equal(t, uint(2), status.UserID)
		assert.True(t, status.Online)
	}

	hub.Unregister(b)
	ev := drainEvent(t, a)
	var status UserStatusPayload
	require.NoError(t, json.Unmarshal(ev.Payload, &status))
	assert.Equal(t, uint(2), status.UserID)
	assert.False(t, status.Online)

	require.NoError(t, hub.Shutdown(context.Background()))
	assert.Empty(t, hub.ListOnline())
}

package notifications

import (
	"context"
	"fmt"
)

// Dispatcher routes per-user events to their live connection: through Redis
// pub/sub when configured (so any instance holding the connection delivers),
// or directly through the local hub otherwise.
type Dispatcher struct {
	hub      *Hub
	notifier *Notifier
}

// NewDispatcher creates a dispatcher over the given hub and notifier.
func NewDispatcher(hub *Hub, notifier *Notifier) *Dispatcher {
	return &Dispatcher{hub: hub, notifier: notifier}
}

// PushUser delivers an event to the user's connection, wherever it lives.
// Offline users are not an error; the event is dropped.
func (d *Dispatcher) PushUser(ctx context.Context, userID uint, eventType string, payload any) error {
	event, err := NewEvent(eventType, payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	data, err := event.Encode()
	if err != nil {
		return fmt.Errorf("encode %s event: %w", eventType, err)
	}

	if d.notifier.Enabled() {
		return d.notifier.PublishUser(ctx, userID, string(data))
	}

	if d.hub != nil {
		d.hub.deliverRaw(userID, string(data))
	}
	return nil
}

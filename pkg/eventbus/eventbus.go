// Package eventbus publishes and consumes execution lifecycle events.
package eventbus

import (
	"context"

	"github.com/flowgrid/flowgrid/pkg/events"
)

// EventHandler processes one decoded event.
type EventHandler func(ctx context.Context, event events.Event) error

// EventBus decouples the engine from the transport carrying its lifecycle
// events. A nil bus is valid for engine-only embedding.
type EventBus interface {
	// GenerateID returns a unique message id.
	GenerateID() string

	// Publish sends an event keyed for partitioning (execution id).
	Publish(ctx context.Context, key string, event events.Event) error

	// Handle registers a handler for an event type. Must be called before
	// Subscribe.
	Handle(eventType events.EventType, handler EventHandler)

	// Subscribe starts consuming until ctx is cancelled.
	Subscribe(ctx context.Context) error

	// Close releases the underlying transport.
	Close() error
}

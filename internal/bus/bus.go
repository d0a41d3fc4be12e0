// Package bus provides event bus implementations for publishing
// pipeline events to downstream consumers.
package bus

import "context"

// Handler is a function that handles events.
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for event bus implementations.
type Bus interface {
	// Publish publishes an event to a topic.
	Publish(ctx context.Context, topic string, event Event) error

	// Subscribe subscribes to events on a topic.
	Subscribe(ctx context.Context, topic string, handler Handler) error

	// Close closes the bus and releases resources.
	Close() error
}

// Event represents a bus event.
type Event struct {
	// ID is the unique event identifier.
	ID string `json:"id"`

	// Type is the event type (e.g., "query.answered").
	Type string `json:"type"`

	// Source is the service that generated the event.
	Source string `json:"source"`

	// Timestamp is when the event was created.
	Timestamp int64 `json:"timestamp"`

	// Payload contains the event data.
	Payload any `json:"payload"`
}

// Topics for pipeline events.
const (
	// TopicQueryAnswered carries a summary of each completed answer.
	TopicQueryAnswered = "lexicon.query.answered"

	// TopicQueryFailed carries terminal pipeline failures.
	TopicQueryFailed = "lexicon.query.failed"
)

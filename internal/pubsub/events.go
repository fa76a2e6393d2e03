// Package pubsub provides a generic publish/subscribe broker used to fan out
// taxonomy changes, entity updates and log lines to interested listeners.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	// TagsRegistered carries the tags created by a registration, ancestors included.
	TagsRegistered EventType = "tags.registered"
	// TagsRemoved carries a removed subtree.
	TagsRemoved EventType = "tags.removed"
	// TaxonomyReloaded is published after the registry is replaced wholesale.
	TaxonomyReloaded EventType = "taxonomy.reloaded"
	// EntityChanged is published after an entity's tag set is saved.
	EntityChanged EventType = "entity.changed"
	// EntityDeleted is published after an entity is removed.
	EntityDeleted EventType = "entity.deleted"
	// LogEntry is published for every formatted log line.
	LogEntry EventType = "log.entry"
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events, optionally
// restricted to some event types.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context, types ...EventType) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}

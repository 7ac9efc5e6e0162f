package shared

import "context"

// EventHandler processes a domain event
type EventHandler interface {
	// Handle processes the event; errors are logged by the bus, not propagated
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes returns the event types this handler subscribes to
	EventTypes() []string
}

// EventPublisher publishes domain events
type EventPublisher interface {
	// Publish publishes one or more events. Best-effort: delivery failures
	// never roll back the business transaction that produced the events.
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus routes published events to subscribed handlers
type EventBus interface {
	EventPublisher
	// Subscribe registers a handler for its declared event types
	Subscribe(handler EventHandler)
}

package events

import "context"

// PublishOption configures how an event is published.
type PublishOption func(*PublishParams)

// PublishParams holds the resolved publishing configuration.
type PublishParams struct {
	// Key is the partitioning key used for routing.
	Key string
}

// WithKey sets the partitioning key for an event.
func WithKey(key string) PublishOption {
	return func(p *PublishParams) { p.Key = key }
}

// DomainEventPublisher publishes domain events to notify other parts of the
// system about important domain changes. It provides a technology-agnostic
// interface to decouple event producers from the underlying messaging
// infrastructure.
type DomainEventPublisher interface {
	// PublishDomainEvent sends a domain event to interested subscribers. The
	// provided context controls cancellation and deadlines. Optional
	// PublishOptions configure routing behavior.
	PublishDomainEvent(ctx context.Context, event DomainEvent, opts ...PublishOption) error
}

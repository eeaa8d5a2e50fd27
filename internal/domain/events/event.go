// Package events provides domain event handling capabilities for communicating
// state changes and important activities across system boundaries in a
// decoupled way.
package events

import "time"

// EventType identifies the category of a domain event for routing and handling.
type EventType string

// DomainEvent encapsulates event data flowing through the system, providing a
// standardized format for event processing and distribution.
type DomainEvent struct {
	// Type identifies the category of this event.
	Type EventType

	// Key enables consistent event routing, typically a business identifier
	// like a customer id that events can be partitioned by.
	Key string

	// Timestamp records when this event was created.
	Timestamp time.Time

	// Payload contains the actual event data. The concrete type depends on
	// the EventType.
	Payload any
}

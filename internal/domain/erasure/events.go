package erasure

import (
	"time"

	"github.com/google/uuid"

	"github.com/ecomops/privacy-engine/internal/domain/events"
)

// Erasure lifecycle event types.
const (
	EventTypeRequestCreated   events.EventType = "erasure.request.created"
	EventTypeRequestCanceled  events.EventType = "erasure.request.canceled"
	EventTypeRequestCompleted events.EventType = "erasure.request.completed"
	EventTypeRequestFailed    events.EventType = "erasure.request.failed"
)

// RequestEvent is the payload carried by every erasure lifecycle event.
type RequestEvent struct {
	RequestID  uuid.UUID `json:"request_id"`
	CustomerID int64     `json:"customer_id"`
	State      State     `json:"state"`
	Status     Status    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewRequestEvent builds a lifecycle event for the given request.
func NewRequestEvent(req *Request, occurredAt time.Time) RequestEvent {
	return RequestEvent{
		RequestID:  req.ID(),
		CustomerID: req.CustomerID(),
		State:      req.State(),
		Status:     req.Status(),
		OccurredAt: occurredAt,
	}
}

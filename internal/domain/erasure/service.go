package erasure

import "context"

// RequestManager owns the erase request state machine. It is the only
// component allowed to transition requests between states; the repository
// persists whatever the manager decides.
type RequestManager interface {
	// Create registers a new erase request for the customer, scheduled after
	// the configured grace period. It fails with ErrAlreadyExists when an
	// active request for the customer exists.
	Create(ctx context.Context, customerID int64) (*Request, error)

	// Cancel withdraws the customer's pending request and removes it. It
	// fails with ErrNotFound when no request exists and with ErrInvalidState
	// when processing has already started.
	Cancel(ctx context.Context, customerID int64) error

	// Process drives one request through a full erasure attempt. Dispatcher
	// failures are absorbed: the returned request reflects the outcome
	// (Complete/Succeeded or Processing/Failed) and is already persisted.
	Process(ctx context.Context, req *Request) (*Request, error)

	// Exists reports whether a request row exists for the customer.
	Exists(ctx context.Context, customerID int64) (bool, error)

	// CanBeCanceled reports whether the request may still be withdrawn.
	CanBeCanceled(req *Request) bool

	// CanBeProcessed reports whether the request is eligible for processing.
	CanBeProcessed(req *Request) bool
}

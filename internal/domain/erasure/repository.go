package erasure

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter narrows the result set of RequestRepository.List. Zero values mean
// the corresponding predicate is not applied.
type Filter struct {
	// ScheduledBefore matches requests with scheduled_at <= the given instant.
	ScheduledBefore time.Time

	// StateNot excludes requests in the given state.
	StateNot State

	// StatusIn matches requests whose status is one of the given values.
	StatusIn []Status
}

// RequestRepository defines the persistence operations for erase requests.
// It provides an abstraction over the storage mechanism and carries no
// transition logic: all lifecycle rules live on the Request aggregate and in
// the lifecycle manager.
type RequestRepository interface {
	// Save persists the full request, inserting or updating as needed, and
	// returns the stored representation. It fails with ErrAlreadyExists when
	// inserting a second active request for the same customer and with
	// ErrCouldNotSave (wrapping the cause) on I/O errors.
	Save(ctx context.Context, req *Request) (*Request, error)

	// GetByID retrieves a request by its identifier.
	// It fails with ErrNotFound when no row matches.
	GetByID(ctx context.Context, id uuid.UUID) (*Request, error)

	// GetByCustomerID retrieves the active request for a customer.
	// It fails with ErrNotFound when no row matches.
	GetByCustomerID(ctx context.Context, customerID int64) (*Request, error)

	// List retrieves all requests matching the filter, in storage order.
	List(ctx context.Context, filter Filter) ([]*Request, error)

	// Delete removes the request row. It fails with ErrCouldNotDelete
	// (wrapping the cause) on I/O errors.
	Delete(ctx context.Context, req *Request) error

	// DeleteByID removes the request row by identifier. It fails with
	// ErrNotFound when no row matches.
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

package erasure

import "errors"

var (
	// ErrAlreadyExists indicates an active erase request already exists for
	// the customer. At most one request per customer may exist at a time.
	ErrAlreadyExists = errors.New("erase request already exists for customer")

	// ErrNotFound indicates no erase request matched the given id or customer id.
	ErrNotFound = errors.New("erase request not found")

	// ErrInvalidState indicates a transition was attempted outside the
	// allowed state/status combination.
	ErrInvalidState = errors.New("erase request is not in a valid state for this operation")

	// ErrCouldNotSave indicates a storage-layer failure while persisting a
	// request. The underlying cause is wrapped.
	ErrCouldNotSave = errors.New("could not save erase request")

	// ErrCouldNotDelete indicates a storage-layer failure while deleting a
	// request. The underlying cause is wrapped.
	ErrCouldNotDelete = errors.New("could not delete erase request")

	// ErrUnknownStrategy indicates a component name resolved to neither the
	// anonymize nor the delete strategy. This is a configuration defect and
	// is never retried.
	ErrUnknownStrategy = errors.New("unknown erasure strategy")

	// ErrUnknownProcessor indicates no data processor is registered under the
	// requested component name.
	ErrUnknownProcessor = errors.New("unknown erasure processor")
)

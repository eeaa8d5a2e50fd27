// Package erasure provides domain types and interfaces for the right-to-erasure
// workflow: erase request lifecycle tracking, per-component erasure strategies,
// and the persistence contracts backing them.
package erasure

import (
	"time"

	"github.com/google/uuid"
)

// Request represents a customer's pending right-to-erasure demand. It is the
// sole aggregate of the erasure domain: all state and status transitions are
// funneled through its methods so the lifecycle invariants hold regardless of
// the caller.
type Request struct {
	id          uuid.UUID
	customerID  int64
	state       State
	status      Status
	scheduledAt time.Time
	erasedAt    time.Time
}

// NewRequest creates a new erase request for a customer. The request starts
// pending and ready, scheduled to run at scheduledAt (creation time plus the
// configured grace period). scheduledAt is immutable after creation.
func NewRequest(id uuid.UUID, customerID int64, scheduledAt time.Time) *Request {
	return &Request{
		id:          id,
		customerID:  customerID,
		state:       StatePending,
		status:      StatusReady,
		scheduledAt: scheduledAt,
	}
}

// ReconstructRequest creates a Request from stored fields, bypassing creation
// invariants. This should only be used by repositories when loading from the DB.
func ReconstructRequest(
	id uuid.UUID,
	customerID int64,
	state State,
	status Status,
	scheduledAt time.Time,
	erasedAt time.Time,
) *Request {
	return &Request{
		id:          id,
		customerID:  customerID,
		state:       state,
		status:      status,
		scheduledAt: scheduledAt,
		erasedAt:    erasedAt,
	}
}

// ID returns the unique identifier for this erase request.
func (r *Request) ID() uuid.UUID { return r.id }

// CustomerID returns the identifier of the customer owning this request.
func (r *Request) CustomerID() int64 { return r.customerID }

// State returns the current lifecycle state of the request.
func (r *Request) State() State { return r.state }

// Status returns the current execution status of the request.
func (r *Request) Status() Status { return r.status }

// ScheduledAt returns the earliest instant the request may be processed.
func (r *Request) ScheduledAt() time.Time { return r.scheduledAt }

// ErasedAt returns when the erasure completed successfully. The boolean is
// false until the request reaches Complete/Succeeded.
func (r *Request) ErasedAt() (time.Time, bool) {
	if r.erasedAt.IsZero() {
		return time.Time{}, false
	}
	return r.erasedAt, true
}

// CanBeCanceled reports whether the request may still be withdrawn by the
// customer. Only requests that have not started processing qualify.
func (r *Request) CanBeCanceled() bool {
	return r.state == StatePending && r.status == StatusReady
}

// CanBeProcessed reports whether the request is eligible for (re)processing:
// either untouched and ready, or failed and awaiting retry. Running,
// succeeded, and complete requests are never processable.
func (r *Request) CanBeProcessed() bool {
	return (r.state == StatePending && r.status == StatusReady) ||
		(r.state == StateProcessing && r.status == StatusFailed)
}

// IsDue reports whether the grace period has elapsed at the given instant.
func (r *Request) IsDue(now time.Time) bool {
	return !r.scheduledAt.After(now)
}

// MarkRunning transitions the request to Processing/Running. It fails with
// ErrInvalidState unless the request is processable. Callers must persist the
// request before starting erasure work so concurrent scheduler passes observe
// the in-flight status.
func (r *Request) MarkRunning() error {
	if !r.CanBeProcessed() {
		return ErrInvalidState
	}

	if err := r.status.ValidateTransition(StatusRunning); err != nil {
		return err
	}
	if r.state == StatePending {
		if err := r.state.ValidateTransition(StateProcessing); err != nil {
			return err
		}
		r.state = StateProcessing
	}
	r.status = StatusRunning

	return nil
}

// MarkSucceeded transitions a running request to Complete/Succeeded and stamps
// the erasure time. The request becomes immutable afterwards.
func (r *Request) MarkSucceeded(erasedAt time.Time) error {
	if err := r.status.ValidateTransition(StatusSucceeded); err != nil {
		return err
	}
	if err := r.state.ValidateTransition(StateComplete); err != nil {
		return err
	}

	r.state = StateComplete
	r.status = StatusSucceeded
	r.erasedAt = erasedAt

	return nil
}

// MarkFailed degrades a running request to Processing/Failed, keeping it
// eligible for retry. The erasure timestamp stays unset.
func (r *Request) MarkFailed() error {
	if err := r.status.ValidateTransition(StatusFailed); err != nil {
		return err
	}
	r.status = StatusFailed

	return nil
}

package erasure

import "fmt"

// Status tracks the fine-grained execution outcome of an erase request within
// its current state. Unlike State, Status may toggle between running and
// failed while retries remain possible.
type Status string

const (
	// StatusReady indicates a request is eligible to be picked up for processing.
	StatusReady Status = "READY"

	// StatusRunning indicates erasure work is currently in flight.
	// A running request is never processable, which is the sole guard against
	// overlapping scheduler runs re-entering the same request.
	StatusRunning Status = "RUNNING"

	// StatusSucceeded indicates the erasure finished successfully. Terminal.
	StatusSucceeded Status = "SUCCEEDED"

	// StatusFailed indicates the last attempt failed. Failed requests remain
	// eligible for retry indefinitely.
	StatusFailed Status = "FAILED"
)

func (s Status) String() string { return string(s) }

// ParseStatus converts a string to a Status.
func ParseStatus(s string) Status {
	switch s {
	case "READY":
		return StatusReady
	case "RUNNING":
		return StatusRunning
	case "SUCCEEDED":
		return StatusSucceeded
	case "FAILED":
		return StatusFailed
	default:
		return "" // represents unspecified
	}
}

// ValidateTransition checks if a status transition is valid and returns an error if not.
func (s Status) ValidateTransition(target Status) error {
	if !s.isValidTransition(target) {
		return fmt.Errorf("%w: invalid status transition from %s to %s", ErrInvalidState, s, target)
	}
	return nil
}

// isValidTransition checks if the current status can transition to the target status.
func (s Status) isValidTransition(target Status) bool {
	switch s {
	case StatusReady:
		return target == StatusRunning
	case StatusRunning:
		return target == StatusSucceeded || target == StatusFailed
	case StatusFailed:
		// Failed attempts may be retried.
		return target == StatusRunning
	case StatusSucceeded:
		// Terminal state - no further transitions allowed.
		return false
	default:
		return false
	}
}

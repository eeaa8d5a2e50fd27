package erasure

import "fmt"

// State represents the coarse lifecycle position of an erase request.
// It only ever moves forward: a request that started processing can never
// return to pending, and a complete request is immutable.
type State string

const (
	// StatePending indicates a request is waiting out its grace period.
	StatePending State = "PENDING"

	// StateProcessing indicates erasure work has started for the request.
	StateProcessing State = "PROCESSING"

	// StateComplete indicates the customer data has been erased. Terminal.
	StateComplete State = "COMPLETE"
)

func (s State) String() string { return string(s) }

// ParseState converts a string to a State.
func ParseState(s string) State {
	switch s {
	case "PENDING":
		return StatePending
	case "PROCESSING":
		return StateProcessing
	case "COMPLETE":
		return StateComplete
	default:
		return "" // represents unspecified
	}
}

// ValidateTransition checks if a state transition is valid and returns an error if not.
func (s State) ValidateTransition(target State) error {
	if !s.isValidTransition(target) {
		return fmt.Errorf("%w: invalid state transition from %s to %s", ErrInvalidState, s, target)
	}
	return nil
}

// isValidTransition enforces the monotonic lifecycle rules: pending requests
// may only begin processing, and processing requests may only complete.
func (s State) isValidTransition(target State) bool {
	switch s {
	case StatePending:
		return target == StateProcessing
	case StateProcessing:
		return target == StateComplete
	case StateComplete:
		// Terminal state - no further transitions allowed.
		return false
	default:
		return false
	}
}

package erasure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Status
	}{
		{name: "ready status", input: "READY", expected: StatusReady},
		{name: "running status", input: "RUNNING", expected: StatusRunning},
		{name: "succeeded status", input: "SUCCEEDED", expected: StatusSucceeded},
		{name: "failed status", input: "FAILED", expected: StatusFailed},
		{name: "unknown status", input: "BOGUS", expected: Status("")},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, ParseStatus(tt.input))
		})
	}
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{name: "ready to running", from: StatusReady, to: StatusRunning, allowed: true},
		{name: "running to succeeded", from: StatusRunning, to: StatusSucceeded, allowed: true},
		{name: "running to failed", from: StatusRunning, to: StatusFailed, allowed: true},
		{name: "failed retries to running", from: StatusFailed, to: StatusRunning, allowed: true},
		{name: "ready cannot succeed directly", from: StatusReady, to: StatusSucceeded, allowed: false},
		{name: "ready cannot fail directly", from: StatusReady, to: StatusFailed, allowed: false},
		{name: "succeeded is terminal", from: StatusSucceeded, to: StatusRunning, allowed: false},
		{name: "failed cannot succeed without running", from: StatusFailed, to: StatusSucceeded, allowed: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.from.ValidateTransition(tt.to)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidState)
		})
	}
}

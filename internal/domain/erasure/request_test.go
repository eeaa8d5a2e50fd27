package erasure

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRequest(t *testing.T) *Request {
	t.Helper()
	scheduledAt := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	return NewRequest(uuid.New(), 42, scheduledAt)
}

func TestNewRequest(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	scheduledAt := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	req := NewRequest(id, 42, scheduledAt)

	assert.Equal(t, id, req.ID())
	assert.Equal(t, int64(42), req.CustomerID())
	assert.Equal(t, StatePending, req.State())
	assert.Equal(t, StatusReady, req.Status())
	assert.Equal(t, scheduledAt, req.ScheduledAt())

	_, erased := req.ErasedAt()
	assert.False(t, erased, "new request must not carry an erasure timestamp")
}

func TestRequestIsDue(t *testing.T) {
	t.Parallel()

	scheduledAt := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	req := NewRequest(uuid.New(), 42, scheduledAt)

	assert.False(t, req.IsDue(scheduledAt.Add(-time.Second)), "one second early must not be due")
	assert.True(t, req.IsDue(scheduledAt), "the scheduled instant itself is due")
	assert.True(t, req.IsDue(scheduledAt.Add(time.Second)))
}

func TestRequestCancelAndProcessPredicates(t *testing.T) {
	tests := []struct {
		name        string
		state       State
		status      Status
		cancelable  bool
		processable bool
	}{
		{name: "fresh request", state: StatePending, status: StatusReady, cancelable: true, processable: true},
		{name: "in flight", state: StateProcessing, status: StatusRunning, cancelable: false, processable: false},
		{name: "failed awaiting retry", state: StateProcessing, status: StatusFailed, cancelable: false, processable: true},
		{name: "completed", state: StateComplete, status: StatusSucceeded, cancelable: false, processable: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := ReconstructRequest(uuid.New(), 42, tt.state, tt.status, time.Now(), time.Time{})
			assert.Equal(t, tt.cancelable, req.CanBeCanceled())
			assert.Equal(t, tt.processable, req.CanBeProcessed())
		})
	}
}

func TestRequestMarkRunning(t *testing.T) {
	t.Parallel()

	req := newTestRequest(t)
	require.NoError(t, req.MarkRunning())
	assert.Equal(t, StateProcessing, req.State())
	assert.Equal(t, StatusRunning, req.Status())

	// A running request must never be picked up twice.
	assert.ErrorIs(t, req.MarkRunning(), ErrInvalidState)
}

func TestRequestMarkRunningAfterFailure(t *testing.T) {
	t.Parallel()

	req := newTestRequest(t)
	require.NoError(t, req.MarkRunning())
	require.NoError(t, req.MarkFailed())

	assert.Equal(t, StateProcessing, req.State())
	assert.Equal(t, StatusFailed, req.Status())

	// Retry: state stays Processing, only the status flips back to running.
	require.NoError(t, req.MarkRunning())
	assert.Equal(t, StateProcessing, req.State())
	assert.Equal(t, StatusRunning, req.Status())
}

func TestRequestMarkSucceeded(t *testing.T) {
	t.Parallel()

	req := newTestRequest(t)
	require.NoError(t, req.MarkRunning())

	erasedAt := time.Date(2026, 2, 1, 8, 30, 0, 0, time.UTC)
	require.NoError(t, req.MarkSucceeded(erasedAt))

	assert.Equal(t, StateComplete, req.State())
	assert.Equal(t, StatusSucceeded, req.Status())

	got, ok := req.ErasedAt()
	require.True(t, ok)
	assert.Equal(t, erasedAt, got)

	// Terminal: nothing moves anymore.
	assert.ErrorIs(t, req.MarkRunning(), ErrInvalidState)
	assert.ErrorIs(t, req.MarkFailed(), ErrInvalidState)
}

func TestRequestMarkSucceededRequiresRunning(t *testing.T) {
	t.Parallel()

	req := newTestRequest(t)
	assert.ErrorIs(t, req.MarkSucceeded(time.Now()), ErrInvalidState)
}

func TestRequestMarkFailedKeepsErasedAtUnset(t *testing.T) {
	t.Parallel()

	req := newTestRequest(t)
	require.NoError(t, req.MarkRunning())
	require.NoError(t, req.MarkFailed())

	_, ok := req.ErasedAt()
	assert.False(t, ok, "a failed attempt must not stamp the erasure time")
}

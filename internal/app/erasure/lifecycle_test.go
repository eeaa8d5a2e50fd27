package erasure

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/ecomops/privacy-engine/internal/domain/erasure"
	"github.com/ecomops/privacy-engine/internal/domain/events"
	"github.com/ecomops/privacy-engine/pkg/common/logger"
)

type mockRequestRepository struct{ mock.Mock }

// Save echoes the argument back when the expectation returns (nil, nil),
// mirroring the store's insert-returning behavior.
func (m *mockRequestRepository) Save(ctx context.Context, req *erasure.Request) (*erasure.Request, error) {
	args := m.Called(ctx, req)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	if args.Get(0) == nil {
		return req, nil
	}
	return args.Get(0).(*erasure.Request), nil
}

func (m *mockRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*erasure.Request, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*erasure.Request), args.Error(1)
}

func (m *mockRequestRepository) GetByCustomerID(ctx context.Context, customerID int64) (*erasure.Request, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*erasure.Request), args.Error(1)
}

func (m *mockRequestRepository) List(ctx context.Context, filter erasure.Filter) ([]*erasure.Request, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*erasure.Request), args.Error(1)
}

func (m *mockRequestRepository) Delete(ctx context.Context, req *erasure.Request) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockRequestRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockExecutor struct{ mock.Mock }

func (m *mockExecutor) Execute(ctx context.Context, customerID int64) error {
	return m.Called(ctx, customerID).Error(0)
}

func (m *mockExecutor) ExecuteProcessorStrategy(ctx context.Context, name string, customerID int64) error {
	return m.Called(ctx, name, customerID).Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishDomainEvent(ctx context.Context, event events.DomainEvent, opts ...events.PublishOption) error {
	return m.Called(ctx, event).Error(0)
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

type lifecycleTestSuite struct {
	repo     *mockRequestRepository
	executor *mockExecutor
	clock    *fakeClock
	manager  *LifecycleManager
}

func newLifecycleTestSuite(publisher events.DomainEventPublisher) *lifecycleTestSuite {
	repo := new(mockRequestRepository)
	executor := new(mockExecutor)
	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	manager := NewLifecycleManager(
		repo,
		executor,
		30*24*time.Hour,
		clock,
		publisher,
		logger.Noop(),
		noop.NewTracerProvider().Tracer("test"),
	)
	return &lifecycleTestSuite{repo: repo, executor: executor, clock: clock, manager: manager}
}

func TestLifecycleManagerCreate(t *testing.T) {
	suite := newLifecycleTestSuite(nil)

	suite.repo.On("GetByCustomerID", mock.Anything, int64(42)).
		Return(nil, erasure.ErrNotFound)
	suite.repo.On("Save", mock.Anything, mock.AnythingOfType("*erasure.Request")).Return(nil, nil)

	req, err := suite.manager.Create(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, int64(42), req.CustomerID())
	assert.Equal(t, erasure.StatePending, req.State())
	assert.Equal(t, erasure.StatusReady, req.Status())
	assert.Equal(t, suite.clock.now.Add(30*24*time.Hour), req.ScheduledAt(),
		"request must be scheduled one full grace period after creation")
	suite.repo.AssertExpectations(t)
}

func TestLifecycleManagerCreateAlreadyExists(t *testing.T) {
	suite := newLifecycleTestSuite(nil)

	existing := erasure.NewRequest(uuid.New(), 42, suite.clock.now)
	suite.repo.On("GetByCustomerID", mock.Anything, int64(42)).Return(existing, nil)

	_, err := suite.manager.Create(context.Background(), 42)
	assert.ErrorIs(t, err, erasure.ErrAlreadyExists)
	suite.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestLifecycleManagerCreateLookupError(t *testing.T) {
	suite := newLifecycleTestSuite(nil)

	lookupErr := errors.New("connection refused")
	suite.repo.On("GetByCustomerID", mock.Anything, int64(42)).Return(nil, lookupErr)

	_, err := suite.manager.Create(context.Background(), 42)
	assert.ErrorIs(t, err, lookupErr)
}

func TestLifecycleManagerCreatePublishesEvent(t *testing.T) {
	publisher := new(mockPublisher)
	suite := newLifecycleTestSuite(publisher)

	suite.repo.On("GetByCustomerID", mock.Anything, int64(42)).Return(nil, erasure.ErrNotFound)
	suite.repo.On("Save", mock.Anything, mock.Anything).Return(nil, nil)
	publisher.On("PublishDomainEvent", mock.Anything, mock.MatchedBy(func(evt events.DomainEvent) bool {
		return evt.Type == erasure.EventTypeRequestCreated && evt.Key == "42"
	})).Return(nil)

	_, err := suite.manager.Create(context.Background(), 42)
	require.NoError(t, err)
	publisher.AssertExpectations(t)
}

func TestLifecycleManagerCancel(t *testing.T) {
	suite := newLifecycleTestSuite(nil)

	req := erasure.NewRequest(uuid.New(), 42, suite.clock.now)
	suite.repo.On("GetByCustomerID", mock.Anything, int64(42)).Return(req, nil)
	suite.repo.On("Delete", mock.Anything, req).Return(nil)

	require.NoError(t, suite.manager.Cancel(context.Background(), 42))
	suite.repo.AssertExpectations(t)
}

func TestLifecycleManagerCancelNotFound(t *testing.T) {
	suite := newLifecycleTestSuite(nil)

	suite.repo.On("GetByCustomerID", mock.Anything, int64(42)).Return(nil, erasure.ErrNotFound)

	err := suite.manager.Cancel(context.Background(), 42)
	assert.ErrorIs(t, err, erasure.ErrNotFound)
}

func TestLifecycleManagerCancelInFlight(t *testing.T) {
	suite := newLifecycleTestSuite(nil)

	req := erasure.ReconstructRequest(
		uuid.New(), 42, erasure.StateProcessing, erasure.StatusRunning, suite.clock.now, time.Time{})
	suite.repo.On("GetByCustomerID", mock.Anything, int64(42)).Return(req, nil)

	err := suite.manager.Cancel(context.Background(), 42)
	assert.ErrorIs(t, err, erasure.ErrInvalidState)
	suite.repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestLifecycleManagerProcess(t *testing.T) {
	suite := newLifecycleTestSuite(nil)

	req := erasure.NewRequest(uuid.New(), 42, suite.clock.now.Add(-time.Hour))

	var savedStatuses []erasure.Status
	suite.repo.On("Save", mock.Anything, req).
		Run(func(args mock.Arguments) {
			savedStatuses = append(savedStatuses, args.Get(1).(*erasure.Request).Status())
		}).
		Return(req, nil)
	suite.executor.On("Execute", mock.Anything, int64(42)).Return(nil)

	result, err := suite.manager.Process(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, erasure.StateComplete, result.State())
	assert.Equal(t, erasure.StatusSucceeded, result.Status())

	erasedAt, ok := result.ErasedAt()
	require.True(t, ok)
	assert.Equal(t, suite.clock.now, erasedAt)

	// The running status must hit the store before the dispatcher runs so a
	// concurrent batch pass skips the in-flight request.
	assert.Equal(t, []erasure.Status{erasure.StatusRunning, erasure.StatusSucceeded}, savedStatuses)
}

func TestLifecycleManagerProcessDispatchFailure(t *testing.T) {
	publisher := new(mockPublisher)
	suite := newLifecycleTestSuite(publisher)

	req := erasure.NewRequest(uuid.New(), 42, suite.clock.now.Add(-time.Hour))

	suite.repo.On("Save", mock.Anything, req).Return(req, nil)
	suite.executor.On("Execute", mock.Anything, int64(42)).Return(errors.New("order processor blew up"))
	publisher.On("PublishDomainEvent", mock.Anything, mock.MatchedBy(func(evt events.DomainEvent) bool {
		return evt.Type == erasure.EventTypeRequestFailed
	})).Return(nil)

	result, err := suite.manager.Process(context.Background(), req)
	require.NoError(t, err, "dispatch failures must not escape Process")

	assert.Equal(t, erasure.StateProcessing, result.State())
	assert.Equal(t, erasure.StatusFailed, result.Status())
	assert.True(t, result.CanBeProcessed(), "failed request must stay eligible for retry")
	publisher.AssertExpectations(t)
}

func TestLifecycleManagerProcessNotProcessable(t *testing.T) {
	suite := newLifecycleTestSuite(nil)

	req := erasure.ReconstructRequest(
		uuid.New(), 42, erasure.StateProcessing, erasure.StatusRunning, suite.clock.now, time.Time{})

	_, err := suite.manager.Process(context.Background(), req)
	assert.ErrorIs(t, err, erasure.ErrInvalidState)
	suite.executor.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestLifecycleManagerProcessSaveFailure(t *testing.T) {
	suite := newLifecycleTestSuite(nil)

	req := erasure.NewRequest(uuid.New(), 42, suite.clock.now.Add(-time.Hour))
	saveErr := errors.New("connection reset")
	suite.repo.On("Save", mock.Anything, req).Return(nil, saveErr)

	_, err := suite.manager.Process(context.Background(), req)
	assert.ErrorIs(t, err, saveErr)
	suite.executor.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestLifecycleManagerExists(t *testing.T) {
	tests := []struct {
		name        string
		repoReq     *erasure.Request
		repoErr     error
		expected    bool
		expectError bool
	}{
		{
			name:     "request present",
			repoReq:  erasure.NewRequest(uuid.New(), 42, time.Now()),
			expected: true,
		},
		{
			name:     "missing row maps to false",
			repoErr:  erasure.ErrNotFound,
			expected: false,
		},
		{
			name:        "store failure propagates",
			repoErr:     errors.New("connection refused"),
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suite := newLifecycleTestSuite(nil)
			if tt.repoReq != nil {
				suite.repo.On("GetByCustomerID", mock.Anything, int64(42)).Return(tt.repoReq, nil)
			} else {
				suite.repo.On("GetByCustomerID", mock.Anything, int64(42)).Return(nil, tt.repoErr)
			}

			exists, err := suite.manager.Exists(context.Background(), 42)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, exists)
		})
	}
}

func TestLifecycleManagerPublishFailureIsBestEffort(t *testing.T) {
	publisher := new(mockPublisher)
	suite := newLifecycleTestSuite(publisher)

	suite.repo.On("GetByCustomerID", mock.Anything, int64(42)).Return(nil, erasure.ErrNotFound)
	suite.repo.On("Save", mock.Anything, mock.Anything).Return(nil, nil)
	publisher.On("PublishDomainEvent", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	_, err := suite.manager.Create(context.Background(), 42)
	assert.NoError(t, err, "event bus failures must not affect the request outcome")
}

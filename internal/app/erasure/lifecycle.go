package erasure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ecomops/privacy-engine/internal/domain/erasure"
	"github.com/ecomops/privacy-engine/internal/domain/events"
	"github.com/ecomops/privacy-engine/pkg/common/logger"
)

var _ erasure.RequestManager = (*LifecycleManager)(nil)

// LifecycleManager owns the erase request state machine: creation, customer
// cancellation, and driving a request through a full erasure attempt. Every
// transition is persisted through the repository before the call returns, and
// the Processing/Running transition is persisted before dispatch so a
// concurrent scheduler pass observes the in-flight status and skips the
// request.
type LifecycleManager struct {
	repo      erasure.RequestRepository
	executor  erasure.Executor
	timeLapse time.Duration
	clock     erasure.TimeProvider
	publisher events.DomainEventPublisher

	logger *logger.Logger
	tracer trace.Tracer
}

// NewLifecycleManager returns a LifecycleManager with the given grace period.
// The publisher may be nil, in which case lifecycle events are not emitted.
func NewLifecycleManager(
	repo erasure.RequestRepository,
	executor erasure.Executor,
	timeLapse time.Duration,
	clock erasure.TimeProvider,
	publisher events.DomainEventPublisher,
	log *logger.Logger,
	tracer trace.Tracer,
) *LifecycleManager {
	log = log.With("component", "lifecycle_manager")
	return &LifecycleManager{
		repo:      repo,
		executor:  executor,
		timeLapse: timeLapse,
		clock:     clock,
		publisher: publisher,
		logger:    log,
		tracer:    tracer,
	}
}

// Create registers a new erase request for the customer, scheduled after the
// configured grace period.
func (m *LifecycleManager) Create(ctx context.Context, customerID int64) (*erasure.Request, error) {
	ctx, span := m.tracer.Start(ctx, "lifecycle_manager.create",
		trace.WithAttributes(attribute.Int64("customer_id", customerID)),
	)
	defer span.End()

	exists, err := m.Exists(ctx, customerID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("checking existing request for customer %d: %w", customerID, err)
	}
	if exists {
		span.SetStatus(codes.Error, "request already exists")
		return nil, fmt.Errorf("%w: customer %d", erasure.ErrAlreadyExists, customerID)
	}

	now := m.clock.Now()
	req := erasure.NewRequest(uuid.New(), customerID, now.Add(m.timeLapse))

	saved, err := m.repo.Save(ctx, req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	m.publish(ctx, erasure.EventTypeRequestCreated, saved, now)
	m.logger.Info(ctx, "Erase request created",
		"request_id", saved.ID(), "customer_id", customerID, "scheduled_at", saved.ScheduledAt())
	return saved, nil
}

// Cancel withdraws the customer's pending request and removes it from the
// store. Processing requests can no longer be withdrawn.
func (m *LifecycleManager) Cancel(ctx context.Context, customerID int64) error {
	ctx, span := m.tracer.Start(ctx, "lifecycle_manager.cancel",
		trace.WithAttributes(attribute.Int64("customer_id", customerID)),
	)
	defer span.End()

	req, err := m.repo.GetByCustomerID(ctx, customerID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	if !req.CanBeCanceled() {
		span.SetStatus(codes.Error, "request not cancelable")
		return fmt.Errorf("%w: customer %d is already being removed", erasure.ErrInvalidState, customerID)
	}

	if err := m.repo.Delete(ctx, req); err != nil {
		span.RecordError(err)
		return err
	}

	m.publish(ctx, erasure.EventTypeRequestCanceled, req, m.clock.Now())
	m.logger.Info(ctx, "Erase request canceled", "request_id", req.ID(), "customer_id", customerID)
	return nil
}

// Process drives one request through a full erasure attempt. The request is
// marked Processing/Running and persisted before dispatch. A dispatcher
// failure never escapes this method: the request degrades to
// Processing/Failed, stays eligible for retry, and the persisted result is
// returned to the caller.
func (m *LifecycleManager) Process(ctx context.Context, req *erasure.Request) (*erasure.Request, error) {
	ctx, span := m.tracer.Start(ctx, "lifecycle_manager.process",
		trace.WithAttributes(
			attribute.String("request_id", req.ID().String()),
			attribute.Int64("customer_id", req.CustomerID()),
		),
	)
	defer span.End()

	if err := req.MarkRunning(); err != nil {
		span.SetStatus(codes.Error, "request not processable")
		return nil, fmt.Errorf("request %s could not be processed: %w", req.ID(), err)
	}

	req, err := m.repo.Save(ctx, req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if dispatchErr := m.executor.Execute(ctx, req.CustomerID()); dispatchErr != nil {
		// The failure stays here: the request degrades and the batch caller
		// only ever observes the returned, persisted state.
		span.RecordError(dispatchErr)
		span.SetStatus(codes.Error, "erasure dispatch failed")
		m.logger.Error(ctx, "Erasure dispatch failed",
			"request_id", req.ID(), "customer_id", req.CustomerID(), "error", dispatchErr)

		if err := req.MarkFailed(); err != nil {
			return nil, err
		}
		req, err = m.repo.Save(ctx, req)
		if err != nil {
			return nil, err
		}

		m.publish(ctx, erasure.EventTypeRequestFailed, req, m.clock.Now())
		return req, nil
	}

	now := m.clock.Now()
	if err := req.MarkSucceeded(now); err != nil {
		return nil, err
	}
	req, err = m.repo.Save(ctx, req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	m.publish(ctx, erasure.EventTypeRequestCompleted, req, now)
	m.logger.Info(ctx, "Erase request completed", "request_id", req.ID(), "customer_id", req.CustomerID())
	return req, nil
}

// Exists reports whether a request row exists for the customer. A missing row
// is translated to false by design rather than surfaced as ErrNotFound.
func (m *LifecycleManager) Exists(ctx context.Context, customerID int64) (bool, error) {
	_, err := m.repo.GetByCustomerID(ctx, customerID)
	if err != nil {
		if errors.Is(err, erasure.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CanBeCanceled reports whether the request may still be withdrawn. Pure
// predicate over state and status, no I/O.
func (m *LifecycleManager) CanBeCanceled(req *erasure.Request) bool { return req.CanBeCanceled() }

// CanBeProcessed reports whether the request is eligible for processing. Pure
// predicate over state and status, no I/O.
func (m *LifecycleManager) CanBeProcessed(req *erasure.Request) bool { return req.CanBeProcessed() }

// publish emits a lifecycle event best-effort. Event bus failures are logged
// and never affect the request's outcome.
func (m *LifecycleManager) publish(ctx context.Context, evtType events.EventType, req *erasure.Request, at time.Time) {
	if m.publisher == nil {
		return
	}

	evt := events.DomainEvent{
		Type:      evtType,
		Key:       fmt.Sprintf("%d", req.CustomerID()),
		Timestamp: at,
		Payload:   erasure.NewRequestEvent(req, at),
	}
	if err := m.publisher.PublishDomainEvent(ctx, evt, events.WithKey(evt.Key)); err != nil {
		m.logger.Warn(ctx, "Failed to publish lifecycle event",
			"event_type", string(evtType), "request_id", req.ID(), "error", err)
	}
}

package erasure

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ecomops/privacy-engine/internal/domain/erasure"
	"github.com/ecomops/privacy-engine/internal/domain/shared"
	"github.com/ecomops/privacy-engine/pkg/common"
	"github.com/ecomops/privacy-engine/pkg/common/logger"
)

// Scheduler is the periodic erasure batch job. Each run queries the due,
// not-yet-finished requests and drives every one through the lifecycle
// manager. One request's failure never aborts the batch, and a failing query
// is treated as an empty batch for that run.
type Scheduler struct {
	moduleEnabled  bool
	erasureEnabled bool

	manager erasure.RequestManager
	repo    erasure.RequestRepository
	clock   erasure.TimeProvider
	limiter *common.RateLimiter

	logger *logger.Logger
	tracer trace.Tracer
}

// NewScheduler returns a batch scheduler. The limiter may be nil to process
// the batch unthrottled.
func NewScheduler(
	moduleEnabled bool,
	erasureEnabled bool,
	manager erasure.RequestManager,
	repo erasure.RequestRepository,
	clock erasure.TimeProvider,
	limiter *common.RateLimiter,
	log *logger.Logger,
	tracer trace.Tracer,
) *Scheduler {
	log = log.With("component", "erasure_scheduler")
	return &Scheduler{
		moduleEnabled:  moduleEnabled,
		erasureEnabled: erasureEnabled,
		manager:        manager,
		repo:           repo,
		clock:          clock,
		limiter:        limiter,
		logger:         log,
		tracer:         tracer,
	}
}

// Run executes one batch pass. It returns an error only when the context is
// canceled mid-batch; request-level failures are logged and skipped.
func (s *Scheduler) Run(ctx context.Context) error {
	if !s.moduleEnabled || !s.erasureEnabled {
		return nil
	}

	ctx, span := s.tracer.Start(ctx, "erasure_scheduler.run")
	defer span.End()

	// Processors delete customer-facing records; the capability to bypass
	// customer-session authorization is scoped to this batch run only.
	ctx = shared.WithSecureArea(ctx)

	batch := s.dueRequests(ctx)
	span.SetAttributes(attribute.Int("batch_size", len(batch)))
	if len(batch) == 0 {
		return nil
	}
	s.logger.Info(ctx, "Processing erasure batch", "batch_size", len(batch))

	for _, req := range batch {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		if _, err := s.manager.Process(ctx, req); err != nil {
			// Lifecycle-level errors (invalid state, store I/O) are logged
			// and the batch moves on; dispatch failures were already
			// absorbed inside Process.
			span.RecordError(err)
			s.logger.Error(ctx, "Failed to process erase request",
				"request_id", req.ID(), "customer_id", req.CustomerID(), "error", err)
		}
	}

	return nil
}

// dueRequests queries requests whose grace period has elapsed and that are
// still awaiting a first run or a retry. Query failures yield an empty batch.
func (s *Scheduler) dueRequests(ctx context.Context) []*erasure.Request {
	filter := erasure.Filter{
		ScheduledBefore: s.clock.Now(),
		StateNot:        erasure.StateComplete,
		StatusIn:        []erasure.Status{erasure.StatusReady, erasure.StatusFailed},
	}

	batch, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error(ctx, "Failed to query due erase requests", "error", err)
		return nil
	}
	return batch
}

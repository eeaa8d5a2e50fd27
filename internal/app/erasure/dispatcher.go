package erasure

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ecomops/privacy-engine/internal/domain/erasure"
	"github.com/ecomops/privacy-engine/pkg/common/logger"
)

var _ erasure.Executor = (*StrategyDispatcher)(nil)

// StrategyDispatcher fans a single customer erasure out to the per-component
// data processors. It routes purely by configured strategy name: all
// anonymize-strategy components run to completion before any delete-strategy
// component, and a failure in any one component propagates to the caller.
// There is no partial-retry state; a retry re-runs every component, so the
// processors must be idempotent.
type StrategyDispatcher struct {
	resolver      erasure.StrategyResolver
	anonymizePool *ProcessorPool
	deletePool    *ProcessorPool

	logger *logger.Logger
	tracer trace.Tracer
}

// NewStrategyDispatcher returns a dispatcher routing through the given
// resolver and strategy-side pools.
func NewStrategyDispatcher(
	resolver erasure.StrategyResolver,
	anonymizePool *ProcessorPool,
	deletePool *ProcessorPool,
	log *logger.Logger,
	tracer trace.Tracer,
) *StrategyDispatcher {
	log = log.With("component", "strategy_dispatcher")
	return &StrategyDispatcher{
		resolver:      resolver,
		anonymizePool: anonymizePool,
		deletePool:    deletePool,
		logger:        log,
		tracer:        tracer,
	}
}

// Execute runs the full erasure for one customer: the anonymize batch first,
// then the delete batch. No ordering is guaranteed within a batch beyond the
// resolver's (sorted) enumeration.
func (d *StrategyDispatcher) Execute(ctx context.Context, customerID int64) error {
	ctx, span := d.tracer.Start(ctx, "strategy_dispatcher.execute",
		trace.WithAttributes(attribute.Int64("customer_id", customerID)),
	)
	defer span.End()

	for _, name := range d.resolver.ComponentsByStrategy(erasure.StrategyAnonymize) {
		if err := d.anonymizePool.ExecuteProcessor(ctx, name, customerID); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "anonymize processor failed")
			return err
		}
	}
	for _, name := range d.resolver.ComponentsByStrategy(erasure.StrategyDelete) {
		if err := d.deletePool.ExecuteProcessor(ctx, name, customerID); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "delete processor failed")
			return err
		}
	}

	d.logger.Debug(ctx, "Erasure dispatch complete", "customer_id", customerID)
	return nil
}

// ExecuteProcessorStrategy resolves one component's configured strategy and
// invokes the matching side's processor directly.
func (d *StrategyDispatcher) ExecuteProcessorStrategy(ctx context.Context, name string, customerID int64) error {
	ctx, span := d.tracer.Start(ctx, "strategy_dispatcher.execute_processor_strategy",
		trace.WithAttributes(
			attribute.String("component", name),
			attribute.Int64("customer_id", customerID),
		),
	)
	defer span.End()

	switch strategy := d.resolver.ComponentStrategy(name); strategy {
	case erasure.StrategyAnonymize:
		return d.anonymizePool.ExecuteProcessor(ctx, name, customerID)
	case erasure.StrategyDelete:
		return d.deletePool.ExecuteProcessor(ctx, name, customerID)
	default:
		err := fmt.Errorf("%w: component %q", erasure.ErrUnknownStrategy, name)
		span.RecordError(err)
		span.SetStatus(codes.Error, "unknown strategy")
		return err
	}
}

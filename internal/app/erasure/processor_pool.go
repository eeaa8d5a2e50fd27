package erasure

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ecomops/privacy-engine/internal/domain/erasure"
	"github.com/ecomops/privacy-engine/pkg/common/logger"
)

// ProcessorPool holds the data processors registered for one strategy side.
// Component names are resolved at runtime from configuration, so the pool maps
// names to processors and fails recognizably when a name is unbound.
type ProcessorPool struct {
	side       erasure.Strategy
	processors map[string]erasure.Processor

	logger *logger.Logger
	tracer trace.Tracer
}

// NewProcessorPool creates an empty pool for the given strategy side.
func NewProcessorPool(side erasure.Strategy, log *logger.Logger, tracer trace.Tracer) *ProcessorPool {
	log = log.With("component", "processor_pool", "strategy", side.String())
	return &ProcessorPool{
		side:       side,
		processors: make(map[string]erasure.Processor),
		logger:     log,
		tracer:     tracer,
	}
}

// Side returns the strategy this pool executes.
func (p *ProcessorPool) Side() erasure.Strategy { return p.side }

// Register binds a processor to a component name. Registering the same name
// twice replaces the previous processor.
func (p *ProcessorPool) Register(name string, processor erasure.Processor) {
	p.processors[name] = processor
}

// Names returns the registered component names in sorted order.
func (p *ProcessorPool) Names() []string {
	names := make([]string, 0, len(p.processors))
	for name := range p.processors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a processor is registered under the given name.
func (p *ProcessorPool) Has(name string) bool {
	_, ok := p.processors[name]
	return ok
}

// ExecuteProcessor invokes the processor registered under name for the given
// customer. It fails with ErrUnknownProcessor when the name is unbound;
// processor errors propagate unwrapped in meaning (the dispatcher does not
// absorb them).
func (p *ProcessorPool) ExecuteProcessor(ctx context.Context, name string, customerID int64) error {
	processor, ok := p.processors[name]
	if !ok {
		return fmt.Errorf("%w: %q (strategy %s)", erasure.ErrUnknownProcessor, name, p.side)
	}

	ctx, span := p.tracer.Start(ctx, "processor_pool.execute_processor",
		trace.WithAttributes(
			attribute.String("component", name),
			attribute.String("strategy", p.side.String()),
			attribute.Int64("customer_id", customerID),
		),
	)
	defer span.End()

	if err := processor.Execute(ctx, customerID); err != nil {
		span.RecordError(err)
		return fmt.Errorf("processor %q (strategy %s) failed for customer %d: %w", name, p.side, customerID, err)
	}

	p.logger.Debug(ctx, "Processor executed", "component", name, "customer_id", customerID)
	return nil
}

package deletion

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ecomops/privacy-engine/internal/domain/erasure"
	"github.com/ecomops/privacy-engine/internal/infra/storage"
)

var _ erasure.Processor = (*OrderProcessor)(nil)

// OrderProcessor removes every order belonging to the customer.
type OrderProcessor struct {
	db     *pgxpool.Pool
	tracer trace.Tracer
}

// NewOrderProcessor creates an order remover.
func NewOrderProcessor(pool *pgxpool.Pool, tracer trace.Tracer) *OrderProcessor {
	return &OrderProcessor{db: pool, tracer: tracer}
}

// Execute deletes the customer's orders. Zero matching orders is not an error.
func (p *OrderProcessor) Execute(ctx context.Context, customerID int64) error {
	attrs := []attribute.KeyValue{attribute.Int64("customer_id", customerID)}

	return storage.ExecuteAndTrace(ctx, p.tracer, "deletion.order", attrs, func(ctx context.Context) error {
		if _, err := p.db.Exec(ctx,
			`DELETE FROM sales_orders WHERE customer_id = $1`, customerID,
		); err != nil {
			return fmt.Errorf("removing orders for customer %d: %w", customerID, err)
		}
		return nil
	})
}

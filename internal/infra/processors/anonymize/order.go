package anonymize

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

// OrderProcessor strips the personal columns from a customer's orders while
// keeping the commercial records (totals, items, dates) intact for
// accounting.
type OrderProcessor struct {
	db         *pgxpool.Pool
	anonymizer Anonymizer
	tracer     trace.Tracer
}

// NewOrderProcessor creates an order anonymizer.
func NewOrderProcessor(pool *pgxpool.Pool, tracer trace.Tracer) *OrderProcessor {
	return &OrderProcessor{db: pool, tracer: tracer}
}

// Execute overwrites the personal columns on every order of the customer.
// Zero matching orders is not an error.
func (p *OrderProcessor) Execute(ctx context.Context, customerID int64) error {
	attrs := []attribute.KeyValue{attribute.Int64("customer_id", customerID)}

	return storage.ExecuteAndTrace(ctx, p.tracer, "anonymize.order", attrs, func(ctx context.Context) error {
		_, err := p.db.Exec(ctx, `
			UPDATE sales_orders
			SET customer_firstname = $2,
			    customer_lastname = $3,
			    customer_email = $4,
			    shipping_address = NULL,
			    billing_address = NULL
			WHERE customer_id = $1`,
			customerID,
			p.anonymizer.AnonymousValue(),
			p.anonymizer.AnonymousValue(),
			p.anonymizer.AnonymousEmail(),
		)
		if err != nil {
			return fmt.Errorf("anonymizing orders for customer %d: %w", customerID, err)
		}
		return nil
	})
}

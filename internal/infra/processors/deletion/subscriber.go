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

var _ erasure.Processor = (*SubscriberProcessor)(nil)

// SubscriberProcessor removes the customer's newsletter subscription.
type SubscriberProcessor struct {
	db     *pgxpool.Pool
	tracer trace.Tracer
}

// NewSubscriberProcessor creates a newsletter subscription remover.
func NewSubscriberProcessor(pool *pgxpool.Pool, tracer trace.Tracer) *SubscriberProcessor {
	return &SubscriberProcessor{db: pool, tracer: tracer}
}

// Execute deletes the subscription row. A customer without a subscription is
// not an error.
func (p *SubscriberProcessor) Execute(ctx context.Context, customerID int64) error {
	attrs := []attribute.KeyValue{attribute.Int64("customer_id", customerID)}

	return storage.ExecuteAndTrace(ctx, p.tracer, "deletion.subscriber", attrs, func(ctx context.Context) error {
		if _, err := p.db.Exec(ctx,
			`DELETE FROM newsletter_subscribers WHERE customer_id = $1`, customerID,
		); err != nil {
			return fmt.Errorf("removing subscription for customer %d: %w", customerID, err)
		}
		return nil
	})
}

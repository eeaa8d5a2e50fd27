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

var _ erasure.Processor = (*SubscriberProcessor)(nil)

// SubscriberProcessor anonymizes the customer's newsletter subscription so
// the mailing list keeps its size statistics without holding a live address.
type SubscriberProcessor struct {
	db         *pgxpool.Pool
	anonymizer Anonymizer
	tracer     trace.Tracer
}

// NewSubscriberProcessor creates a newsletter subscription anonymizer.
func NewSubscriberProcessor(pool *pgxpool.Pool, tracer trace.Tracer) *SubscriberProcessor {
	return &SubscriberProcessor{db: pool, tracer: tracer}
}

// Execute overwrites the subscription email. A customer without a
// subscription is not an error.
func (p *SubscriberProcessor) Execute(ctx context.Context, customerID int64) error {
	attrs := []attribute.KeyValue{attribute.Int64("customer_id", customerID)}

	return storage.ExecuteAndTrace(ctx, p.tracer, "anonymize.subscriber", attrs, func(ctx context.Context) error {
		_, err := p.db.Exec(ctx, `
			UPDATE newsletter_subscribers
			SET email = $2
			WHERE customer_id = $1`,
			customerID, p.anonymizer.AnonymousEmail(),
		)
		if err != nil {
			return fmt.Errorf("anonymizing subscription for customer %d: %w", customerID, err)
		}
		return nil
	})
}

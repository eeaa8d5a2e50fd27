// Package deletion provides the delete-side data processors. Each processor
// removes one data domain's records for a customer entirely.
package deletion

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ecomops/privacy-engine/internal/domain/erasure"
	"github.com/ecomops/privacy-engine/internal/domain/shared"
	"github.com/ecomops/privacy-engine/internal/infra/storage"
)

var _ erasure.Processor = (*CustomerProcessor)(nil)

// CustomerProcessor removes the customer profile and its sessions outright.
type CustomerProcessor struct {
	db     *pgxpool.Pool
	tracer trace.Tracer
}

// NewCustomerProcessor creates a customer profile remover.
func NewCustomerProcessor(pool *pgxpool.Pool, tracer trace.Tracer) *CustomerProcessor {
	return &CustomerProcessor{db: pool, tracer: tracer}
}

// Execute removes the profile. Removing a customer account is a
// customer-facing protected operation and requires the secure-area capability
// carried by scheduled batch runs. An already-removed customer is not an
// error; retries must stay idempotent.
func (p *CustomerProcessor) Execute(ctx context.Context, customerID int64) error {
	attrs := []attribute.KeyValue{attribute.Int64("customer_id", customerID)}

	return storage.ExecuteAndTrace(ctx, p.tracer, "deletion.customer", attrs, func(ctx context.Context) error {
		if !shared.IsSecureArea(ctx) {
			return fmt.Errorf("customer %d cannot be removed outside a secure-area context", customerID)
		}

		if _, err := p.db.Exec(ctx,
			`DELETE FROM customer_sessions WHERE customer_id = $1`, customerID,
		); err != nil {
			return fmt.Errorf("dropping sessions for customer %d: %w", customerID, err)
		}
		if _, err := p.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, customerID); err != nil {
			return fmt.Errorf("removing customer %d: %w", customerID, err)
		}
		return nil
	})
}

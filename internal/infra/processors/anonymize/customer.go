package anonymize

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

// CustomerProcessor anonymizes a customer profile: name fields, email, and
// tax number are overwritten, the password is invalidated, and active sessions
// are dropped so the account can no longer be used.
//
// When removeIfNoOrders is set and the customer has no orders, the profile is
// deleted outright instead; there is no history worth retaining. This
// composite policy deliberately lives here, not in the strategy registry.
type CustomerProcessor struct {
	db               *pgxpool.Pool
	anonymizer       Anonymizer
	removeIfNoOrders bool
	tracer           trace.Tracer
}

// NewCustomerProcessor creates a customer profile anonymizer.
func NewCustomerProcessor(pool *pgxpool.Pool, removeIfNoOrders bool, tracer trace.Tracer) *CustomerProcessor {
	return &CustomerProcessor{db: pool, removeIfNoOrders: removeIfNoOrders, tracer: tracer}
}

// Execute anonymizes (or removes) the customer profile. A missing customer is
// not an error: the profile may already be gone from a previous attempt, and
// retries must stay idempotent.
func (p *CustomerProcessor) Execute(ctx context.Context, customerID int64) error {
	attrs := []attribute.KeyValue{attribute.Int64("customer_id", customerID)}

	return storage.ExecuteAndTrace(ctx, p.tracer, "anonymize.customer", attrs, func(ctx context.Context) error {
		if p.removeIfNoOrders {
			var orderCount int
			err := p.db.QueryRow(ctx,
				`SELECT count(*) FROM sales_orders WHERE customer_id = $1`, customerID,
			).Scan(&orderCount)
			if err != nil {
				return fmt.Errorf("counting orders for customer %d: %w", customerID, err)
			}

			if orderCount == 0 {
				return p.deleteCustomer(ctx, customerID)
			}
		}

		tag, err := p.db.Exec(ctx, `
			UPDATE customers
			SET firstname = $2,
			    middlename = $3,
			    lastname = $4,
			    email = $5,
			    taxvat = '',
			    updated_at = now()
			WHERE id = $1`,
			customerID,
			p.anonymizer.AnonymousValue(),
			p.anonymizer.AnonymousValue(),
			p.anonymizer.AnonymousValue(),
			p.anonymizer.AnonymousEmail(),
		)
		if err != nil {
			return fmt.Errorf("anonymizing customer %d: %w", customerID, err)
		}
		if tag.RowsAffected() == 0 {
			// Already removed; nothing left to anonymize.
			return nil
		}

		return p.blockAccount(ctx, customerID)
	})
}

// deleteCustomer removes the profile outright. Removing a customer account is
// a customer-facing protected operation and requires the secure-area
// capability carried by scheduled batch runs.
func (p *CustomerProcessor) deleteCustomer(ctx context.Context, customerID int64) error {
	if !shared.IsSecureArea(ctx) {
		return fmt.Errorf("customer %d cannot be removed outside a secure-area context", customerID)
	}

	if _, err := p.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, customerID); err != nil {
		return fmt.Errorf("removing customer %d: %w", customerID, err)
	}
	return nil
}

// blockAccount invalidates the login password and drops all active sessions.
func (p *CustomerProcessor) blockAccount(ctx context.Context, customerID int64) error {
	if _, err := p.db.Exec(ctx, `
		UPDATE customers SET password_hash = $2 WHERE id = $1`,
		customerID, p.anonymizer.AnonymousValue(),
	); err != nil {
		return fmt.Errorf("invalidating password for customer %d: %w", customerID, err)
	}

	if _, err := p.db.Exec(ctx,
		`DELETE FROM customer_sessions WHERE customer_id = $1`, customerID,
	); err != nil {
		return fmt.Errorf("dropping sessions for customer %d: %w", customerID, err)
	}
	return nil
}

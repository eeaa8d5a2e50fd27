package exporters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"

	"github.com/ecomops/privacy-engine/internal/domain/export"
)

var _ export.Processor = (*SubscriberExporter)(nil)

// SubscriberExporter collects the customer's newsletter subscription details.
type SubscriberExporter struct {
	db     *pgxpool.Pool
	tracer trace.Tracer
}

// NewSubscriberExporter creates a newsletter subscription collector.
func NewSubscriberExporter(pool *pgxpool.Pool, tracer trace.Tracer) *SubscriberExporter {
	return &SubscriberExporter{db: pool, tracer: tracer}
}

// Export returns the subscription section, or nil when the customer is not
// subscribed.
func (e *SubscriberExporter) Export(ctx context.Context, customerID int64) (any, error) {
	ctx, span := e.tracer.Start(ctx, "exporters.subscriber")
	defer span.End()

	var (
		email        string
		status       string
		subscribedAt time.Time
	)
	err := e.db.QueryRow(ctx, `
		SELECT email, status, created_at
		FROM newsletter_subscribers
		WHERE customer_id = $1`, customerID,
	).Scan(&email, &status, &subscribedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading subscription for customer %d: %w", customerID, err)
	}

	return map[string]any{
		"email":         email,
		"status":        status,
		"subscribed_at": subscribedAt,
	}, nil
}

package exporters

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"

	"github.com/ecomops/privacy-engine/internal/domain/export"
)

var _ export.Processor = (*OrderExporter)(nil)

// OrderExporter collects the customer's order history summaries.
type OrderExporter struct {
	db     *pgxpool.Pool
	tracer trace.Tracer
}

// NewOrderExporter creates an order history collector.
func NewOrderExporter(pool *pgxpool.Pool, tracer trace.Tracer) *OrderExporter {
	return &OrderExporter{db: pool, tracer: tracer}
}

// Export returns the order summaries section, or nil when the customer has
// no orders.
func (e *OrderExporter) Export(ctx context.Context, customerID int64) (any, error) {
	ctx, span := e.tracer.Start(ctx, "exporters.order")
	defer span.End()

	rows, err := e.db.Query(ctx, `
		SELECT increment_id, status, grand_total, created_at
		FROM sales_orders
		WHERE customer_id = $1
		ORDER BY created_at`, customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading orders for customer %d: %w", customerID, err)
	}
	defer rows.Close()

	var orders []map[string]any
	for rows.Next() {
		var (
			incrementID, status string
			grandTotal          float64
			createdAt           time.Time
		)
		if err := rows.Scan(&incrementID, &status, &grandTotal, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning order for customer %d: %w", customerID, err)
		}

		orders = append(orders, map[string]any{
			"increment_id": incrementID,
			"status":       status,
			"grand_total":  grandTotal,
			"created_at":   createdAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		return nil, nil
	}
	return orders, nil
}

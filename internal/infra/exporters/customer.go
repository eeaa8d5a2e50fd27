// Package exporters provides the per-domain personal data collectors feeding
// the export pipeline.
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

var _ export.Processor = (*CustomerExporter)(nil)

// CustomerExporter collects the customer profile and addresses, filtered down
// to the configured attribute allow-lists so internal columns never leak into
// a disclosure document.
type CustomerExporter struct {
	db                *pgxpool.Pool
	profileAttributes map[string]struct{}
	addressAttributes map[string]struct{}
	tracer            trace.Tracer
}

// NewCustomerExporter creates a customer profile collector with the given
// attribute allow-lists.
func NewCustomerExporter(pool *pgxpool.Pool, profileAttrs, addressAttrs []string, tracer trace.Tracer) *CustomerExporter {
	return &CustomerExporter{
		db:                pool,
		profileAttributes: toSet(profileAttrs),
		addressAttributes: toSet(addressAttrs),
		tracer:            tracer,
	}
}

// Export returns the filtered profile section, or nil when the customer does
// not exist.
func (e *CustomerExporter) Export(ctx context.Context, customerID int64) (any, error) {
	ctx, span := e.tracer.Start(ctx, "exporters.customer")
	defer span.End()

	var (
		firstname, middlename, lastname, email, taxvat string
		dob                                            *time.Time
		createdAt                                      time.Time
	)
	err := e.db.QueryRow(ctx, `
		SELECT firstname, middlename, lastname, email, taxvat, dob, created_at
		FROM customers
		WHERE id = $1`, customerID,
	).Scan(&firstname, &middlename, &lastname, &email, &taxvat, &dob, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading customer %d: %w", customerID, err)
	}

	profile := filterAttributes(map[string]any{
		"firstname":  firstname,
		"middlename": middlename,
		"lastname":   lastname,
		"email":      email,
		"taxvat":     taxvat,
		"dob":        dob,
		"created_at": createdAt,
	}, e.profileAttributes)

	addresses, err := e.exportAddresses(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if len(addresses) > 0 {
		profile["addresses"] = addresses
	}

	return profile, nil
}

func (e *CustomerExporter) exportAddresses(ctx context.Context, customerID int64) ([]map[string]any, error) {
	rows, err := e.db.Query(ctx, `
		SELECT firstname, lastname, street, city, postcode, telephone, country_id
		FROM customer_addresses
		WHERE customer_id = $1
		ORDER BY id`, customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading addresses for customer %d: %w", customerID, err)
	}
	defer rows.Close()

	var addresses []map[string]any
	for rows.Next() {
		var firstname, lastname, street, city, postcode, telephone, countryID string
		if err := rows.Scan(&firstname, &lastname, &street, &city, &postcode, &telephone, &countryID); err != nil {
			return nil, fmt.Errorf("scanning address for customer %d: %w", customerID, err)
		}

		addresses = append(addresses, filterAttributes(map[string]any{
			"firstname":  firstname,
			"lastname":   lastname,
			"street":     street,
			"city":       city,
			"postcode":   postcode,
			"telephone":  telephone,
			"country_id": countryID,
		}, e.addressAttributes))
	}
	return addresses, rows.Err()
}

func toSet(attrs []string) map[string]struct{} {
	set := make(map[string]struct{}, len(attrs))
	for _, a := range attrs {
		set[a] = struct{}{}
	}
	return set
}

// filterAttributes keeps only allow-listed keys. An empty allow-list keeps
// everything.
func filterAttributes(attrs map[string]any, allowed map[string]struct{}) map[string]any {
	if len(allowed) == 0 {
		return attrs
	}

	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		if _, ok := allowed[k]; ok {
			out[k] = v
		}
	}
	return out
}

// Package postgres provides the PostgreSQL-backed erase request store.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ecomops/privacy-engine/internal/domain/erasure"
	"github.com/ecomops/privacy-engine/internal/infra/storage"
)

var _ erasure.RequestRepository = (*requestStore)(nil)

// uniqueViolation is the postgres error code raised when the unique
// customer_id index rejects a second active request for a customer.
const uniqueViolation = "23505"

// requestStore implements erasure.RequestRepository using PostgreSQL as the
// backing store. It holds no transition logic: rows are written exactly as the
// lifecycle manager hands them over.
type requestStore struct {
	db     *pgxpool.Pool
	tracer trace.Tracer
}

// NewRequestStore creates a new PostgreSQL-backed erase request repository
// with tracing capabilities.
func NewRequestStore(pool *pgxpool.Pool, tracer trace.Tracer) *requestStore {
	return &requestStore{db: pool, tracer: tracer}
}

// defaultDBAttributes defines standard OpenTelemetry attributes for database operations.
var defaultDBAttributes = []attribute.KeyValue{
	attribute.String("db.system", "postgresql"),
}

// Save inserts or updates the full request row and returns the stored
// representation.
func (s *requestStore) Save(ctx context.Context, req *erasure.Request) (*erasure.Request, error) {
	dbAttrs := append(
		defaultDBAttributes,
		attribute.String("request_id", req.ID().String()),
		attribute.Int64("customer_id", req.CustomerID()),
		attribute.String("state", req.State().String()),
		attribute.String("status", req.Status().String()),
	)

	var saved *erasure.Request
	err := storage.ExecuteAndTrace(ctx, s.tracer, "postgres.save_erase_request", dbAttrs, func(ctx context.Context) error {
		erasedAt, hasErasedAt := req.ErasedAt()

		row := s.db.QueryRow(ctx, `
			INSERT INTO erase_requests (id, customer_id, state, status, scheduled_at, erased_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE
			SET state = EXCLUDED.state,
			    status = EXCLUDED.status,
			    erased_at = EXCLUDED.erased_at,
			    updated_at = now()
			RETURNING id, customer_id, state, status, scheduled_at, erased_at`,
			pgtype.UUID{Bytes: req.ID(), Valid: true},
			req.CustomerID(),
			req.State().String(),
			req.Status().String(),
			pgtype.Timestamptz{Time: req.ScheduledAt(), Valid: true},
			pgtype.Timestamptz{Time: erasedAt, Valid: hasErasedAt},
		)

		var err error
		saved, err = scanRequest(row)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return fmt.Errorf("%w: customer %d", erasure.ErrAlreadyExists, req.CustomerID())
			}
			return fmt.Errorf("%w: %w", erasure.ErrCouldNotSave, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return saved, nil
}

// GetByID retrieves a request by its identifier.
func (s *requestStore) GetByID(ctx context.Context, id uuid.UUID) (*erasure.Request, error) {
	dbAttrs := append(defaultDBAttributes, attribute.String("request_id", id.String()))

	var req *erasure.Request
	err := storage.ExecuteAndTrace(ctx, s.tracer, "postgres.get_erase_request", dbAttrs, func(ctx context.Context) error {
		row := s.db.QueryRow(ctx, `
			SELECT id, customer_id, state, status, scheduled_at, erased_at
			FROM erase_requests
			WHERE id = $1`,
			pgtype.UUID{Bytes: id, Valid: true},
		)

		var err error
		req, err = scanRequest(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: id %s", erasure.ErrNotFound, id)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	return req, nil
}

// GetByCustomerID retrieves the active request for a customer.
func (s *requestStore) GetByCustomerID(ctx context.Context, customerID int64) (*erasure.Request, error) {
	dbAttrs := append(defaultDBAttributes, attribute.Int64("customer_id", customerID))

	var req *erasure.Request
	err := storage.ExecuteAndTrace(ctx, s.tracer, "postgres.get_erase_request_by_customer", dbAttrs, func(ctx context.Context) error {
		row := s.db.QueryRow(ctx, `
			SELECT id, customer_id, state, status, scheduled_at, erased_at
			FROM erase_requests
			WHERE customer_id = $1`,
			customerID,
		)

		var err error
		req, err = scanRequest(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: customer %d", erasure.ErrNotFound, customerID)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	return req, nil
}

// List retrieves all requests matching the filter, ordered by scheduled time.
func (s *requestStore) List(ctx context.Context, filter erasure.Filter) ([]*erasure.Request, error) {
	var reqs []*erasure.Request
	err := storage.ExecuteAndTrace(ctx, s.tracer, "postgres.list_erase_requests", defaultDBAttributes, func(ctx context.Context) error {
		query, args := buildListQuery(filter)

		rows, err := s.db.Query(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("list erase requests query error: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			req, err := scanRequest(rows)
			if err != nil {
				return fmt.Errorf("list erase requests scan error: %w", err)
			}
			reqs = append(reqs, req)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return reqs, nil
}

// Delete removes the request row.
func (s *requestStore) Delete(ctx context.Context, req *erasure.Request) error {
	return s.DeleteByID(ctx, req.ID())
}

// DeleteByID removes the request row by identifier.
func (s *requestStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	dbAttrs := append(defaultDBAttributes, attribute.String("request_id", id.String()))

	return storage.ExecuteAndTrace(ctx, s.tracer, "postgres.delete_erase_request", dbAttrs, func(ctx context.Context) error {
		tag, err := s.db.Exec(ctx, `DELETE FROM erase_requests WHERE id = $1`, pgtype.UUID{Bytes: id, Valid: true})
		if err != nil {
			return fmt.Errorf("%w: %w", erasure.ErrCouldNotDelete, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: id %s", erasure.ErrNotFound, id)
		}
		return nil
	})
}

// buildListQuery assembles the filtered SELECT. Only non-zero filter fields
// contribute predicates.
func buildListQuery(filter erasure.Filter) (string, []any) {
	var (
		conditions []string
		args       []any
	)

	if !filter.ScheduledBefore.IsZero() {
		args = append(args, pgtype.Timestamptz{Time: filter.ScheduledBefore, Valid: true})
		conditions = append(conditions, fmt.Sprintf("scheduled_at <= $%d", len(args)))
	}
	if filter.StateNot != "" {
		args = append(args, filter.StateNot.String())
		conditions = append(conditions, fmt.Sprintf("state != $%d", len(args)))
	}
	if len(filter.StatusIn) > 0 {
		statuses := make([]string, len(filter.StatusIn))
		for i, st := range filter.StatusIn {
			statuses[i] = st.String()
		}
		args = append(args, statuses)
		conditions = append(conditions, fmt.Sprintf("status = ANY($%d)", len(args)))
	}

	query := `SELECT id, customer_id, state, status, scheduled_at, erased_at FROM erase_requests`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY scheduled_at, customer_id"

	return query, args
}

// scanRequest reconstructs a domain request from a row.
func scanRequest(row pgx.Row) (*erasure.Request, error) {
	var (
		id          pgtype.UUID
		customerID  int64
		state       string
		status      string
		scheduledAt pgtype.Timestamptz
		erasedAt    pgtype.Timestamptz
	)

	if err := row.Scan(&id, &customerID, &state, &status, &scheduledAt, &erasedAt); err != nil {
		return nil, err
	}

	return erasure.ReconstructRequest(
		uuid.UUID(id.Bytes),
		customerID,
		erasure.ParseState(state),
		erasure.ParseStatus(status),
		scheduledAt.Time,
		erasedAt.Time,
	), nil
}

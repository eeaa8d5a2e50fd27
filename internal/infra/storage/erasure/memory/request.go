// Package memory provides an in-memory erase request store for development
// and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ecomops/privacy-engine/internal/domain/erasure"
)

var _ erasure.RequestRepository = (*RequestStore)(nil)

// record is the persisted row shape. Requests are stored by value so callers
// never share live aggregates with the store.
type record struct {
	id          uuid.UUID
	customerID  int64
	state       erasure.State
	status      erasure.Status
	scheduledAt time.Time
	erasedAt    time.Time
	seq         int
}

// RequestStore is a thread-safe in-memory implementation of
// erasure.RequestRepository with the same uniqueness semantics as the
// postgres store.
type RequestStore struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]record
	byCustomer map[int64]uuid.UUID
	nextSeq    int
}

// NewRequestStore creates an empty in-memory erase request store.
func NewRequestStore() *RequestStore {
	return &RequestStore{
		byID:       make(map[uuid.UUID]record),
		byCustomer: make(map[int64]uuid.UUID),
	}
}

// Save inserts or updates the request, enforcing the one-active-request-per-
// customer invariant.
func (s *RequestStore) Save(_ context.Context, req *erasure.Request) (*erasure.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existingID, ok := s.byCustomer[req.CustomerID()]; ok && existingID != req.ID() {
		return nil, fmt.Errorf("%w: customer %d", erasure.ErrAlreadyExists, req.CustomerID())
	}

	rec, ok := s.byID[req.ID()]
	if !ok {
		s.nextSeq++
		rec = record{seq: s.nextSeq}
	}

	erasedAt, _ := req.ErasedAt()
	rec.id = req.ID()
	rec.customerID = req.CustomerID()
	rec.state = req.State()
	rec.status = req.Status()
	rec.scheduledAt = req.ScheduledAt()
	rec.erasedAt = erasedAt

	s.byID[rec.id] = rec
	s.byCustomer[rec.customerID] = rec.id

	return rec.toDomain(), nil
}

// GetByID retrieves a request by its identifier.
func (s *RequestStore) GetByID(_ context.Context, id uuid.UUID) (*erasure.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %s", erasure.ErrNotFound, id)
	}
	return rec.toDomain(), nil
}

// GetByCustomerID retrieves the active request for a customer.
func (s *RequestStore) GetByCustomerID(_ context.Context, customerID int64) (*erasure.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byCustomer[customerID]
	if !ok {
		return nil, fmt.Errorf("%w: customer %d", erasure.ErrNotFound, customerID)
	}
	return s.byID[id].toDomain(), nil
}

// List retrieves all requests matching the filter in insertion order.
func (s *RequestStore) List(_ context.Context, filter erasure.Filter) ([]*erasure.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]record, 0, len(s.byID))
	for _, rec := range s.byID {
		if rec.matches(filter) {
			matched = append(matched, rec)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq < matched[j].seq })

	reqs := make([]*erasure.Request, len(matched))
	for i, rec := range matched {
		reqs[i] = rec.toDomain()
	}
	return reqs, nil
}

// Delete removes the request row.
func (s *RequestStore) Delete(ctx context.Context, req *erasure.Request) error {
	return s.DeleteByID(ctx, req.ID())
}

// DeleteByID removes the request row by identifier.
func (s *RequestStore) DeleteByID(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: id %s", erasure.ErrNotFound, id)
	}

	delete(s.byID, id)
	delete(s.byCustomer, rec.customerID)
	return nil
}

func (rec record) matches(filter erasure.Filter) bool {
	if !filter.ScheduledBefore.IsZero() && rec.scheduledAt.After(filter.ScheduledBefore) {
		return false
	}
	if filter.StateNot != "" && rec.state == filter.StateNot {
		return false
	}
	if len(filter.StatusIn) > 0 {
		found := false
		for _, st := range filter.StatusIn {
			if rec.status == st {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (rec record) toDomain() *erasure.Request {
	return erasure.ReconstructRequest(rec.id, rec.customerID, rec.state, rec.status, rec.scheduledAt, rec.erasedAt)
}

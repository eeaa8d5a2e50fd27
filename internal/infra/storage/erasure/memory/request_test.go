package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecomops/privacy-engine/internal/domain/erasure"
)

func TestRequestStoreSaveAndGet(t *testing.T) {
	t.Parallel()
	store := NewRequestStore()
	ctx := context.Background()

	req := erasure.NewRequest(uuid.New(), 42, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	saved, err := store.Save(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, req.ID(), saved.ID())

	byID, err := store.GetByID(ctx, req.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(42), byID.CustomerID())

	byCustomer, err := store.GetByCustomerID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, req.ID(), byCustomer.ID())
}

func TestRequestStoreUniqueCustomer(t *testing.T) {
	t.Parallel()
	store := NewRequestStore()
	ctx := context.Background()

	_, err := store.Save(ctx, erasure.NewRequest(uuid.New(), 42, time.Now()))
	require.NoError(t, err)

	_, err = store.Save(ctx, erasure.NewRequest(uuid.New(), 42, time.Now()))
	assert.ErrorIs(t, err, erasure.ErrAlreadyExists)
}

func TestRequestStoreUpdateSameRequest(t *testing.T) {
	t.Parallel()
	store := NewRequestStore()
	ctx := context.Background()

	req := erasure.NewRequest(uuid.New(), 42, time.Now())
	_, err := store.Save(ctx, req)
	require.NoError(t, err)

	require.NoError(t, req.MarkRunning())
	updated, err := store.Save(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, erasure.StatusRunning, updated.Status())
}

func TestRequestStoreReturnsFreshCopies(t *testing.T) {
	t.Parallel()
	store := NewRequestStore()
	ctx := context.Background()

	req := erasure.NewRequest(uuid.New(), 42, time.Now())
	_, err := store.Save(ctx, req)
	require.NoError(t, err)

	loaded, err := store.GetByID(ctx, req.ID())
	require.NoError(t, err)
	require.NoError(t, loaded.MarkRunning())

	// Mutating a loaded aggregate must not leak into the store.
	reloaded, err := store.GetByID(ctx, req.ID())
	require.NoError(t, err)
	assert.Equal(t, erasure.StatusReady, reloaded.Status())
}

func TestRequestStoreGetMissing(t *testing.T) {
	t.Parallel()
	store := NewRequestStore()
	ctx := context.Background()

	_, err := store.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, erasure.ErrNotFound)

	_, err = store.GetByCustomerID(ctx, 999)
	assert.ErrorIs(t, err, erasure.ErrNotFound)
}

func TestRequestStoreDelete(t *testing.T) {
	t.Parallel()
	store := NewRequestStore()
	ctx := context.Background()

	req := erasure.NewRequest(uuid.New(), 42, time.Now())
	_, err := store.Save(ctx, req)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, req))

	_, err = store.GetByCustomerID(ctx, 42)
	assert.ErrorIs(t, err, erasure.ErrNotFound)

	// A second customer may now file a request.
	_, err = store.Save(ctx, erasure.NewRequest(uuid.New(), 42, time.Now()))
	assert.NoError(t, err)
}

func TestRequestStoreDeleteMissing(t *testing.T) {
	t.Parallel()
	store := NewRequestStore()

	err := store.DeleteByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, erasure.ErrNotFound)
}

func TestRequestStoreListDueRequests(t *testing.T) {
	t.Parallel()
	store := NewRequestStore()
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	overdue := erasure.NewRequest(uuid.New(), 1, now.Add(-time.Hour))
	exactlyDue := erasure.NewRequest(uuid.New(), 2, now)
	oneSecondEarly := erasure.NewRequest(uuid.New(), 3, now.Add(time.Second))
	completed := erasure.ReconstructRequest(
		uuid.New(), 4, erasure.StateComplete, erasure.StatusSucceeded, now.Add(-time.Hour), now)
	running := erasure.ReconstructRequest(
		uuid.New(), 5, erasure.StateProcessing, erasure.StatusRunning, now.Add(-time.Hour), time.Time{})
	failed := erasure.ReconstructRequest(
		uuid.New(), 6, erasure.StateProcessing, erasure.StatusFailed, now.Add(-time.Hour), time.Time{})

	for _, req := range []*erasure.Request{overdue, exactlyDue, oneSecondEarly, completed, running, failed} {
		_, err := store.Save(ctx, req)
		require.NoError(t, err)
	}

	batch, err := store.List(ctx, erasure.Filter{
		ScheduledBefore: now,
		StateNot:        erasure.StateComplete,
		StatusIn:        []erasure.Status{erasure.StatusReady, erasure.StatusFailed},
	})
	require.NoError(t, err)

	ids := make([]int64, len(batch))
	for i, req := range batch {
		ids[i] = req.CustomerID()
	}

	// Due at or before now, not complete, and either awaiting a first run or a
	// retry. The request scheduled one second past now must not appear.
	assert.Equal(t, []int64{1, 2, 6}, ids)
}

func TestRequestStoreListEmptyFilter(t *testing.T) {
	t.Parallel()
	store := NewRequestStore()
	ctx := context.Background()

	for customerID := int64(1); customerID <= 3; customerID++ {
		_, err := store.Save(ctx, erasure.NewRequest(uuid.New(), customerID, time.Now()))
		require.NoError(t, err)
	}

	batch, err := store.List(ctx, erasure.Filter{})
	require.NoError(t, err)
	assert.Len(t, batch, 3)
}

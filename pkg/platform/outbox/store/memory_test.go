package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aurum/pkg/platform/outbox"
	"aurum/pkg/platform/sentinel"
	"aurum/pkg/platform/tx"
)

func newEntry(eventType string, at time.Time) *outbox.Entry {
	return outbox.NewEntry("redemption", "user/1", eventType, []byte(`{}`), at)
}

func TestInMemoryStore_AppendOrder(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Append(ctx, newEntry("RedemptionRequested", now)))
	require.NoError(t, s.Append(ctx, newEntry("RedemptionFulfilled", now)))
	require.NoError(t, s.Append(ctx, newEntry("BlacklistAdded", now)))

	got, err := s.FetchUnprocessed(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "RedemptionRequested", got[0].EventType)
	assert.Equal(t, "RedemptionFulfilled", got[1].EventType)

	require.NoError(t, s.MarkProcessed(ctx, got[0].ID, now))
	pending, err := s.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pending)
}

func TestInMemoryStore_RollbackDropsEntries(t *testing.T) {
	s := NewInMemory()
	runner := tx.NewInMemory()
	boom := errors.New("boom")

	err := runner.RunInTx(context.Background(), func(ctx context.Context) error {
		require.NoError(t, s.Append(ctx, newEntry("RedemptionRequested", time.Now())))
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Empty(t, s.All())
}

func TestInMemoryStore_MarkProcessedUnknown(t *testing.T) {
	err := NewInMemory().MarkProcessed(context.Background(), uuid.New(), time.Now())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStore_DeleteProcessedBefore(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	done := newEntry("A", old)
	require.NoError(t, s.Append(ctx, done))
	require.NoError(t, s.Append(ctx, newEntry("B", old)))
	require.NoError(t, s.MarkProcessed(ctx, done.ID, old))

	n, err := s.DeleteProcessedBefore(ctx, old.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.Len(t, s.All(), 1)
	assert.Equal(t, "B", s.All()[0].EventType)
}

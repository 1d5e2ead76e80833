package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aurum/internal/redemption/models"
	id "aurum/pkg/domain"
	"aurum/pkg/platform/sentinel"
	"aurum/pkg/platform/tx"
)

func request(user id.Address, reqID id.RequestID) *models.Request {
	return &models.Request{
		User:        user,
		RequestID:   reqID,
		Amount:      100,
		Status:      models.StatusPending,
		RequestedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestInMemory_CRUD(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	alice, bob := id.Address{1}, id.Address{2}

	require.NoError(t, s.Create(ctx, request(alice, 2)))
	require.NoError(t, s.Create(ctx, request(alice, 1)))
	require.NoError(t, s.Create(ctx, request(bob, 3)))
	assert.ErrorIs(t, s.Create(ctx, request(alice, 1)), sentinel.ErrAlreadyExists)

	list, err := s.ListByUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, id.RequestID(1), list[0].RequestID)

	got, err := s.FindByKey(ctx, models.Key{User: alice, RequestID: 1})
	require.NoError(t, err)
	got.Status = models.StatusProcessing
	stored, _ := s.FindByKey(ctx, models.Key{User: alice, RequestID: 1})
	assert.Equal(t, models.StatusPending, stored.Status, "callers receive copies")

	require.NoError(t, s.Update(ctx, got))
	open, err := s.FindOpenByUser(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, id.RequestID(1), open.RequestID)

	require.NoError(t, s.Delete(ctx, models.Key{User: bob, RequestID: 3}))
	_, err = s.FindOpenByUser(ctx, bob)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, models.Key{User: bob, RequestID: 3}), sentinel.ErrNotFound)
	assert.ErrorIs(t, s.Update(ctx, request(bob, 3)), sentinel.ErrNotFound)
}

func TestInMemory_RollbackUndoesWrites(t *testing.T) {
	s := NewInMemory()
	runner := tx.NewInMemory()
	user := id.Address{1}
	require.NoError(t, s.Create(context.Background(), request(user, 1)))

	boom := errors.New("boom")
	err := runner.RunInTx(context.Background(), func(ctx context.Context) error {
		require.NoError(t, s.Delete(ctx, models.Key{User: user, RequestID: 1}))
		require.NoError(t, s.Create(ctx, request(user, 2)))
		return boom
	})
	require.ErrorIs(t, err, boom)

	list, err := s.ListByUser(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id.RequestID(1), list[0].RequestID)
}

//go:build integration

package store_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"aurum/internal/redemption/models"
	"aurum/internal/redemption/store"
	id "aurum/pkg/domain"
	"aurum/pkg/platform/sentinel"
	"aurum/pkg/platform/tx"
	"aurum/pkg/testutil"
	"aurum/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	runner   *tx.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.runner = tx.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "redemption_requests"))
}

func (s *PostgresStoreSuite) request(user id.Address, reqID id.RequestID) *models.Request {
	r, err := models.NewRequest(testutil.ProgramID, user, reqID, 100, testutil.FixedTime)
	s.Require().NoError(err)
	return r
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	user := testutil.Address("holder")
	r := s.request(user, math.MaxUint64)

	s.Require().NoError(s.store.Create(ctx, r))
	s.ErrorIs(s.store.Create(ctx, r), sentinel.ErrAlreadyExists)

	got, err := s.store.FindByKey(ctx, r.Key())
	s.Require().NoError(err)
	s.Equal(id.RequestID(math.MaxUint64), got.RequestID)
	s.Equal(r.Delegate, got.Delegate)
	s.Equal(models.StatusPending, got.Status)
	s.True(got.CompletedAt.IsZero())
	s.True(testutil.FixedTime.Equal(got.RequestedAt))

	_, err = s.store.FindByKey(ctx, models.Key{User: user, RequestID: 1})
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestOpenLookupFollowsStatus() {
	ctx := context.Background()
	user := testutil.Address("holder")
	r := s.request(user, 1)
	s.Require().NoError(s.store.Create(ctx, r))

	s.Require().NoError(r.StartProcessing())
	s.Require().NoError(s.store.Update(ctx, r))
	open, err := s.store.FindOpenByUser(ctx, user)
	s.Require().NoError(err)
	s.Equal(models.StatusProcessing, open.Status)

	s.Require().NoError(r.Fulfill(testutil.FixedTime.Add(time.Hour)))
	s.Require().NoError(s.store.Update(ctx, r))
	_, err = s.store.FindOpenByUser(ctx, user)
	s.ErrorIs(err, sentinel.ErrNotFound)

	list, err := s.store.ListByUser(ctx, user)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.False(list[0].CompletedAt.IsZero())
}

func (s *PostgresStoreSuite) TestDeleteRollsBackWithTransaction() {
	ctx := context.Background()
	user := testutil.Address("holder")
	r := s.request(user, 1)
	s.Require().NoError(s.store.Create(ctx, r))

	boom := errors.New("boom")
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		s.Require().NoError(s.store.Delete(ctx, r.Key()))
		return boom
	})
	s.ErrorIs(err, boom)

	_, err = s.store.FindByKey(ctx, r.Key())
	s.NoError(err)

	s.Require().NoError(s.store.Delete(ctx, r.Key()))
	s.ErrorIs(s.store.Delete(ctx, r.Key()), sentinel.ErrNotFound)
}

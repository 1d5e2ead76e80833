//go:build integration

package store_test

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"aurum/internal/registry/models"
	"aurum/internal/registry/store"
	id "aurum/pkg/domain"
	"aurum/pkg/platform/sentinel"
	"aurum/pkg/testutil"
	"aurum/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
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
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "token_config"))
}

func (s *PostgresStoreSuite) config() *models.Config {
	roles := testutil.DefaultRoles()
	return &models.Config{
		Program:          testutil.ProgramID,
		Admin:            roles.Admin,
		SupplyController: roles.SupplyController,
		AssetProtection:  roles.AssetProtection,
		FeeController:    roles.FeeController,
		Mint:             id.MintAddress(testutil.ProgramID),
		Gatekeeper:       testutil.GatekeeperID,
		CreatedAt:        testutil.FixedTime,
		UpdatedAt:        testutil.FixedTime,
	}
}

func (s *PostgresStoreSuite) TestCreateOnce() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.config()))
	s.ErrorIs(s.store.Create(ctx, s.config()), sentinel.ErrAlreadyExists)

	got, err := s.store.Get(ctx, testutil.ProgramID)
	s.Require().NoError(err)
	s.Equal(testutil.DefaultRoles().AssetProtection, got.AssetProtection)
	s.Zero(got.RedemptionRequestCounter)
	s.False(got.IsPaused)

	_, err = s.store.Get(ctx, testutil.GatekeeperID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUpdateLeavesCounterAlone() {
	ctx := context.Background()
	cfg := s.config()
	s.Require().NoError(s.store.Create(ctx, cfg))
	s.Require().NoError(s.store.AdvanceCounter(ctx, cfg.Program, 0, 1))

	cfg.IsPaused = true
	cfg.FeeController = testutil.Address("new-fee-controller")
	s.Require().NoError(s.store.Update(ctx, cfg))

	got, err := s.store.Get(ctx, cfg.Program)
	s.Require().NoError(err)
	s.True(got.IsPaused)
	s.Equal(testutil.Address("new-fee-controller"), got.FeeController)
	s.Equal(uint64(1), got.RedemptionRequestCounter)
}

func (s *PostgresStoreSuite) TestAdvanceCounterNearMax() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.config()))
	s.Require().NoError(s.store.AdvanceCounter(ctx, testutil.ProgramID, 0, math.MaxUint64))

	got, err := s.store.Get(ctx, testutil.ProgramID)
	s.Require().NoError(err)
	s.Equal(uint64(math.MaxUint64), got.RedemptionRequestCounter)
}

// Concurrent writers racing from the same expected value: exactly one wins.
func (s *PostgresStoreSuite) TestAdvanceCounterCompareAndSwap() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.config()))

	const writers = 20
	var wins, stale atomic.Int32
	var wg sync.WaitGroup
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			switch err := s.store.AdvanceCounter(ctx, testutil.ProgramID, 0, 1); err {
			case nil:
				wins.Add(1)
			case sentinel.ErrStale:
				stale.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load())
	s.Equal(int32(writers-1), stale.Load())
}

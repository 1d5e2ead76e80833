//go:build integration

package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"aurum/internal/platform/config"
	"aurum/internal/platform/kafka/consumer"
	"aurum/internal/redemption/models"
	registry "aurum/internal/registry/service"
	id "aurum/pkg/domain"
	dErrors "aurum/pkg/domain-errors"
	"aurum/pkg/testutil"
	"aurum/pkg/testutil/containers"
)

// AppSuite drives the wired services against a real Postgres, Redis and
// Kafka so every store runs inside the shared SQL transaction and the relay
// publishes to the event topic.
type AppSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	kafka    *containers.KafkaContainer
	infra    *infra
	app      *app
	roles    testutil.Roles
}

func TestAppSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(AppSuite))
}

func (s *AppSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	rc := mgr.GetRedis(s.T())
	s.kafka = mgr.GetKafka(s.T())

	cfg, err := config.Load()
	s.Require().NoError(err)
	cfg.Database.URL = s.postgres.DSN
	cfg.Redis.URL = rc.Addr
	cfg.Kafka = s.kafka.Config()
	cfg.Token.ProgramID = testutil.ProgramID
	cfg.Token.GatekeeperID = testutil.GatekeeperID

	log := slog.New(slog.DiscardHandler)
	s.infra, err = openInfra(context.Background(), cfg, log)
	s.Require().NoError(err)
	s.T().Cleanup(s.infra.Close)

	s.app, err = buildApp(context.Background(), cfg, s.infra, log)
	s.Require().NoError(err)
	s.roles = testutil.DefaultRoles()
}

func (s *AppSuite) SetupTest() {
	ctx := testutil.Context()
	s.Require().NoError(s.postgres.TruncateAll(ctx))
	_, err := s.app.registry.Initialize(ctx, s.roles.Admin, registry.InitParams{
		Admin:            s.roles.Admin,
		SupplyController: s.roles.SupplyController,
		AssetProtection:  s.roles.AssetProtection,
		FeeController:    s.roles.FeeController,
	})
	s.Require().NoError(err)
}

func (s *AppSuite) balance(owner id.Address) uint64 {
	acct, err := s.app.treasury.AccountOf(testutil.Context(), owner)
	s.Require().NoError(err)
	return acct.Amount
}

func (s *AppSuite) outboxEvents() []string {
	rows, err := s.postgres.DB.QueryContext(context.Background(), `SELECT event_type FROM outbox ORDER BY seq`)
	s.Require().NoError(err)
	defer rows.Close()
	var out []string
	for rows.Next() {
		var t string
		s.Require().NoError(rows.Scan(&t))
		out = append(out, t)
	}
	s.Require().NoError(rows.Err())
	return out
}

func (s *AppSuite) TestRedemptionLifecycle() {
	ctx := testutil.Context()
	user := testutil.Address("holder")

	_, err := s.app.treasury.MintTokens(ctx, s.roles.SupplyController, user, 150)
	s.Require().NoError(err)

	req, err := s.app.redemption.RequestRedemption(ctx, user, 100)
	s.Require().NoError(err)
	s.Equal(id.RequestID(1), req.RequestID)

	acct, err := s.app.treasury.AccountOf(ctx, user)
	s.Require().NoError(err)
	s.Equal(req.Delegate, acct.Delegate)
	s.Equal(uint64(100), acct.DelegatedAmount)

	_, err = s.app.redemption.Fulfill(ctx, s.roles.SupplyController, req.Key())
	s.Require().NoError(err)
	s.Equal(uint64(50), s.balance(user))

	mint, err := s.app.treasury.Mint(ctx)
	s.Require().NoError(err)
	s.Equal(uint64(50), mint.Supply)

	_, err = s.app.redemption.Get(ctx, models.Key{User: user, RequestID: 1})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound), "fulfilled records are reclaimed")

	s.Equal([]string{
		"TokenInitialized",
		"TokensMinted",
		"RedemptionRequested",
		"RedemptionFulfilled",
	}, s.outboxEvents())
}

func (s *AppSuite) TestRejectedRequestDoesNotConsumeID() {
	ctx := testutil.Context()
	user := testutil.Address("holder")
	_, err := s.app.treasury.MintTokens(ctx, s.roles.SupplyController, user, 10)
	s.Require().NoError(err)

	_, err = s.app.redemption.RequestRedemption(ctx, user, 11)
	s.True(dErrors.HasCode(err, dErrors.CodeInsufficientBalance))

	req, err := s.app.redemption.RequestRedemption(ctx, user, 10)
	s.Require().NoError(err)
	s.Equal(id.RequestID(1), req.RequestID)
}

func (s *AppSuite) TestBlacklistBlocksTransfersAndAllowsWipe() {
	ctx := testutil.Context()
	user := testutil.Address("holder")
	peer := testutil.Address("peer")
	_, err := s.app.treasury.MintTokens(ctx, s.roles.SupplyController, user, 40)
	s.Require().NoError(err)
	_, err = s.app.treasury.MintTokens(ctx, s.roles.SupplyController, peer, 1)
	s.Require().NoError(err)

	_, err = s.app.compliance.AddToBlacklist(ctx, s.roles.AssetProtection, user)
	s.Require().NoError(err)

	_, err = s.app.treasury.Transfer(ctx, user, peer, 5)
	s.True(dErrors.HasCode(err, dErrors.CodeAddressBlacklisted))
	s.Equal(uint64(40), s.balance(user))

	wiped, err := s.app.compliance.WipeBlacklistedAddress(ctx, s.roles.AssetProtection, user, 40)
	s.Require().NoError(err)
	s.Equal(uint64(40), wiped.Amount)
	s.Equal(uint64(0), s.balance(user))
}

func (s *AppSuite) TestRelayMarksEventsProcessed() {
	ctx := testutil.Context()
	_, err := s.app.treasury.MintTokens(ctx, s.roles.SupplyController, testutil.Address("holder"), 5)
	s.Require().NoError(err)

	n, err := s.app.relay.Poll(context.Background())
	s.Require().NoError(err)
	s.Equal(2, n)

	var pending int
	s.Require().NoError(s.postgres.QueryRow(context.Background(),
		`SELECT count(*) FROM outbox WHERE processed_at IS NULL`).Scan(&pending))
	s.Zero(pending)

	waitCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	got, err := s.kafka.Collect(waitCtx, "app-relay-"+uuid.NewString(), containers.EventsTopic, 1,
		func(m *consumer.Message) bool { return m.Headers["event_type"] == "TokensMinted" })
	s.Require().NoError(err)
	s.Equal("mint", got[0].Headers["aggregate_type"])
	var minted struct {
		Recipient id.Address `json:"recipient"`
		Amount    uint64     `json:"amount"`
	}
	s.Require().NoError(json.Unmarshal(got[0].Value, &minted))
	s.Equal(testutil.Address("holder"), minted.Recipient)
	s.Equal(uint64(5), minted.Amount)
}

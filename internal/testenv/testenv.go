// Package testenv wires an in-memory deployment of the token for service
// and handler tests: ledger, registry, blacklist with its gatekeeper, and
// an outbox that captures every event.
package testenv

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"aurum/internal/compliance/gatekeeper"
	compliancemetrics "aurum/internal/compliance/metrics"
	compliancestore "aurum/internal/compliance/store"
	ledgermetrics "aurum/internal/ledger/metrics"
	ledgermodels "aurum/internal/ledger/models"
	ledger "aurum/internal/ledger/service"
	ledgerstore "aurum/internal/ledger/store"
	registrymodels "aurum/internal/registry/models"
	registry "aurum/internal/registry/service"
	registrystore "aurum/internal/registry/store"
	id "aurum/pkg/domain"
	"aurum/pkg/platform/audit"
	"aurum/pkg/platform/outbox"
	outboxstore "aurum/pkg/platform/outbox/store"
	"aurum/pkg/platform/tx"
	"aurum/pkg/testutil"
)

// Env is one deployed token backed by in-memory stores.
type Env struct {
	t *testing.T

	Ctx       context.Context
	Roles     testutil.Roles
	Runner    *tx.InMemory
	Registry  *registry.Service
	Configs   *registrystore.InMemory
	Ledger    *ledger.Service
	Blacklist *compliancestore.InMemory
	Outbox    *outboxstore.InMemoryStore
	Audit     *audit.Logger
	Mint      id.Address
	Metrics   *prometheus.Registry

	ComplianceMetrics *compliancemetrics.Metrics
}

// New builds and initializes a deployment with the default roles and a
// zero transfer fee.
func New(t *testing.T) *Env {
	return NewWithFee(t, ledgermodels.FeeConfig{})
}

// NewWithFee builds and initializes a deployment charging fee on transfers.
func NewWithFee(t *testing.T, fee ledgermodels.FeeConfig) *Env {
	t.Helper()
	e := &Env{
		t:         t,
		Ctx:       testutil.Context(),
		Roles:     testutil.DefaultRoles(),
		Runner:    tx.NewInMemory(),
		Blacklist: compliancestore.NewInMemory(),
		Outbox:    outboxstore.NewInMemory(),
		Configs:   registrystore.NewInMemory(),
		Metrics:   prometheus.NewRegistry(),
	}
	e.Audit = audit.NewLogger(nil, outbox.NewPublisher(e.Outbox))
	e.ComplianceMetrics = compliancemetrics.New(e.Metrics)
	e.Ledger = ledger.New(ledgerstore.NewInMemory(), e.Runner, ledger.WithMetrics(ledgermetrics.New(e.Metrics)))
	e.Ledger.RegisterHook(testutil.GatekeeperID, gatekeeper.New(e.Blacklist, gatekeeper.WithMetrics(e.ComplianceMetrics)))
	e.Registry = registry.New(e.Configs, e.Ledger, e.Runner, testutil.ProgramID, testutil.GatekeeperID,
		registry.WithAudit(e.Audit))

	cfg, err := e.Registry.Initialize(e.Ctx, e.Roles.Admin, registry.InitParams{
		Admin:            e.Roles.Admin,
		SupplyController: e.Roles.SupplyController,
		AssetProtection:  e.Roles.AssetProtection,
		FeeController:    e.Roles.FeeController,
		Fee:              fee,
	})
	require.NoError(t, err)
	e.Mint = cfg.Mint
	return e
}

// Fund opens owner's account and mints amount into it.
func (e *Env) Fund(owner id.Address, amount uint64) *ledgermodels.Account {
	e.t.Helper()
	acct, err := e.Ledger.OpenAccount(e.Ctx, e.Mint, owner)
	require.NoError(e.t, err)
	if amount > 0 {
		require.NoError(e.t, e.Ledger.MintTo(e.Ctx, acct.Address, id.MintAuthority(testutil.ProgramID), amount))
	}
	return e.Account(owner)
}

// Account returns owner's token account.
func (e *Env) Account(owner id.Address) *ledgermodels.Account {
	e.t.Helper()
	acct, err := e.Ledger.AccountOf(e.Ctx, e.Mint, owner)
	require.NoError(e.t, err)
	return acct
}

// Balance returns owner's balance.
func (e *Env) Balance(owner id.Address) uint64 {
	return e.Account(owner).Amount
}

// Supply returns the mint's total supply.
func (e *Env) Supply() uint64 {
	e.t.Helper()
	m, err := e.Ledger.Mint(e.Ctx, e.Mint)
	require.NoError(e.t, err)
	return m.Supply
}

// Config returns the configuration record.
func (e *Env) Config() *registrymodels.Config {
	e.t.Helper()
	cfg, err := e.Registry.Get(e.Ctx)
	require.NoError(e.t, err)
	return cfg
}

// SetCounter moves the redemption request counter to n.
func (e *Env) SetCounter(n uint64) {
	e.t.Helper()
	require.NoError(e.t, e.Configs.AdvanceCounter(e.Ctx, testutil.ProgramID, e.Config().RedemptionRequestCounter, n))
}

// Pause flips the pause flag as the administrator.
func (e *Env) Pause() {
	e.t.Helper()
	_, err := e.Registry.TogglePause(e.Ctx, e.Roles.Admin)
	require.NoError(e.t, err)
}

// EventTypes lists the event types appended to the outbox, oldest first.
func (e *Env) EventTypes() []string {
	var out []string
	for _, entry := range e.Outbox.All() {
		out = append(out, entry.EventType)
	}
	return out
}

// LastEvent returns the newest outbox entry.
func (e *Env) LastEvent() *outbox.Entry {
	e.t.Helper()
	all := e.Outbox.All()
	require.NotEmpty(e.t, all)
	return all[len(all)-1]
}

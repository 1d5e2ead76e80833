package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"aurum/internal/ledger/metrics"
	"aurum/internal/ledger/models"
	"aurum/internal/ledger/store"
	id "aurum/pkg/domain"
	dErrors "aurum/pkg/domain-errors"
	"aurum/pkg/platform/tx"
	fixtures "aurum/pkg/testutil"
)

type stubHook struct {
	decision models.Decision
	err      error
	calls    []models.Transfer
}

func (h *stubHook) Evaluate(_ context.Context, t models.Transfer) (models.Decision, error) {
	h.calls = append(h.calls, t)
	return h.decision, h.err
}

type LedgerSuite struct {
	suite.Suite
	ctx     context.Context
	store   *store.InMemory
	metrics *metrics.Metrics
	svc     *Service
	hook    *stubHook

	mint      id.Address
	authority id.Address
	seizer    id.Address
	feeAuth   id.Address
	alice     id.Address
	bob       id.Address
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerSuite))
}

func (s *LedgerSuite) SetupTest() {
	s.ctx = fixtures.Context()
	s.store = store.NewInMemory()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.svc = New(s.store, tx.NewInMemory(), WithMetrics(s.metrics))
	s.hook = &stubHook{decision: models.Allow()}
	s.svc.RegisterHook(fixtures.GatekeeperID, s.hook)

	s.mint = id.MintAddress(fixtures.ProgramID)
	s.authority = id.MintAuthority(fixtures.ProgramID)
	s.seizer = fixtures.Address("seizer")
	s.feeAuth = fixtures.Address("fee")
	s.alice = fixtures.Address("alice")
	s.bob = fixtures.Address("bob")

	_, err := s.svc.CreateMint(s.ctx, MintParams{
		Address:           s.mint,
		Decimals:          DefaultDecimals,
		MintAuthority:     s.authority,
		PermanentDelegate: s.seizer,
		HookProgram:       fixtures.GatekeeperID,
		HookAuthority:     s.seizer,
		Fee:               models.FeeConfig{BasisPoints: 100, MaximumFee: 1_000},
		FeeAuthority:      s.feeAuth,
	})
	s.Require().NoError(err)
}

func (s *LedgerSuite) fund(owner id.Address, amount uint64) *models.Account {
	acct, err := s.svc.OpenAccount(s.ctx, s.mint, owner)
	s.Require().NoError(err)
	if amount > 0 {
		s.Require().NoError(s.svc.MintTo(s.ctx, acct.Address, s.authority, amount))
	}
	acct, err = s.svc.Account(s.ctx, acct.Address)
	s.Require().NoError(err)
	return acct
}

func (s *LedgerSuite) supply() uint64 {
	m, err := s.svc.Mint(s.ctx, s.mint)
	s.Require().NoError(err)
	return m.Supply
}

func (s *LedgerSuite) TestCreateMint() {
	s.Run("duplicate mint conflicts", func() {
		_, err := s.svc.CreateMint(s.ctx, MintParams{Address: s.mint, MintAuthority: s.authority})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("fee above 100% rejected", func() {
		_, err := s.svc.CreateMint(s.ctx, MintParams{
			Address:       fixtures.Address("other-mint"),
			MintAuthority: s.authority,
			Fee:           models.FeeConfig{BasisPoints: 10_001},
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *LedgerSuite) TestOpenAccount() {
	first, err := s.svc.OpenAccount(s.ctx, s.mint, s.alice)
	s.Require().NoError(err)
	s.Equal(id.AssociatedAccount(s.alice, s.mint), first.Address)

	again, err := s.svc.OpenAccount(s.ctx, s.mint, s.alice)
	s.Require().NoError(err)
	s.Equal(first.Address, again.Address)

	_, err = s.svc.OpenAccount(s.ctx, fixtures.Address("missing"), s.alice)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *LedgerSuite) TestMintTo() {
	acct := s.fund(s.alice, 500)
	s.Equal(uint64(500), acct.Amount)
	s.Equal(uint64(500), s.supply())

	err := s.svc.MintTo(s.ctx, acct.Address, s.alice, 1)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	err = s.svc.MintTo(s.ctx, acct.Address, s.authority, 0)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidAmount))
	s.InDelta(500, testutil.ToFloat64(s.metrics.TokensMinted), 0)
}

func (s *LedgerSuite) TestApproveAndRevoke() {
	acct := s.fund(s.alice, 100)
	delegate := fixtures.Address("delegate")

	s.Run("only the owner approves", func() {
		err := s.svc.Approve(s.ctx, acct.Address, s.bob, delegate, 10)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("approve replaces earlier delegation", func() {
		s.Require().NoError(s.svc.Approve(s.ctx, acct.Address, s.alice, fixtures.Address("first"), 5))
		s.Require().NoError(s.svc.Approve(s.ctx, acct.Address, s.alice, delegate, 40))
		got, err := s.svc.Account(s.ctx, acct.Address)
		s.Require().NoError(err)
		s.Equal(delegate, got.Delegate)
		s.Equal(uint64(40), got.DelegatedAmount)
		s.Equal(uint64(100), got.Amount, "approval moves nothing")
	})

	s.Run("revoke clears delegation", func() {
		s.Require().NoError(s.svc.Revoke(s.ctx, acct.Address, s.alice))
		got, err := s.svc.Account(s.ctx, acct.Address)
		s.Require().NoError(err)
		s.False(got.HasDelegate())
		s.Zero(got.DelegatedAmount)
	})
}

func (s *LedgerSuite) TestBurn() {
	acct := s.fund(s.alice, 100)
	delegate := fixtures.Address("delegate")
	s.Require().NoError(s.svc.Approve(s.ctx, acct.Address, s.alice, delegate, 30))

	s.Run("stranger cannot burn", func() {
		err := s.svc.Burn(s.ctx, acct.Address, id.OwnerAuthority(s.bob), 1)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("unauthorized reported before balance", func() {
		err := s.svc.Burn(s.ctx, acct.Address, id.OwnerAuthority(s.bob), 1_000)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("delegate burns within allowance", func() {
		err := s.svc.Burn(s.ctx, acct.Address, id.Authority{Kind: id.AuthorityDelegate, Address: delegate}, 31)
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientBalance))

		s.Require().NoError(s.svc.Burn(s.ctx, acct.Address, id.Authority{Kind: id.AuthorityDelegate, Address: delegate}, 30))
		got, err := s.svc.Account(s.ctx, acct.Address)
		s.Require().NoError(err)
		s.Equal(uint64(70), got.Amount)
		s.False(got.HasDelegate(), "spent delegation is cleared")
	})

	s.Run("permanent delegate burns without consent", func() {
		s.Require().NoError(s.svc.Burn(s.ctx, acct.Address, id.SeizureAuthority(s.seizer), 20))
		got, err := s.svc.Account(s.ctx, acct.Address)
		s.Require().NoError(err)
		s.Equal(uint64(50), got.Amount)
		s.Equal(uint64(50), s.supply())
	})

	s.Run("insufficient balance leaves state untouched", func() {
		err := s.svc.Burn(s.ctx, acct.Address, id.OwnerAuthority(s.alice), 51)
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientBalance))
		s.Equal(uint64(50), s.supply())
	})
}

func (s *LedgerSuite) TestTransfer() {
	src := s.fund(s.alice, 10_000)
	dst := s.fund(s.bob, 0)

	s.Run("fee withheld in destination", func() {
		res, err := s.svc.Transfer(s.ctx, TransferParams{
			Source: src.Address, Destination: dst.Address, Authority: id.OwnerAuthority(s.alice), Amount: 1_001,
		})
		s.Require().NoError(err)
		s.Equal(uint64(11), res.Fee, "1% of 1001 rounded up")
		s.Equal(uint64(990), res.NetReceived)

		got, err := s.svc.Account(s.ctx, dst.Address)
		s.Require().NoError(err)
		s.Equal(uint64(990), got.Amount)
		s.Equal(uint64(11), got.WithheldAmount)

		s.Require().Len(s.hook.calls, 1)
		call := s.hook.calls[0]
		s.Equal(s.alice, call.SourceOwner)
		s.Equal(s.bob, call.DestinationOwner)
		s.Equal(s.alice, call.Owner)
	})

	s.Run("deny aborts whole transfer", func() {
		s.hook.decision = models.Deny("source blacklisted")
		before, _ := s.svc.Account(s.ctx, src.Address)
		_, err := s.svc.Transfer(s.ctx, TransferParams{
			Source: src.Address, Destination: dst.Address, Authority: id.OwnerAuthority(s.alice), Amount: 100,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeAddressBlacklisted))
		after, _ := s.svc.Account(s.ctx, src.Address)
		s.Equal(before.Amount, after.Amount)
		got, _ := s.svc.Account(s.ctx, dst.Address)
		s.Equal(uint64(11), got.WithheldAmount, "no fee on a denied transfer")
		s.InDelta(1, testutil.ToFloat64(s.metrics.Transfers.WithLabelValues(outcomeDenied)), 0)
	})

	s.Run("hook error propagates", func() {
		s.hook.decision = models.Allow()
		s.hook.err = dErrors.Unauthorized()
		_, err := s.svc.Transfer(s.ctx, TransferParams{
			Source: src.Address, Destination: dst.Address, Authority: id.OwnerAuthority(s.alice), Amount: 1,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.hook.err = nil
	})

	s.Run("balance checked before the hook", func() {
		calls := len(s.hook.calls)
		_, err := s.svc.Transfer(s.ctx, TransferParams{
			Source: src.Address, Destination: dst.Address, Authority: id.OwnerAuthority(s.alice), Amount: 1 << 40,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientBalance))
		s.Len(s.hook.calls, calls)
	})

	s.Run("self transfer keeps balance minus fee", func() {
		_, err := s.svc.Transfer(s.ctx, TransferParams{
			Source: src.Address, Destination: src.Address, Authority: id.OwnerAuthority(s.alice), Amount: 100,
		})
		s.Require().NoError(err)
		got, _ := s.svc.Account(s.ctx, src.Address)
		s.Equal(uint64(10_000-1_001-1), got.Amount)
		s.Equal(uint64(1), got.WithheldAmount)
	})
}

func (s *LedgerSuite) TestTransfer_WithheldOverflowAborts() {
	src := s.fund(s.alice, 1_000)
	dst := s.fund(s.bob, 0)
	dst.WithheldAmount = math.MaxUint64
	s.Require().NoError(s.store.UpdateAccount(s.ctx, dst))

	_, err := s.svc.Transfer(s.ctx, TransferParams{
		Source: src.Address, Destination: dst.Address, Authority: id.OwnerAuthority(s.alice), Amount: 100,
	})
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	got, err := s.svc.Account(s.ctx, src.Address)
	s.Require().NoError(err)
	s.Equal(uint64(1_000), got.Amount, "source untouched")
	got, err = s.svc.Account(s.ctx, dst.Address)
	s.Require().NoError(err)
	s.Zero(got.Amount)
}

func (s *LedgerSuite) TestTransfer_UnregisteredHookFailsClosed() {
	svc := New(s.store, tx.NewInMemory())
	src := s.fund(s.alice, 10)
	dst := s.fund(s.bob, 0)
	_, err := svc.Transfer(s.ctx, TransferParams{
		Source: src.Address, Destination: dst.Address, Authority: id.OwnerAuthority(s.alice), Amount: 5,
	})
	s.Require().Error(err)
	got, _ := s.svc.Account(s.ctx, src.Address)
	s.Equal(uint64(10), got.Amount)
}

func (s *LedgerSuite) TestFees() {
	src := s.fund(s.alice, 10_000)
	dst := s.fund(s.bob, 0)
	treasury := s.fund(s.feeAuth, 0)
	_, err := s.svc.Transfer(s.ctx, TransferParams{
		Source: src.Address, Destination: dst.Address, Authority: id.OwnerAuthority(s.alice), Amount: 5_000,
	})
	s.Require().NoError(err)

	s.Run("set fee requires fee authority", func() {
		err := s.svc.SetTransferFee(s.ctx, s.mint, s.alice, models.FeeConfig{BasisPoints: 5})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.Require().NoError(s.svc.SetTransferFee(s.ctx, s.mint, s.feeAuth, models.FeeConfig{BasisPoints: 5, MaximumFee: 10}))
		m, _ := s.svc.Mint(s.ctx, s.mint)
		s.Equal(uint16(5), m.Fee.BasisPoints)
	})

	s.Run("harvest from accounts", func() {
		n, err := s.svc.WithdrawWithheldFromAccounts(s.ctx, s.mint, s.feeAuth, treasury.Address, []id.Address{dst.Address, dst.Address, src.Address})
		s.Require().NoError(err)
		s.Equal(uint64(50), n)
		got, _ := s.svc.Account(s.ctx, treasury.Address)
		s.Equal(uint64(50), got.Amount)
		emptied, _ := s.svc.Account(s.ctx, dst.Address)
		s.Zero(emptied.WithheldAmount)
	})

	s.Run("withdraw from mint with nothing withheld", func() {
		n, err := s.svc.WithdrawWithheldFromMint(s.ctx, s.mint, s.feeAuth, treasury.Address)
		s.Require().NoError(err)
		s.Zero(n)
	})

	s.Run("withdraw requires fee authority", func() {
		_, err := s.svc.WithdrawWithheldFromMint(s.ctx, s.mint, s.alice, treasury.Address)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *LedgerSuite) TestHarvestToMint() {
	src := s.fund(s.alice, 10_000)
	dst := s.fund(s.bob, 0)
	treasury := s.fund(s.feeAuth, 0)
	_, err := s.svc.Transfer(s.ctx, TransferParams{
		Source: src.Address, Destination: dst.Address, Authority: id.OwnerAuthority(s.alice), Amount: 5_000,
	})
	s.Require().NoError(err)

	n, err := s.svc.HarvestToMint(s.ctx, s.mint, []id.Address{dst.Address, dst.Address})
	s.Require().NoError(err)
	s.Equal(uint64(50), n)
	m, _ := s.svc.Mint(s.ctx, s.mint)
	s.Equal(uint64(50), m.WithheldAmount)

	n, err = s.svc.WithdrawWithheldFromMint(s.ctx, s.mint, s.feeAuth, treasury.Address)
	s.Require().NoError(err)
	s.Equal(uint64(50), n)
	got, _ := s.svc.Account(s.ctx, treasury.Address)
	s.Equal(uint64(50), got.Amount)
	m, _ = s.svc.Mint(s.ctx, s.mint)
	s.Zero(m.WithheldAmount)
}

func (s *LedgerSuite) TestSetAuthority() {
	next := fixtures.Address("next-seizer")

	err := s.svc.SetAuthority(s.ctx, s.mint, PermanentDelegate, s.alice, next)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	s.Require().NoError(s.svc.SetAuthority(s.ctx, s.mint, PermanentDelegate, s.seizer, next))
	acct := s.fund(s.alice, 10)
	err = s.svc.Burn(s.ctx, acct.Address, id.SeizureAuthority(s.seizer), 1)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized), "rotated-out delegate loses the power")
	s.NoError(s.svc.Burn(s.ctx, acct.Address, id.SeizureAuthority(next), 1))

	err = s.svc.SetAuthority(s.ctx, s.mint, MintAuthorityType("bogus"), s.seizer, next)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *LedgerSuite) TestJoinsCallerTransaction() {
	runner := tx.NewInMemory()
	svc := New(s.store, runner)
	acct := s.fund(s.alice, 10)
	boom := errors.New("boom")

	err := runner.RunInTx(s.ctx, func(ctx context.Context) error {
		s.Require().NoError(svc.MintTo(ctx, acct.Address, s.authority, 90))
		return boom
	})
	s.ErrorIs(err, boom)
	got, _ := s.svc.Account(s.ctx, acct.Address)
	s.Equal(uint64(10), got.Amount)
	s.Equal(uint64(10), s.supply())
}

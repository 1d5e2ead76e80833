package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"

	compliancemodels "aurum/internal/compliance/models"
	ledgermodels "aurum/internal/ledger/models"
	ledger "aurum/internal/ledger/service"
	"aurum/internal/testenv"
	"aurum/internal/treasury/service"
	"aurum/pkg/platform/httputil"
	"aurum/pkg/platform/validation"
	"aurum/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	env    *testenv.Env
	router http.Handler

	controller testutil.Keypair
	feeCtl     testutil.Keypair
	alice      testutil.Keypair
	bob        testutil.Keypair
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.env = testenv.NewWithFee(s.T(), ledgermodels.FeeConfig{BasisPoints: 100, MaximumFee: 1_000})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := testutil.NewSignedRouter(logger)
	New(service.New(s.env.Registry, s.env.Ledger, s.env.Runner, service.WithAudit(s.env.Audit)), logger).Register(r)
	s.router = r
	s.controller = testutil.NewKeypair("supply-controller")
	s.feeCtl = testutil.NewKeypair("fee-controller")
	s.alice = testutil.NewKeypair("alice")
	s.bob = testutil.NewKeypair("bob")
}

func (s *HandlerSuite) mint(to testutil.Keypair, amount uint64) {
	rec := testutil.DoJSON(s.router, http.MethodPost, "/v1/supply/mint", s.controller,
		map[string]any{"recipient": to.Address, "amount": amount})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
}

func (s *HandlerSuite) account(owner testutil.Keypair) AccountResponse {
	rec := testutil.DoJSON(s.router, http.MethodGet, "/v1/accounts/"+owner.Address.String(), s.alice, nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var body AccountResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (s *HandlerSuite) TestMintAndRead() {
	s.mint(s.alice, 500)

	acct := s.account(s.alice)
	s.Equal(uint64(500), acct.Amount)
	s.Nil(acct.Delegate)

	rec := testutil.DoJSON(s.router, http.MethodGet, "/v1/mint", s.alice, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var m MintResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &m))
	s.Equal(uint64(500), m.Supply)
	s.Equal(uint8(ledger.DefaultDecimals), m.Decimals)
}

func (s *HandlerSuite) TestMint_Errors() {
	rec := testutil.DoJSON(s.router, http.MethodPost, "/v1/supply/mint", s.alice,
		map[string]any{"recipient": s.alice.Address, "amount": 1})
	s.Equal(http.StatusForbidden, rec.Code)

	rec = testutil.DoJSON(s.router, http.MethodPost, "/v1/supply/mint", s.controller,
		map[string]any{"recipient": s.alice.Address, "amount": 0})
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	var body httputil.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal("invalid_amount", body.Error)

	rec = testutil.DoJSON(s.router, http.MethodPost, "/v1/supply/mint", s.controller, map[string]any{"amount": 5})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestTransferAndFees() {
	s.mint(s.alice, 10_000)
	s.mint(s.bob, 1)
	s.mint(s.feeCtl, 1)

	rec := testutil.DoJSON(s.router, http.MethodPost, "/v1/transfers", s.alice,
		map[string]any{"recipient": s.bob.Address, "amount": 1_001})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var res ledger.TransferResult
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &res))
	s.Equal(uint64(11), res.Fee)
	bob := s.account(s.bob)
	s.Equal(uint64(11), bob.WithheldAmount)

	rec = testutil.DoJSON(s.router, http.MethodPost, "/v1/fees/harvest", s.alice,
		map[string]any{"sources": []any{bob.Address}})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	treasury := s.account(s.feeCtl)
	rec = testutil.DoJSON(s.router, http.MethodPost, "/v1/fees/withdraw/mint", s.feeCtl,
		map[string]any{"destination": treasury.Address})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal(uint64(12), s.account(s.feeCtl).Amount)

	rec = testutil.DoJSON(s.router, http.MethodPut, "/v1/fees", s.feeCtl,
		map[string]any{"transfer_fee_basis_points": 0, "maximum_fee": 0})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = testutil.DoJSON(s.router, http.MethodPut, "/v1/fees", s.alice,
		map[string]any{"transfer_fee_basis_points": 0, "maximum_fee": 0})
	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *HandlerSuite) TestTransfer_ToBlacklisted() {
	s.mint(s.alice, 100)
	s.mint(s.bob, 1)
	s.Require().NoError(s.env.Blacklist.Add(s.env.Ctx, blacklistEntry(s.bob)))

	rec := testutil.DoJSON(s.router, http.MethodPost, "/v1/transfers", s.alice,
		map[string]any{"recipient": s.bob.Address, "amount": 10})
	s.Equal(http.StatusForbidden, rec.Code)
	s.Contains(rec.Body.String(), "address_blacklisted")
	s.Equal(uint64(100), s.account(s.alice).Amount)
}

func (s *HandlerSuite) TestHarvest_SourceLimits() {
	rec := testutil.DoJSON(s.router, http.MethodPost, "/v1/fees/harvest", s.alice,
		map[string]any{"sources": []any{}})
	s.Equal(http.StatusBadRequest, rec.Code)

	sources := make([]any, validation.MaxSourceAccounts+1)
	for i := range sources {
		sources[i] = testutil.Address(fmt.Sprintf("source-%d", i))
	}
	rec = testutil.DoJSON(s.router, http.MethodPost, "/v1/fees/harvest", s.alice,
		map[string]any{"sources": sources})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "too many sources")
}

func (s *HandlerSuite) TestAccount_BadOwner() {
	rec := testutil.DoJSON(s.router, http.MethodGet, "/v1/accounts/xyz", s.alice, nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func blacklistEntry(kp testutil.Keypair) *compliancemodels.Entry {
	return &compliancemodels.Entry{Address: kp.Address, CreatedAt: testutil.FixedTime}
}

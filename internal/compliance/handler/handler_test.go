package handler

//go:generate mockgen -source=handler.go -destination=mocks/handler_mock.go -package=mocks Service

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"aurum/internal/compliance/handler/mocks"
	"aurum/internal/compliance/models"
	dErrors "aurum/pkg/domain-errors"
	"aurum/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	mockService *mocks.MockService
	router      http.Handler
	officer     testutil.Keypair
	target      testutil.Keypair
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockService = mocks.NewMockService(s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := testutil.NewSignedRouter(logger)
	New(s.mockService, logger).Register(r)
	s.router = r
	s.officer = testutil.NewKeypair("asset-protection")
	s.target = testutil.NewKeypair("x")
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlerSuite) TestAdd() {
	s.mockService.EXPECT().
		AddToBlacklist(gomock.Any(), s.officer.Address, s.target.Address).
		Return(&models.Entry{Address: s.target.Address}, nil)

	rec := testutil.DoJSON(s.router, http.MethodPost, "/v1/blacklist", s.officer,
		map[string]any{"address": s.target.Address})
	s.Equal(http.StatusCreated, rec.Code)
}

func (s *HandlerSuite) TestAdd_MissingAddress() {
	rec := testutil.DoJSON(s.router, http.MethodPost, "/v1/blacklist", s.officer, map[string]any{})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestRemove_NotListed() {
	s.mockService.EXPECT().
		RemoveFromBlacklist(gomock.Any(), s.officer.Address, s.target.Address).
		Return(dErrors.AddressNotBlacklisted())

	rec := testutil.DoJSON(s.router, http.MethodDelete, "/v1/blacklist/"+s.target.Address.String(), s.officer, nil)
	s.Equal(http.StatusNotFound, rec.Code)
	s.Contains(rec.Body.String(), "address_not_blacklisted")
}

func (s *HandlerSuite) TestRemove_BadAddress() {
	rec := testutil.DoJSON(s.router, http.MethodDelete, "/v1/blacklist/zz", s.officer, nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestStatus() {
	s.mockService.EXPECT().IsBlacklisted(gomock.Any(), s.target.Address).Return(true, nil)

	rec := testutil.DoJSON(s.router, http.MethodGet, "/v1/blacklist/"+s.target.Address.String(), s.officer, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var body StatusResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.True(body.Blacklisted)
}

func (s *HandlerSuite) TestWipe() {
	s.Run("success", func() {
		s.mockService.EXPECT().
			WipeBlacklistedAddress(gomock.Any(), s.officer.Address, s.target.Address, uint64(25)).
			Return(&models.TokensWiped{Address: s.target.Address, Amount: 25}, nil)
		rec := testutil.DoJSON(s.router, http.MethodPost, "/v1/wipe", s.officer,
			map[string]any{"address": s.target.Address, "amount": 25})
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("insufficient balance maps to 422", func() {
		s.mockService.EXPECT().
			WipeBlacklistedAddress(gomock.Any(), s.officer.Address, s.target.Address, uint64(99)).
			Return(nil, dErrors.InsufficientBalance())
		rec := testutil.DoJSON(s.router, http.MethodPost, "/v1/wipe", s.officer,
			map[string]any{"address": s.target.Address, "amount": 99})
		s.Equal(http.StatusUnprocessableEntity, rec.Code)
	})
}

package handler

//go:generate mockgen -source=handler.go -destination=mocks/handler_mock.go -package=mocks Service

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"aurum/internal/redemption/handler/mocks"
	"aurum/internal/redemption/models"
	id "aurum/pkg/domain"
	dErrors "aurum/pkg/domain-errors"
	"aurum/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	mockService *mocks.MockService
	router      http.Handler
	user        testutil.Keypair
	controller  testutil.Keypair
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
	s.user = testutil.NewKeypair("user")
	s.controller = testutil.NewKeypair("supply-controller")
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlerSuite) path(suffix string) string {
	return "/v1/redemptions/" + s.user.Address.String() + suffix
}

func (s *HandlerSuite) TestRequest() {
	s.mockService.EXPECT().
		RequestRedemption(gomock.Any(), s.user.Address, uint64(100)).
		Return(&models.Request{User: s.user.Address, RequestID: 1, Amount: 100, Status: models.StatusPending}, nil)

	rec := testutil.DoJSON(s.router, http.MethodPost, "/v1/redemptions", s.user, map[string]any{"amount": 100})
	s.Require().Equal(http.StatusCreated, rec.Code)

	var body models.Request
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal(id.RequestID(1), body.RequestID)
	s.Equal(models.StatusPending, body.Status)
}

func (s *HandlerSuite) TestRequest_Paused() {
	s.mockService.EXPECT().
		RequestRedemption(gomock.Any(), s.user.Address, uint64(5)).
		Return(nil, dErrors.ContractPaused())

	rec := testutil.DoJSON(s.router, http.MethodPost, "/v1/redemptions", s.user, map[string]any{"amount": 5})
	s.Equal(http.StatusConflict, rec.Code)
	s.Contains(rec.Body.String(), "contract_paused")
}

func (s *HandlerSuite) TestRequest_Unsigned() {
	req := httptest.NewRequest(http.MethodPost, "/v1/redemptions", strings.NewReader(`{"amount":5}`))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlerSuite) TestTransitions() {
	key := models.Key{User: s.user.Address, RequestID: 7}
	tests := []struct {
		name   string
		suffix string
		signer testutil.Keypair
		expect func() *gomock.Call
		status int
	}{
		{"processing", "/7/processing", s.controller, func() *gomock.Call {
			return s.mockService.EXPECT().SetProcessing(gomock.Any(), s.controller.Address, key)
		}, http.StatusOK},
		{"fulfill", "/7/fulfill", s.controller, func() *gomock.Call {
			return s.mockService.EXPECT().Fulfill(gomock.Any(), s.controller.Address, key)
		}, http.StatusOK},
		{"cancel", "/7/cancel", s.user, func() *gomock.Call {
			return s.mockService.EXPECT().Cancel(gomock.Any(), s.user.Address, key)
		}, http.StatusOK},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			tt.expect().Return(&models.Request{User: key.User, RequestID: 7}, nil)
			rec := testutil.DoJSON(s.router, http.MethodPost, s.path(tt.suffix), tt.signer, nil)
			s.Equal(tt.status, rec.Code)
		})
	}
}

func (s *HandlerSuite) TestCancel_NotPending() {
	s.mockService.EXPECT().
		Cancel(gomock.Any(), s.user.Address, models.Key{User: s.user.Address, RequestID: 1}).
		Return(nil, dErrors.InvalidRequestStatus())

	rec := testutil.DoJSON(s.router, http.MethodPost, s.path("/1/cancel"), s.user, nil)
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	s.Contains(rec.Body.String(), "invalid_request_status")
}

func (s *HandlerSuite) TestFulfill_WrongRole() {
	s.mockService.EXPECT().
		Fulfill(gomock.Any(), s.user.Address, gomock.Any()).
		Return(nil, dErrors.Unauthorized())

	rec := testutil.DoJSON(s.router, http.MethodPost, s.path("/1/fulfill"), s.user, nil)
	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *HandlerSuite) TestBadPath() {
	rec := testutil.DoJSON(s.router, http.MethodPost, s.path("/0/fulfill"), s.controller, nil)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = testutil.DoJSON(s.router, http.MethodGet, "/v1/redemptions/nothex", s.controller, nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestGetAndList() {
	key := models.Key{User: s.user.Address, RequestID: 2}
	s.mockService.EXPECT().Get(gomock.Any(), key).Return(nil, dErrors.New(dErrors.CodeNotFound, "redemption request not found"))
	rec := testutil.DoJSON(s.router, http.MethodGet, s.path("/2"), s.user, nil)
	s.Equal(http.StatusNotFound, rec.Code)

	s.mockService.EXPECT().ListByUser(gomock.Any(), s.user.Address).
		Return([]*models.Request{{User: s.user.Address, RequestID: 3, Amount: 9}}, nil)
	rec = testutil.DoJSON(s.router, http.MethodGet, s.path(""), s.user, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var body ListResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Len(body.Requests, 1)
}

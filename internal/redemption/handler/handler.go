package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aurum/internal/redemption/models"
	id "aurum/pkg/domain"
	dErrors "aurum/pkg/domain-errors"
	"aurum/pkg/platform/httputil"
	"aurum/pkg/requestcontext"
)

// Service is the redemption surface the handler needs.
type Service interface {
	RequestRedemption(ctx context.Context, user id.Address, amount uint64) (*models.Request, error)
	SetProcessing(ctx context.Context, signer id.Address, key models.Key) (*models.Request, error)
	Fulfill(ctx context.Context, signer id.Address, key models.Key) (*models.Request, error)
	Cancel(ctx context.Context, signer id.Address, key models.Key) (*models.Request, error)
	Get(ctx context.Context, key models.Key) (*models.Request, error)
	ListByUser(ctx context.Context, user id.Address) ([]*models.Request, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/redemptions", h.HandleRequest)
	r.Get("/v1/redemptions/{user}", h.HandleList)
	r.Get("/v1/redemptions/{user}/{id}", h.HandleGet)
	r.Post("/v1/redemptions/{user}/{id}/processing", h.HandleSetProcessing)
	r.Post("/v1/redemptions/{user}/{id}/fulfill", h.HandleFulfill)
	r.Post("/v1/redemptions/{user}/{id}/cancel", h.HandleCancel)
}

// RedemptionRequest is submitted by the token holder. Amount is checked by
// the service so the zero case reports InvalidAmount.
type RedemptionRequest struct {
	Amount uint64 `json:"amount"`
}

type ListResponse struct {
	User     id.Address        `json:"user"`
	Requests []*models.Request `json:"requests"`
}

// HandleRequest opens a redemption for the signer.
func (h *Handler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	signer, err := httputil.RequireSigner(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[RedemptionRequest](w, r, h.logger)
	if !ok {
		return
	}
	created, err := h.service.RequestRedemption(ctx, signer, req.Amount)
	if err != nil {
		h.logger.ErrorContext(ctx, "request redemption failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, err := id.ParseAddress(chi.URLParam(r, "user"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user address"))
		return
	}
	reqs, err := h.service.ListByUser(r.Context(), user)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse{User: user, Requests: reqs})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	key, ok := h.pathKey(w, r)
	if !ok {
		return
	}
	req, err := h.service.Get(r.Context(), key)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) HandleSetProcessing(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "set redemption processing", h.service.SetProcessing)
}

func (h *Handler) HandleFulfill(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "fulfill redemption", h.service.Fulfill)
}

func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "cancel redemption", h.service.Cancel)
}

type transitionFunc func(ctx context.Context, signer id.Address, key models.Key) (*models.Request, error)

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op string, fn transitionFunc) {
	ctx := r.Context()
	signer, err := httputil.RequireSigner(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	key, ok := h.pathKey(w, r)
	if !ok {
		return
	}
	req, err := fn(ctx, signer, key)
	if err != nil {
		h.logger.ErrorContext(ctx, op+" failed", "error", err,
			"user", key.User.String(), "redemption_id", key.RequestID.String(),
			"request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) pathKey(w http.ResponseWriter, r *http.Request) (models.Key, bool) {
	user, err := id.ParseAddress(chi.URLParam(r, "user"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user address"))
		return models.Key{}, false
	}
	requestID, err := id.ParseRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return models.Key{}, false
	}
	return models.Key{User: user, RequestID: requestID}, true
}

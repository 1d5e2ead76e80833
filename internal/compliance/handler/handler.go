package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aurum/internal/compliance/models"
	id "aurum/pkg/domain"
	dErrors "aurum/pkg/domain-errors"
	"aurum/pkg/platform/httputil"
	"aurum/pkg/requestcontext"
)

// Service is the compliance surface the handler needs.
type Service interface {
	AddToBlacklist(ctx context.Context, signer, addr id.Address) (*models.Entry, error)
	RemoveFromBlacklist(ctx context.Context, signer, addr id.Address) error
	IsBlacklisted(ctx context.Context, addr id.Address) (bool, error)
	List(ctx context.Context) ([]*models.Entry, error)
	WipeBlacklistedAddress(ctx context.Context, signer, addr id.Address, amount uint64) (*models.TokensWiped, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/blacklist", h.HandleAdd)
	r.Get("/v1/blacklist", h.HandleList)
	r.Get("/v1/blacklist/{address}", h.HandleStatus)
	r.Delete("/v1/blacklist/{address}", h.HandleRemove)
	r.Post("/v1/wipe", h.HandleWipe)
}

type AddressRequest struct {
	Address id.Address `json:"address"`
}

func (r *AddressRequest) Validate() error {
	if r == nil || r.Address.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "address is required")
	}
	return nil
}

type WipeRequest struct {
	Address id.Address `json:"address"`
	Amount  uint64     `json:"amount"`
}

// Validate checks shape only. A zero amount reaches the service so the
// role check is reported first.
func (r *WipeRequest) Validate() error {
	if r == nil || r.Address.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "address is required")
	}
	return nil
}

type StatusResponse struct {
	Address     id.Address `json:"address"`
	Blacklisted bool       `json:"blacklisted"`
}

type ListResponse struct {
	Entries []*models.Entry `json:"entries"`
}

// HandleAdd blacklists an address.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	signer, err := httputil.RequireSigner(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[AddressRequest](w, r, h.logger)
	if !ok {
		return
	}
	entry, err := h.service.AddToBlacklist(ctx, signer, req.Address)
	if err != nil {
		h.logger.ErrorContext(ctx, "add to blacklist failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, entry)
}

// HandleRemove delists the address in the path.
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	signer, err := httputil.RequireSigner(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	addr, ok := h.pathAddress(w, r)
	if !ok {
		return
	}
	if err := h.service.RemoveFromBlacklist(ctx, signer, addr); err != nil {
		h.logger.ErrorContext(ctx, "remove from blacklist failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleStatus reports whether the address in the path is listed.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	addr, ok := h.pathAddress(w, r)
	if !ok {
		return
	}
	listed, err := h.service.IsBlacklisted(r.Context(), addr)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{Address: addr, Blacklisted: listed})
}

// HandleList returns every listed address.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse{Entries: entries})
}

// HandleWipe burns tokens held by a blacklisted address.
func (h *Handler) HandleWipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	signer, err := httputil.RequireSigner(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[WipeRequest](w, r, h.logger)
	if !ok {
		return
	}
	evt, err := h.service.WipeBlacklistedAddress(ctx, signer, req.Address, req.Amount)
	if err != nil {
		h.logger.ErrorContext(ctx, "wipe failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, evt)
}

func (h *Handler) pathAddress(w http.ResponseWriter, r *http.Request) (id.Address, bool) {
	addr, err := id.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid address"))
		return id.Address{}, false
	}
	return addr, true
}

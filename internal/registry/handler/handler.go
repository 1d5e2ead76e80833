package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aurum/internal/registry/models"
	"aurum/internal/registry/service"
	id "aurum/pkg/domain"
	"aurum/pkg/platform/httputil"
	"aurum/pkg/requestcontext"
)

// Service is the registry surface the handler needs.
type Service interface {
	Initialize(ctx context.Context, signer id.Address, p service.InitParams) (*models.Config, error)
	Get(ctx context.Context) (*models.Config, error)
	UpdateRole(ctx context.Context, signer id.Address, role models.Role, holder id.Address) (*models.Config, error)
	TogglePause(ctx context.Context, signer id.Address) (*models.Config, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts configuration routes. Every route expects an authenticated signer.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/config/initialize", h.HandleInitialize)
	r.Get("/v1/config", h.HandleGet)
	r.Put("/v1/config/roles/{role}", h.HandleUpdateRole)
	r.Post("/v1/config/pause/toggle", h.HandleTogglePause)
}

// HandleInitialize deploys the token.
func (h *Handler) HandleInitialize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	signer, err := httputil.RequireSigner(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[InitializeRequest](w, r, h.logger)
	if !ok {
		return
	}

	cfg, err := h.service.Initialize(ctx, signer, service.InitParams{
		Admin:            req.Admin,
		SupplyController: req.SupplyController,
		AssetProtection:  req.AssetProtection,
		FeeController:    req.FeeController,
		Fee:              req.Fee(),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "initialize failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, cfg)
}

// HandleGet returns the configuration record.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.service.Get(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cfg)
}

// HandleUpdateRole hands the role in the path to a new holder.
func (h *Handler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	signer, err := httputil.RequireSigner(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	role, err := models.ParseRole(normalizeRole(chi.URLParam(r, "role")))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateRoleRequest](w, r, h.logger)
	if !ok {
		return
	}

	cfg, err := h.service.UpdateRole(ctx, signer, role, req.Address)
	if err != nil {
		h.logger.ErrorContext(ctx, "update role failed", "error", err, "role", role,
			"request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cfg)
}

// HandleTogglePause flips the pause flag.
func (h *Handler) HandleTogglePause(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	signer, err := httputil.RequireSigner(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	cfg, err := h.service.TogglePause(ctx, signer)
	if err != nil {
		h.logger.ErrorContext(ctx, "toggle pause failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cfg)
}

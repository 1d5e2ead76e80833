package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	ledgermodels "aurum/internal/ledger/models"
	ledger "aurum/internal/ledger/service"
	"aurum/internal/treasury/models"
	id "aurum/pkg/domain"
	dErrors "aurum/pkg/domain-errors"
	"aurum/pkg/platform/httputil"
	"aurum/pkg/requestcontext"
)

// Service is the supply, fee and transfer surface the handler needs.
type Service interface {
	MintTokens(ctx context.Context, signer, recipient id.Address, amount uint64) (*models.TokensMinted, error)
	SetTransferFee(ctx context.Context, signer id.Address, fee ledgermodels.FeeConfig) (*models.TransferFeeUpdated, error)
	WithdrawWithheldFromMint(ctx context.Context, signer, destination id.Address) (*models.WithheldTokensWithdrawn, error)
	WithdrawWithheldFromAccounts(ctx context.Context, signer, destination id.Address, sources []id.Address) (*models.WithheldTokensWithdrawnFromAccounts, error)
	HarvestWithheld(ctx context.Context, sources []id.Address) (uint64, error)
	Transfer(ctx context.Context, signer, recipient id.Address, amount uint64) (*ledger.TransferResult, error)
	AccountOf(ctx context.Context, owner id.Address) (*ledgermodels.Account, error)
	Mint(ctx context.Context) (*ledgermodels.Mint, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/supply/mint", h.HandleMint)
	r.Get("/v1/mint", h.HandleGetMint)
	r.Put("/v1/fees", h.HandleSetFee)
	r.Post("/v1/fees/harvest", h.HandleHarvest)
	r.Post("/v1/fees/withdraw/mint", h.HandleWithdrawFromMint)
	r.Post("/v1/fees/withdraw/accounts", h.HandleWithdrawFromAccounts)
	r.Post("/v1/transfers", h.HandleTransfer)
	r.Get("/v1/accounts/{owner}", h.HandleAccount)
}

// HandleMint issues new supply. Supply controller only.
func (h *Handler) HandleMint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	signer, err := httputil.RequireSigner(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[MintRequest](w, r, h.logger)
	if !ok {
		return
	}
	evt, err := h.service.MintTokens(ctx, signer, req.Recipient, req.Amount)
	if err != nil {
		h.logger.ErrorContext(ctx, "mint tokens failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, evt)
}

func (h *Handler) HandleGetMint(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.Mint(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toMintResponse(m))
}

// HandleSetFee replaces the transfer fee. Fee controller only.
func (h *Handler) HandleSetFee(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	signer, err := httputil.RequireSigner(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[FeeRequest](w, r, h.logger)
	if !ok {
		return
	}
	evt, err := h.service.SetTransferFee(ctx, signer, req.Fee())
	if err != nil {
		h.logger.ErrorContext(ctx, "set transfer fee failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, evt)
}

func (h *Handler) HandleHarvest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[HarvestRequest](w, r, h.logger)
	if !ok {
		return
	}
	n, err := h.service.HarvestWithheld(ctx, req.Sources)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, HarvestResponse{Harvested: n})
}

func (h *Handler) HandleWithdrawFromMint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	signer, err := httputil.RequireSigner(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[WithdrawRequest](w, r, h.logger)
	if !ok {
		return
	}
	evt, err := h.service.WithdrawWithheldFromMint(ctx, signer, req.Destination)
	if err != nil {
		h.logger.ErrorContext(ctx, "withdraw withheld from mint failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, evt)
}

func (h *Handler) HandleWithdrawFromAccounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	signer, err := httputil.RequireSigner(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[WithdrawRequest](w, r, h.logger)
	if !ok {
		return
	}
	evt, err := h.service.WithdrawWithheldFromAccounts(ctx, signer, req.Destination, req.Sources)
	if err != nil {
		h.logger.ErrorContext(ctx, "withdraw withheld from accounts failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, evt)
}

// HandleTransfer moves tokens from the signer to the recipient.
func (h *Handler) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	signer, err := httputil.RequireSigner(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[TransferRequest](w, r, h.logger)
	if !ok {
		return
	}
	res, err := h.service.Transfer(ctx, signer, req.Recipient, req.Amount)
	if err != nil {
		h.logger.WarnContext(ctx, "transfer failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleAccount(w http.ResponseWriter, r *http.Request) {
	owner, err := id.ParseAddress(chi.URLParam(r, "owner"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid owner address"))
		return
	}
	acct, err := h.service.AccountOf(r.Context(), owner)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAccountResponse(acct))
}

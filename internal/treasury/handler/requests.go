package handler

import (
	"time"

	ledgermodels "aurum/internal/ledger/models"
	id "aurum/pkg/domain"
	dErrors "aurum/pkg/domain-errors"
	"aurum/pkg/platform/validation"
)

// MintRequest issues new supply to Recipient. A zero amount is passed on so
// the role check is reported first.
type MintRequest struct {
	Recipient id.Address `json:"recipient"`
	Amount    uint64     `json:"amount"`
}

func (r *MintRequest) Validate() error {
	if r == nil || r.Recipient.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "recipient is required")
	}
	return nil
}

type FeeRequest struct {
	TransferFeeBasisPoints uint16 `json:"transfer_fee_basis_points"`
	MaximumFee             uint64 `json:"maximum_fee"`
}

func (r *FeeRequest) Fee() ledgermodels.FeeConfig {
	return ledgermodels.FeeConfig{BasisPoints: r.TransferFeeBasisPoints, MaximumFee: r.MaximumFee}
}

type WithdrawRequest struct {
	Destination id.Address   `json:"destination"`
	Sources     []id.Address `json:"sources,omitempty"`
}

func (r *WithdrawRequest) Validate() error {
	if r == nil || r.Destination.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "destination is required")
	}
	return validation.CheckSliceCount("sources", len(r.Sources), validation.MaxSourceAccounts)
}

type HarvestRequest struct {
	Sources []id.Address `json:"sources"`
}

func (r *HarvestRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.CheckRequired("sources", len(r.Sources)); err != nil {
		return err
	}
	return validation.CheckSliceCount("sources", len(r.Sources), validation.MaxSourceAccounts)
}

type TransferRequest struct {
	Recipient id.Address `json:"recipient"`
	Amount    uint64     `json:"amount"`
}

func (r *TransferRequest) Validate() error {
	if r == nil || r.Recipient.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "recipient is required")
	}
	return nil
}

type HarvestResponse struct {
	Harvested uint64 `json:"harvested"`
}

type AccountResponse struct {
	Address         id.Address  `json:"address"`
	Mint            id.Address  `json:"mint"`
	Owner           id.Address  `json:"owner"`
	Amount          uint64      `json:"amount"`
	Delegate        *id.Address `json:"delegate,omitempty"`
	DelegatedAmount uint64      `json:"delegated_amount"`
	WithheldAmount  uint64      `json:"withheld_amount"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

func toAccountResponse(a *ledgermodels.Account) AccountResponse {
	resp := AccountResponse{
		Address:         a.Address,
		Mint:            a.Mint,
		Owner:           a.Owner,
		Amount:          a.Amount,
		DelegatedAmount: a.DelegatedAmount,
		WithheldAmount:  a.WithheldAmount,
		UpdatedAt:       a.UpdatedAt,
	}
	if a.HasDelegate() {
		d := a.Delegate
		resp.Delegate = &d
	}
	return resp
}

type MintResponse struct {
	Address                id.Address `json:"address"`
	Decimals               uint8      `json:"decimals"`
	Supply                 uint64     `json:"supply"`
	TransferFeeBasisPoints uint16     `json:"transfer_fee_basis_points"`
	MaximumFee             uint64     `json:"maximum_fee"`
	WithheldAmount         uint64     `json:"withheld_amount"`
}

func toMintResponse(m *ledgermodels.Mint) MintResponse {
	return MintResponse{
		Address:                m.Address,
		Decimals:               m.Decimals,
		Supply:                 m.Supply,
		TransferFeeBasisPoints: m.Fee.BasisPoints,
		MaximumFee:             m.Fee.MaximumFee,
		WithheldAmount:         m.WithheldAmount,
	}
}

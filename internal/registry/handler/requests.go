package handler

import (
	"strings"

	ledgermodels "aurum/internal/ledger/models"
	id "aurum/pkg/domain"
	dErrors "aurum/pkg/domain-errors"
)

// InitializeRequest names the initial role holders and fee schedule.
type InitializeRequest struct {
	Admin                  id.Address `json:"admin"`
	SupplyController       id.Address `json:"supply_controller"`
	AssetProtection        id.Address `json:"asset_protection"`
	FeeController          id.Address `json:"fee_controller"`
	TransferFeeBasisPoints uint16     `json:"transfer_fee_basis_points"`
	MaximumFee             uint64     `json:"maximum_fee"`
}

func (r *InitializeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Admin.IsZero() || r.SupplyController.IsZero() || r.AssetProtection.IsZero() || r.FeeController.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "admin, supply_controller, asset_protection and fee_controller are required")
	}
	return r.Fee().Validate()
}

func (r *InitializeRequest) Fee() ledgermodels.FeeConfig {
	return ledgermodels.FeeConfig{BasisPoints: r.TransferFeeBasisPoints, MaximumFee: r.MaximumFee}
}

// UpdateRoleRequest names the new holder of the role in the path.
type UpdateRoleRequest struct {
	Address id.Address `json:"address"`
}

func (r *UpdateRoleRequest) Validate() error {
	if r == nil || r.Address.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "address is required")
	}
	return nil
}

func normalizeRole(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
}

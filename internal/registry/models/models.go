// Package models holds the single configuration record of a deployed token:
// its role holders, pause flag, and redemption request counter.
package models

import (
	"math"
	"time"

	id "aurum/pkg/domain"
	dErrors "aurum/pkg/domain-errors"
)

// Role names a privileged identity on the token.
type Role string

const (
	RoleAdmin            Role = "admin"
	RoleSupplyController Role = "supply_controller"
	RoleAssetProtection  Role = "asset_protection"
	RoleFeeController    Role = "fee_controller"
)

// ParseRole accepts the wire names of roles.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleSupplyController, RoleAssetProtection, RoleFeeController:
		return r, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unknown role")
}

// Config is the configuration record of one deployed token. Roles may
// overlap; each is independently settable by the administrator.
type Config struct {
	Program                  id.Address `json:"program"`
	Admin                    id.Address `json:"admin"`
	SupplyController         id.Address `json:"supply_controller"`
	AssetProtection          id.Address `json:"asset_protection"`
	FeeController            id.Address `json:"fee_controller"`
	Mint                     id.Address `json:"mint"`
	Gatekeeper               id.Address `json:"gatekeeper"`
	RedemptionRequestCounter uint64     `json:"redemption_request_counter"`
	IsPaused                 bool       `json:"is_paused"`
	CreatedAt                time.Time  `json:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at"`
}

// Holder returns the address currently holding role.
func (c *Config) Holder(role Role) id.Address {
	switch role {
	case RoleAdmin:
		return c.Admin
	case RoleSupplyController:
		return c.SupplyController
	case RoleAssetProtection:
		return c.AssetProtection
	case RoleFeeController:
		return c.FeeController
	}
	return id.Address{}
}

// Assign sets role to holder and returns the previous holder.
func (c *Config) Assign(role Role, holder id.Address) (id.Address, error) {
	var slot *id.Address
	switch role {
	case RoleAdmin:
		slot = &c.Admin
	case RoleSupplyController:
		slot = &c.SupplyController
	case RoleAssetProtection:
		slot = &c.AssetProtection
	case RoleFeeController:
		slot = &c.FeeController
	default:
		return id.Address{}, dErrors.New(dErrors.CodeInvalidInput, "unknown role")
	}
	old := *slot
	*slot = holder
	return old, nil
}

// Authorize fails with Unauthorized unless signer holds role.
func (c *Config) Authorize(role Role, signer id.Address) error {
	holder := c.Holder(role)
	if holder.IsZero() || holder != signer {
		return dErrors.Unauthorized()
	}
	return nil
}

// EnsureActive fails with ContractPaused while the token is paused.
func (c *Config) EnsureActive() error {
	if c.IsPaused {
		return dErrors.ContractPaused()
	}
	return nil
}

// NextRequestID returns the id the next redemption request receives.
func (c *Config) NextRequestID() (id.RequestID, error) {
	if c.RedemptionRequestCounter == math.MaxUint64 {
		return 0, dErrors.CounterOverflow()
	}
	return id.RequestID(c.RedemptionRequestCounter + 1), nil
}

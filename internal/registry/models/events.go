package models

import (
	"aurum/internal/ledger/models"
	id "aurum/pkg/domain"
	"aurum/pkg/platform/audit"
)

// AggregateToken is the aggregate type of configuration and supply events.
const AggregateToken = "token"

// TokenInitialized is emitted once when the token is deployed.
type TokenInitialized struct {
	Mint             id.Address       `json:"mint"`
	Admin            id.Address       `json:"admin"`
	SupplyController id.Address       `json:"supply_controller"`
	AssetProtection  id.Address       `json:"asset_protection"`
	FeeController    id.Address       `json:"fee_controller"`
	Gatekeeper       id.Address       `json:"gatekeeper"`
	Decimals         uint8            `json:"decimals"`
	Fee              models.FeeConfig `json:"transfer_fee"`
}

func (e TokenInitialized) EventType() string     { return audit.EventTokenInitialized }
func (e TokenInitialized) AggregateType() string { return AggregateToken }
func (e TokenInitialized) AggregateID() string   { return e.Mint.String() }

// RoleUpdated records one role change as an old to new pair.
type RoleUpdated struct {
	Mint     id.Address `json:"mint"`
	Role     Role       `json:"role"`
	Previous id.Address `json:"old"`
	Current  id.Address `json:"new"`
}

func (e RoleUpdated) EventType() string     { return audit.EventRoleUpdated }
func (e RoleUpdated) AggregateType() string { return AggregateToken }
func (e RoleUpdated) AggregateID() string   { return e.Mint.String() }

// PauseToggled carries the pause flag after the toggle.
type PauseToggled struct {
	Mint      id.Address `json:"mint"`
	IsPaused  bool       `json:"is_paused"`
	Authority id.Address `json:"authority"`
}

func (e PauseToggled) EventType() string     { return audit.EventPauseToggled }
func (e PauseToggled) AggregateType() string { return AggregateToken }
func (e PauseToggled) AggregateID() string   { return e.Mint.String() }

// Package models holds blacklist entries and compliance events.
package models

import (
	"time"

	id "aurum/pkg/domain"
	"aurum/pkg/platform/audit"
)

// Entry marks an address as barred from sending or receiving the token.
// Presence is the whole meaning; there is no reason or amount.
type Entry struct {
	Address   id.Address `json:"address"`
	CreatedAt time.Time  `json:"created_at"`
}

// AggregateAddress is the aggregate type of compliance events.
const AggregateAddress = "address"

type AddressBlacklisted struct {
	Address   id.Address `json:"address"`
	Authority id.Address `json:"authority"`
}

func (e AddressBlacklisted) EventType() string     { return audit.EventAddressBlacklisted }
func (e AddressBlacklisted) AggregateType() string { return AggregateAddress }
func (e AddressBlacklisted) AggregateID() string   { return e.Address.String() }

type AddressUnblacklisted struct {
	Address   id.Address `json:"address"`
	Authority id.Address `json:"authority"`
}

func (e AddressUnblacklisted) EventType() string     { return audit.EventAddressUnblacklisted }
func (e AddressUnblacklisted) AggregateType() string { return AggregateAddress }
func (e AddressUnblacklisted) AggregateID() string   { return e.Address.String() }

// TokensWiped records a forced burn from a blacklisted holder.
type TokensWiped struct {
	Address   id.Address `json:"target_user"`
	Account   id.Address `json:"account"`
	Amount    uint64     `json:"amount"`
	Authority id.Address `json:"authority"`
}

func (e TokensWiped) EventType() string     { return audit.EventTokensWiped }
func (e TokensWiped) AggregateType() string { return AggregateAddress }
func (e TokensWiped) AggregateID() string   { return e.Address.String() }

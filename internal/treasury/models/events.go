// Package models holds the events emitted by supply and fee operations.
package models

import (
	id "aurum/pkg/domain"
	"aurum/pkg/platform/audit"
)

// AggregateMint is the aggregate type of supply and fee events.
const AggregateMint = "mint"

// TokensMinted records new supply. To is the recipient's token account.
type TokensMinted struct {
	Mint      id.Address `json:"mint"`
	To        id.Address `json:"to"`
	Amount    uint64     `json:"amount"`
	Authority id.Address `json:"authority"`
	Recipient id.Address `json:"recipient"`
}

func (e TokensMinted) EventType() string     { return audit.EventTokensMinted }
func (e TokensMinted) AggregateType() string { return AggregateMint }
func (e TokensMinted) AggregateID() string   { return e.Mint.String() }

type TransferFeeUpdated struct {
	Mint        id.Address `json:"mint"`
	BasisPoints uint16     `json:"transfer_fee_basis_points"`
	MaximumFee  uint64     `json:"maximum_fee"`
	Authority   id.Address `json:"authority"`
}

func (e TransferFeeUpdated) EventType() string     { return audit.EventTransferFeeUpdated }
func (e TransferFeeUpdated) AggregateType() string { return AggregateMint }
func (e TransferFeeUpdated) AggregateID() string   { return e.Mint.String() }

type WithheldTokensWithdrawn struct {
	Mint        id.Address `json:"mint"`
	Destination id.Address `json:"destination"`
	Amount      uint64     `json:"amount"`
	Authority   id.Address `json:"authority"`
}

func (e WithheldTokensWithdrawn) EventType() string     { return audit.EventWithheldTokensWithdrawn }
func (e WithheldTokensWithdrawn) AggregateType() string { return AggregateMint }
func (e WithheldTokensWithdrawn) AggregateID() string   { return e.Mint.String() }

type WithheldTokensWithdrawnFromAccounts struct {
	Mint           id.Address   `json:"mint"`
	Destination    id.Address   `json:"destination"`
	SourceAccounts []id.Address `json:"source_accounts"`
	Amount         uint64       `json:"amount"`
	Authority      id.Address   `json:"authority"`
}

func (e WithheldTokensWithdrawnFromAccounts) EventType() string {
	return audit.EventWithheldTokensWithdrawnFromAccounts
}
func (e WithheldTokensWithdrawnFromAccounts) AggregateType() string { return AggregateMint }
func (e WithheldTokensWithdrawnFromAccounts) AggregateID() string   { return e.Mint.String() }

// Package models holds the token ledger's state: mints, token accounts, and
// the transfer that a hook is asked to approve.
package models

import (
	"math"
	"math/bits"
	"time"

	id "aurum/pkg/domain"
	dErrors "aurum/pkg/domain-errors"
)

// MaxFeeBasisPoints is 100%.
const MaxFeeBasisPoints = 10_000

// FeeConfig is the mint's transfer-fee schedule.
type FeeConfig struct {
	BasisPoints uint16 `json:"transfer_fee_basis_points"`
	MaximumFee  uint64 `json:"maximum_fee"`
}

// Validate rejects a basis-point rate above 100%.
func (f FeeConfig) Validate() error {
	if f.BasisPoints > MaxFeeBasisPoints {
		return dErrors.New(dErrors.CodeValidation, "transfer fee basis points must be at most 10000")
	}
	return nil
}

// Calculate returns the fee withheld from a transfer of amount: the
// proportional fee rounded up, capped at MaximumFee.
func (f FeeConfig) Calculate(amount uint64) uint64 {
	if f.BasisPoints == 0 || amount == 0 {
		return 0
	}
	bps := min(uint64(f.BasisPoints), MaxFeeBasisPoints)
	hi, lo := bits.Mul64(amount, bps)
	q, r := bits.Div64(hi, lo, MaxFeeBasisPoints)
	if r != 0 {
		q++
	}
	return min(q, f.MaximumFee)
}

// Mint is a token unit and its standing authorities.
type Mint struct {
	Address           id.Address
	Decimals          uint8
	Supply            uint64
	MintAuthority     id.Address
	PermanentDelegate id.Address // may burn from any account of this mint
	HookProgram       id.Address // transfer hook invoked on every transfer
	HookAuthority     id.Address
	Fee               FeeConfig
	FeeAuthority      id.Address // sets the fee and withdraws withheld amounts
	WithheldAmount    uint64     // fees harvested to the mint, not yet withdrawn
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IssueSupply records newly minted tokens.
func (m *Mint) IssueSupply(amount uint64) error {
	if amount > math.MaxUint64-m.Supply {
		return dErrors.New(dErrors.CodeInvariantViolation, "mint supply overflow")
	}
	m.Supply += amount
	return nil
}

// Withhold adds harvested fees to the mint's withheld total.
func (m *Mint) Withhold(amount uint64) error {
	if amount > math.MaxUint64-m.WithheldAmount {
		return dErrors.New(dErrors.CodeInvariantViolation, "withheld amount overflow")
	}
	m.WithheldAmount += amount
	return nil
}

// RetireSupply records burned tokens.
func (m *Mint) RetireSupply(amount uint64) error {
	if amount > m.Supply {
		return dErrors.New(dErrors.CodeInvariantViolation, "burn exceeds supply")
	}
	m.Supply -= amount
	return nil
}

// Account holds one owner's balance of one mint.
type Account struct {
	Address         id.Address
	Mint            id.Address
	Owner           id.Address
	Amount          uint64
	Delegate        id.Address // zero when no delegation is active
	DelegatedAmount uint64
	WithheldAmount  uint64 // transfer fees withheld in this account
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasDelegate reports whether a delegation is active.
func (a *Account) HasDelegate() bool {
	return !a.Delegate.IsZero()
}

// Approve installs delegate for amount, replacing any earlier delegation.
func (a *Account) Approve(delegate id.Address, amount uint64) {
	a.Delegate = delegate
	a.DelegatedAmount = amount
}

// Revoke clears the delegation entirely.
func (a *Account) Revoke() {
	a.Delegate = id.Address{}
	a.DelegatedAmount = 0
}

// Debit removes amount from the balance.
func (a *Account) Debit(amount uint64) error {
	if amount > a.Amount {
		return dErrors.InsufficientBalance()
	}
	a.Amount -= amount
	return nil
}

// Credit adds amount to the balance.
func (a *Account) Credit(amount uint64) error {
	if amount > math.MaxUint64-a.Amount {
		return dErrors.New(dErrors.CodeInvariantViolation, "account balance overflow")
	}
	a.Amount += amount
	return nil
}

// Withhold retains a transfer fee in the account.
func (a *Account) Withhold(fee uint64) error {
	if fee > math.MaxUint64-a.WithheldAmount {
		return dErrors.New(dErrors.CodeInvariantViolation, "withheld amount overflow")
	}
	a.WithheldAmount += fee
	return nil
}

// ConsumeAllowance spends amount of the delegation. A fully spent
// delegation is cleared.
func (a *Account) ConsumeAllowance(amount uint64) error {
	if amount > a.DelegatedAmount {
		return dErrors.InsufficientBalance()
	}
	a.DelegatedAmount -= amount
	if a.DelegatedAmount == 0 {
		a.Delegate = id.Address{}
	}
	return nil
}

// Transfer describes a pending movement of tokens as presented to the
// transfer hook. Owner is the authority that signed the transfer.
type Transfer struct {
	Mint             id.Address
	Source           id.Address
	SourceOwner      id.Address
	Destination      id.Address
	DestinationOwner id.Address
	Owner            id.Address
	Amount           uint64
}

// Decision is a transfer hook's verdict.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow approves a transfer.
func Allow() Decision { return Decision{Allowed: true} }

// Deny rejects a transfer for reason.
func Deny(reason string) Decision { return Decision{Reason: reason} }

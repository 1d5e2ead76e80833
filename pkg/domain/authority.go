package domain

import (
	"crypto/sha256"
	"encoding/binary"
)

const (
	custodySeed       = "redemption_pda"
	accountSeed       = "associated_token_account"
	redemptionSeed    = "redemption_request"
	mintSeed          = "mint"
	mintAuthoritySeed = "mint_authority"
)

// CustodyDelegate derives the keyless authority that holds a redemption's
// locked tokens. The result depends only on its inputs, so every party can
// recompute it and no private key for it exists.
func CustodyDelegate(program, user Address, requestID RequestID) Address {
	return derive(program, []byte(custodySeed), user[:], le64(uint64(requestID)))
}

// RedemptionRecordAddress derives the storage key of a redemption record.
func RedemptionRecordAddress(program, user Address, requestID RequestID) Address {
	return derive(program, []byte(redemptionSeed), user[:], le64(uint64(requestID)))
}

// AssociatedAccount derives the canonical token account of owner for mint.
func AssociatedAccount(owner, mint Address) Address {
	return derive(mint, []byte(accountSeed), owner[:])
}

// MintAddress derives the address of the token unit governed by program.
func MintAddress(program Address) Address {
	return derive(program, []byte(mintSeed))
}

// MintAuthority derives the keyless authority allowed to mint new supply.
// Only the controller acting for program can present it.
func MintAuthority(program Address) Address {
	return derive(program, []byte(mintAuthoritySeed))
}

func derive(program Address, seeds ...[]byte) Address {
	h := sha256.New()
	for _, seed := range seeds {
		h.Write(seed)
	}
	h.Write(program[:])
	var out Address
	copy(out[:], h.Sum(nil))
	return out
}

func le64(v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return buf[:]
}

// AuthorityKind says in what capacity an address authorizes a ledger operation.
type AuthorityKind string

const (
	// AuthorityOwner is the account holder acting on its own account.
	AuthorityOwner AuthorityKind = "owner"
	// AuthorityDelegate is an approved delegate acting within its allowance.
	AuthorityDelegate AuthorityKind = "delegate"
	// AuthorityPermanentDelegate is the standing seizure authority installed on the mint.
	AuthorityPermanentDelegate AuthorityKind = "permanent_delegate"
)

// Authority is a capability value presented to the ledger. It carries no
// secret; the ledger checks the address against the account and mint state.
type Authority struct {
	Kind    AuthorityKind
	Address Address
}

// OwnerAuthority authorizes as the account holder.
func OwnerAuthority(owner Address) Authority {
	return Authority{Kind: AuthorityOwner, Address: owner}
}

// CustodyAuthority authorizes as the custody delegate of a redemption.
func CustodyAuthority(program, user Address, requestID RequestID) Authority {
	return Authority{Kind: AuthorityDelegate, Address: CustodyDelegate(program, user, requestID)}
}

// SeizureAuthority authorizes as the mint's permanent delegate.
func SeizureAuthority(assetProtection Address) Authority {
	return Authority{Kind: AuthorityPermanentDelegate, Address: assetProtection}
}

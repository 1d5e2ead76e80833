// Package domain provides the value types shared by every token component:
// addresses, redemption identifiers and derived authorities.
package domain

import (
	"crypto/ed25519"
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"strconv"

	dErrors "aurum/pkg/domain-errors"
)

// AddressLength is the size in bytes of an address (an ed25519 public key).
const AddressLength = 32

// Address identifies an account holder, a role holder, a token account or a mint.
// Its text form is 64 lowercase hex characters.
type Address [AddressLength]byte

// RequestID numbers redemption requests. Ids are allocated from a monotonic
// counter and start at 1; zero is never a valid id.
type RequestID uint64

// ParseAddress decodes the hex text form of an address.
// Use at trust boundaries (handlers, CLI flags, config).
func ParseAddress(s string) (Address, error) {
	var a Address
	if s == "" {
		return a, dErrors.New(dErrors.CodeInvalidInput, "address cannot be empty")
	}
	if len(s) != hex.EncodedLen(AddressLength) {
		return a, dErrors.New(dErrors.CodeInvalidInput, "invalid address length")
	}
	if _, err := hex.Decode(a[:], []byte(s)); err != nil {
		return a, dErrors.New(dErrors.CodeInvalidInput, "invalid address format")
	}
	return a, nil
}

// MustParseAddress is ParseAddress for constants and tests. It panics on error.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// AddressFromPublicKey converts an ed25519 public key into an address.
func AddressFromPublicKey(pub ed25519.PublicKey) (Address, error) {
	var a Address
	if len(pub) != ed25519.PublicKeySize {
		return a, dErrors.New(dErrors.CodeInvalidInput, "invalid public key size")
	}
	copy(a[:], pub)
	return a, nil
}

// PublicKey returns the address as an ed25519 verification key.
func (a Address) PublicKey() ed25519.PublicKey {
	return ed25519.PublicKey(a[:])
}

func (a Address) String() string { return hex.EncodeToString(a[:]) }
func (a Address) IsZero() bool   { return a == Address{} }

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value stores an address as 32 raw bytes. The zero address is stored as NULL.
func (a Address) Value() (driver.Value, error) {
	if a.IsZero() {
		return nil, nil
	}
	return a[:], nil
}

// Scan reads an address stored by Value.
func (a *Address) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = Address{}
		return nil
	case []byte:
		if len(v) != AddressLength {
			return fmt.Errorf("scan address: got %d bytes", len(v))
		}
		copy(a[:], v)
		return nil
	default:
		return fmt.Errorf("scan address: unsupported type %T", src)
	}
}

// ParseRequestID parses a decimal request id. Zero is rejected.
func ParseRequestID(s string) (RequestID, error) {
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "request ID cannot be empty")
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid request ID format")
	}
	if n == 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "request ID must be positive")
	}
	return RequestID(n), nil
}

func (id RequestID) String() string { return strconv.FormatUint(uint64(id), 10) }
func (id RequestID) IsNil() bool    { return id == 0 }

package testutil

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"time"

	id "aurum/pkg/domain"
	"aurum/pkg/requestcontext"
)

// FixedTime is the clock every fixture context reports.
var FixedTime = time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)

// Deterministic program identities used across package tests.
var (
	ProgramID    = id.MustParseAddress("777fff16ea999e5bcb8351c09be37fc09bd0e6b27ce8fd554f35cb2bb5a5259d")
	GatekeeperID = id.MustParseAddress("fe585fdf659edfa8e7e501ba3ea6b7cd8fad311d0154fe406df25c108a6fd146")
)

// Keypair is a signing identity for tests.
type Keypair struct {
	Address id.Address
	Private ed25519.PrivateKey
}

// NewKeypair derives a deterministic keypair from label so test failures
// print stable addresses.
func NewKeypair(label string) Keypair {
	seed := sha256.Sum256([]byte("aurum-test:" + label))
	priv := ed25519.NewKeyFromSeed(seed[:])
	addr, err := id.AddressFromPublicKey(priv.Public().(ed25519.PublicKey))
	if err != nil {
		panic(err)
	}
	return Keypair{Address: addr, Private: priv}
}

// Address returns the deterministic address for label.
func Address(label string) id.Address {
	return NewKeypair(label).Address
}

// Context returns a background context stamped with FixedTime.
func Context() context.Context {
	return requestcontext.WithTime(context.Background(), FixedTime)
}

// SignedContext returns Context with signer attached.
func SignedContext(signer id.Address) context.Context {
	return requestcontext.WithSigner(Context(), signer)
}

// Roles is the set of identities a test deployment is initialized with.
type Roles struct {
	Admin            id.Address
	SupplyController id.Address
	AssetProtection  id.Address
	FeeController    id.Address
}

// DefaultRoles returns four distinct role holders.
func DefaultRoles() Roles {
	return Roles{
		Admin:            Address("admin"),
		SupplyController: Address("supply-controller"),
		AssetProtection:  Address("asset-protection"),
		FeeController:    Address("fee-controller"),
	}
}

// Package store persists mints and token accounts.
package store

import (
	"context"

	"aurum/internal/ledger/models"
	id "aurum/pkg/domain"
)

// Store is the ledger's persistence port. Finds return sentinel.ErrNotFound
// for unknown addresses; creates return sentinel.ErrAlreadyExists on a
// duplicate address.
type Store interface {
	CreateMint(ctx context.Context, mint *models.Mint) error
	FindMint(ctx context.Context, addr id.Address) (*models.Mint, error)
	UpdateMint(ctx context.Context, mint *models.Mint) error

	CreateAccount(ctx context.Context, acct *models.Account) error
	FindAccount(ctx context.Context, addr id.Address) (*models.Account, error)
	UpdateAccount(ctx context.Context, acct *models.Account) error
	ListAccounts(ctx context.Context, mint id.Address) ([]*models.Account, error)
}

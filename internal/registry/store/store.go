// Package store persists the token configuration record.
package store

import (
	"context"

	"aurum/internal/registry/models"
	id "aurum/pkg/domain"
)

// Store holds one configuration record per program.
type Store interface {
	Create(ctx context.Context, cfg *models.Config) error
	Get(ctx context.Context, program id.Address) (*models.Config, error)
	Update(ctx context.Context, cfg *models.Config) error
	// AdvanceCounter moves the redemption counter from expected to next and
	// returns sentinel.ErrStale when another writer got there first.
	AdvanceCounter(ctx context.Context, program id.Address, expected, next uint64) error
}

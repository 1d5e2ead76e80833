// Package store persists open redemption requests. Fulfilled and cancelled
// requests are deleted once their transition commits.
package store

import (
	"context"

	"aurum/internal/redemption/models"
	id "aurum/pkg/domain"
)

type Store interface {
	Create(ctx context.Context, r *models.Request) error
	FindByKey(ctx context.Context, key models.Key) (*models.Request, error)
	// FindOpenByUser returns the user's Pending or Processing request, or
	// sentinel.ErrNotFound.
	FindOpenByUser(ctx context.Context, user id.Address) (*models.Request, error)
	Update(ctx context.Context, r *models.Request) error
	Delete(ctx context.Context, key models.Key) error
	ListByUser(ctx context.Context, user id.Address) ([]*models.Request, error)
}

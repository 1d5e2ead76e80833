// Package store persists the blacklist.
package store

import (
	"context"

	"aurum/internal/compliance/models"
	id "aurum/pkg/domain"
)

// Blacklist is a set of addresses.
type Blacklist interface {
	// Add returns sentinel.ErrAlreadyExists when addr is already listed.
	Add(ctx context.Context, entry *models.Entry) error
	// Remove returns sentinel.ErrNotFound when addr is not listed.
	Remove(ctx context.Context, addr id.Address) error
	Contains(ctx context.Context, addr id.Address) (bool, error)
	List(ctx context.Context) ([]*models.Entry, error)
}

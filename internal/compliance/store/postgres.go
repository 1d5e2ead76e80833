package store

import (
	"context"
	"database/sql"
	"fmt"

	"aurum/internal/compliance/models"
	"aurum/internal/platform/database"
	id "aurum/pkg/domain"
	"aurum/pkg/platform/sentinel"
)

// PostgresStore persists the blacklist in blacklist_entries.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed blacklist.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Add(ctx context.Context, entry *models.Entry) error {
	_, err := database.Execer(ctx, s.db).ExecContext(ctx,
		`INSERT INTO blacklist_entries (address, created_at) VALUES ($1, $2)`, entry.Address, entry.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyExists
		}
		return fmt.Errorf("insert blacklist entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Remove(ctx context.Context, addr id.Address) error {
	res, err := database.Execer(ctx, s.db).ExecContext(ctx,
		`DELETE FROM blacklist_entries WHERE address = $1`, addr)
	if err != nil {
		return fmt.Errorf("delete blacklist entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete blacklist entry: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Contains(ctx context.Context, addr id.Address) (bool, error) {
	var exists bool
	err := database.Execer(ctx, s.db).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM blacklist_entries WHERE address = $1)`, addr).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Entry, error) {
	rows, err := database.Execer(ctx, s.db).QueryContext(ctx,
		`SELECT address, created_at FROM blacklist_entries ORDER BY address`)
	if err != nil {
		return nil, fmt.Errorf("list blacklist: %w", err)
	}
	defer rows.Close()

	var out []*models.Entry
	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(&e.Address, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan blacklist entry: %w", err)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blacklist: %w", err)
	}
	return out, nil
}

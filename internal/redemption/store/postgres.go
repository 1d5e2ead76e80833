package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"aurum/internal/platform/database"
	"aurum/internal/redemption/models"
	id "aurum/pkg/domain"
	"aurum/pkg/platform/sentinel"
)

// PostgresStore persists requests in redemption_requests.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const requestColumns = `user_address, request_id, amount, status, custody_delegate, requested_at, completed_at`

func (s *PostgresStore) Create(ctx context.Context, r *models.Request) error {
	_, err := database.Execer(ctx, s.db).ExecContext(ctx,
		`INSERT INTO redemption_requests (`+requestColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.User, database.U64(r.RequestID), database.U64(r.Amount), r.Status, r.Delegate, r.RequestedAt, nullTime(r.CompletedAt))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyExists
		}
		return fmt.Errorf("insert redemption request: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByKey(ctx context.Context, key models.Key) (*models.Request, error) {
	row := database.Execer(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM redemption_requests WHERE user_address = $1 AND request_id = $2`+database.LockClause(ctx),
		key.User, database.U64(key.RequestID))
	r, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find redemption request: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) FindOpenByUser(ctx context.Context, user id.Address) (*models.Request, error) {
	row := database.Execer(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM redemption_requests
		 WHERE user_address = $1 AND status IN ('pending', 'processing')
		 ORDER BY request_id LIMIT 1`+database.LockClause(ctx), user)
	r, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find open redemption request: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) Update(ctx context.Context, r *models.Request) error {
	res, err := database.Execer(ctx, s.db).ExecContext(ctx,
		`UPDATE redemption_requests SET status = $3, completed_at = $4
		 WHERE user_address = $1 AND request_id = $2`,
		r.User, database.U64(r.RequestID), r.Status, nullTime(r.CompletedAt))
	if err != nil {
		return fmt.Errorf("update redemption request: %w", err)
	}
	return expectOne(res, "update redemption request")
}

func (s *PostgresStore) Delete(ctx context.Context, key models.Key) error {
	res, err := database.Execer(ctx, s.db).ExecContext(ctx,
		`DELETE FROM redemption_requests WHERE user_address = $1 AND request_id = $2`,
		key.User, database.U64(key.RequestID))
	if err != nil {
		return fmt.Errorf("delete redemption request: %w", err)
	}
	return expectOne(res, "delete redemption request")
}

func (s *PostgresStore) ListByUser(ctx context.Context, user id.Address) ([]*models.Request, error) {
	rows, err := database.Execer(ctx, s.db).QueryContext(ctx,
		`SELECT `+requestColumns+` FROM redemption_requests WHERE user_address = $1 ORDER BY request_id`, user)
	if err != nil {
		return nil, fmt.Errorf("list redemption requests: %w", err)
	}
	defer rows.Close()

	var out []*models.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan redemption request: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate redemption requests: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRequest(row scanner) (*models.Request, error) {
	var (
		r         models.Request
		requestID uint64
		completed sql.NullTime
	)
	if err := row.Scan(&r.User, database.U64Dest{P: &requestID}, database.U64Dest{P: &r.Amount},
		&r.Status, &r.Delegate, &r.RequestedAt, &completed); err != nil {
		return nil, err
	}
	r.RequestID = id.RequestID(requestID)
	if completed.Valid {
		r.CompletedAt = completed.Time
	}
	return &r, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func expectOne(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

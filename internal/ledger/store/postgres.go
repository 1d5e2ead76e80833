package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"aurum/internal/ledger/models"
	"aurum/internal/platform/database"
	id "aurum/pkg/domain"
	"aurum/pkg/platform/sentinel"
)

// PostgresStore persists ledger state in PostgreSQL. Amounts live in
// NUMERIC(20,0) columns so the full uint64 range round-trips.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed ledger store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const mintColumns = `address, decimals, supply, mint_authority, permanent_delegate, hook_program,
	hook_authority, fee_basis_points, maximum_fee, fee_authority, withheld_amount, created_at, updated_at`

func (s *PostgresStore) CreateMint(ctx context.Context, m *models.Mint) error {
	_, err := database.Execer(ctx, s.db).ExecContext(ctx, `
		INSERT INTO mints (`+mintColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, m.Address, int16(m.Decimals), database.U64(m.Supply), m.MintAuthority, m.PermanentDelegate, m.HookProgram,
		m.HookAuthority, int32(m.Fee.BasisPoints), database.U64(m.Fee.MaximumFee), m.FeeAuthority,
		database.U64(m.WithheldAmount), m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyExists
		}
		return fmt.Errorf("insert mint: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindMint(ctx context.Context, addr id.Address) (*models.Mint, error) {
	row := database.Execer(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+mintColumns+` FROM mints WHERE address = $1`+database.LockClause(ctx), addr)
	var (
		m        models.Mint
		decimals int16
		bps      int32
	)
	err := row.Scan(&m.Address, &decimals, database.U64Dest{P: &m.Supply}, &m.MintAuthority, &m.PermanentDelegate,
		&m.HookProgram, &m.HookAuthority, &bps, database.U64Dest{P: &m.Fee.MaximumFee}, &m.FeeAuthority,
		database.U64Dest{P: &m.WithheldAmount}, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find mint: %w", err)
	}
	m.Decimals = uint8(decimals)    //nolint:gosec // column CHECK keeps it in range
	m.Fee.BasisPoints = uint16(bps) //nolint:gosec // column CHECK keeps it in range
	return &m, nil
}

func (s *PostgresStore) UpdateMint(ctx context.Context, m *models.Mint) error {
	res, err := database.Execer(ctx, s.db).ExecContext(ctx, `
		UPDATE mints SET supply = $2, mint_authority = $3, permanent_delegate = $4, hook_program = $5,
			hook_authority = $6, fee_basis_points = $7, maximum_fee = $8, fee_authority = $9,
			withheld_amount = $10, updated_at = $11
		WHERE address = $1
	`, m.Address, database.U64(m.Supply), m.MintAuthority, m.PermanentDelegate, m.HookProgram, m.HookAuthority,
		int32(m.Fee.BasisPoints), database.U64(m.Fee.MaximumFee), m.FeeAuthority, database.U64(m.WithheldAmount), m.UpdatedAt)
	return affectedOne(res, err, "update mint")
}

const accountColumns = `address, mint, owner, amount, delegate, delegated_amount, withheld_amount, created_at, updated_at`

func (s *PostgresStore) CreateAccount(ctx context.Context, a *models.Account) error {
	_, err := database.Execer(ctx, s.db).ExecContext(ctx, `
		INSERT INTO token_accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, a.Address, a.Mint, a.Owner, database.U64(a.Amount), a.Delegate, database.U64(a.DelegatedAmount),
		database.U64(a.WithheldAmount), a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyExists
		}
		return fmt.Errorf("insert token account: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindAccount(ctx context.Context, addr id.Address) (*models.Account, error) {
	row := database.Execer(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM token_accounts WHERE address = $1`+database.LockClause(ctx), addr)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find token account: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) UpdateAccount(ctx context.Context, a *models.Account) error {
	res, err := database.Execer(ctx, s.db).ExecContext(ctx, `
		UPDATE token_accounts SET amount = $2, delegate = $3, delegated_amount = $4, withheld_amount = $5, updated_at = $6
		WHERE address = $1
	`, a.Address, database.U64(a.Amount), a.Delegate, database.U64(a.DelegatedAmount), database.U64(a.WithheldAmount), a.UpdatedAt)
	return affectedOne(res, err, "update token account")
}

func (s *PostgresStore) ListAccounts(ctx context.Context, mint id.Address) ([]*models.Account, error) {
	rows, err := database.Execer(ctx, s.db).QueryContext(ctx,
		`SELECT `+accountColumns+` FROM token_accounts WHERE mint = $1 ORDER BY address`, mint)
	if err != nil {
		return nil, fmt.Errorf("list token accounts: %w", err)
	}
	defer rows.Close()

	var out []*models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan token account: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate token accounts: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (*models.Account, error) {
	var a models.Account
	err := row.Scan(&a.Address, &a.Mint, &a.Owner, database.U64Dest{P: &a.Amount}, &a.Delegate,
		database.U64Dest{P: &a.DelegatedAmount}, database.U64Dest{P: &a.WithheldAmount}, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func affectedOne(res sql.Result, err error, op string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

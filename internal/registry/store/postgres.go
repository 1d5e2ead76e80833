package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"aurum/internal/platform/database"
	"aurum/internal/registry/models"
	id "aurum/pkg/domain"
	"aurum/pkg/platform/sentinel"
)

// PostgresStore persists configuration records in the token_config table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed configuration store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const configColumns = `program, admin, supply_controller, asset_protection, fee_controller, mint, gatekeeper,
	redemption_request_counter, is_paused, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, cfg *models.Config) error {
	_, err := database.Execer(ctx, s.db).ExecContext(ctx, `
		INSERT INTO token_config (`+configColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, cfg.Program, cfg.Admin, cfg.SupplyController, cfg.AssetProtection, cfg.FeeController, cfg.Mint,
		cfg.Gatekeeper, database.U64(cfg.RedemptionRequestCounter), cfg.IsPaused, cfg.CreatedAt, cfg.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyExists
		}
		return fmt.Errorf("insert token config: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, program id.Address) (*models.Config, error) {
	row := database.Execer(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+configColumns+` FROM token_config WHERE program = $1`+database.LockClause(ctx), program)
	var cfg models.Config
	err := row.Scan(&cfg.Program, &cfg.Admin, &cfg.SupplyController, &cfg.AssetProtection, &cfg.FeeController,
		&cfg.Mint, &cfg.Gatekeeper, database.U64Dest{P: &cfg.RedemptionRequestCounter}, &cfg.IsPaused,
		&cfg.CreatedAt, &cfg.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find token config: %w", err)
	}
	return &cfg, nil
}

// Update writes roles and the pause flag. The counter only moves through
// AdvanceCounter.
func (s *PostgresStore) Update(ctx context.Context, cfg *models.Config) error {
	res, err := database.Execer(ctx, s.db).ExecContext(ctx, `
		UPDATE token_config SET admin = $2, supply_controller = $3, asset_protection = $4, fee_controller = $5,
			is_paused = $6, updated_at = $7
		WHERE program = $1
	`, cfg.Program, cfg.Admin, cfg.SupplyController, cfg.AssetProtection, cfg.FeeController, cfg.IsPaused, cfg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update token config: %w", err)
	}
	return expectOne(res, sentinel.ErrNotFound, "update token config")
}

func (s *PostgresStore) AdvanceCounter(ctx context.Context, program id.Address, expected, next uint64) error {
	res, err := database.Execer(ctx, s.db).ExecContext(ctx, `
		UPDATE token_config SET redemption_request_counter = $3
		WHERE program = $1 AND redemption_request_counter = $2
	`, program, database.U64(expected), database.U64(next))
	if err != nil {
		return fmt.Errorf("advance redemption counter: %w", err)
	}
	return expectOne(res, sentinel.ErrStale, "advance redemption counter")
}

func expectOne(res sql.Result, none error, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return none
	}
	return nil
}

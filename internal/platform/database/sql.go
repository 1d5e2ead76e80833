package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"

	"aurum/pkg/platform/tx"
)

// Executor is the query surface shared by *sql.DB and *sql.Tx.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Execer returns the transaction carried by ctx, or db when there is none.
func Execer(ctx context.Context, db *sql.DB) Executor {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return db
}

// LockClause returns " FOR UPDATE" inside a transaction so a read-modify-write
// keeps the row until commit. Outside a transaction it returns "".
func LockClause(ctx context.Context) string {
	if _, ok := tx.From(ctx); ok {
		return " FOR UPDATE"
	}
	return ""
}

// IsUniqueViolation reports a Postgres unique_violation (23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// U64 binds a uint64 to a NUMERIC(20,0) column. BIGINT cannot hold the
// upper half of the range.
type U64 uint64

func (v U64) Value() (driver.Value, error) {
	return strconv.FormatUint(uint64(v), 10), nil
}

// U64Dest scans a NUMERIC(20,0) column into a uint64.
type U64Dest struct{ P *uint64 }

func (d U64Dest) Scan(src any) error {
	var text string
	switch v := src.(type) {
	case string:
		text = v
	case []byte:
		text = string(v)
	case int64:
		if v < 0 {
			return fmt.Errorf("scan uint64: negative value %d", v)
		}
		*d.P = uint64(v)
		return nil
	default:
		return fmt.Errorf("scan uint64: unsupported type %T", src)
	}
	n, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return fmt.Errorf("scan uint64: %w", err)
	}
	*d.P = n
	return nil
}

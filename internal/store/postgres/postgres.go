// Package postgres implements the store interfaces on top of pgx.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// DB is the subset of pgxpool.Pool the stores depend on. pgxmock satisfies
// it as well, which is what the store tests run against.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Monetary columns are NUMERIC; they travel as text so decimal values stay
// exact end to end.
func scanDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

func rollbackTx(ctx context.Context, tx pgx.Tx) {
	// Rollback after a successful commit is a no-op error; safe to ignore.
	_ = tx.Rollback(ctx)
}

// Package interfaces declares the persistence contracts consumed by the
// service and worker layers. Repository methods take a DBTX per call so a
// whole generation can run inside a single transaction.
package interfaces

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the minimal querier satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxManager runs a function inside one transaction, rolling back on error or
// panic and committing otherwise.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, querier DBTX) error) error
}

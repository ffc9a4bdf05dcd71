// Package store persists extraction results to Postgres.
package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ledgerline/billparse/internal/model"
)

// Store persists bill records.
type Store interface {
	// CreateBill inserts an empty stub row and returns its id. The stub
	// exists before extraction starts so a crash mid-extraction leaves
	// an auditable trace.
	CreateBill(ctx context.Context) (string, error)
	// SaveBill writes the extracted record onto an existing stub.
	SaveBill(ctx context.Context, billID string, bill *model.NormalizedBill, method string) error
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close()
}

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies
// it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

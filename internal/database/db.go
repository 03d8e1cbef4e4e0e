// Package database describes the SQL surface the content store runs on.
package database

import (
	"context"
	"errors"
)

// ErrNoRows is returned by Row.Scan when the query matched nothing.
var ErrNoRows = errors.New("no rows in result set")

// Executor runs single statements.
type Executor interface {
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
}

// DB is an Executor that can also group statements in a transaction.
type DB interface {
	Executor

	// InTx runs fn in one transaction, committing when fn returns nil and
	// rolling back otherwise.
	InTx(ctx context.Context, fn func(tx Executor) error) error
	Ping(ctx context.Context) error
	Close() error
}

type Row interface {
	Scan(dest ...any) error
}

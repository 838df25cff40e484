// Package database is the SQL surface shared by repositories, seeders and
// migrations. The pgx pool in package postgres is the only production
// implementation.
package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Querier runs statements. Both DB and Tx implement it.
type Querier interface {
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
}

type DB interface {
	Querier

	Ping(ctx context.Context) error
	Close() error
	Begin(ctx context.Context) (Tx, error)

	// SQLDB exposes the pool as *sql.DB for the migration runner.
	SQLDB() *sql.DB
}

type Tx interface {
	Querier

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type Rows interface {
	Close()
	Next() bool
	Scan(dest ...any) error
	Err() error
}

type Row interface {
	Scan(dest ...any) error
}

// InTx runs fn in a transaction. It commits when fn returns nil and rolls
// back otherwise.
func InTx(ctx context.Context, db DB, fn func(tx Tx) error) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(context.WithoutCancel(ctx))
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		_ = tx.Rollback(context.WithoutCancel(ctx))
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

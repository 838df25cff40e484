package repository

import (
	"context"
	"time"

	"concoro/internal/database"
)

// Cursor is a keyset position over concorsi ordered by publication time then id.
type Cursor struct {
	At time.Time
	ID string
}

func (c Cursor) IsZero() bool { return c.At.IsZero() && c.ID == "" }

// JobRunRepository stores per-task watermarks for incremental runs.
type JobRunRepository interface {
	// LastRun returns the zero cursor when the task never completed.
	LastRun(ctx context.Context, name string) (Cursor, error)
	SetLastRun(ctx context.Context, name string, at Cursor) error
}

type PostgresJobRunRepository struct {
	db database.DB
}

func NewPostgresJobRunRepository(db database.DB) *PostgresJobRunRepository {
	return &PostgresJobRunRepository{db: db}
}

func (r *PostgresJobRunRepository) LastRun(ctx context.Context, name string) (Cursor, error) {
	var c Cursor
	err := r.db.QueryRow(ctx, `SELECT last_run_at, last_id FROM job_runs WHERE name = $1`, name).Scan(&c.At, &c.ID)
	if err != nil {
		if isNoRows(err) {
			return Cursor{}, nil
		}
		return Cursor{}, err
	}
	return c, nil
}

func (r *PostgresJobRunRepository) SetLastRun(ctx context.Context, name string, at Cursor) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO job_runs (name, last_run_at, last_id) VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO UPDATE SET last_run_at = EXCLUDED.last_run_at, last_id = EXCLUDED.last_id`,
		name, at.At, at.ID,
	)
	return err
}

package repository

import (
	"context"

	"concoro/internal/database"
	"concoro/internal/domain/saved"

	"github.com/google/uuid"
)

type SavedRepository interface {
	// Save stores the record unless the pair already exists; created reports an insert.
	Save(ctx context.Context, rec saved.Record) (created bool, err error)
	Delete(ctx context.Context, userID uuid.UUID, concorsoID string) error
	Exists(ctx context.Context, userID uuid.UUID, concorsoID string) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]saved.Record, error)
	// ListAll streams every saved record; used by the deadline reminder run.
	ListAll(ctx context.Context) ([]saved.Record, error)
}

type PostgresSavedRepository struct {
	db database.DB
}

func NewPostgresSavedRepository(db database.DB) *PostgresSavedRepository {
	return &PostgresSavedRepository{db: db}
}

func (r *PostgresSavedRepository) Save(ctx context.Context, rec saved.Record) (bool, error) {
	n, err := r.db.Exec(ctx,
		`INSERT INTO saved_concorsi (id, user_id, concorso_id, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, concorso_id) DO NOTHING`,
		rec.ID, rec.UserID, rec.ConcorsoID, rec.CreatedAt,
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresSavedRepository) Delete(ctx context.Context, userID uuid.UUID, concorsoID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM saved_concorsi WHERE user_id = $1 AND concorso_id = $2`, userID, concorsoID)
	return err
}

func (r *PostgresSavedRepository) Exists(ctx context.Context, userID uuid.UUID, concorsoID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM saved_concorsi WHERE user_id = $1 AND concorso_id = $2)`,
		userID, concorsoID,
	).Scan(&exists)
	if err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, err
	}
	return exists, nil
}

func (r *PostgresSavedRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]saved.Record, error) {
	return r.query(ctx,
		`SELECT id, user_id, concorso_id, created_at FROM saved_concorsi
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id ASC`,
		userID,
	)
}

func (r *PostgresSavedRepository) ListAll(ctx context.Context) ([]saved.Record, error) {
	return r.query(ctx, `SELECT id, user_id, concorso_id, created_at FROM saved_concorsi ORDER BY user_id ASC, created_at ASC`)
}

func (r *PostgresSavedRepository) query(ctx context.Context, q string, args ...any) ([]saved.Record, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]saved.Record, 0)
	for rows.Next() {
		var rec saved.Record
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.ConcorsoID, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

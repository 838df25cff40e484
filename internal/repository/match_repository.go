package repository

import (
	"context"

	"concoro/internal/database"
	"concoro/internal/domain/notification"

	"github.com/google/uuid"
)

type MatchRepository interface {
	Upsert(ctx context.Context, m notification.Match) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]notification.Match, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

type PostgresMatchRepository struct {
	db database.DB
}

func NewPostgresMatchRepository(db database.DB) *PostgresMatchRepository {
	return &PostgresMatchRepository{db: db}
}

func (r *PostgresMatchRepository) Upsert(ctx context.Context, m notification.Match) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO matches (user_id, concorso_id, score, reasons, computed_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, concorso_id) DO UPDATE
		 SET score = EXCLUDED.score, reasons = EXCLUDED.reasons, computed_at = EXCLUDED.computed_at`,
		m.UserID, m.ConcorsoID, m.Score, nonNil(m.Reasons), m.ComputedAt,
	)
	return err
}

func (r *PostgresMatchRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]notification.Match, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(ctx,
		`SELECT user_id, concorso_id, score, reasons, computed_at
		 FROM matches
		 WHERE user_id = $1
		 ORDER BY score DESC, computed_at DESC, concorso_id ASC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]notification.Match, 0)
	for rows.Next() {
		var m notification.Match
		if err := rows.Scan(&m.UserID, &m.ConcorsoID, &m.Score, &m.Reasons, &m.ComputedAt); err != nil {
			return nil, err
		}
		m.Reasons = nonNil(m.Reasons)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByUser drops stored scores after the profile they were computed for changed.
func (r *PostgresMatchRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM matches WHERE user_id = $1`, userID)
	return err
}

package repository

import (
	"context"

	"concoro/internal/database"
	"concoro/internal/domain/user"

	"github.com/google/uuid"
)

type PostgresUserRepository struct {
	db database.DB
}

func NewPostgresUserRepository(db database.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) CreateUser(ctx context.Context, u user.User) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, email, password_hash) VALUES ($1, $2, $3)`,
		u.ID, u.Email, u.PasswordHash,
	)
	return err
}

func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, email, password_hash, created_at, updated_at FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, email, password_hash, created_at, updated_at FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *PostgresUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists); err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, err
	}
	return exists, nil
}

func scanUser(row database.Row) (user.User, error) {
	var u user.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if isNoRows(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

type PostgresProfileRepository struct {
	db database.DB
}

func NewPostgresProfileRepository(db database.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

const profileSelect = `SELECT p.user_id, u.email, p.nome, p.cognome, p.regioni, p.settori, p.keywords,
	p.notify_email, p.notify_deadlines, p.notify_matches, p.created_at, p.updated_at
	FROM user_profiles p
	JOIN users u ON u.id = p.user_id`

func (r *PostgresProfileRepository) CreateProfile(ctx context.Context, p user.Profile) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO user_profiles (user_id, nome, cognome, regioni, settori, keywords, notify_email, notify_deadlines, notify_matches)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (user_id) DO NOTHING`,
		p.UserID, p.Nome, p.Cognome, nonNil(p.Regioni), nonNil(p.Settori), nonNil(p.Keywords),
		p.NotifyEmail, p.NotifyDeadlines, p.NotifyMatches,
	)
	return err
}

func (r *PostgresProfileRepository) GetProfile(ctx context.Context, userID uuid.UUID) (user.Profile, error) {
	return scanProfile(r.db.QueryRow(ctx, profileSelect+` WHERE p.user_id = $1`, userID))
}

func (r *PostgresProfileRepository) UpdateProfile(ctx context.Context, p user.Profile) error {
	n, err := r.db.Exec(ctx,
		`UPDATE user_profiles
		 SET nome = $2, cognome = $3, regioni = $4, settori = $5, keywords = $6,
		     notify_email = $7, notify_deadlines = $8, notify_matches = $9, updated_at = now()
		 WHERE user_id = $1`,
		p.UserID, p.Nome, p.Cognome, nonNil(p.Regioni), nonNil(p.Settori), nonNil(p.Keywords),
		p.NotifyEmail, p.NotifyDeadlines, p.NotifyMatches,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

// ListNotifiable returns profiles with at least one notification kind enabled.
func (r *PostgresProfileRepository) ListNotifiable(ctx context.Context) ([]user.Profile, error) {
	rows, err := r.db.Query(ctx, profileSelect+` WHERE p.notify_deadlines OR p.notify_matches ORDER BY p.user_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]user.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanProfile(row database.Row) (user.Profile, error) {
	var p user.Profile
	if err := row.Scan(
		&p.UserID, &p.Email, &p.Nome, &p.Cognome, &p.Regioni, &p.Settori, &p.Keywords,
		&p.NotifyEmail, &p.NotifyDeadlines, &p.NotifyMatches, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		if isNoRows(err) {
			return user.Profile{}, user.ErrNotFound
		}
		return user.Profile{}, err
	}
	p.Regioni = nonNil(p.Regioni)
	p.Settori = nonNil(p.Settori)
	p.Keywords = nonNil(p.Keywords)
	return p, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

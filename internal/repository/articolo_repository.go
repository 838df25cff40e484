package repository

import (
	"context"
	"database/sql"
	"strings"

	"concoro/internal/database"
	"concoro/internal/domain/articolo"
)

type ArticoloRepository interface {
	List(ctx context.Context, tag string, limit, offset int) ([]articolo.Articolo, int, error)
	GetBySlug(ctx context.Context, slug string) (articolo.Articolo, error)
	ListByConcorso(ctx context.Context, concorsoID string, limit int) ([]articolo.Articolo, error)
	ListTags(ctx context.Context) ([]articolo.TagCount, error)
	ListAll(ctx context.Context) ([]articolo.Articolo, error)
}

const articoloColumns = `id, slug, titolo, sottotitolo, contenuto, tags, image_url, concorso_id, data_pubblicazione, updated_at`

type PostgresArticoloRepository struct {
	db database.DB
}

func NewPostgresArticoloRepository(db database.DB) *PostgresArticoloRepository {
	return &PostgresArticoloRepository{db: db}
}

// List returns one page of articles, newest first, and the total count for tag.
func (r *PostgresArticoloRepository) List(ctx context.Context, tag string, limit, offset int) ([]articolo.Articolo, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	tag = strings.TrimSpace(tag)

	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(1) FROM articoli WHERE ($1 = '' OR $1 = ANY(tags))`,
		tag,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	items, err := r.query(ctx,
		`SELECT `+articoloColumns+` FROM articoli
		 WHERE ($1 = '' OR $1 = ANY(tags))
		 ORDER BY data_pubblicazione DESC NULLS LAST, id ASC
		 LIMIT $2 OFFSET $3`,
		tag, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *PostgresArticoloRepository) GetBySlug(ctx context.Context, slug string) (articolo.Articolo, error) {
	a, err := scanArticolo(r.db.QueryRow(ctx, `SELECT `+articoloColumns+` FROM articoli WHERE slug = $1`, slug))
	if err != nil {
		if isNoRows(err) {
			return articolo.Articolo{}, articolo.ErrNotFound
		}
		return articolo.Articolo{}, err
	}
	return a, nil
}

func (r *PostgresArticoloRepository) ListByConcorso(ctx context.Context, concorsoID string, limit int) ([]articolo.Articolo, error) {
	if limit <= 0 {
		limit = 5
	}
	return r.query(ctx,
		`SELECT `+articoloColumns+` FROM articoli
		 WHERE concorso_id = $1
		 ORDER BY data_pubblicazione DESC NULLS LAST, id ASC
		 LIMIT $2`,
		concorsoID, limit,
	)
}

func (r *PostgresArticoloRepository) ListTags(ctx context.Context) ([]articolo.TagCount, error) {
	rows, err := r.db.Query(ctx,
		`SELECT t, COUNT(1)
		 FROM articoli, unnest(tags) AS t
		 WHERE t <> ''
		 GROUP BY t
		 ORDER BY COUNT(1) DESC, t ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]articolo.TagCount, 0)
	for rows.Next() {
		var tc articolo.TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresArticoloRepository) ListAll(ctx context.Context) ([]articolo.Articolo, error) {
	return r.query(ctx, `SELECT `+articoloColumns+` FROM articoli ORDER BY data_pubblicazione DESC NULLS LAST, id ASC`)
}

func (r *PostgresArticoloRepository) query(ctx context.Context, q string, args ...any) ([]articolo.Articolo, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]articolo.Articolo, 0)
	for rows.Next() {
		a, err := scanArticolo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanArticolo(row database.Row) (articolo.Articolo, error) {
	var a articolo.Articolo
	var concorsoID sql.NullString
	var pub sql.NullTime
	if err := row.Scan(
		&a.ID, &a.Slug, &a.Titolo, &a.Sottotitolo, &a.Contenuto, &a.Tags, &a.ImageURL,
		&concorsoID, &pub, &a.UpdatedAt,
	); err != nil {
		return articolo.Articolo{}, err
	}
	if concorsoID.Valid && concorsoID.String != "" {
		id := concorsoID.String
		a.ConcorsoID = &id
	}
	if pub.Valid {
		t := pub.Time
		a.DataPubblicazione = &t
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
	return a, nil
}

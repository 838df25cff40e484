package repository

import (
	"context"
	"errors"

	"concoro/internal/database"
	"concoro/internal/domain/favicon"
)

var ErrFaviconNotFound = errors.New("favicon not found")

type FaviconRepository interface {
	Get(ctx context.Context, domain string) (favicon.Favicon, error)
	Upsert(ctx context.Context, f favicon.Favicon) error
}

type PostgresFaviconRepository struct {
	db database.DB
}

func NewPostgresFaviconRepository(db database.DB) *PostgresFaviconRepository {
	return &PostgresFaviconRepository{db: db}
}

func (r *PostgresFaviconRepository) Get(ctx context.Context, domain string) (favicon.Favicon, error) {
	var f favicon.Favicon
	err := r.db.QueryRow(ctx,
		`SELECT domain, icon_url, source, resolved_at FROM favicons WHERE domain = $1`,
		domain,
	).Scan(&f.Domain, &f.IconURL, &f.Source, &f.ResolvedAt)
	if err != nil {
		if isNoRows(err) {
			return favicon.Favicon{}, ErrFaviconNotFound
		}
		return favicon.Favicon{}, err
	}
	return f, nil
}

func (r *PostgresFaviconRepository) Upsert(ctx context.Context, f favicon.Favicon) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO favicons (domain, icon_url, source, resolved_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (domain) DO UPDATE
		 SET icon_url = EXCLUDED.icon_url, source = EXCLUDED.source, resolved_at = EXCLUDED.resolved_at`,
		f.Domain, f.IconURL, f.Source, f.ResolvedAt,
	)
	return err
}

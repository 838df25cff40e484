package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"concoro/internal/database"
	"concoro/internal/domain/concorso"

	"github.com/jackc/pgx/v5"
)

// ConcorsoFilter holds the predicates the store can evaluate directly.
// Location, free text and ranking are applied by the caller.
type ConcorsoFilter struct {
	// Stato is concorso.StatoOpen, concorso.StatoClosed or "" for both.
	Stato        string
	Settore      string
	Tipologia    string
	Ente         string
	DeadlineFrom *time.Time
	DeadlineTo   *time.Time
	Now          time.Time
	// Order is one of the Order constants; empty means newest first.
	Order  string
	Offset int
	Cap    int
}

const (
	OrderPublished = "published"
	OrderDeadline  = "deadline"
	OrderPosti     = "posti"
)

type EnteCount struct {
	Name  string
	Count int
}

type ConcorsoRepository interface {
	ListCandidates(ctx context.Context, f ConcorsoFilter) ([]concorso.Concorso, error)
	GetByID(ctx context.Context, id string) (concorso.Concorso, error)
	GetBySlug(ctx context.Context, slug string) (concorso.Concorso, error)
	GetByShortID(ctx context.Context, short string) (concorso.Concorso, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]concorso.Concorso, error)
	ListEnti(ctx context.Context, now time.Time) ([]EnteCount, error)
	ListOpenAreas(ctx context.Context, now time.Time) ([]string, error)
	ListPublishedSince(ctx context.Context, after Cursor, limit int) ([]concorso.Concorso, error)
	ListForSitemap(ctx context.Context, now, closedSince time.Time) ([]concorso.Concorso, error)
}

const (
	DefaultCandidateCap = 2000
	maxCandidateCap     = 10000
)

// openClause matches rows that are not closed at the bound timestamp.
const openClause = `lower(btrim(stato)) <> 'closed' AND (data_chiusura IS NULL OR data_chiusura >= %s)`

const concorsoColumns = `id, slug, titolo, ente, area_geografica, settore, tipologia, descrizione, link,
	numero_posti, stato, data_pubblicazione, data_chiusura, created_at, updated_at`

type PostgresConcorsoRepository struct {
	db database.DB
}

func NewPostgresConcorsoRepository(db database.DB) *PostgresConcorsoRepository {
	return &PostgresConcorsoRepository{db: db}
}

func (r *PostgresConcorsoRepository) ListCandidates(ctx context.Context, f ConcorsoFilter) ([]concorso.Concorso, error) {
	now := f.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	limit := f.Cap
	if limit <= 0 {
		limit = DefaultCandidateCap
	}
	if limit > maxCandidateCap {
		limit = maxCandidateCap
	}

	where := make([]string, 0, 8)
	args := make([]any, 0, 8)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch f.Stato {
	case concorso.StatoOpen:
		p := arg(now)
		where = append(where, fmt.Sprintf(openClause, p))
	case concorso.StatoClosed:
		p := arg(now)
		where = append(where, fmt.Sprintf("(lower(btrim(stato)) = 'closed' OR data_chiusura < %s)", p))
	}
	if s := strings.TrimSpace(f.Settore); s != "" {
		where = append(where, "lower(settore) = lower("+arg(s)+")")
	}
	if s := strings.TrimSpace(f.Tipologia); s != "" {
		where = append(where, "lower(tipologia) = lower("+arg(s)+")")
	}
	if s := strings.TrimSpace(f.Ente); s != "" {
		where = append(where, "lower(ente) = lower("+arg(s)+")")
	}
	if f.DeadlineFrom != nil {
		where = append(where, "data_chiusura >= "+arg(*f.DeadlineFrom))
	}
	if f.DeadlineTo != nil {
		where = append(where, "data_chiusura <= "+arg(*f.DeadlineTo))
	}

	q := `SELECT ` + concorsoColumns + ` FROM concorsi`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	switch f.Order {
	case OrderDeadline:
		q += ` ORDER BY data_chiusura ASC NULLS LAST, id ASC`
	case OrderPosti:
		q += ` ORDER BY numero_posti DESC NULLS LAST, COALESCE(data_pubblicazione, created_at) DESC, id ASC`
	default:
		q += ` ORDER BY COALESCE(data_pubblicazione, created_at) DESC, id ASC`
	}
	q += ` LIMIT ` + arg(limit)
	if f.Offset > 0 {
		q += ` OFFSET ` + arg(f.Offset)
	}

	return r.queryConcorsi(ctx, q, args...)
}

func (r *PostgresConcorsoRepository) GetByID(ctx context.Context, id string) (concorso.Concorso, error) {
	row := r.db.QueryRow(ctx, `SELECT `+concorsoColumns+` FROM concorsi WHERE id = $1`, id)
	return scanConcorsoRow(row)
}

func (r *PostgresConcorsoRepository) GetBySlug(ctx context.Context, slug string) (concorso.Concorso, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+concorsoColumns+` FROM concorsi WHERE slug = $1 ORDER BY updated_at DESC LIMIT 1`,
		slug,
	)
	return scanConcorsoRow(row)
}

// GetByShortID resolves the id prefix embedded in derived slugs.
func (r *PostgresConcorsoRepository) GetByShortID(ctx context.Context, short string) (concorso.Concorso, error) {
	short = strings.ToLower(strings.TrimSpace(short))
	if short == "" {
		return concorso.Concorso{}, concorso.ErrNotFound
	}
	row := r.db.QueryRow(ctx,
		`SELECT `+concorsoColumns+` FROM concorsi
		 WHERE lower(regexp_replace(id, '[^a-zA-Z0-9]', '', 'g')) LIKE $1 || '%'
		 ORDER BY id ASC LIMIT 1`,
		short,
	)
	return scanConcorsoRow(row)
}

func (r *PostgresConcorsoRepository) GetByIDs(ctx context.Context, ids []string) (map[string]concorso.Concorso, error) {
	out := make(map[string]concorso.Concorso, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	items, err := r.queryConcorsi(ctx, `SELECT `+concorsoColumns+` FROM concorsi WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range items {
		out[c.ID] = c
	}
	return out, nil
}

func (r *PostgresConcorsoRepository) ListEnti(ctx context.Context, now time.Time) ([]EnteCount, error) {
	rows, err := r.db.Query(ctx,
		`SELECT ente, COUNT(1)
		 FROM concorsi
		 WHERE ente <> '' AND lower(btrim(stato)) <> 'closed' AND (data_chiusura IS NULL OR data_chiusura >= $1)
		 GROUP BY ente
		 ORDER BY COUNT(1) DESC, ente ASC`,
		now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]EnteCount, 0)
	for rows.Next() {
		var e EnteCount
		if err := rows.Scan(&e.Name, &e.Count); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresConcorsoRepository) ListOpenAreas(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT area_geografica
		 FROM concorsi
		 WHERE lower(btrim(stato)) <> 'closed' AND (data_chiusura IS NULL OR data_chiusura >= $1)`,
		now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresConcorsoRepository) ListPublishedSince(ctx context.Context, after Cursor, limit int) ([]concorso.Concorso, error) {
	if limit <= 0 {
		limit = 500
	}
	if limit > maxCandidateCap {
		limit = maxCandidateCap
	}
	return r.queryConcorsi(ctx,
		`SELECT `+concorsoColumns+` FROM concorsi
		 WHERE (COALESCE(data_pubblicazione, created_at), id) > ($1, $2)
		 ORDER BY COALESCE(data_pubblicazione, created_at) ASC, id ASC
		 LIMIT $3`,
		after.At, after.ID, limit,
	)
}

// ListForSitemap returns open concorsi plus those closed after closedSince.
func (r *PostgresConcorsoRepository) ListForSitemap(ctx context.Context, now, closedSince time.Time) ([]concorso.Concorso, error) {
	return r.queryConcorsi(ctx,
		`SELECT `+concorsoColumns+` FROM concorsi
		 WHERE (lower(btrim(stato)) <> 'closed' AND (data_chiusura IS NULL OR data_chiusura >= $1))
		    OR (data_chiusura IS NOT NULL AND data_chiusura >= $2)
		 ORDER BY COALESCE(data_pubblicazione, created_at) DESC, id ASC`,
		now, closedSince,
	)
}

func (r *PostgresConcorsoRepository) queryConcorsi(ctx context.Context, q string, args ...any) ([]concorso.Concorso, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]concorso.Concorso, 0)
	for rows.Next() {
		c, err := scanConcorso(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanConcorso(row database.Row) (concorso.Concorso, error) {
	var c concorso.Concorso
	var posti sql.NullInt32
	var pub, chiusura sql.NullTime
	err := row.Scan(
		&c.ID, &c.Slug, &c.Titolo, &c.Ente, &c.AreaGeografica, &c.Settore, &c.Tipologia,
		&c.Descrizione, &c.Link, &posti, &c.Stato, &pub, &chiusura, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return concorso.Concorso{}, err
	}
	if posti.Valid {
		n := int(posti.Int32)
		c.NumeroPosti = &n
	}
	if pub.Valid {
		t := pub.Time
		c.DataPubblicazione = &t
	}
	if chiusura.Valid {
		t := chiusura.Time
		c.DataChiusura = &t
	}
	return c, nil
}

func scanConcorsoRow(row database.Row) (concorso.Concorso, error) {
	c, err := scanConcorso(row)
	if err != nil {
		if isNoRows(err) {
			return concorso.Concorso{}, concorso.ErrNotFound
		}
		return concorso.Concorso{}, err
	}
	return c, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows)
}

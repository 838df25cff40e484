// Package postgres backs database.DB with a pgx connection pool.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/url"
	"strings"
	"time"

	"concoro/internal/config"
	"concoro/internal/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

const (
	applicationName = "concoro"
	pingTimeout     = 5 * time.Second
)

var errNilPool = errors.New("postgres: pool not initialized")

type Pool struct {
	pool  *pgxpool.Pool
	sqlDB *sql.DB
}

// PoolConfig turns the env settings into a pgx pool config. Sessions run in
// UTC; callers convert to Europe/Rome where day boundaries matter.
func PoolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	host := strings.TrimSpace(cfg.DBHost)
	if port := strings.TrimSpace(cfg.DBPort); port != "" {
		host = net.JoinHostPort(host, port)
	}
	q := url.Values{}
	q.Set("sslmode", sslMode(cfg.DBSSLMode))
	q.Set("application_name", applicationName)
	q.Set("timezone", "UTC")
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(strings.TrimSpace(cfg.DBUser), cfg.DBPassword),
		Host:     host,
		Path:     "/" + strings.TrimSpace(cfg.DBName),
		RawQuery: q.Encode(),
	}

	pcfg, err := pgxpool.ParseConfig(dsn.String())
	if err != nil {
		return nil, err
	}
	if cfg.ConnectTimeout > 0 {
		pcfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}
	if cfg.PoolMaxConns > 0 {
		pcfg.MaxConns = cfg.PoolMaxConns
	}
	if cfg.PoolMinConns > 0 {
		pcfg.MinConns = cfg.PoolMinConns
	}
	if cfg.PoolMaxConnLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.PoolMaxConnLifetime
	}
	if cfg.PoolMaxConnIdleTime > 0 {
		pcfg.MaxConnIdleTime = cfg.PoolMaxConnIdleTime
	}
	if cfg.PoolHealthCheckPeriod > 0 {
		pcfg.HealthCheckPeriod = cfg.PoolHealthCheckPeriod
	}
	return pcfg, nil
}

func sslMode(mode string) string {
	if m := strings.TrimSpace(mode); m != "" {
		return m
	}
	return "disable"
}

// Connect opens the pool and checks it with a ping bounded by pingTimeout
// when ctx carries no deadline.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (database.DB, error) {
	pcfg, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	p, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	pingCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, pingTimeout)
		defer cancel()
	}
	if err := p.Ping(pingCtx); err != nil {
		p.Close()
		return nil, err
	}

	return &Pool{pool: p, sqlDB: stdlib.OpenDBFromPool(p)}, nil
}

func (p *Pool) ready() bool {
	return p != nil && p.pool != nil
}

func (p *Pool) Ping(ctx context.Context) error {
	if !p.ready() {
		return errNilPool
	}
	return p.pool.Ping(ctx)
}

func (p *Pool) Close() error {
	if p == nil {
		return nil
	}
	var err error
	if p.sqlDB != nil {
		err = p.sqlDB.Close()
	}
	if p.pool != nil {
		p.pool.Close()
	}
	return err
}

func (p *Pool) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	if !p.ready() {
		return 0, errNilPool
	}
	tag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (p *Pool) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	if !p.ready() {
		return nil, errNilPool
	}
	r, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (p *Pool) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	if !p.ready() {
		return errRow{err: errNilPool}
	}
	return p.pool.QueryRow(ctx, query, args...)
}

func (p *Pool) Begin(ctx context.Context) (database.Tx, error) {
	if !p.ready() {
		return nil, errNilPool
	}
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return pgxTx{tx: tx}, nil
}

func (p *Pool) SQLDB() *sql.DB {
	if p == nil {
		return nil
	}
	return p.sqlDB
}

type pgxTx struct {
	tx pgx.Tx
}

func (t pgxTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (t pgxTx) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	r, err := t.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (t pgxTx) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return t.tx.QueryRow(ctx, query, args...)
}

func (t pgxTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t pgxTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

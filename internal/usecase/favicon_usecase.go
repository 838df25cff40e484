package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"concoro/internal/domain/favicon"
	"concoro/internal/pkg/urlcanon"
	"concoro/internal/pkg/workerpool"
	"concoro/internal/repository"
)

const faviconCachePrefix = "favicon:"

type FaviconResolver interface {
	Resolve(ctx context.Context, domain string) (favicon.Favicon, error)
}

type WarmReport struct {
	Requested int
	Resolved  int
	Failed    int
}

type FaviconUsecase interface {
	Resolve(ctx context.Context, domainOrURL string) (favicon.Favicon, error)
	Warm(ctx context.Context, domains []string) (WarmReport, error)
}

type Favicons struct {
	repo     repository.FaviconRepository
	resolver FaviconResolver
	cache    Cache
	ttl      time.Duration
	workers  int
	rps      int
	logger   *log.Logger
	now      func() time.Time
}

func NewFaviconUsecase(repo repository.FaviconRepository, resolver FaviconResolver, cache Cache, ttl time.Duration, workers int, logger *log.Logger) *Favicons {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	if workers <= 0 {
		workers = 4
	}
	return &Favicons{repo: repo, resolver: resolver, cache: cache, ttl: ttl, workers: workers, rps: 5, logger: logger, now: time.Now}
}

// Resolve returns the stored icon while it is younger than the TTL and
// resolves it again otherwise.
func (u *Favicons) Resolve(ctx context.Context, domainOrURL string) (favicon.Favicon, error) {
	domain := urlcanon.DomainOf(domainOrURL)
	if domain == "" {
		return favicon.Favicon{}, ErrInvalidInput
	}

	f, err := loadCached(ctx, u.cache, faviconCachePrefix+domain, indexCacheTTL, func(ctx context.Context) (favicon.Favicon, error) {
		return u.resolve(ctx, domain)
	})
	if err != nil {
		if u.logger != nil {
			u.logger.Printf("[Favicon] Resolve failed domain=%s err=%v", domain, err)
		}
		return favicon.Favicon{}, ErrInternal
	}
	return f, nil
}

func (u *Favicons) resolve(ctx context.Context, domain string) (favicon.Favicon, error) {
	stored, err := u.repo.Get(ctx, domain)
	switch {
	case err == nil:
		if u.now().Sub(stored.ResolvedAt) < u.ttl {
			return stored, nil
		}
	case !errors.Is(err, repository.ErrFaviconNotFound) && u.logger != nil:
		u.logger.Printf("[Favicon] Stored lookup failed domain=%s err=%v", domain, err)
	}

	f, err := u.resolver.Resolve(ctx, domain)
	if err != nil {
		return favicon.Favicon{}, err
	}
	if err := u.repo.Upsert(ctx, f); err != nil && u.logger != nil {
		u.logger.Printf("[Favicon] Store failed domain=%s err=%v", domain, err)
	}
	return f, nil
}

// Warm resolves many domains through a rate limited worker pool.
func (u *Favicons) Warm(ctx context.Context, domains []string) (WarmReport, error) {
	unique := make([]string, 0, len(domains))
	seen := map[string]struct{}{}
	for _, d := range domains {
		d = urlcanon.DomainOf(d)
		if d == "" {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		unique = append(unique, d)
	}
	rep := WarmReport{Requested: len(unique)}
	if len(unique) == 0 {
		return rep, nil
	}

	pool := workerpool.New(u.workers, len(unique))
	pool.SetRateLimit(u.rps)
	results := pool.Run(ctx)
	for _, d := range unique {
		domain := d
		if err := pool.Submit(ctx, domain, func(ctx context.Context) error {
			_, err := u.Resolve(ctx, domain)
			return err
		}); err != nil {
			break
		}
	}
	pool.Close()

	for r := range results {
		if r.Err != nil {
			rep.Failed++
			continue
		}
		rep.Resolved++
	}

	if u.logger != nil {
		u.logger.Printf("[Favicon] Warm done requested=%d resolved=%d failed=%d", rep.Requested, rep.Resolved, rep.Failed)
	}
	return rep, ctx.Err()
}

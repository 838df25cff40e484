package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"concoro/internal/domain/favicon"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFaviconResolver struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]bool
	now   time.Time
}

func (r *fakeFaviconResolver) Resolve(_ context.Context, domain string) (favicon.Favicon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = map[string]int{}
	}
	r.calls[domain]++
	if r.fail[domain] {
		return favicon.Favicon{}, errors.New("unreachable")
	}
	return favicon.Favicon{Domain: domain, IconURL: "https://" + domain + "/favicon.ico", Source: favicon.SourceDefault, ResolvedAt: r.now}, nil
}

type lockedFaviconRepo struct {
	mu sync.Mutex
	fakeFaviconRepo
}

func (r *lockedFaviconRepo) Get(ctx context.Context, domain string) (favicon.Favicon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fakeFaviconRepo.Get(ctx, domain)
}

func (r *lockedFaviconRepo) Upsert(ctx context.Context, f favicon.Favicon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fakeFaviconRepo.Upsert(ctx, f)
}

func TestFaviconUsecase_ResolveHonoursTTL(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	repo := &lockedFaviconRepo{fakeFaviconRepo: fakeFaviconRepo{rows: map[string]favicon.Favicon{
		"fresh.it": {Domain: "fresh.it", IconURL: "https://fresh.it/icon.png", Source: favicon.SourceHTML, ResolvedAt: now.Add(-24 * time.Hour)},
		"stale.it": {Domain: "stale.it", IconURL: "https://stale.it/old.png", Source: favicon.SourceHTML, ResolvedAt: now.AddDate(0, -2, 0)},
	}}}
	resolver := &fakeFaviconResolver{now: now}
	uc := NewFaviconUsecase(repo, resolver, nil, 30*24*time.Hour, 2, nil)
	uc.now = func() time.Time { return now }

	f, err := uc.Resolve(context.Background(), "https://www.fresh.it/bandi?id=1")
	require.NoError(t, err)
	assert.Equal(t, "https://fresh.it/icon.png", f.IconURL)
	assert.Zero(t, resolver.calls["fresh.it"])

	f, err = uc.Resolve(context.Background(), "stale.it")
	require.NoError(t, err)
	assert.Equal(t, "https://stale.it/favicon.ico", f.IconURL)
	assert.Equal(t, 1, resolver.calls["stale.it"])
	assert.Equal(t, 1, repo.upserts)

	_, err = uc.Resolve(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFaviconUsecase_Warm(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	repo := &lockedFaviconRepo{fakeFaviconRepo: fakeFaviconRepo{rows: map[string]favicon.Favicon{}}}
	resolver := &fakeFaviconResolver{now: now, fail: map[string]bool{"down.it": true}}
	uc := NewFaviconUsecase(repo, resolver, nil, time.Hour, 2, nil)
	uc.rps = 0
	uc.now = func() time.Time { return now }

	rep, err := uc.Warm(context.Background(), []string{"a.it", "https://a.it/x", "b.it", "down.it", ""})
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Requested)
	assert.Equal(t, 2, rep.Resolved)
	assert.Equal(t, 1, rep.Failed)
	assert.Equal(t, 1, resolver.calls["a.it"])
}

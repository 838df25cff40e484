package sitemap

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concoro/internal/domain/articolo"
	"concoro/internal/domain/concorso"
	"concoro/internal/location"
	"concoro/internal/usecase"
)

type fakeConcorsi struct {
	rows        []concorso.Concorso
	err         error
	closedSince time.Time
	calls       int
}

func (f *fakeConcorsi) ListForSitemap(_ context.Context, _, closedSince time.Time) ([]concorso.Concorso, error) {
	f.calls++
	f.closedSince = closedSince
	return f.rows, f.err
}

type fakeArticoli struct{ rows []articolo.Articolo }

func (f fakeArticoli) ListAll(context.Context) ([]articolo.Articolo, error) { return f.rows, nil }

type fakeEnti struct{ rows []usecase.Ente }

func (f fakeEnti) ListEnti(context.Context) ([]usecase.Ente, error) { return f.rows, nil }

// mapCache stores loader results in memory without serialization.
type mapCache struct{ data map[string]document }

func (m *mapCache) GetOrLoad(ctx context.Context, key string, _ time.Duration, out any, load func(ctx context.Context) (any, error)) error {
	if d, ok := m.data[key]; ok {
		*out.(*document) = d
		return nil
	}
	v, err := load(ctx)
	if err != nil {
		return err
	}
	m.data[key] = v.(document)
	*out.(*document) = v.(document)
	return nil
}

var now = time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

func newGenerator(c ConcorsoSource, a ArticoloSource, e EnteSource, cache Cache) *Generator {
	g := NewGenerator("https://www.concoro.it", c, a, e, cache, nil)
	g.now = func() time.Time { return now }
	return g
}

func parseURLSet(t *testing.T, b []byte) urlSet {
	t.Helper()
	var set urlSet
	require.NoError(t, xml.Unmarshal(b, &set))
	return set
}

func TestBuild_CollectsAllSections(t *testing.T) {
	deadline := now.Add(48 * time.Hour)
	pub := now.Add(-24 * time.Hour)
	concorsi := &fakeConcorsi{rows: []concorso.Concorso{
		{ID: "a1", Slug: "infermieri-bari-a1", Titolo: "Infermieri", DataChiusura: &deadline, UpdatedAt: now},
	}}
	articoli := fakeArticoli{rows: []articolo.Articolo{{Slug: "guida", DataPubblicazione: &pub}}}
	enti := fakeEnti{rows: []usecase.Ente{{Name: "ASL Bari", Slug: "asl-bari", Count: 1}}}

	urls, err := newGenerator(concorsi, articoli, enti, nil).Build(context.Background())
	require.NoError(t, err)

	locs := map[string]URL{}
	for _, u := range urls {
		locs[u.Loc] = u
	}
	assert.Contains(t, locs, "https://www.concoro.it/")
	assert.Contains(t, locs, "https://www.concoro.it/articoli/guida")
	assert.Contains(t, locs, "https://www.concoro.it/enti/asl-bari")
	assert.Contains(t, locs, "https://www.concoro.it/regioni/lombardia")

	c := locs["https://www.concoro.it/concorsi/infermieri-bari-a1"]
	assert.Equal(t, "daily", c.ChangeFreq)
	assert.Equal(t, "0.8", c.Priority)
	assert.Equal(t, "2026-06-01", c.LastMod)

	assert.Equal(t, "2026-05-31", locs["https://www.concoro.it/articoli/guida"].LastMod)
	assert.Equal(t, now.Add(-closedWindow), concorsi.closedSince)
	assert.Len(t, urls, len(staticPages)+1+1+1+len(location.Regions()))
}

func TestSitemap_SplitsIntoIndex(t *testing.T) {
	rows := make([]concorso.Concorso, 5)
	for i := range rows {
		rows[i] = concorso.Concorso{ID: fmt.Sprintf("id%d", i), Slug: fmt.Sprintf("concorso-%d", i), Titolo: "T"}
	}
	g := newGenerator(&fakeConcorsi{rows: rows}, nil, nil, nil)
	g.perFile = 10

	root := g.Sitemap(context.Background())
	var idx sitemapIndex
	require.NoError(t, xml.Unmarshal(root, &idx))

	total := len(staticPages) + len(rows) + len(location.Regions())
	wantChunks := (total + 9) / 10
	require.Len(t, idx.Sitemaps, wantChunks)
	assert.Equal(t, "https://www.concoro.it/sitemap-1.xml", idx.Sitemaps[0].Loc)

	seen := 0
	for n := 1; n <= wantChunks; n++ {
		b, err := g.Chunk(context.Background(), n)
		require.NoError(t, err)
		set := parseURLSet(t, b)
		assert.LessOrEqual(t, len(set.URLs), 10)
		seen += len(set.URLs)
	}
	assert.Equal(t, total, seen)

	_, err := g.Chunk(context.Background(), wantChunks+1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSitemap_FallbackOnError(t *testing.T) {
	g := newGenerator(&fakeConcorsi{err: errors.New("db down")}, nil, nil, nil)

	set := parseURLSet(t, g.Sitemap(context.Background()))
	assert.Len(t, set.URLs, len(staticPages))
	assert.Equal(t, "https://www.concoro.it/", set.URLs[0].Loc)
}

func TestSitemap_Cached(t *testing.T) {
	concorsi := &fakeConcorsi{}
	g := newGenerator(concorsi, nil, nil, &mapCache{data: map[string]document{}})

	first := g.Sitemap(context.Background())
	second := g.Sitemap(context.Background())

	assert.Equal(t, first, second)
	assert.Equal(t, 1, concorsi.calls)
	_, err := g.Chunk(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRobots(t *testing.T) {
	got := Robots("https://www.concoro.it/")

	assert.True(t, strings.HasPrefix(got, "User-agent: *\n"))
	assert.Contains(t, got, "Disallow: /api/\n")
	assert.Contains(t, got, "Disallow: /profilo\n")
	assert.Contains(t, got, "Disallow: /notifiche\n")
	assert.Contains(t, got, "Sitemap: https://www.concoro.it/sitemap.xml\n")
}

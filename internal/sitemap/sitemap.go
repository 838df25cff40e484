// Package sitemap renders sitemap.xml (or a sitemap index with chunks) and robots.txt.
package sitemap

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"concoro/internal/domain/articolo"
	"concoro/internal/domain/concorso"
	"concoro/internal/location"
	"concoro/internal/pkg/urlcanon"
	"concoro/internal/usecase"
)

const (
	MaxURLsPerFile = 50000

	cacheKey = "sitemap:xml"
	cacheTTL = time.Hour

	// closed postings stay listed for this long after their deadline
	closedWindow = 90 * 24 * time.Hour

	xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"
)

var ErrNotFound = errors.New("sitemap not found")

type ConcorsoSource interface {
	ListForSitemap(ctx context.Context, now, closedSince time.Time) ([]concorso.Concorso, error)
}

type ArticoloSource interface {
	ListAll(ctx context.Context) ([]articolo.Articolo, error)
}

type EnteSource interface {
	ListEnti(ctx context.Context) ([]usecase.Ente, error)
}

type Cache interface {
	GetOrLoad(ctx context.Context, key string, ttl time.Duration, out any, load func(ctx context.Context) (any, error)) error
}

type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

type indexEntry struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type sitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Xmlns    string       `xml:"xmlns,attr"`
	Sitemaps []indexEntry `xml:"sitemap"`
}

// document is what gets cached: the root file plus numbered chunks when the
// URL set had to be split.
type document struct {
	Root   []byte   `json:"root"`
	Chunks [][]byte `json:"chunks,omitempty"`
}

var staticPages = []struct {
	path     string
	freq     string
	priority float64
}{
	{"/", "daily", 1.0},
	{"/concorsi", "hourly", 0.9},
	{"/articoli", "daily", 0.7},
	{"/enti", "daily", 0.6},
	{"/regioni", "weekly", 0.6},
	{"/chi-siamo", "monthly", 0.3},
	{"/privacy", "yearly", 0.1},
}

type Generator struct {
	site     string
	concorsi ConcorsoSource
	articoli ArticoloSource
	enti     EnteSource
	cache    Cache
	logger   *log.Logger
	now      func() time.Time
	perFile  int
}

func NewGenerator(site string, concorsi ConcorsoSource, articoli ArticoloSource, enti EnteSource, cache Cache, logger *log.Logger) *Generator {
	return &Generator{
		site:     site,
		concorsi: concorsi,
		articoli: articoli,
		enti:     enti,
		cache:    cache,
		logger:   logger,
		now:      time.Now,
		perFile:  MaxURLsPerFile,
	}
}

// Sitemap returns /sitemap.xml. Generation errors are logged and answered
// with the static pages so crawlers always get a valid document.
func (g *Generator) Sitemap(ctx context.Context) []byte {
	doc, err := g.document(ctx)
	if err != nil {
		g.logf("[Sitemap] Build failed, serving fallback err=%v", err)
		return g.fallback()
	}
	return doc.Root
}

// Chunk returns /sitemap-<n>.xml, 1-based.
func (g *Generator) Chunk(ctx context.Context, n int) ([]byte, error) {
	doc, err := g.document(ctx)
	if err != nil {
		return nil, err
	}
	if n < 1 || n > len(doc.Chunks) {
		return nil, ErrNotFound
	}
	return doc.Chunks[n-1], nil
}

func (g *Generator) document(ctx context.Context) (document, error) {
	if g.cache == nil {
		return g.render(ctx)
	}
	var doc document
	err := g.cache.GetOrLoad(ctx, cacheKey, cacheTTL, &doc, func(ctx context.Context) (any, error) {
		return g.render(ctx)
	})
	return doc, err
}

func (g *Generator) render(ctx context.Context) (document, error) {
	urls, err := g.Build(ctx)
	if err != nil {
		return document{}, err
	}

	perFile := g.perFile
	if perFile <= 0 {
		perFile = MaxURLsPerFile
	}
	if len(urls) <= perFile {
		root, err := encode(urlSet{Xmlns: xmlns, URLs: urls})
		return document{Root: root}, err
	}

	var doc document
	idx := sitemapIndex{Xmlns: xmlns}
	lastmod := g.now().UTC().Format("2006-01-02")
	for start, n := 0, 1; start < len(urls); start, n = start+perFile, n+1 {
		end := min(start+perFile, len(urls))
		chunk, err := encode(urlSet{Xmlns: xmlns, URLs: urls[start:end]})
		if err != nil {
			return document{}, err
		}
		doc.Chunks = append(doc.Chunks, chunk)
		idx.Sitemaps = append(idx.Sitemaps, indexEntry{
			Loc:     urlcanon.Canonical(g.site, "/sitemap-"+strconv.Itoa(n)+".xml"),
			LastMod: lastmod,
		})
	}
	root, err := encode(idx)
	if err != nil {
		return document{}, err
	}
	doc.Root = root
	return doc, nil
}

// Build collects every public URL of the site.
func (g *Generator) Build(ctx context.Context) ([]URL, error) {
	now := g.now()
	urls := g.staticURLs(now)

	if g.concorsi != nil {
		rows, err := g.concorsi.ListForSitemap(ctx, now, now.Add(-closedWindow))
		if err != nil {
			return nil, fmt.Errorf("concorsi: %w", err)
		}
		for _, c := range rows {
			slug := urlcanon.ConcorsoSlug(c.Slug, c.Titolo, c.Ente, c.ID)
			freq, prio := "weekly", 0.4
			if c.IsOpen(now) {
				freq, prio = "daily", 0.8
			}
			urls = append(urls, g.url(urlcanon.ConcorsoPath(slug), lastMod(c.UpdatedAt, c.PublishedAt()), freq, prio))
		}
	}

	if g.articoli != nil {
		rows, err := g.articoli.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("articoli: %w", err)
		}
		for _, a := range rows {
			if a.Slug == "" {
				continue
			}
			var pub time.Time
			if a.DataPubblicazione != nil {
				pub = *a.DataPubblicazione
			}
			urls = append(urls, g.url(urlcanon.ArticoloPath(a.Slug), lastMod(a.UpdatedAt, pub), "weekly", 0.6))
		}
	}

	if g.enti != nil {
		enti, err := g.enti.ListEnti(ctx)
		if err != nil {
			return nil, fmt.Errorf("enti: %w", err)
		}
		for _, e := range enti {
			if e.Slug == "" {
				continue
			}
			urls = append(urls, g.url(urlcanon.EntePath(e.Slug), "", "daily", 0.5))
		}
	}

	for _, r := range location.Regions() {
		urls = append(urls, g.url(urlcanon.RegionePath(r.Slug), "", "daily", 0.5))
	}

	return dedupe(urls), nil
}

func (g *Generator) staticURLs(now time.Time) []URL {
	day := now.UTC().Format("2006-01-02")
	out := make([]URL, 0, len(staticPages))
	for _, p := range staticPages {
		out = append(out, g.url(p.path, day, p.freq, p.priority))
	}
	return out
}

func (g *Generator) fallback() []byte {
	b, err := encode(urlSet{Xmlns: xmlns, URLs: g.staticURLs(g.now())})
	if err != nil {
		return []byte(xml.Header + `<urlset xmlns="` + xmlns + `"></urlset>`)
	}
	return b
}

func (g *Generator) url(path, lastmod, freq string, priority float64) URL {
	return URL{
		Loc:        urlcanon.Canonical(g.site, path),
		LastMod:    lastmod,
		ChangeFreq: freq,
		Priority:   strconv.FormatFloat(priority, 'f', 1, 64),
	}
}

func (g *Generator) logf(format string, args ...any) {
	if g.logger != nil {
		g.logger.Printf(format, args...)
	}
}

// Robots renders robots.txt for the site.
func Robots(site string) string {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("Disallow: /api/\n")
	b.WriteString("Disallow: /profilo\n")
	b.WriteString("Disallow: /notifiche\n")
	b.WriteString("\n")
	b.WriteString("Sitemap: " + urlcanon.Canonical(site, "/sitemap.xml") + "\n")
	return b.String()
}

func lastMod(times ...time.Time) string {
	for _, t := range times {
		if !t.IsZero() {
			return t.UTC().Format("2006-01-02")
		}
	}
	return ""
}

func dedupe(urls []URL) []URL {
	seen := make(map[string]struct{}, len(urls))
	out := urls[:0]
	for _, u := range urls {
		if _, ok := seen[u.Loc]; ok {
			continue
		}
		seen[u.Loc] = struct{}{}
		out = append(out, u)
	}
	return out
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Package favicon discovers the best icon a site advertises in its HTML.
package favicon

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"concoro/internal/domain/favicon"

	"github.com/gocolly/colly/v2"
)

const (
	defaultTimeout   = 8 * time.Second
	defaultUserAgent = "Mozilla/5.0 (compatible; ConcoroBot/1.0; +https://www.concoro.it)"

	// sizes="any" is used by scalable icons
	anySize = 512
)

// FallbackURL is the public favicon service used when a site cannot be fetched.
func FallbackURL(domain string) string {
	return "https://www.google.com/s2/favicons?domain=" + url.QueryEscape(domain) + "&sz=64"
}

type Resolver struct {
	timeout   time.Duration
	userAgent string
	transport http.RoundTripper
	homeURL   func(domain string) string
	logger    *log.Logger
	now       func() time.Time
}

type Option func(*Resolver)

func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func WithTransport(t http.RoundTripper) Option {
	return func(r *Resolver) { r.transport = t }
}

// WithHomeURL overrides how a domain maps to the page that is fetched.
func WithHomeURL(f func(domain string) string) Option {
	return func(r *Resolver) {
		if f != nil {
			r.homeURL = f
		}
	}
}

func NewResolver(logger *log.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		timeout:   defaultTimeout,
		userAgent: defaultUserAgent,
		homeURL:   func(domain string) string { return "https://" + domain + "/" },
		logger:    logger,
		now:       time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

type candidate struct {
	href string
	rank int
	size int
	pos  int
}

// Resolve fetches the domain home page. It never fails for a reachable
// domain: pages without icon links yield /favicon.ico, and fetch errors
// yield the fallback service URL.
func (r *Resolver) Resolve(ctx context.Context, domain string) (favicon.Favicon, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return favicon.Favicon{}, errors.New("empty domain")
	}
	if err := ctx.Err(); err != nil {
		return favicon.Favicon{}, err
	}

	c := colly.NewCollector(
		colly.UserAgent(r.userAgent),
		colly.MaxDepth(1),
		colly.IgnoreRobotsTxt(),
	)
	c.SetRequestTimeout(r.timeout)
	if r.transport != nil {
		c.WithTransport(r.transport)
	}

	var (
		cands    []candidate
		finalURL *url.URL
		fetchErr error
	)

	c.OnResponse(func(resp *colly.Response) {
		finalURL = resp.Request.URL
	})
	c.OnHTML("link[rel][href]", func(e *colly.HTMLElement) {
		rank := relRank(e.Attr("rel"))
		if rank == 0 {
			return
		}
		href := e.Request.AbsoluteURL(strings.TrimSpace(e.Attr("href")))
		if href == "" {
			return
		}
		cands = append(cands, candidate{href: href, rank: rank, size: parseSizes(e.Attr("sizes")), pos: len(cands)})
	})
	c.OnError(func(resp *colly.Response, err error) {
		fetchErr = err
	})

	if err := c.Visit(r.homeURL(domain)); err != nil && fetchErr == nil {
		fetchErr = err
	}

	out := favicon.Favicon{Domain: domain, ResolvedAt: r.now().UTC()}
	switch {
	case fetchErr != nil || finalURL == nil:
		if r.logger != nil {
			r.logger.Printf("[Favicon] Fetch failed domain=%s err=%v", domain, fetchErr)
		}
		out.IconURL = FallbackURL(domain)
		out.Source = favicon.SourceFallback
	case len(cands) > 0:
		out.IconURL = best(cands).href
		out.Source = favicon.SourceHTML
	default:
		out.IconURL = (&url.URL{Scheme: finalURL.Scheme, Host: finalURL.Host, Path: "/favicon.ico"}).String()
		out.Source = favicon.SourceDefault
	}
	return out, nil
}

// relRank orders link relations: apple-touch-icon, then icon, then the
// legacy "shortcut icon". Zero means not an icon.
func relRank(rel string) int {
	tokens := strings.Fields(strings.ToLower(rel))
	hasIcon, hasShortcut := false, false
	for _, t := range tokens {
		switch t {
		case "apple-touch-icon", "apple-touch-icon-precomposed":
			return 3
		case "icon":
			hasIcon = true
		case "shortcut":
			hasShortcut = true
		}
	}
	switch {
	case hasIcon && hasShortcut:
		return 1
	case hasIcon:
		return 2
	}
	return 0
}

// parseSizes returns the largest edge declared in a sizes attribute.
func parseSizes(sizes string) int {
	max := 0
	for _, s := range strings.Fields(strings.ToLower(sizes)) {
		if s == "any" {
			if anySize > max {
				max = anySize
			}
			continue
		}
		w, h, ok := strings.Cut(s, "x")
		if !ok {
			continue
		}
		wi, err1 := strconv.Atoi(w)
		hi, err2 := strconv.Atoi(h)
		if err1 != nil || err2 != nil {
			continue
		}
		if wi > max {
			max = wi
		}
		if hi > max {
			max = hi
		}
	}
	return max
}

func best(cands []candidate) candidate {
	sorted := make([]candidate, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].rank != sorted[j].rank {
			return sorted[i].rank > sorted[j].rank
		}
		if sorted[i].size != sorted[j].size {
			return sorted[i].size > sorted[j].size
		}
		return sorted[i].pos < sorted[j].pos
	})
	return sorted[0]
}

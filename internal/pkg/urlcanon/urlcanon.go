// Package urlcanon builds slugs and canonical URLs for public pages.
package urlcanon

import (
	"net"
	"net/url"
	"strings"

	"concoro/internal/location"

	"github.com/gosimple/slug"
)

const MaxSlugLength = 80

// Slugify returns an Italian-aware slug of at most MaxSlugLength runes,
// cut on a dash boundary when possible.
func Slugify(s string) string {
	out := slug.MakeLang(strings.TrimSpace(s), "it")
	return truncateSlug(out, MaxSlugLength)
}

func truncateSlug(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	if i := strings.LastIndexByte(cut, '-'); i > max/2 {
		cut = cut[:i]
	}
	return strings.Trim(cut, "-")
}

// ConcorsoSlug prefers the stored slug; otherwise it derives one from title
// and organization and appends a short id so that equal titles stay distinct.
func ConcorsoSlug(stored, titolo, ente, id string) string {
	if s := Slugify(stored); s != "" {
		return s
	}
	base := Slugify(strings.TrimSpace(titolo + " " + ente))
	short := shortID(id)
	if base == "" {
		return short
	}
	if short == "" {
		return base
	}
	return truncateSlug(base, MaxSlugLength-len(short)-1) + "-" + short
}

func shortID(id string) string {
	s := slug.Make(id)
	s = strings.ReplaceAll(s, "-", "")
	if len(s) > 8 {
		s = s[:8]
	}
	return s
}

// IDFromSlug extracts the short id suffix written by ConcorsoSlug.
func IDFromSlug(s string) string {
	s = strings.TrimSpace(s)
	i := strings.LastIndexByte(s, '-')
	if i < 0 || i == len(s)-1 {
		return ""
	}
	return s[i+1:]
}

func EnteSlug(ente string) string {
	return Slugify(ente)
}

// RegioneSlug maps any spelling of a region, or of one of its provinces, to
// the region's slug. Unknown names give "".
func RegioneSlug(name string) string {
	r, ok := location.ResolveRegion(name)
	if !ok {
		return ""
	}
	return r.Slug
}

func ConcorsoPath(slug string) string {
	return "/concorsi/" + slug
}

func ArticoloPath(slug string) string {
	return "/articoli/" + slug
}

func EntePath(enteSlug string) string {
	return "/enti/" + enteSlug
}

func RegionePath(regioneSlug string) string {
	return "/regioni/" + regioneSlug
}

var trackingParams = map[string]struct{}{
	"fbclid":  {},
	"gclid":   {},
	"msclkid": {},
	"ref":     {},
}

// Canonical joins base and path into an absolute https URL with a lowercase
// host, no query, no fragment and no trailing slash (except for the root).
func Canonical(base, path string) string {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil || u.Host == "" {
		u = &url.URL{Host: strings.Trim(strings.TrimSpace(base), "/")}
	}
	u.Scheme = "https"
	u.Host = strings.ToLower(u.Host)
	u.RawQuery = ""
	u.Fragment = ""
	u.User = nil

	p := "/" + strings.Trim(strings.TrimSpace(path), "/")
	prefix := strings.TrimRight(u.Path, "/")
	full := prefix + p
	if full != "/" {
		full = strings.TrimRight(full, "/")
	}
	if full == "" {
		full = "/"
	}
	u.Path = full
	u.RawPath = ""
	return u.String()
}

// StripTracking removes utm_* and click-id parameters from rawURL.
func StripTracking(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return rawURL
	}
	q := u.Query()
	changed := false
	for k := range q {
		lk := strings.ToLower(k)
		if _, ok := trackingParams[lk]; ok || strings.HasPrefix(lk, "utm_") {
			q.Del(k)
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// DomainOf returns the lowercase host of rawURL without port and "www.".
// Bare hosts without a scheme are accepted.
func DomainOf(rawURL string) string {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := u.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	host = strings.TrimPrefix(host, "www.")
	if host == "" || !strings.Contains(host, ".") {
		return ""
	}
	return host
}

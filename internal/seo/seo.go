// Package seo builds page metadata and schema.org JSON-LD for public pages.
package seo

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"concoro/internal/domain/articolo"
	"concoro/internal/domain/concorso"
	"concoro/internal/location"
	"concoro/internal/pkg/urlcanon"
)

const (
	SiteName = "Concoro"

	MaxTitleLength       = 70
	MaxDescriptionLength = 160
	maxHeadlineLength    = 110

	// closed postings stop being indexed this long after the deadline
	noindexAfter = 90 * 24 * time.Hour

	RobotsIndex   = "index, follow"
	RobotsNoindex = "noindex, follow"
)

type Meta struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Canonical   string            `json:"canonical"`
	Robots      string            `json:"robots"`
	OpenGraph   map[string]string `json:"open_graph"`
	JSONLD      map[string]any    `json:"json_ld"`
}

type Builder struct {
	site string
	loc  *time.Location
	now  func() time.Time
}

func NewBuilder(site string, loc *time.Location) *Builder {
	if loc == nil {
		loc = time.UTC
	}
	return &Builder{site: site, loc: loc, now: time.Now}
}

func (b *Builder) ConcorsoMeta(c concorso.Concorso) Meta {
	now := b.now()
	slug := urlcanon.ConcorsoSlug(c.Slug, c.Titolo, c.Ente, c.ID)
	canonical := urlcanon.Canonical(b.site, urlcanon.ConcorsoPath(slug))

	title := ConcorsoTitle(c.Titolo, c.Ente)
	desc := Truncate(joinSentences(deadlineSentence(c, now, b.loc), summary(c)), MaxDescriptionLength)

	robots := RobotsIndex
	if !c.IsOpen(now) && c.DataChiusura != nil && now.Sub(*c.DataChiusura) > noindexAfter {
		robots = RobotsNoindex
	}

	ld := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "JobPosting",
		"title":       c.Titolo,
		"description": firstNonEmpty(strings.TrimSpace(c.Descrizione), desc),
		"datePosted":  c.PublishedAt().In(b.loc).Format("2006-01-02"),
		"url":         canonical,
		"directApply": false,
		"hiringOrganization": map[string]any{
			"@type": "Organization",
			"name":  c.Ente,
		},
		"jobLocation": map[string]any{
			"@type": "Place",
			"address": map[string]any{
				"@type":           "PostalAddress",
				"addressRegion":   regionName(c.AreaGeografica),
				"addressLocality": strings.TrimSpace(c.AreaGeografica),
				"addressCountry":  "IT",
			},
		},
	}
	if c.DataChiusura != nil {
		ld["validThrough"] = c.DataChiusura.In(b.loc).Format(time.RFC3339)
	}
	if c.NumeroPosti != nil && *c.NumeroPosti > 0 {
		ld["totalJobOpenings"] = *c.NumeroPosti
	}
	if t := strings.TrimSpace(c.Tipologia); t != "" {
		ld["employmentType"] = t
	}
	if s := strings.TrimSpace(c.Settore); s != "" {
		ld["industry"] = s
	}

	return Meta{
		Title:       title,
		Description: desc,
		Canonical:   canonical,
		Robots:      robots,
		OpenGraph: map[string]string{
			"og:type":        "website",
			"og:site_name":   SiteName,
			"og:title":       title,
			"og:description": desc,
			"og:url":         canonical,
			"og:locale":      "it_IT",
		},
		JSONLD: ld,
	}
}

func (b *Builder) ArticoloMeta(a articolo.Articolo) Meta {
	canonical := urlcanon.Canonical(b.site, urlcanon.ArticoloPath(a.Slug))
	title := Truncate(a.Titolo, MaxTitleLength-len(" | "+SiteName)) + " | " + SiteName
	desc := Truncate(firstNonEmpty(strings.TrimSpace(a.Sottotitolo), plain(a.Contenuto)), MaxDescriptionLength)

	ld := map[string]any{
		"@context":         "https://schema.org",
		"@type":            "Article",
		"headline":         Truncate(a.Titolo, maxHeadlineLength),
		"description":      desc,
		"mainEntityOfPage": canonical,
		"dateModified":     a.UpdatedAt.In(b.loc).Format(time.RFC3339),
		"publisher": map[string]any{
			"@type": "Organization",
			"name":  SiteName,
			"url":   urlcanon.Canonical(b.site, "/"),
		},
	}
	if a.DataPubblicazione != nil {
		ld["datePublished"] = a.DataPubblicazione.In(b.loc).Format(time.RFC3339)
	}
	if a.ImageURL != "" {
		ld["image"] = a.ImageURL
	}
	if len(a.Tags) > 0 {
		ld["keywords"] = strings.Join(a.Tags, ", ")
	}

	og := map[string]string{
		"og:type":        "article",
		"og:site_name":   SiteName,
		"og:title":       title,
		"og:description": desc,
		"og:url":         canonical,
		"og:locale":      "it_IT",
	}
	if a.ImageURL != "" {
		og["og:image"] = a.ImageURL
	}

	return Meta{
		Title:       title,
		Description: desc,
		Canonical:   canonical,
		Robots:      RobotsIndex,
		OpenGraph:   og,
		JSONLD:      ld,
	}
}

// ConcorsoTitle renders "<titolo> - <ente> | Concoro" within MaxTitleLength,
// shortening the title first and dropping the organization if needed.
func ConcorsoTitle(titolo, ente string) string {
	titolo = collapse(titolo)
	ente = collapse(ente)
	suffix := " | " + SiteName

	full := titolo
	if ente != "" {
		full += " - " + ente
	}
	if utf8.RuneCountInString(full+suffix) <= MaxTitleLength {
		return full + suffix
	}
	if ente != "" {
		room := MaxTitleLength - utf8.RuneCountInString(" - "+ente+suffix)
		if room >= 30 {
			return Truncate(titolo, room) + " - " + ente + suffix
		}
	}
	return Truncate(titolo, MaxTitleLength-utf8.RuneCountInString(suffix)) + suffix
}

// Truncate shortens s to at most max runes, cutting on a word boundary and
// appending an ellipsis.
func Truncate(s string, max int) string {
	s = collapse(s)
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	cut := string(r[:max-1])
	if i := strings.LastIndexByte(cut, ' '); i > len(cut)/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:-") + "…"
}

func deadlineSentence(c concorso.Concorso, now time.Time, loc *time.Location) string {
	if c.DataChiusura == nil {
		return ""
	}
	date := c.DataChiusura.In(loc).Format("02/01/2006")
	if !c.IsOpen(now) {
		return "Bando scaduto il " + date + "."
	}
	days := concorso.CalendarDaysBetween(now, *c.DataChiusura, loc)
	switch {
	case days <= 0:
		return "Scade oggi, " + date + "."
	case days == 1:
		return "Scade domani, " + date + "."
	default:
		return fmt.Sprintf("Scadenza %s, mancano %d giorni.", date, days)
	}
}

func summary(c concorso.Concorso) string {
	if d := plain(c.Descrizione); d != "" {
		return d
	}
	s := "Concorso pubblico " + collapse(c.Titolo)
	if c.Ente != "" {
		s += " presso " + collapse(c.Ente)
	}
	if c.NumeroPosti != nil && *c.NumeroPosti > 0 {
		s += fmt.Sprintf(", %d posti", *c.NumeroPosti)
	}
	return s + "."
}

func regionName(area string) string {
	if location.IsNational(area) {
		return "Italia"
	}
	rs := location.RegionsIn(area)
	if len(rs) == 0 {
		return ""
	}
	return rs[0].Name
}

func joinSentences(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// plain strips markup from stored rich text.
func plain(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '<':
			depth++
		case r == '>' && depth > 0:
			depth--
			b.WriteByte(' ')
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return collapse(b.String())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

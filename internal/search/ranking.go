package search

import (
	"sort"
	"strings"
	"time"

	"concoro/internal/location"
)

// Item is the ranking view of a concorso.
type Item struct {
	OriginalIndex     int
	ID                string
	Titolo            string
	Ente              string
	Descrizione       string
	AreaGeografica    string
	Link              string
	Open              bool
	DataPubblicazione *time.Time
	DataChiusura      *time.Time
}

type ItemScore struct {
	ID          string
	Relevance   float64
	Freshness   float64
	Urgency     float64
	DataQuality float64
	FinalScore  float64
}

// Matches reports whether the item satisfies the query: either one of the
// expanded phrases appears verbatim or every query word appears somewhere.
func Matches(it Item, qctx QueryContext) bool {
	if qctx.Normalized == "" {
		return true
	}
	doc := location.Normalize(strings.Join([]string{it.Titolo, it.Ente, it.Descrizione, it.AreaGeografica}, " "))
	if doc == "" {
		return false
	}
	for _, v := range qctx.Variants {
		if v != "" && strings.Contains(doc, v) {
			return true
		}
	}
	for _, w := range strings.Fields(qctx.Normalized) {
		if !strings.Contains(doc, w) {
			return false
		}
	}
	return true
}

func ComputeRelevance(it Item, queryVariants []string) float64 {
	if len(queryVariants) == 0 {
		return 0
	}

	title := location.Normalize(it.Titolo)
	ente := location.Normalize(it.Ente)
	desc := location.Normalize(it.Descrizione)

	score := 0.0
	for _, v := range queryVariants {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if title != "" && strings.Contains(title, v) {
			score += 3
		}
		if ente != "" && strings.Contains(ente, v) {
			score += 2
		}
		if desc != "" && strings.Contains(desc, v) {
			score += 1
		}
		if score >= 10 {
			return 10
		}
	}
	return score
}

func ComputeFreshness(it Item, now time.Time) float64 {
	if it.DataPubblicazione == nil || it.DataPubblicazione.IsZero() {
		return 0
	}
	age := now.Sub(*it.DataPubblicazione)
	if age < 0 {
		age = 0
	}

	switch {
	case age <= 24*time.Hour:
		return 5
	case age <= 3*24*time.Hour:
		return 4
	case age <= 7*24*time.Hour:
		return 3
	case age <= 14*24*time.Hour:
		return 2
	case age <= 30*24*time.Hour:
		return 1
	}
	return 0
}

// ComputeUrgency favours open postings that close soon; closed ones score 0.
func ComputeUrgency(it Item, now time.Time) float64 {
	if !it.Open || it.DataChiusura == nil || it.DataChiusura.IsZero() {
		return 0
	}
	left := it.DataChiusura.Sub(now)
	switch {
	case left < 0:
		return 0
	case left <= 7*24*time.Hour:
		return 3
	case left <= 14*24*time.Hour:
		return 2
	case left <= 30*24*time.Hour:
		return 1
	}
	return 0
}

func ComputeDataQuality(it Item) float64 {
	score := 0.0
	if strings.TrimSpace(it.Titolo) != "" {
		score += 1
	}
	if strings.TrimSpace(it.Ente) != "" {
		score += 1
	}
	if strings.TrimSpace(it.AreaGeografica) != "" {
		score += 1
	}
	if len(strings.TrimSpace(it.Descrizione)) > 100 {
		score += 1
	}
	if strings.TrimSpace(it.Link) != "" {
		score += 1
	}
	return score
}

func ScoreItem(it Item, queryVariants []string, now time.Time) ItemScore {
	rel := ComputeRelevance(it, queryVariants)
	fresh := ComputeFreshness(it, now)
	urg := ComputeUrgency(it, now)
	qual := ComputeDataQuality(it)

	final := (rel * 2.0) + (fresh * 1.0) + (urg * 1.0) + (qual * 0.5)
	if !it.Open {
		final -= 5
	}

	return ItemScore{
		ID:          it.ID,
		Relevance:   rel,
		Freshness:   fresh,
		Urgency:     urg,
		DataQuality: qual,
		FinalScore:  final,
	}
}

// RankConcorsi orders items by descending score. Ties keep input order.
func RankConcorsi(items []Item, queryVariants []string, now time.Time) []Item {
	if len(items) == 0 {
		return items
	}

	type scored struct {
		idx   int
		score float64
	}
	ss := make([]scored, len(items))
	for i := range items {
		ss[i] = scored{idx: i, score: ScoreItem(items[i], queryVariants, now).FinalScore}
	}

	sort.SliceStable(ss, func(i, j int) bool {
		return ss[i].score > ss[j].score
	})

	out := make([]Item, 0, len(items))
	for _, it := range ss {
		out = append(out, items[it.idx])
	}
	return out
}

package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
)

const (
	concorsiListPrefix   = "concorsi:list:"
	concorsiDetailPrefix = "concorsi:detail:"
	concorsiRelatedKey   = "concorsi:related:"
	entiListKey          = "enti:list"
	regioniListKey       = "regioni:list"
	articoliListPrefix   = "articoli:list:"
	articoliDetailPrefix = "articoli:detail:"
	articoliTagsKey      = "articoli:tags"
	matchesPrefix        = "matches:"
)

type concorsiListCacheKeyInput struct {
	Query             string `json:"q"`
	Location          string `json:"location"`
	Regione           string `json:"regione"`
	Ente              string `json:"ente"`
	EnteExact         string `json:"ente_exact"`
	Settore           string `json:"settore"`
	Tipologia         string `json:"tipologia"`
	Stato             string `json:"stato"`
	ClosingWithinDays *int   `json:"closing_within_days"`
	DeadlineFrom      string `json:"deadline_from"`
	DeadlineTo        string `json:"deadline_to"`
	Sort              string `json:"sort"`
	Page              int    `json:"page"`
	Limit             int    `json:"limit"`
}

func normalizeSearchValue(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	s = strings.Join(strings.Fields(s), " ")
	return s
}

func formatKeyTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// ConcorsiListCacheKey hashes the normalized, already validated list params.
func ConcorsiListCacheKey(p ConcorsoListParams) string {
	in := concorsiListCacheKeyInput{
		Query:        normalizeSearchValue(p.Query),
		Location:     normalizeSearchValue(p.Location),
		Regione:      normalizeSearchValue(p.Regione),
		Ente:         normalizeSearchValue(p.Ente),
		EnteExact:    normalizeSearchValue(p.enteExact),
		Settore:      normalizeSearchValue(p.Settore),
		Tipologia:    normalizeSearchValue(p.Tipologia),
		Stato:        p.Stato,
		DeadlineFrom: formatKeyTime(p.DeadlineFrom),
		DeadlineTo:   formatKeyTime(p.DeadlineTo),
		Sort:         p.Sort,
		Page:         p.Page,
		Limit:        p.Limit,

		ClosingWithinDays: p.ClosingWithinDays,
	}

	b, _ := json.Marshal(in)
	sum := sha256.Sum256(b)
	return concorsiListPrefix + hex.EncodeToString(sum[:])
}

func concorsoDetailCacheKey(idOrSlug string) string {
	return concorsiDetailPrefix + strings.TrimSpace(idOrSlug)
}

func matchesCacheKey(userID string) string {
	return matchesPrefix + userID
}

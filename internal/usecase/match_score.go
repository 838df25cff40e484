package usecase

import (
	"strings"

	"concoro/internal/domain/concorso"
	"concoro/internal/domain/notification"
	"concoro/internal/domain/user"
	"concoro/internal/location"
)

const (
	scoreRegion  = 40
	scoreSettore = 30
	scoreKeyword = 30
	maxScore     = 100
)

// Score rates how well c fits the preferences in p, from 0 to 100.
func Score(p user.Profile, c concorso.Concorso) notification.Match {
	m := notification.Match{UserID: p.UserID, ConcorsoID: c.ID, Reasons: []string{}}

	for _, slug := range p.Regioni {
		if inRegion(c.AreaGeografica, slug) {
			name := slug
			if r, ok := location.RegionBySlug(slug); ok {
				name = r.Name
			}
			m.Score += scoreRegion
			m.Reasons = append(m.Reasons, "Regione: "+name)
			break
		}
	}

	settore := location.Normalize(c.Settore)
	if settore != "" {
		for _, s := range p.Settori {
			ns := location.Normalize(s)
			if ns == "" {
				continue
			}
			if ns == settore || location.ContainsWords(settore, ns) {
				m.Score += scoreSettore
				m.Reasons = append(m.Reasons, "Settore: "+strings.TrimSpace(c.Settore))
				break
			}
		}
	}

	text := location.Normalize(c.Titolo + " " + c.Descrizione)
	for _, k := range p.Keywords {
		nk := location.Normalize(k)
		if nk != "" && location.ContainsWords(text, nk) {
			m.Score += scoreKeyword
			m.Reasons = append(m.Reasons, "Parola chiave: "+strings.TrimSpace(k))
			break
		}
	}

	if m.Score > maxScore {
		m.Score = maxScore
	}
	return m
}

package handler

import (
	"time"

	"concoro/internal/delivery/http/dto"
	"concoro/internal/domain/articolo"
	"concoro/internal/domain/concorso"
	"concoro/internal/domain/notification"
	"concoro/internal/domain/user"
	"concoro/internal/location"
	"concoro/internal/pkg/urlcanon"
)

// Presenter renders domain values as API responses. Site is the public base
// URL used for canonical links; Loc drives day counts.
type Presenter struct {
	Site string
	Loc  *time.Location
	Now  func() time.Time
}

func NewPresenter(site string, loc *time.Location) *Presenter {
	if loc == nil {
		loc = time.UTC
	}
	return &Presenter{Site: site, Loc: loc, Now: time.Now}
}

func (p *Presenter) Concorso(c concorso.Concorso, withDescription bool) dto.ConcorsoResponse {
	now := p.Now()
	slug := urlcanon.ConcorsoSlug(c.Slug, c.Titolo, c.Ente, c.ID)

	regioni := []string{}
	for _, r := range location.RegionsIn(c.AreaGeografica) {
		regioni = append(regioni, r.Slug)
	}

	res := dto.ConcorsoResponse{
		ID:                c.ID,
		Slug:              slug,
		URL:               urlcanon.Canonical(p.Site, urlcanon.ConcorsoPath(slug)),
		Titolo:            c.Titolo,
		Ente:              c.Ente,
		EnteSlug:          urlcanon.EnteSlug(c.Ente),
		AreaGeografica:    c.AreaGeografica,
		Regioni:           regioni,
		Settore:           c.Settore,
		Tipologia:         c.Tipologia,
		Link:              urlcanon.StripTracking(c.Link),
		NumeroPosti:       c.NumeroPosti,
		Stato:             concorso.StatoClosed,
		IsOpen:            c.IsOpen(now),
		DataPubblicazione: c.DataPubblicazione,
		DataChiusura:      c.DataChiusura,
	}
	if res.IsOpen {
		res.Stato = concorso.StatoOpen
	}
	if withDescription {
		res.Descrizione = c.Descrizione
	}
	if days, ok := c.DaysLeft(now, p.Loc); ok && res.IsOpen {
		res.DaysLeft = &days
	}
	return res
}

func (p *Presenter) Concorsi(items []concorso.Concorso) []dto.ConcorsoResponse {
	out := make([]dto.ConcorsoResponse, 0, len(items))
	for _, c := range items {
		out = append(out, p.Concorso(c, false))
	}
	return out
}

func (p *Presenter) Articolo(a articolo.Articolo, withContent bool) dto.ArticoloResponse {
	res := dto.ArticoloResponse{
		ID:                a.ID,
		Slug:              a.Slug,
		URL:               urlcanon.Canonical(p.Site, urlcanon.ArticoloPath(a.Slug)),
		Titolo:            a.Titolo,
		Sottotitolo:       a.Sottotitolo,
		Tags:              a.Tags,
		ImageURL:          a.ImageURL,
		ConcorsoID:        a.ConcorsoID,
		DataPubblicazione: a.DataPubblicazione,
		UpdatedAt:         a.UpdatedAt,
	}
	if res.Tags == nil {
		res.Tags = []string{}
	}
	if withContent {
		res.Contenuto = a.Contenuto
	}
	return res
}

func (p *Presenter) Articoli(items []articolo.Articolo) []dto.ArticoloResponse {
	out := make([]dto.ArticoloResponse, 0, len(items))
	for _, a := range items {
		out = append(out, p.Articolo(a, false))
	}
	return out
}

func (p *Presenter) Notification(n notification.Notification) dto.NotificationResponse {
	res := dto.NotificationResponse{
		ID:         n.ID,
		ConcorsoID: n.ConcorsoID,
		Type:       n.Type,
		Title:      n.Title,
		Message:    n.Message,
		IsRead:     n.IsRead,
		CreatedAt:  n.CreatedAt,
		ReadAt:     n.ReadAt,
	}
	if n.DaysLeft != notification.NoDaysLeft {
		d := n.DaysLeft
		res.DaysLeft = &d
	}
	return res
}

func (p *Presenter) Profile(prof user.Profile) dto.UserProfileResponse {
	return dto.UserProfileResponse{
		UserID:          prof.UserID,
		Email:           prof.Email,
		Nome:            prof.Nome,
		Cognome:         prof.Cognome,
		Regioni:         nonNilStrings(prof.Regioni),
		Settori:         nonNilStrings(prof.Settori),
		Keywords:        nonNilStrings(prof.Keywords),
		NotifyEmail:     prof.NotifyEmail,
		NotifyDeadlines: prof.NotifyDeadlines,
		NotifyMatches:   prof.NotifyMatches,
		UpdatedAt:       prof.UpdatedAt,
	}
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func pageOf[T any](items []T, total, page, limit, totalPages int, hasMore bool) dto.PageResponse[T] {
	if items == nil {
		items = []T{}
	}
	return dto.PageResponse[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		HasMore:    hasMore,
	}
}

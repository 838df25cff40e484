package dto

import "time"

type ConcorsoResponse struct {
	ID                string     `json:"id"`
	Slug              string     `json:"slug"`
	URL               string     `json:"url"`
	Titolo            string     `json:"titolo"`
	Ente              string     `json:"ente"`
	EnteSlug          string     `json:"ente_slug"`
	AreaGeografica    string     `json:"area_geografica"`
	Regioni           []string   `json:"regioni"`
	Settore           string     `json:"settore"`
	Tipologia         string     `json:"tipologia"`
	Descrizione       string     `json:"descrizione,omitempty"`
	Link              string     `json:"link"`
	NumeroPosti       *int       `json:"numero_posti"`
	Stato             string     `json:"stato"`
	IsOpen            bool       `json:"is_open"`
	DaysLeft          *int       `json:"days_left"`
	DataPubblicazione *time.Time `json:"data_pubblicazione"`
	DataChiusura      *time.Time `json:"data_chiusura"`
}

type PageResponse[T any] struct {
	Items      []T  `json:"items"`
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"total_pages"`
	HasMore    bool `json:"has_more"`
	Truncated  bool `json:"truncated,omitempty"`
}

type EnteResponse struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

type RegioneResponse struct {
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

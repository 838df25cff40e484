package dto

import "time"

type ArticoloResponse struct {
	ID                string     `json:"id"`
	Slug              string     `json:"slug"`
	URL               string     `json:"url"`
	Titolo            string     `json:"titolo"`
	Sottotitolo       string     `json:"sottotitolo"`
	Contenuto         string     `json:"contenuto,omitempty"`
	Tags              []string   `json:"tags"`
	ImageURL          string     `json:"image_url"`
	ConcorsoID        *string    `json:"concorso_id"`
	DataPubblicazione *time.Time `json:"data_pubblicazione"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type ArticoloDetailResponse struct {
	ArticoloResponse
	Concorso *ConcorsoResponse `json:"concorso"`
}

type TagResponse struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

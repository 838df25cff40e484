package articolo

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("articolo not found")

type Articolo struct {
	ID                string
	Slug              string
	Titolo            string
	Sottotitolo       string
	Contenuto         string
	Tags              []string
	ImageURL          string
	ConcorsoID        *string
	DataPubblicazione *time.Time
	UpdatedAt         time.Time
}

type TagCount struct {
	Tag   string
	Count int
}

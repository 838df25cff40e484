package concorso

import (
	"errors"
	"strings"
	"time"
)

var ErrNotFound = errors.New("concorso not found")

const (
	StatoOpen   = "open"
	StatoClosed = "closed"
)

// Concorso is a public-sector job posting as written by the ingestion process.
type Concorso struct {
	ID                string
	Slug              string
	Titolo            string
	Ente              string
	AreaGeografica    string
	Settore           string
	Tipologia         string
	Descrizione       string
	Link              string
	NumeroPosti       *int
	Stato             string
	DataPubblicazione *time.Time
	DataChiusura      *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsOpen reports whether applications are still accepted at now. A stored
// "closed" status wins over the deadline; a missing deadline means open.
func (c Concorso) IsOpen(now time.Time) bool {
	if strings.EqualFold(strings.TrimSpace(c.Stato), StatoClosed) {
		return false
	}
	if c.DataChiusura == nil || c.DataChiusura.IsZero() {
		return true
	}
	return !now.After(*c.DataChiusura)
}

// DaysLeft counts calendar days between now and the deadline in loc.
// Closing today is 0, yesterday is -1. ok is false without a deadline.
func (c Concorso) DaysLeft(now time.Time, loc *time.Location) (int, bool) {
	if c.DataChiusura == nil || c.DataChiusura.IsZero() {
		return 0, false
	}
	if loc == nil {
		loc = time.UTC
	}
	return CalendarDaysBetween(now, *c.DataChiusura, loc), true
}

// CalendarDaysBetween returns the number of midnights crossed from a to b in loc.
func CalendarDaysBetween(a, b time.Time, loc *time.Location) int {
	a = a.In(loc)
	b = b.In(loc)
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// PublishedAt falls back to the creation time when the posting has no date.
func (c Concorso) PublishedAt() time.Time {
	if c.DataPubblicazione != nil && !c.DataPubblicazione.IsZero() {
		return *c.DataPubblicazione
	}
	return c.CreatedAt
}

// Placeholder stands in for a concorso that disappeared after being referenced.
func Placeholder(id string) Concorso {
	return Concorso{ID: id, Titolo: "Concorso non più disponibile", Stato: StatoClosed}
}

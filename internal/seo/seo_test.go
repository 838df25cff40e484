package seo

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concoro/internal/domain/articolo"
	"concoro/internal/domain/concorso"
)

func fixedBuilder(now time.Time) *Builder {
	b := NewBuilder("https://www.concoro.it", time.UTC)
	b.now = func() time.Time { return now }
	return b
}

func TestConcorsoTitle(t *testing.T) {
	assert.Equal(t, "Istruttore amministrativo - Comune di Bari | Concoro",
		ConcorsoTitle("Istruttore  amministrativo", "Comune di Bari"))

	long := ConcorsoTitle(strings.Repeat("Collaboratore professionale sanitario ", 4), "Azienda Ospedaliera Universitaria Careggi")
	assert.LessOrEqual(t, utf8.RuneCountInString(long), MaxTitleLength)
	assert.True(t, strings.HasSuffix(long, " | Concoro"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "breve", Truncate("breve", 10))
	got := Truncate("uno due tre quattro cinque sei", 16)
	assert.LessOrEqual(t, utf8.RuneCountInString(got), 16)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.Equal(t, "", Truncate("qualcosa", 0))
}

func TestConcorsoMeta_OpenPosting(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	deadline := now.Add(10 * 24 * time.Hour)
	posti := 12
	c := concorso.Concorso{
		ID:             "abc123def",
		Slug:           "infermieri-asl-bari-abc123",
		Titolo:         "Infermieri",
		Ente:           "ASL Bari",
		AreaGeografica: "Bari",
		Tipologia:      "Tempo indeterminato",
		NumeroPosti:    &posti,
		DataChiusura:   &deadline,
		CreatedAt:      now.Add(-48 * time.Hour),
	}

	m := fixedBuilder(now).ConcorsoMeta(c)

	assert.Equal(t, "Infermieri - ASL Bari | Concoro", m.Title)
	assert.Equal(t, "https://www.concoro.it/concorsi/infermieri-asl-bari-abc123", m.Canonical)
	assert.Equal(t, RobotsIndex, m.Robots)
	assert.LessOrEqual(t, utf8.RuneCountInString(m.Description), MaxDescriptionLength)
	assert.Contains(t, m.Description, "11/05/2026")
	assert.Equal(t, m.Canonical, m.OpenGraph["og:url"])

	require.Equal(t, "JobPosting", m.JSONLD["@type"])
	assert.Equal(t, 12, m.JSONLD["totalJobOpenings"])
	assert.Equal(t, deadline.Format(time.RFC3339), m.JSONLD["validThrough"])
	org := m.JSONLD["hiringOrganization"].(map[string]any)
	assert.Equal(t, "ASL Bari", org["name"])
	addr := m.JSONLD["jobLocation"].(map[string]any)["address"].(map[string]any)
	assert.Equal(t, "Puglia", addr["addressRegion"])
}

func TestConcorsoMeta_Robots(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	recent := now.Add(-30 * 24 * time.Hour)
	old := now.Add(-120 * 24 * time.Hour)
	b := fixedBuilder(now)

	assert.Equal(t, RobotsIndex, b.ConcorsoMeta(concorso.Concorso{ID: "a", Titolo: "X", DataChiusura: &recent}).Robots)
	assert.Equal(t, RobotsNoindex, b.ConcorsoMeta(concorso.Concorso{ID: "b", Titolo: "Y", DataChiusura: &old}).Robots)
}

func TestArticoloMeta(t *testing.T) {
	pub := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	a := articolo.Articolo{
		Slug:              "come-prepararsi",
		Titolo:            "Come prepararsi al concorso",
		Contenuto:         "<p>Una guida <b>pratica</b> allo studio.</p>",
		Tags:              []string{"guide", "studio"},
		ImageURL:          "https://cdn.concoro.it/a.png",
		DataPubblicazione: &pub,
		UpdatedAt:         pub,
	}

	m := fixedBuilder(pub).ArticoloMeta(a)

	assert.Equal(t, "Come prepararsi al concorso | Concoro", m.Title)
	assert.Equal(t, "Una guida pratica allo studio.", m.Description)
	assert.Equal(t, "https://www.concoro.it/articoli/come-prepararsi", m.Canonical)
	assert.Equal(t, "Article", m.JSONLD["@type"])
	assert.Equal(t, "guide, studio", m.JSONLD["keywords"])
	assert.Equal(t, "article", m.OpenGraph["og:type"])
	assert.Equal(t, a.ImageURL, m.OpenGraph["og:image"])
}

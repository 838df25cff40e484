package urlcanon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "concorso-comune-di-forli", Slugify("Concorso Comune di Forlì"))
	assert.Equal(t, "", Slugify("   "))

	long := Slugify(strings.Repeat("istruttore amministrativo ", 10))
	assert.LessOrEqual(t, len(long), MaxSlugLength)
	assert.False(t, strings.HasSuffix(long, "-"))
}

func TestConcorsoSlug(t *testing.T) {
	assert.Equal(t, "stored-slug", ConcorsoSlug("stored-slug", "x", "y", "abc"))

	s := ConcorsoSlug("", "Infermiere", "ASL Roma 1", "Xy9-kLm2pq77")
	assert.True(t, strings.HasPrefix(s, "infermiere-asl-roma-1-"), s)
	assert.Equal(t, "xy9klm2p", IDFromSlug(s))

	assert.Equal(t, "abc123", ConcorsoSlug("", "", "", "abc123"))
}

func TestIDFromSlug(t *testing.T) {
	assert.Equal(t, "", IDFromSlug("noslug"))
	assert.Equal(t, "", IDFromSlug("trailing-"))
	assert.Equal(t, "id", IDFromSlug("some-title-id"))
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		base string
		path string
		want string
	}{
		{base: "https://WWW.Concoro.it/", path: "/concorsi/abc/", want: "https://www.concoro.it/concorsi/abc"},
		{base: "http://concoro.it", path: "", want: "https://concoro.it/"},
		{base: "concoro.it", path: "articoli", want: "https://concoro.it/articoli"},
		{base: "https://concoro.it/it/?x=1#top", path: "/enti/inps", want: "https://concoro.it/it/enti/inps"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Canonical(tt.base, tt.path))
	}
}

func TestRegioneSlug(t *testing.T) {
	assert.Equal(t, "emilia-romagna", RegioneSlug("Emilia Romagna"))
	assert.Equal(t, "emilia-romagna", RegioneSlug("emilia-romagna"))
	assert.Equal(t, "lombardia", RegioneSlug("Milano"))
	assert.Equal(t, "", RegioneSlug("Atlantide"))
}

func TestStripTracking(t *testing.T) {
	got := StripTracking("https://ente.gov.it/bando?id=4&utm_source=x&UTM_medium=y&fbclid=z")
	assert.Equal(t, "https://ente.gov.it/bando?id=4", got)

	unchanged := "https://ente.gov.it/bando?b=2&a=1"
	assert.Equal(t, unchanged, StripTracking(unchanged))
}

func TestDomainOf(t *testing.T) {
	assert.Equal(t, "comune.milano.it", DomainOf("https://www.comune.milano.it/bandi?x=1"))
	assert.Equal(t, "inps.it", DomainOf("inps.it"))
	assert.Equal(t, "asl.it", DomainOf("http://ASL.it:8080/"))
	assert.Equal(t, "", DomainOf("localhost"))
	assert.Equal(t, "", DomainOf(""))
}

package usecase

import (
	"testing"

	"concoro/internal/domain/concorso"
	"concoro/internal/domain/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	p := user.DefaultProfile(uuid.New(), "a@example.com")
	p.Regioni = []string{"lombardia"}
	p.Settori = []string{"Istruzione"}
	p.Keywords = []string{"docente"}

	tests := []struct {
		name        string
		c           concorso.Concorso
		wantScore   int
		wantReasons []string
	}{
		{
			name:        "all criteria",
			c:           concorso.Concorso{ID: "1", Titolo: "Docente di matematica", AreaGeografica: "Bergamo", Settore: "Istruzione"},
			wantScore:   100,
			wantReasons: []string{"Regione: Lombardia", "Settore: Istruzione", "Parola chiave: docente"},
		},
		{
			name:        "national posting counts as region",
			c:           concorso.Concorso{ID: "2", Titolo: "Funzionario", AreaGeografica: "Tutta Italia"},
			wantScore:   40,
			wantReasons: []string{"Regione: Lombardia"},
		},
		{
			name:        "keyword must be a whole word",
			c:           concorso.Concorso{ID: "3", Titolo: "Docenti universitari", AreaGeografica: "Napoli"},
			wantScore:   0,
			wantReasons: []string{},
		},
		{
			name:        "keyword in description",
			c:           concorso.Concorso{ID: "4", Titolo: "Selezione", Descrizione: "Reclutamento di un docente", AreaGeografica: "Roma", Settore: "Istruzione"},
			wantScore:   60,
			wantReasons: []string{"Settore: Istruzione", "Parola chiave: docente"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Score(p, tt.c)
			assert.Equal(t, tt.wantScore, m.Score)
			assert.Equal(t, tt.wantReasons, m.Reasons)
			assert.Equal(t, p.UserID, m.UserID)
			assert.Equal(t, tt.c.ID, m.ConcorsoID)
		})
	}
}

package seeder

import (
	"context"
	"time"

	"concoro/internal/database"
)

// ConcorsiSeeder inserts a handful of postings with deadlines relative to
// Now, so reminders and the open/closed split can be tried locally.
type ConcorsiSeeder struct {
	Now time.Time
}

func (ConcorsiSeeder) Name() string { return "concorsi" }

type demoConcorso struct {
	ID             string
	Titolo         string
	Ente           string
	AreaGeografica string
	Settore        string
	Tipologia      string
	Descrizione    string
	Link           string
	NumeroPosti    int
	PublishedDays  int
	ClosesInDays   int
}

var demoConcorsi = []demoConcorso{
	{ID: "demo-oss-bari", Titolo: "Concorso per 40 operatori socio sanitari", Ente: "ASL Bari", AreaGeografica: "Bari", Settore: "Sanità", Tipologia: "Tempo indeterminato", Descrizione: "Selezione pubblica per titoli ed esami per operatori socio sanitari.", Link: "https://www.sanita.puglia.it/web/asl-bari/concorsi", NumeroPosti: 40, PublishedDays: -2, ClosesInDays: 3},
	{ID: "demo-istruttore-milano", Titolo: "Istruttore amministrativo contabile", Ente: "Comune di Milano", AreaGeografica: "Milano", Settore: "Amministrazione", Tipologia: "Tempo indeterminato", Descrizione: "Concorso per istruttori amministrativi da assegnare agli uffici comunali.", Link: "https://www.comune.milano.it/concorsi", NumeroPosti: 12, PublishedDays: -5, ClosesInDays: 7},
	{ID: "demo-vigili-roma", Titolo: "Agenti di polizia locale", Ente: "Roma Capitale", AreaGeografica: "Roma", Settore: "Polizia locale", Tipologia: "Tempo determinato", Descrizione: "Assunzione di agenti di polizia locale per la stagione estiva.", Link: "https://www.comune.roma.it/web/it/concorsi.page", NumeroPosti: 30, PublishedDays: -1, ClosesInDays: 1},
	{ID: "demo-inps-funzionari", Titolo: "Funzionari area amministrativa", Ente: "INPS", AreaGeografica: "Tutta Italia", Settore: "Amministrazione", Tipologia: "Tempo indeterminato", Descrizione: "Concorso nazionale per funzionari da destinare alle sedi territoriali.", Link: "https://www.inps.it/it/it/avvisi-bandi-e-fatturazione/concorsi.html", NumeroPosti: 400, PublishedDays: -10, ClosesInDays: 25},
	{ID: "demo-docenti-napoli", Titolo: "Docenti scuola primaria", Ente: "Ufficio Scolastico Regionale Campania", AreaGeografica: "Napoli", Settore: "Istruzione", Tipologia: "Tempo indeterminato", Descrizione: "Procedura concorsuale per docenti della scuola primaria.", Link: "https://www.campania.istruzione.it/concorsi", NumeroPosti: 150, PublishedDays: -40, ClosesInDays: -8},
}

func (s ConcorsiSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "concorsi", "id", "titolo", "ente", "area_geografica", "data_chiusura"); err != nil {
		return err
	}

	now := s.Now
	if now.IsZero() {
		now = time.Now()
	}

	return database.InTx(ctx, db, func(tx database.Tx) error {
		for _, it := range demoConcorsi {
			published := now.AddDate(0, 0, it.PublishedDays)
			closes := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, now.Location()).AddDate(0, 0, it.ClosesInDays)
			_, err := tx.Exec(
				ctx,
				`INSERT INTO concorsi (id, titolo, ente, area_geografica, settore, tipologia, descrizione, link, numero_posti, stato, data_pubblicazione, data_chiusura)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'open', $10, $11)
				 ON CONFLICT (id) DO NOTHING`,
				it.ID, it.Titolo, it.Ente, it.AreaGeografica, it.Settore, it.Tipologia, it.Descrizione, it.Link, it.NumeroPosti, published, closes,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

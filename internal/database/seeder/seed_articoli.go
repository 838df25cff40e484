package seeder

import (
	"context"
	"time"

	"concoro/internal/database"
)

type ArticoliSeeder struct {
	Now time.Time
}

func (ArticoliSeeder) Name() string { return "articoli" }

func (s ArticoliSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "articoli", "id", "slug", "titolo", "tags", "concorso_id"); err != nil {
		return err
	}

	now := s.Now
	if now.IsZero() {
		now = time.Now()
	}

	items := []struct {
		ID         string
		Slug       string
		Titolo     string
		Contenuto  string
		Tags       []string
		ConcorsoID *string
	}{
		{
			ID:         "demo-articolo-oss",
			Slug:       "come-prepararsi-concorso-oss-asl-bari",
			Titolo:     "Come prepararsi al concorso OSS dell'ASL Bari",
			Contenuto:  "<p>Il bando prevede una prova scritta e una prova orale.</p>",
			Tags:       []string{"sanita", "oss", "puglia"},
			ConcorsoID: strPtr("demo-oss-bari"),
		},
		{
			ID:        "demo-articolo-guida",
			Slug:      "guida-ai-concorsi-pubblici",
			Titolo:    "Guida ai concorsi pubblici: requisiti e scadenze",
			Contenuto: "<p>Cosa controllare prima di presentare la domanda.</p>",
			Tags:      []string{"guide"},
		},
	}

	return database.InTx(ctx, db, func(tx database.Tx) error {
		for i, it := range items {
			published := now.AddDate(0, 0, -(i + 1))
			_, err := tx.Exec(
				ctx,
				`INSERT INTO articoli (id, slug, titolo, contenuto, tags, concorso_id, data_pubblicazione)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)
				 ON CONFLICT (slug) DO NOTHING`,
				it.ID, it.Slug, it.Titolo, it.Contenuto, it.Tags, it.ConcorsoID, published,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func strPtr(s string) *string { return &s }

package seeder

import (
	"context"

	"concoro/internal/database"
)

// Seeder loads demo rows for local development. Every seeder must be safe
// to run more than once.
type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) error
}

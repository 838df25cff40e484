package saved

import (
	"time"

	"github.com/google/uuid"
)

// Record joins a user to a concorso they bookmarked.
type Record struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	ConcorsoID string
	CreatedAt  time.Time
}

package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile holds the preferences used for matching and notification delivery.
// Regioni stores region slugs.
type Profile struct {
	UserID          uuid.UUID
	Email           string
	Nome            string
	Cognome         string
	Regioni         []string
	Settori         []string
	Keywords        []string
	NotifyEmail     bool
	NotifyDeadlines bool
	NotifyMatches   bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func DefaultProfile(userID uuid.UUID, email string) Profile {
	return Profile{
		UserID:          userID,
		Email:           email,
		Regioni:         []string{},
		Settori:         []string{},
		Keywords:        []string{},
		NotifyEmail:     true,
		NotifyDeadlines: true,
		NotifyMatches:   true,
	}
}

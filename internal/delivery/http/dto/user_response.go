package dto

import (
	"time"

	"github.com/google/uuid"
)

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthResponse struct {
	User         *UserResponse `json:"user,omitempty"`
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
}

type UserProfileResponse struct {
	UserID          uuid.UUID `json:"user_id"`
	Email           string    `json:"email"`
	Nome            string    `json:"nome"`
	Cognome         string    `json:"cognome"`
	Regioni         []string  `json:"regioni"`
	Settori         []string  `json:"settori"`
	Keywords        []string  `json:"keywords"`
	NotifyEmail     bool      `json:"notify_email"`
	NotifyDeadlines bool      `json:"notify_deadlines"`
	NotifyMatches   bool      `json:"notify_matches"`
	UpdatedAt       time.Time `json:"updated_at"`
}

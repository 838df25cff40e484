package notification

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("notification not found")

const (
	TypeDeadline = "deadline"
	TypeMatch    = "match"

	// NoDaysLeft marks notifications that are not tied to a deadline countdown.
	NoDaysLeft = -1
)

type Notification struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	ConcorsoID string
	Type       string
	Title      string
	Message    string
	DaysLeft   int
	IsRead     bool
	CreatedAt  time.Time
	ReadAt     *time.Time
}

const (
	EmailStatusSent    = "sent"
	EmailStatusFailed  = "failed"
	EmailStatusSkipped = "skipped"
)

type EmailLog struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	NotificationID    *uuid.UUID
	Recipient         string
	Subject           string
	Template          string
	Status            string
	ProviderMessageID string
	Error             string
	CreatedAt         time.Time
}

// Match is a stored relevance score of a concorso for a user profile.
type Match struct {
	UserID     uuid.UUID
	ConcorsoID string
	Score      int
	Reasons    []string
	ComputedAt time.Time
}

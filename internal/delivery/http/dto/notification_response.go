package dto

import (
	"time"

	"github.com/google/uuid"
)

type NotificationResponse struct {
	ID         uuid.UUID  `json:"id"`
	ConcorsoID string     `json:"concorso_id"`
	Type       string     `json:"type"`
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	DaysLeft   *int       `json:"days_left"`
	IsRead     bool       `json:"is_read"`
	CreatedAt  time.Time  `json:"created_at"`
	ReadAt     *time.Time `json:"read_at"`
}

type UnreadCountResponse struct {
	Unread int `json:"unread"`
}

type MatchResponse struct {
	Score      int              `json:"score"`
	Reasons    []string         `json:"reasons"`
	ComputedAt time.Time        `json:"computed_at"`
	Concorso   ConcorsoResponse `json:"concorso"`
}

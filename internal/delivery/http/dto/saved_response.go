package dto

import "time"

type SavedResponse struct {
	ConcorsoID string           `json:"concorso_id"`
	SavedAt    time.Time        `json:"saved_at"`
	Missing    bool             `json:"missing"`
	Concorso   ConcorsoResponse `json:"concorso"`
}

type SavedStatusResponse struct {
	ConcorsoID string `json:"concorso_id"`
	Saved      bool   `json:"saved"`
}

package dto

import "time"

type FaviconResponse struct {
	Domain     string    `json:"domain"`
	IconURL    string    `json:"icon_url"`
	Source     string    `json:"source"`
	ResolvedAt time.Time `json:"resolved_at"`
}

package favicon

import "time"

const (
	SourceHTML     = "html"
	SourceDefault  = "default"
	SourceFallback = "fallback"
)

type Favicon struct {
	Domain     string
	IconURL    string
	Source     string
	ResolvedAt time.Time
}

package model

import "time"

// Fetch sources recorded in the audit log.
const (
	SourceUpstream = "upstream"
	SourceCache    = "cache"
)

// Fetch is the audit record of one successfully served figure.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
type Fetch struct {
	ID          string    `json:"id"`
	PaperURL    string    `json:"paper_url"`
	ImageIndex  int       `json:"image_index"`
	ImageURL    string    `json:"image_url"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Source      string    `json:"source"`
	CreatedAt   time.Time `json:"created_at"`
}

package domain

import (
	"encoding/json"
	"time"
)

// Status is the publication state of a Project.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Project is a user-owned site definition edited in the builder.
// Content is opaque to the backend and round-trips verbatim.
type Project struct {
	ID         string          `json:"_id"`
	Name       string          `json:"name"`
	OwnerID    string          `json:"ownerId"`
	Status     Status          `json:"status"`
	LastEdited time.Time       `json:"lastEdited"`
	Content    json.RawMessage `json:"content"`
	Version    int64           `json:"version"`
}

// Template is a catalog entry users can browse and search.
type Template struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	PreviewURL   string    `json:"previewUrl"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	CreatedAt    time.Time `json:"createdAt"`
}

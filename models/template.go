package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Template represents a visual template the wizard's optional template step
// offers (caption style, transitions, branding). Settings is opaque to this
// service; the assembly backend interprets it.
type Template struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Description      *string         `json:"description,omitempty"`
	Category         *string         `json:"category,omitempty"`
	IsSystemTemplate bool            `json:"is_system_template"`
	PreviewURL       *string         `json:"preview_url,omitempty"`
	Settings         json.RawMessage `json:"settings"` // JSONB
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

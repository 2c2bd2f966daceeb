package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Video represents a finished video row in the database (the library view).
type Video struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	Title           string          `json:"title"`
	Category        *string         `json:"category,omitempty"`
	URL             string          `json:"url"`
	StoragePath     *string         `json:"storage_path,omitempty"`
	DurationSeconds *float64        `json:"duration_seconds,omitempty"` // Nullable FLOAT
	ClipsCount      *int            `json:"clips_count,omitempty"`      // Nullable INTEGER
	Status          string          `json:"status"`
	Metadata        json.RawMessage `json:"metadata,omitempty"` // Nullable JSONB
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

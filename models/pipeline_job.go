package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Pipeline job statuses as stored in the pipeline_jobs table.
const (
	JobStatusPending    = "PENDING"
	JobStatusProcessing = "PROCESSING"
	JobStatusCompleted  = "COMPLETED"
	JobStatusFailed     = "FAILED"
)

// PipelineJob tracks one run of the audio+clips pipeline for a wizard
// session. Progress mirrors the three-phase indicator the wizard shows.
type PipelineJob struct {
	ID           uuid.UUID       `json:"id"`
	SessionID    uuid.UUID       `json:"session_id"`
	UserID       *uuid.UUID      `json:"user_id,omitempty"` // Nullable foreign key
	JobType      string          `json:"job_type"`
	Status       string          `json:"status"`
	Progress     *float64        `json:"progress,omitempty"`      // Nullable FLOAT
	ErrorMessage *string         `json:"error_message,omitempty"` // Nullable TEXT
	Metadata     json.RawMessage `json:"metadata,omitempty"`      // Nullable JSONB
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`   // Nullable TIMESTAMPTZ
	CompletedAt  *time.Time      `json:"completed_at,omitempty"` // Nullable TIMESTAMPTZ
}

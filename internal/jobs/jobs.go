// Package jobs persists pipeline job rows to Supabase so the browser can
// poll run status independently of the wizard session.
package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	supa "github.com/supabase-community/supabase-go"

	"reelforge/api-gateway/models"
)

const jobsTable = "pipeline_jobs"

// jobType for the automatic audio+clips run; assembly reuses the same table
// if it is ever made asynchronous.
const creationJobType = "creation_pipeline"

type Store struct {
	db *supa.Client
}

func NewStore(db *supa.Client) *Store {
	return &Store{db: db}
}

// CreateJob inserts a PENDING job row for a wizard session and returns its id.
func (s *Store) CreateJob(sessionID uuid.UUID, userID *uuid.UUID) (uuid.UUID, error) {
	jobID := uuid.New()
	now := time.Now()

	record := models.PipelineJob{
		ID:        jobID,
		SessionID: sessionID,
		UserID:    userID,
		JobType:   creationJobType,
		Status:    models.JobStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var results []models.PipelineJob
	body, _, err := s.db.From(jobsTable).
		Insert(record, false, "", "representation", "").
		Execute()
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert job record: %w", err)
	}
	if err := json.Unmarshal(body, &results); err != nil || len(results) == 0 {
		return uuid.Nil, fmt.Errorf("no record returned after insert, job_id: %s", jobID)
	}

	return jobID, nil
}

// UpdateJob updates the status and progress of an existing job row. The
// error message column is only written when non-empty; completion timestamps
// follow the status.
func (s *Store) UpdateJob(jobID uuid.UUID, status string, progress float64, errMsg string) error {
	updates := map[string]interface{}{
		"status":     status,
		"progress":   progress,
		"updated_at": time.Now(),
	}
	if errMsg != "" {
		updates["error_message"] = errMsg
	}
	switch status {
	case models.JobStatusProcessing:
		if progress <= 33 {
			updates["started_at"] = time.Now()
		}
	case models.JobStatusCompleted, models.JobStatusFailed:
		updates["completed_at"] = time.Now()
	}

	_, _, err := s.db.From(jobsTable).
		Update(updates, "", "").
		Eq("id", jobID.String()).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to update job record %s: %w", jobID, err)
	}
	return nil
}

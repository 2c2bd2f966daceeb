// Package pipeline orchestrates the automatic generation steps the summary
// screen triggers: narration synthesis followed by clip selection, strictly
// in that order, at most once per wizard session.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"reelforge/api-gateway/internal/genclient"
	"reelforge/api-gateway/models"
	"reelforge/api-gateway/wizard"
)

// Progress milestones for the three-phase indicator.
const (
	ProgressIdle          = 0
	ProgressAudioStarted  = 33
	ProgressClipsStarted  = 66
	ProgressClipsComplete = 100
)

// DefaultTargetClips is how many clips the selection call asks for.
const DefaultTargetClips = 3

var (
	ErrNotEnhanced      = errors.New("pipeline requires an enhanced script")
	ErrNoVoice          = errors.New("pipeline requires a selected voice")
	ErrAssemblyNotReady = errors.New("audio and clips must be generated before assembly")
)

// Backend is the slice of the generation backend the runner needs.
type Backend interface {
	GenerateAudio(ctx context.Context, req genclient.AudioRequest) (*models.AudioTrack, error)
	SelectClips(ctx context.Context, req genclient.ClipRequest) (*models.ClipSelection, error)
	AssembleVideo(ctx context.Context, req genclient.AssembleRequest) (*models.VideoResult, error)
}

// JobRecorder persists pipeline job rows for the jobs endpoint. A nil
// recorder disables persistence; the run itself is unaffected.
type JobRecorder interface {
	CreateJob(sessionID uuid.UUID, userID *uuid.UUID) (uuid.UUID, error)
	UpdateJob(jobID uuid.UUID, status string, progress float64, errMsg string) error
}

type Runner struct {
	Backend     Backend
	Jobs        JobRecorder
	Log         *logrus.Logger
	TargetClips int
}

func NewRunner(backend Backend, jobs JobRecorder, log *logrus.Logger, targetClips int) *Runner {
	if targetClips <= 0 {
		targetClips = DefaultTargetClips
	}
	return &Runner{Backend: backend, Jobs: jobs, Log: log, TargetClips: targetClips}
}

// Start claims the session's single-shot latch and, if this call won it,
// launches the audio+clips run in the background. The latch is taken
// synchronously before any async work, so a second trigger from a re-render
// or a double submit can never issue the backend calls twice.
func (r *Runner) Start(s *wizard.Session, userID *uuid.UUID) (jobID uuid.UUID, started bool) {
	if !s.StartPipeline() {
		return uuid.Nil, false
	}

	jobID = r.createJob(s.ID(), userID)

	go func() {
		if err := r.Run(s, jobID); err != nil {
			r.Log.WithFields(logrus.Fields{
				"session_id": s.ID(),
				"job_id":     jobID,
				"error":      err.Error(),
			}).Error("Automatic pipeline run failed")
		}
	}()
	return jobID, true
}

// Run executes the audio then clips calls for a session whose latch has
// already been claimed. Exported so the synchronous path is testable; Start
// is the entry point handlers use.
func (r *Runner) Run(s *wizard.Session, jobID uuid.UUID) error {
	draft := s.Draft()
	if draft.Enhancement == nil {
		err := ErrNotEnhanced
		s.SetPipelineErr(err)
		r.updateJob(jobID, models.JobStatusFailed, ProgressIdle, err.Error())
		return err
	}
	if draft.VoiceID == "" {
		err := ErrNoVoice
		s.SetPipelineErr(err)
		r.updateJob(jobID, models.JobStatusFailed, ProgressIdle, err.Error())
		return err
	}

	ctx := s.Context()

	// Phase 1: narration.
	s.SetProgress(ProgressAudioStarted)
	r.updateJob(jobID, models.JobStatusProcessing, ProgressAudioStarted, "")

	audio, err := r.Backend.GenerateAudio(ctx, genclient.AudioRequest{
		Script:   draft.Enhancement.Script,
		VoiceID:  draft.VoiceID,
		VideoID:  s.ID().String(),
		Speed:    draft.Speed,
		Segments: draft.Enhancement.Segments,
	})
	if err != nil {
		s.SetPipelineErr(err)
		r.updateJob(jobID, models.JobStatusFailed, ProgressAudioStarted, err.Error())
		return err
	}
	s.ApplyAudio(*audio)

	// Phase 2: clips, aligned to the narration's actual duration.
	s.SetProgress(ProgressClipsStarted)
	r.updateJob(jobID, models.JobStatusProcessing, ProgressClipsStarted, "")

	clips, err := r.Backend.SelectClips(ctx, genclient.ClipRequest{
		Enhancement:      *draft.Enhancement,
		Category:         draft.Category,
		AudioDuration:    audio.DurationSeconds,
		TargetClipsCount: r.TargetClips,
	})
	if err != nil {
		s.SetPipelineErr(err)
		r.updateJob(jobID, models.JobStatusFailed, ProgressClipsStarted, err.Error())
		return err
	}
	s.ApplyClips(*clips)

	for _, warning := range clips.Warnings {
		r.Log.WithFields(logrus.Fields{
			"session_id": s.ID(),
			"warning":    warning,
		}).Info("Clip selection warning")
	}

	s.SetProgress(ProgressClipsComplete)
	r.updateJob(jobID, models.JobStatusCompleted, ProgressClipsComplete, "")
	return nil
}

// Assemble runs the final video-assembly call. The pipeline must have
// completed; the check duplicates the UI-side gating on purpose. On failure
// the draft is left intact so the user can simply retry.
func (r *Runner) Assemble(s *wizard.Session, userID uuid.UUID) (*models.VideoResult, error) {
	draft := s.Draft()
	if draft.Audio == nil || draft.Clips == nil {
		return nil, ErrAssemblyNotReady
	}

	title := GenerateTitle(draft.Category, time.Now())
	result, err := r.Backend.AssembleVideo(s.Context(), genclient.AssembleRequest{
		Draft:  draft,
		UserID: userID.String(),
		Title:  title,
	})
	if err != nil {
		return nil, err
	}

	s.ApplyVideoResult(*result)
	return result, nil
}

// GenerateTitle builds the default title for an assembled video from its
// category and creation date.
func GenerateTitle(category string, now time.Time) string {
	if category == "" {
		category = "video"
	}
	return fmt.Sprintf("%s-%s", category, now.Format("2006-01-02"))
}

func (r *Runner) createJob(sessionID uuid.UUID, userID *uuid.UUID) uuid.UUID {
	if r.Jobs == nil {
		return uuid.Nil
	}
	jobID, err := r.Jobs.CreateJob(sessionID, userID)
	if err != nil {
		r.Log.WithField("error", err.Error()).Warn("Could not create pipeline job record")
		return uuid.Nil
	}
	return jobID
}

func (r *Runner) updateJob(jobID uuid.UUID, status string, progress float64, errMsg string) {
	if r.Jobs == nil || jobID == uuid.Nil {
		return
	}
	if err := r.Jobs.UpdateJob(jobID, status, progress, errMsg); err != nil {
		r.Log.WithFields(logrus.Fields{
			"job_id": jobID,
			"error":  err.Error(),
		}).Warn("Could not update pipeline job record")
	}
}

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"reelforge/api-gateway/middleware"
	"reelforge/api-gateway/models"
	"reelforge/api-gateway/pipeline"
	"reelforge/api-gateway/snapshot"
	"reelforge/api-gateway/utils"
	"reelforge/api-gateway/wizard"
)

var validate = validator.New()

// SubmitScriptRequest is the payload for the script step.
type SubmitScriptRequest struct {
	Script   string `json:"script" validate:"required"`
	Category string `json:"category" validate:"required"`
}

// SelectVoiceRequest is the payload for the voice step.
type SelectVoiceRequest struct {
	VoiceID string  `json:"voice_id" validate:"required"`
	Speed   float64 `json:"speed" validate:"required"`
}

// SelectTemplateRequest is the payload for the optional template step.
type SelectTemplateRequest struct {
	TemplateID string `json:"template_id" validate:"required,uuid"`
}

// sessionState is what session-returning endpoints serialize.
type sessionState struct {
	SessionID   uuid.UUID    `json:"session_id"`
	CurrentStep int          `json:"current_step"`
	Draft       models.Draft `json:"draft"`
}

func (h *ApplicationHandler) state(s *wizard.Session) sessionState {
	return sessionState{
		SessionID:   s.ID(),
		CurrentStep: s.CurrentStep(),
		Draft:       s.Draft(),
	}
}

// authedUser pulls the user id set by the auth middleware.
func authedUser(c *fiber.Ctx) uuid.UUID {
	if id, ok := c.Locals(middleware.UserIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// session resolves the sessionId route param to a live session owned by the
// caller. A nil return means the error response has already been written.
func (h *ApplicationHandler) session(c *fiber.Ctx) *wizard.Session {
	sessionID, err := uuid.Parse(c.Params("sessionId"))
	if err != nil {
		utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid session ID format")
		return nil
	}

	s := h.Sessions.Get(sessionID)
	if s == nil || s.UserID() != authedUser(c) {
		utils.RespondWithError(c, fiber.StatusNotFound, "Wizard session not found")
		return nil
	}
	return s
}

// CreateSession opens a new wizard session for the caller. With ?restore=true
// the user's last draft snapshot, if any, is replayed into the fresh session.
func (h *ApplicationHandler) CreateSession(c *fiber.Ctx) error {
	userID := authedUser(c)
	s := h.Sessions.Create(userID)

	var restored *snapshot.Snapshot
	if c.Query("restore") == "true" && h.Snapshots != nil {
		snap, err := h.Snapshots.Load(c.Context(), userID)
		if err != nil {
			h.Logger.WithField("error", err.Error()).Warn("Could not load draft snapshot")
		} else if snap != nil {
			if err := s.SetScript(snap.RawScript, snap.Category); err == nil {
				restored = snap
			}
			if snap.VoiceID != "" {
				s.SetVoice(snap.VoiceID)
			}
			if snap.Speed != 0 {
				// snapshots only ever hold valid speeds, but stay defensive
				if err := s.SetSpeed(snap.Speed); err != nil {
					h.Logger.Warnf("Snapshot for user %s carried speed %v, ignoring", userID, snap.Speed)
				}
			}
			if snap.TemplateID != nil {
				s.SetTemplate(*snap.TemplateID)
			}
		}
	}

	h.Logger.Infof("Created wizard session %s for user %s", s.ID(), userID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "success",
		"data": fiber.Map{
			"session_id":   s.ID(),
			"current_step": s.CurrentStep(),
			"restored":     restored != nil,
		},
	})
}

// GetSession returns the full session state.
func (h *ApplicationHandler) GetSession(c *fiber.Ctx) error {
	s := h.session(c)
	if s == nil {
		return nil
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, h.state(s))
}

// CloseSession tears the session down, cancelling any in-flight backend call.
func (h *ApplicationHandler) CloseSession(c *fiber.Ctx) error {
	s := h.session(c)
	if s == nil {
		return nil
	}

	h.Sessions.Remove(s.ID())
	h.Logger.Infof("Closed wizard session %s", s.ID())
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"closed": true})
}

// SubmitScript records the raw script and category, saves a snapshot and
// advances to the enhancement step.
func (h *ApplicationHandler) SubmitScript(c *fiber.Ctx) error {
	s := h.session(c)
	if s == nil {
		return nil
	}

	payload := new(SubmitScriptRequest)
	if err := c.BodyParser(payload); err != nil {
		h.Logger.Errorf("Error parsing script payload: %v", err)
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
	}
	if err := validate.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Validation failed: %v", utils.FormatValidationErrors(err)))
	}
	if wizard.WordCount(payload.Script) < wizard.MinScriptWords {
		return utils.RespondWithError(c, fiber.StatusBadRequest,
			fmt.Sprintf("Script must have at least %d words", wizard.MinScriptWords))
	}

	if err := s.SetScript(payload.Script, payload.Category); err != nil {
		return utils.RespondWithError(c, fiber.StatusConflict, err.Error())
	}

	h.saveSnapshot(c, s)

	if !s.Advance() {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Script step is incomplete")
	}

	draft := s.Draft()
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{
		"session_id":         s.ID(),
		"current_step":       s.CurrentStep(),
		"estimated_duration": wizard.EstimateDuration(draft.RawScript, draft.Speed),
	})
}

// EnhanceScript runs the script-enhancement call. The generation client
// degrades to a fallback result on backend failure, so from here on the step
// always completes; the response's source field says which path was taken.
func (h *ApplicationHandler) EnhanceScript(c *fiber.Ctx) error {
	s := h.session(c)
	if s == nil {
		return nil
	}

	draft := s.Draft()
	if draft.RawScript == "" {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "No script to enhance")
	}

	enhancement, err := h.Enhancer.EnhanceScript(s.Context(), draft.RawScript, draft.Category)
	if err != nil {
		// Only session cancellation reaches here.
		h.Logger.Warnf("Enhancement aborted for session %s: %v", s.ID(), err)
		return utils.RespondWithError(c, fiber.StatusConflict, "Wizard session was closed")
	}

	s.ApplyEnhancement(enhancement)
	h.Logger.WithFields(map[string]interface{}{
		"session_id": s.ID(),
		"source":     enhancement.Source,
		"segments":   len(enhancement.Segments),
	}).Info("Script enhancement applied")

	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{
		"session_id":   s.ID(),
		"current_step": s.CurrentStep(),
		"enhancement":  enhancement,
	})
}

// RegenerateScript clears the previous enhancement and everything derived
// from it (audio, clips), jumps back to the enhance step and runs the
// enhancement call again.
func (h *ApplicationHandler) RegenerateScript(c *fiber.Ctx) error {
	s := h.session(c)
	if s == nil {
		return nil
	}

	s.ResetEnhancement()
	h.Logger.Infof("Session %s reset for script regeneration", s.ID())
	return h.EnhanceScript(c)
}

// SelectVoice records the narration voice and speed.
func (h *ApplicationHandler) SelectVoice(c *fiber.Ctx) error {
	s := h.session(c)
	if s == nil {
		return nil
	}

	payload := new(SelectVoiceRequest)
	if err := c.BodyParser(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
	}
	if err := validate.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Validation failed: %v", utils.FormatValidationErrors(err)))
	}

	if err := s.SetSpeed(payload.Speed); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
	}
	s.SetVoice(payload.VoiceID)

	h.saveSnapshot(c, s)

	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{
		"session_id":   s.ID(),
		"current_step": s.CurrentStep(),
		"voice_id":     payload.VoiceID,
		"speed":        payload.Speed,
	})
}

// SelectTemplate records the chosen template for the optional template step.
func (h *ApplicationHandler) SelectTemplate(c *fiber.Ctx) error {
	s := h.session(c)
	if s == nil {
		return nil
	}

	payload := new(SelectTemplateRequest)
	if err := c.BodyParser(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
	}
	if err := validate.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Validation failed: %v", utils.FormatValidationErrors(err)))
	}

	templateID, err := uuid.Parse(payload.TemplateID)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid template ID format")
	}
	s.SetTemplate(templateID)

	h.saveSnapshot(c, s)

	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{
		"session_id":   s.ID(),
		"current_step": s.CurrentStep(),
		"template_id":  templateID,
	})
}

// AdvanceStep moves the wizard forward when the current step is complete.
// An incomplete step is not an error, just a refusal, matching a disabled
// continue button.
func (h *ApplicationHandler) AdvanceStep(c *fiber.Ctx) error {
	s := h.session(c)
	if s == nil {
		return nil
	}

	advanced := s.Advance()
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{
		"session_id":   s.ID(),
		"current_step": s.CurrentStep(),
		"advanced":     advanced,
	})
}

// RetreatStep moves the wizard back one step without clearing anything.
func (h *ApplicationHandler) RetreatStep(c *fiber.Ctx) error {
	s := h.session(c)
	if s == nil {
		return nil
	}

	s.Retreat()
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{
		"session_id":   s.ID(),
		"current_step": s.CurrentStep(),
	})
}

// StartPipeline triggers the automatic audio+clips run for the summary step.
// The underlying latch makes duplicate triggers harmless: the first call gets
// 202 Accepted, every later one reports the current state instead.
func (h *ApplicationHandler) StartPipeline(c *fiber.Ctx) error {
	s := h.session(c)
	if s == nil {
		return nil
	}

	draft := s.Draft()
	if draft.Enhancement == nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Script must be enhanced before the pipeline can run")
	}
	if draft.VoiceID == "" {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "A voice must be selected before the pipeline can run")
	}

	userID := s.UserID()
	jobID, started := h.Runner.Start(s, &userID)
	if !started {
		return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{
			"session_id": s.ID(),
			"started":    false,
			"progress":   s.Progress(),
			"done":       s.PipelineDone(),
		})
	}

	h.Logger.Infof("Pipeline started for session %s (job %s)", s.ID(), jobID)
	response := fiber.Map{
		"session_id": s.ID(),
		"started":    true,
	}
	if jobID != uuid.Nil {
		response["job_id"] = jobID
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "success",
		"data":   response,
	})
}

// GetPipelineStatus reports pipeline progress for the summary screen's
// three-phase indicator.
func (h *ApplicationHandler) GetPipelineStatus(c *fiber.Ctx) error {
	s := h.session(c)
	if s == nil {
		return nil
	}

	draft := s.Draft()
	status := fiber.Map{
		"session_id":  s.ID(),
		"started":     s.PipelineStarted(),
		"progress":    s.Progress(),
		"done":        s.PipelineDone(),
		"audio_ready": draft.Audio != nil,
		"clips_ready": draft.Clips != nil,
	}
	if err := s.PipelineErr(); err != nil {
		status["error"] = err.Error()
	}
	if draft.Clips != nil && len(draft.Clips.Warnings) > 0 {
		status["warnings"] = draft.Clips.Warnings
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, status)
}

// AssembleVideo runs the final assembly call, persists the resulting video
// row and returns the descriptor plus the preview URL the browser should
// navigate to. On failure the draft is untouched so the user can retry.
func (h *ApplicationHandler) AssembleVideo(c *fiber.Ctx) error {
	s := h.session(c)
	if s == nil {
		return nil
	}

	userID := s.UserID()
	result, err := h.Runner.Assemble(s, userID)
	if err != nil {
		h.Logger.WithFields(map[string]interface{}{
			"session_id": s.ID(),
			"error":      err.Error(),
		}).Error("Video assembly failed")
		status := fiber.StatusInternalServerError
		if errors.Is(err, pipeline.ErrAssemblyNotReady) {
			status = fiber.StatusBadRequest
		}
		return utils.RespondWithError(c, status, fmt.Sprintf("Could not assemble video: %v", err))
	}

	draft := s.Draft()
	video := h.persistVideo(c, userID, draft, result)

	if h.Snapshots != nil {
		if err := h.Snapshots.Delete(c.Context(), userID); err != nil {
			h.Logger.WithField("error", err.Error()).Warn("Could not delete draft snapshot")
		}
	}

	descriptor, _ := json.Marshal(result)
	data := fiber.Map{
		"session_id":  s.ID(),
		"video":       result,
		"preview_url": "/preview?video=" + url.QueryEscape(string(descriptor)),
	}
	if video != nil {
		data["video_id"] = video.ID
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, data)
}

// persistVideo inserts the assembled video into the videos table. Failure is
// logged but does not fail the assembly response: the backend has already
// rendered the video and the user should reach it.
func (h *ApplicationHandler) persistVideo(c *fiber.Ctx, userID uuid.UUID, draft models.Draft, result *models.VideoResult) *models.Video {
	metadata, err := json.Marshal(result.Metadata)
	if err != nil {
		metadata = nil
	}

	record := map[string]interface{}{
		"user_id":          userID,
		"title":            pipeline.GenerateTitle(draft.Category, time.Now()),
		"category":         draft.Category,
		"url":              result.URL,
		"duration_seconds": result.DurationSeconds,
		"clips_count":      result.Metadata.ClipsCount,
		"status":           "completed",
		"metadata":         json.RawMessage(metadata),
	}

	var results []models.Video
	body, _, err := h.DB.From("videos").
		Insert(record, false, "", "representation", "").
		Execute()
	if err != nil {
		h.Logger.Errorf("Error persisting video for user %s: %v", userID, err)
		return nil
	}
	if err := json.Unmarshal(body, &results); err != nil || len(results) == 0 {
		h.Logger.Errorf("Error unmarshalling persisted video for user %s: %v", userID, err)
		return nil
	}
	return &results[0]
}

// saveSnapshot persists the resilient slice of the draft; failures are
// logged and swallowed because snapshots are best-effort.
func (h *ApplicationHandler) saveSnapshot(c *fiber.Ctx, s *wizard.Session) {
	if h.Snapshots == nil {
		return
	}
	if err := h.Snapshots.Save(c.Context(), s.UserID(), snapshot.FromDraft(s.Draft())); err != nil {
		h.Logger.WithField("error", err.Error()).Warn("Could not save draft snapshot")
	}
}

package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"reelforge/api-gateway/models"
)

// Wizard steps, in order. The flow is a linear chain: the only backwards jump
// is the explicit regenerate-script reset, which returns to StepEnhance.
const (
	StepScript   = 1
	StepEnhance  = 2
	StepVoice    = 3
	StepTemplate = 4
	StepSummary  = 5

	TotalSteps = 5
)

// MinScriptWords is the minimum word count required to leave the script step.
const MinScriptWords = 5

var (
	ErrInvalidSpeed    = errors.New("speed must be one of 0.75, 1.0, 1.25, 1.5")
	ErrScriptImmutable = errors.New("raw script can only be set on the script step")
	ErrSessionClosed   = errors.New("wizard session is closed")
)

// Session owns one draft through the creation wizard. It is the only writer
// of the draft; steps hand their results back through the Apply* methods,
// which merge into the draft without touching fields set by other steps.
//
// All methods are safe for concurrent use. The session carries a context that
// scopes every pipeline call; Close cancels it so late responses from the
// generation backend are discarded.
type Session struct {
	mu sync.Mutex

	id     uuid.UUID
	userID uuid.UUID
	draft  models.Draft
	step   int

	ctx    context.Context
	cancel context.CancelFunc

	// Single-shot latch for the automatic audio+clips run on the summary
	// step. Set synchronously before the async work starts.
	pipelineStarted bool
	progress        int
	pipelineErr     error
}

// NewSession creates a session with an empty draft positioned on the script step.
func NewSession(id, userID uuid.UUID) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:     id,
		userID: userID,
		step:   StepScript,
		draft: models.Draft{
			ID:    id,
			Speed: 1.0,
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

// ID returns the session (and draft) identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// UserID returns the id of the user who owns this session.
func (s *Session) UserID() uuid.UUID { return s.userID }

// Context returns the context scoping this session's backend calls.
func (s *Session) Context() context.Context { return s.ctx }

// Close cancels any in-flight backend call tied to this session.
func (s *Session) Close() { s.cancel() }

// CurrentStep returns the wizard step the session is on, in [1, TotalSteps].
func (s *Session) CurrentStep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Advance moves to the next step if the current step's required fields are
// set. It reports whether the step changed; an invalid or terminal step is a
// no-op, mirroring a disabled "continue" control.
func (s *Session) Advance() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step >= TotalSteps || !s.stepComplete(s.step) {
		return false
	}
	s.step++
	return true
}

// Retreat moves back one step. It never validates and never clears data.
func (s *Session) Retreat() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step > StepScript {
		s.step--
	}
}

// stepComplete reports whether the required fields for a step are present.
// Callers must hold s.mu.
func (s *Session) stepComplete(step int) bool {
	switch step {
	case StepScript:
		return WordCount(s.draft.RawScript) >= MinScriptWords && s.draft.Category != ""
	case StepEnhance:
		return s.draft.Enhancement != nil
	case StepVoice:
		return s.draft.VoiceID != ""
	case StepTemplate:
		return true // template selection is optional
	default:
		return false
	}
}

// SetScript records the raw script and category. The raw script is set once
// on the script step and is immutable afterwards.
func (s *Session) SetScript(text, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != StepScript {
		return ErrScriptImmutable
	}
	s.draft.RawScript = strings.TrimSpace(text)
	s.draft.Category = category
	return nil
}

// SetVoice records the selected narration voice.
func (s *Session) SetVoice(voiceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.VoiceID = voiceID
}

// SetSpeed records the narration speed. Values outside the discrete option
// set are rejected and leave the draft unchanged.
func (s *Session) SetSpeed(speed float64) error {
	if !models.ValidSpeed(speed) {
		return fmt.Errorf("%w: got %v", ErrInvalidSpeed, speed)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Speed = speed
	return nil
}

// SetTemplate records the selected template.
func (s *Session) SetTemplate(templateID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.TemplateID = &templateID
}

// ApplyEnhancement stores the enhancement result. Re-running enhancement
// replaces the previous result wholesale and clears everything derived from
// the old script: audio, clips and any assembled result.
func (s *Session) ApplyEnhancement(e models.Enhancement) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.draft.Enhancement = &e
	s.draft.Audio = nil
	s.draft.Clips = nil
	s.draft.VideoResult = nil
	s.pipelineStarted = false
	s.progress = 0
	s.pipelineErr = nil
}

// ApplyAudio merges the synthesized narration into the draft. This is a
// partial update: clips or any other field set by a later step stay intact.
func (s *Session) ApplyAudio(a models.AudioTrack) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Audio = &a
}

// ApplyClips merges the clip selection into the draft, replacing any prior
// selection wholesale.
func (s *Session) ApplyClips(c models.ClipSelection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Clips = &c
}

// ApplyVideoResult records the assembled video descriptor.
func (s *Session) ApplyVideoResult(v models.VideoResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.VideoResult = &v
}

// ResetEnhancement backs the "regenerate script" action: it clears the
// enhancement and every field downstream of it, then jumps back to the
// enhance step. Raw script and category survive.
func (s *Session) ResetEnhancement() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.draft.Enhancement = nil
	s.draft.Audio = nil
	s.draft.Clips = nil
	s.draft.VideoResult = nil
	s.pipelineStarted = false
	s.progress = 0
	s.pipelineErr = nil
	s.step = StepEnhance
}

// StartPipeline claims the automatic pipeline latch. It returns true exactly
// once per enhancement; later calls (re-renders, double submits) are no-ops.
func (s *Session) StartPipeline() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pipelineStarted {
		return false
	}
	s.pipelineStarted = true
	s.progress = 0
	s.pipelineErr = nil
	return true
}

// PipelineStarted reports whether the automatic pipeline has been claimed.
func (s *Session) PipelineStarted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pipelineStarted
}

// SetProgress records pipeline progress (0, 33, 66 or 100).
func (s *Session) SetProgress(p int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = p
}

// Progress returns the last recorded pipeline progress.
func (s *Session) Progress() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// SetPipelineErr records a pipeline failure for later inspection.
func (s *Session) SetPipelineErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pipelineErr = err
}

// PipelineErr returns the recorded pipeline failure, if any.
func (s *Session) PipelineErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pipelineErr
}

// PipelineDone reports whether both audio and clips are present.
func (s *Session) PipelineDone() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Audio != nil && s.draft.Clips != nil
}

// Draft returns a copy of the current draft. Nested results are shallow
// copies; callers treat them as read-only.
func (s *Session) Draft() models.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// WordCount counts whitespace-separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

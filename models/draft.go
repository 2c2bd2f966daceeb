package models

import (
	"github.com/google/uuid"
)

// SpeedOptions is the discrete set of narration speeds the voice step offers.
// The UI renders these as fixed choices; anything else is rejected.
var SpeedOptions = []float64{0.75, 1.0, 1.25, 1.5}

// ValidSpeed reports whether s is one of the allowed narration speeds.
func ValidSpeed(s float64) bool {
	for _, opt := range SpeedOptions {
		if s == opt {
			return true
		}
	}
	return false
}

// EnhancementSource records how the enhanced script was produced, so callers
// can tell "AI worked" apart from "backend unavailable, used the original".
type EnhancementSource string

const (
	EnhancementSourceAI       EnhancementSource = "enhanced"
	EnhancementSourceFallback EnhancementSource = "fallback"
)

// FallbackImprovementNote is the single improvement entry recorded when the
// enhancement backend was unreachable and the raw script was used as-is.
const FallbackImprovementNote = "uso del script original"

// ScriptSegment is a narrative sub-unit of the enhanced script. Kind is a tag
// such as "hook", "content" or "cta"; order is narrative order.
type ScriptSegment struct {
	Text            string  `json:"text"`
	DurationSeconds float64 `json:"duration_seconds"`
	Kind            string  `json:"kind"`
}

// Enhancement holds everything the script-enhancement step produced.
type Enhancement struct {
	Script            string            `json:"script"`
	EstimatedDuration float64           `json:"estimated_duration"`
	Segments          []ScriptSegment   `json:"segments"`
	Keywords          []string          `json:"keywords,omitempty"`
	Tone              string            `json:"tone,omitempty"`
	Improvements      []string          `json:"improvements,omitempty"`
	Source            EnhancementSource `json:"source"`
}

// AudioSegment carries per-segment timing from the TTS backend.
type AudioSegment struct {
	Text            string  `json:"text"`
	Kind            string  `json:"kind"`
	Emotion         string  `json:"emotion"`
	DurationSeconds float64 `json:"duration_seconds"`
	Speed           float64 `json:"speed"`
}

// AudioTrack is the synthesized narration for a draft.
type AudioTrack struct {
	Base64Payload   string         `json:"audio_base64"`
	Filename        string         `json:"filename"`
	DurationSeconds float64        `json:"duration_seconds"`
	VoiceID         string         `json:"voice_id"`
	Segments        []AudioSegment `json:"segments"`
}

// ClipMatch is one stock clip candidate scored against a script segment.
// Clips arrive ranked by FinalScore descending and are never re-sorted here.
type ClipMatch struct {
	ClipID            string   `json:"clip_id"`
	Filename          string   `json:"filename"`
	DurationSeconds   float64  `json:"duration_seconds"`
	SourceSegmentText string   `json:"source_segment_text"`
	SimilarityScore   float64  `json:"similarity_score"`
	FinalScore        float64  `json:"final_score"`
	QualityScore      float64  `json:"quality_score"`
	MotionIntensity   float64  `json:"motion_intensity"`
	ConceptTags       []string `json:"concept_tags,omitempty"`
	EmotionTags       []string `json:"emotion_tags,omitempty"`
}

// ClipSelection is the clip-selection backend's answer for a draft.
type ClipSelection struct {
	SelectedClips         []ClipMatch `json:"selected_clips"`
	TotalDuration         float64     `json:"total_duration"`
	EstimatedEngagement   float64     `json:"estimated_engagement"`
	VisualCoherence       float64     `json:"visual_coherence"`
	DurationCompatibility float64     `json:"duration_compatibility"`
	Warnings              []string    `json:"warnings,omitempty"`
}

// VideoMetadata describes the assembled output.
type VideoMetadata struct {
	ClipsCount int    `json:"clips_count"`
	Resolution string `json:"resolution,omitempty"`
	Format     string `json:"format,omitempty"`
}

// VideoResult is the descriptor returned by final assembly.
type VideoResult struct {
	URL             string        `json:"url"`
	DurationSeconds float64       `json:"duration_seconds"`
	Metadata        VideoMetadata `json:"metadata"`
}

// Draft is the single accumulating record for one in-progress video. Fields
// are additive within a wizard session: each step sets its own slice of the
// draft and must leave everything set earlier untouched. Nil means "that step
// has not produced output yet".
type Draft struct {
	ID          uuid.UUID      `json:"id"`
	RawScript   string         `json:"raw_script"`
	Category    string         `json:"category"`
	Enhancement *Enhancement   `json:"enhancement,omitempty"`
	VoiceID     string         `json:"voice_id,omitempty"`
	Speed       float64        `json:"speed"`
	TemplateID  *uuid.UUID     `json:"template_id,omitempty"`
	Audio       *AudioTrack    `json:"audio,omitempty"`
	Clips       *ClipSelection `json:"clips,omitempty"`
	VideoResult *VideoResult   `json:"video_result,omitempty"`
}

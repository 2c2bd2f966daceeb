package wizard

import (
	"testing"

	"github.com/google/uuid"

	"reelforge/api-gateway/models"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	return NewSession(uuid.New(), uuid.New())
}

func scriptedSession(t *testing.T) *Session {
	t.Helper()
	s := newTestSession(t)
	if err := s.SetScript("Explica cómo crear una API REST con Node.js", "tech"); err != nil {
		t.Fatalf("SetScript failed: %v", err)
	}
	return s
}

func testEnhancement() models.Enhancement {
	return models.Enhancement{
		Script:            "Hook. Explica cómo crear una API REST con Node.js. CTA.",
		EstimatedDuration: 42,
		Segments: []models.ScriptSegment{
			{Text: "Hook.", DurationSeconds: 3, Kind: "hook"},
			{Text: "Explica cómo crear una API REST con Node.js.", DurationSeconds: 35, Kind: "content"},
			{Text: "CTA.", DurationSeconds: 4, Kind: "cta"},
		},
		Source: models.EnhancementSourceAI,
	}
}

func testAudio() models.AudioTrack {
	return models.AudioTrack{
		Base64Payload:   "QUJD",
		Filename:        "narration.mp3",
		DurationSeconds: 40.5,
		VoiceID:         "alloy",
	}
}

func testClips() models.ClipSelection {
	return models.ClipSelection{
		SelectedClips: []models.ClipMatch{
			{ClipID: "c1", FinalScore: 0.9},
			{ClipID: "c2", FinalScore: 0.8},
			{ClipID: "c3", FinalScore: 0.7},
		},
		TotalDuration:       41,
		EstimatedEngagement: 0.82,
	}
}

func TestAdvanceRequiresScriptAndCategory(t *testing.T) {
	tests := []struct {
		name     string
		script   string
		category string
		want     bool
	}{
		{"empty script", "", "tech", false},
		{"too few words", "cuatro palabras no bastan", "tech", false},
		{"missing category", "cinco palabras ya son suficientes", "", false},
		{"valid", "cinco palabras ya son suficientes", "tech", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestSession(t)
			if err := s.SetScript(tc.script, tc.category); err != nil {
				t.Fatalf("SetScript failed: %v", err)
			}
			if got := s.Advance(); got != tc.want {
				t.Fatalf("Advance() = %v, want %v", got, tc.want)
			}
			wantStep := StepScript
			if tc.want {
				wantStep = StepEnhance
			}
			if s.CurrentStep() != wantStep {
				t.Fatalf("CurrentStep() = %d, want %d", s.CurrentStep(), wantStep)
			}
		})
	}
}

func TestAdvanceRequiresEnhancement(t *testing.T) {
	s := scriptedSession(t)
	s.Advance()

	if s.Advance() {
		t.Fatal("Advance() succeeded without an enhancement")
	}

	s.ApplyEnhancement(testEnhancement())
	if !s.Advance() {
		t.Fatal("Advance() failed with enhancement present")
	}
	if s.CurrentStep() != StepVoice {
		t.Fatalf("CurrentStep() = %d, want %d", s.CurrentStep(), StepVoice)
	}
}

func TestAdvanceRequiresVoice(t *testing.T) {
	s := scriptedSession(t)
	s.Advance()
	s.ApplyEnhancement(testEnhancement())
	s.Advance()

	if s.Advance() {
		t.Fatal("Advance() succeeded without a voice")
	}

	s.SetVoice("alloy")
	if !s.Advance() {
		t.Fatal("Advance() failed with voice set")
	}
}

func TestAdvanceStopsAtSummary(t *testing.T) {
	s := scriptedSession(t)
	s.Advance()
	s.ApplyEnhancement(testEnhancement())
	s.Advance()
	s.SetVoice("alloy")
	s.Advance()
	s.Advance() // template step has no required fields

	if s.CurrentStep() != StepSummary {
		t.Fatalf("CurrentStep() = %d, want %d", s.CurrentStep(), StepSummary)
	}
	if s.Advance() {
		t.Fatal("Advance() succeeded past the terminal step")
	}
}

func TestRetreatNeverValidatesOrClears(t *testing.T) {
	s := scriptedSession(t)
	s.Advance()
	s.ApplyEnhancement(testEnhancement())
	s.Advance()
	s.SetVoice("alloy")

	before := s.Draft()

	s.Retreat()
	if s.CurrentStep() != StepEnhance {
		t.Fatalf("CurrentStep() after retreat = %d, want %d", s.CurrentStep(), StepEnhance)
	}

	// Round-trip back with no field changes.
	if !s.Advance() {
		t.Fatal("Advance() after retreat failed")
	}
	after := s.Draft()

	if after.RawScript != before.RawScript || after.VoiceID != before.VoiceID {
		t.Fatal("retreat+advance mutated previously-set fields")
	}
	if after.Enhancement == nil {
		t.Fatal("retreat cleared the enhancement")
	}
}

func TestRetreatAtFirstStepIsNoop(t *testing.T) {
	s := newTestSession(t)
	s.Retreat()
	if s.CurrentStep() != StepScript {
		t.Fatalf("CurrentStep() = %d, want %d", s.CurrentStep(), StepScript)
	}
}

func TestScriptImmutableAfterScriptStep(t *testing.T) {
	s := scriptedSession(t)
	s.Advance()

	if err := s.SetScript("otro script totalmente distinto aquí", "tech"); err == nil {
		t.Fatal("SetScript succeeded after leaving the script step")
	}
}

func TestSetSpeedRejectsOffMenuValues(t *testing.T) {
	s := newTestSession(t)

	for _, valid := range []float64{0.75, 1.0, 1.25, 1.5} {
		if err := s.SetSpeed(valid); err != nil {
			t.Fatalf("SetSpeed(%v) rejected a valid speed: %v", valid, err)
		}
	}

	for _, invalid := range []float64{0, 0.5, 1.1, 2.0, -1} {
		if err := s.SetSpeed(invalid); err == nil {
			t.Fatalf("SetSpeed(%v) accepted an invalid speed", invalid)
		}
	}

	if s.Draft().Speed != 1.5 {
		t.Fatalf("Speed = %v, want last valid value 1.5", s.Draft().Speed)
	}
}

func TestApplyAudioPreservesClips(t *testing.T) {
	s := scriptedSession(t)
	s.ApplyEnhancement(testEnhancement())
	s.ApplyClips(testClips())

	s.ApplyAudio(testAudio())

	draft := s.Draft()
	if draft.Clips == nil {
		t.Fatal("ApplyAudio wiped the clip selection")
	}
	if len(draft.Clips.SelectedClips) != 3 {
		t.Fatalf("SelectedClips = %d, want 3", len(draft.Clips.SelectedClips))
	}
	if draft.Audio == nil || draft.Audio.DurationSeconds != 40.5 {
		t.Fatal("ApplyAudio did not record the audio track")
	}
	if draft.Enhancement == nil {
		t.Fatal("ApplyAudio wiped the enhancement")
	}
}

func TestApplyClipsPreservesAudio(t *testing.T) {
	s := scriptedSession(t)
	s.ApplyEnhancement(testEnhancement())
	s.ApplyAudio(testAudio())

	s.ApplyClips(testClips())

	draft := s.Draft()
	if draft.Audio == nil {
		t.Fatal("ApplyClips wiped the audio track")
	}
	if draft.Clips == nil {
		t.Fatal("ApplyClips did not record the selection")
	}
}

func TestReapplyEnhancementClearsDerivedFields(t *testing.T) {
	s := scriptedSession(t)
	s.ApplyEnhancement(testEnhancement())
	s.ApplyAudio(testAudio())
	s.ApplyClips(testClips())

	s.ApplyEnhancement(testEnhancement())

	draft := s.Draft()
	if draft.Audio != nil {
		t.Fatal("re-enhancement kept stale audio")
	}
	if draft.Clips != nil {
		t.Fatal("re-enhancement kept stale clips")
	}
}

func TestResetEnhancementJumpsBackAndClears(t *testing.T) {
	s := scriptedSession(t)
	s.Advance()
	s.ApplyEnhancement(testEnhancement())
	s.Advance()
	s.SetVoice("alloy")
	s.Advance()
	s.ApplyAudio(testAudio())
	s.ApplyClips(testClips())

	s.ResetEnhancement()

	if s.CurrentStep() != StepEnhance {
		t.Fatalf("CurrentStep() = %d, want %d", s.CurrentStep(), StepEnhance)
	}
	draft := s.Draft()
	if draft.Enhancement != nil || draft.Audio != nil || draft.Clips != nil {
		t.Fatal("ResetEnhancement left derived fields behind")
	}
	if draft.RawScript == "" || draft.Category == "" {
		t.Fatal("ResetEnhancement cleared the raw script or category")
	}
	if draft.VoiceID != "alloy" {
		t.Fatal("ResetEnhancement cleared the voice selection")
	}
}

func TestStartPipelineLatchFiresOnce(t *testing.T) {
	s := scriptedSession(t)

	if !s.StartPipeline() {
		t.Fatal("first StartPipeline() returned false")
	}
	for i := 0; i < 3; i++ {
		if s.StartPipeline() {
			t.Fatal("latch allowed a second start")
		}
	}
}

func TestLatchRearmsAfterRegeneration(t *testing.T) {
	s := scriptedSession(t)
	s.ApplyEnhancement(testEnhancement())
	s.StartPipeline()

	// Regenerating invalidates the old pipeline outputs, so the auto-run
	// must be allowed to fire again for the new enhancement.
	s.ResetEnhancement()
	if !s.StartPipeline() {
		t.Fatal("latch did not re-arm after regeneration")
	}
}

func TestPipelineDone(t *testing.T) {
	s := scriptedSession(t)
	s.ApplyEnhancement(testEnhancement())

	if s.PipelineDone() {
		t.Fatal("PipelineDone() true before any output")
	}
	s.ApplyAudio(testAudio())
	if s.PipelineDone() {
		t.Fatal("PipelineDone() true without clips")
	}
	s.ApplyClips(testClips())
	if !s.PipelineDone() {
		t.Fatal("PipelineDone() false with audio and clips present")
	}
}

func TestCloseCancelsSessionContext(t *testing.T) {
	s := newTestSession(t)
	s.Close()

	select {
	case <-s.Context().Done():
	default:
		t.Fatal("Close() did not cancel the session context")
	}
}

func TestWordCount(t *testing.T) {
	tests := map[string]int{
		"":                          0,
		"   ":                       0,
		"una":                       1,
		"Explica cómo crear una API REST con Node.js": 7,
		"  espacios   extra  no cuentan  ":            4,
	}
	for in, want := range tests {
		if got := WordCount(in); got != want {
			t.Errorf("WordCount(%q) = %d, want %d", in, got, want)
		}
	}
}

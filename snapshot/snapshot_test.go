package snapshot

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"reelforge/api-gateway/models"
)

func TestFromDraftKeepsOnlyUserInputs(t *testing.T) {
	templateID := uuid.New()
	d := models.Draft{
		ID:         uuid.New(),
		RawScript:  "mi guion escrito a mano",
		Category:   "tech",
		VoiceID:    "alloy",
		Speed:      1.25,
		TemplateID: &templateID,
		Enhancement: &models.Enhancement{
			Script: "versión mejorada",
			Source: models.EnhancementSourceAI,
		},
		Audio: &models.AudioTrack{DurationSeconds: 28},
		Clips: &models.ClipSelection{TotalDuration: 27},
	}

	snap := FromDraft(d)

	if snap.RawScript != d.RawScript || snap.Category != d.Category {
		t.Fatalf("snapshot = %+v, script/category not captured", snap)
	}
	if snap.VoiceID != "alloy" || snap.Speed != 1.25 {
		t.Fatalf("snapshot = %+v, voice/speed not captured", snap)
	}
	if snap.TemplateID == nil || *snap.TemplateID != templateID {
		t.Fatal("template selection not captured")
	}
	if snap.SavedAt.IsZero() || time.Since(snap.SavedAt) > time.Minute {
		t.Fatalf("SavedAt = %v, want roughly now", snap.SavedAt)
	}
}

func TestKeyIsPerUser(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	if key(a) == key(b) {
		t.Fatal("snapshot keys collide across users")
	}
	if key(a) != "wizard:snapshot:"+a.String() {
		t.Fatalf("key(a) = %q", key(a))
	}
}

func TestNewStoreDefaultsTTL(t *testing.T) {
	s := NewStore(nil, 0)
	if s.ttl != DefaultTTL {
		t.Fatalf("ttl = %v, want %v", s.ttl, DefaultTTL)
	}
	s = NewStore(nil, time.Hour)
	if s.ttl != time.Hour {
		t.Fatalf("ttl = %v, want 1h", s.ttl)
	}
}

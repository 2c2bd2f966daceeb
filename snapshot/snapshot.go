// Package snapshot keeps a best-effort copy of the early wizard inputs so a
// user who loses their tab can resume without retyping the script. Snapshots
// are not durable and never synced; they expire on their own.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"reelforge/api-gateway/models"
)

// DefaultTTL bounds how long an abandoned draft snapshot survives.
const DefaultTTL = 24 * time.Hour

// Snapshot is the resilient slice of a draft: only what the user typed or
// picked by hand. Generated fields (enhancement, audio, clips) are cheap to
// regenerate and are deliberately not captured.
type Snapshot struct {
	RawScript  string     `json:"raw_script"`
	Category   string     `json:"category"`
	VoiceID    string     `json:"voice_id,omitempty"`
	Speed      float64    `json:"speed,omitempty"`
	TemplateID *uuid.UUID `json:"template_id,omitempty"`
	SavedAt    time.Time  `json:"saved_at"`
}

// FromDraft extracts the resilient fields of a draft.
func FromDraft(d models.Draft) Snapshot {
	return Snapshot{
		RawScript:  d.RawScript,
		Category:   d.Category,
		VoiceID:    d.VoiceID,
		Speed:      d.Speed,
		TemplateID: d.TemplateID,
		SavedAt:    time.Now(),
	}
}

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

// Save stores the snapshot under the user's key, replacing any prior one.
func (s *Store) Save(ctx context.Context, userID uuid.UUID, snap Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.rdb.Set(ctx, key(userID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load returns the user's snapshot, or nil when none exists.
func (s *Store) Load(ctx context.Context, userID uuid.UUID) (*Snapshot, error) {
	payload, err := s.rdb.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// Delete removes the user's snapshot, typically after a successful assembly.
func (s *Store) Delete(ctx context.Context, userID uuid.UUID) error {
	return s.rdb.Del(ctx, key(userID)).Err()
}

func key(userID uuid.UUID) string {
	return "wizard:snapshot:" + userID.String()
}

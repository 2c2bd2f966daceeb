package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	supa "github.com/supabase-community/supabase-go"

	"reelforge/api-gateway/billing"
	"reelforge/api-gateway/models"
	"reelforge/api-gateway/pipeline"
	"reelforge/api-gateway/snapshot"
	"reelforge/api-gateway/wizard"
)

// ScriptEnhancer is the slice of the generation client the enhancement
// handler needs. Declared here so tests can substitute a fake.
type ScriptEnhancer interface {
	EnhanceScript(ctx context.Context, script, category string) (models.Enhancement, error)
}

// SnapshotStore persists best-effort draft snapshots.
type SnapshotStore interface {
	Save(ctx context.Context, userID uuid.UUID, snap snapshot.Snapshot) error
	Load(ctx context.Context, userID uuid.UUID) (*snapshot.Snapshot, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

// ApplicationHandler holds shared dependencies for handlers.
type ApplicationHandler struct {
	Enhancer  ScriptEnhancer
	Runner    *pipeline.Runner
	Sessions  *wizard.Registry
	Snapshots SnapshotStore
	Billing   *billing.Service
	Logger    *logrus.Logger
	DB        *supa.Client
}

// NewApplicationHandler creates an ApplicationHandler with the given dependencies.
func NewApplicationHandler(
	enhancer ScriptEnhancer,
	runner *pipeline.Runner,
	sessions *wizard.Registry,
	snapshots SnapshotStore,
	billingSvc *billing.Service,
	logger *logrus.Logger,
	dbClient *supa.Client,
) *ApplicationHandler {
	return &ApplicationHandler{
		Enhancer:  enhancer,
		Runner:    runner,
		Sessions:  sessions,
		Snapshots: snapshots,
		Billing:   billingSvc,
		Logger:    logger,
		DB:        dbClient,
	}
}

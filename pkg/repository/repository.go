package repository

import (
	"context"
	"errors"

	"github.com/hirepipe/hirepipe/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

// ErrNotFound is returned when a lookup addresses an unknown key.
var ErrNotFound = errors.New("not found")

// StateRepo persists workflow states keyed by job id. PutState replaces the
// whole record atomically; there is no partial field update. Implementations
// also record a snapshot per successful put so earlier checkpoints can be
// inspected.
type StateRepo interface {
	GetState(ctx context.Context, jobID string) (*models.WorkflowState, error)
	PutState(ctx context.Context, state *models.WorkflowState) error
	ListJobIDs(ctx context.Context) ([]string, error)
	ListSnapshots(ctx context.Context, jobID string) ([]models.StateSnapshot, error)
}

// SlotRepo manages the panel slot pool used to schedule interview rounds.
// BookSlot must be atomic: a slot is handed to exactly one candidate.
type SlotRepo interface {
	AddSlots(ctx context.Context, role string, slots []string) error
	AvailableSlots(ctx context.Context, role string) ([]string, error)
	BookSlot(ctx context.Context, role, slot, candidateID string) error
}

// UserRepo stores HR users for the HTTP surface.
type UserRepo interface {
	CreateUser(ctx context.Context, u *models.HRUser) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (*models.HRUser, error)
}

// SchemaRepo stores versioned JSON Schemas for model-output validation.
type SchemaRepo interface {
	CreateSchema(ctx context.Context, version, description, schemaJSON string) (int64, error)
	GetSchemaByVersion(ctx context.Context, version string) (*models.Schema, error)
	ListSchemas(ctx context.Context) ([]models.Schema, error)
	DeleteSchema(ctx context.Context, version string) error
}

// TemplateRepo stores versioned prompt templates.
type TemplateRepo interface {
	CreateTemplate(ctx context.Context, name, version, templateText string, schemaVersion, metadata *string) (int64, error)
	GetTemplate(ctx context.Context, name, version string) (*models.Template, error)
	ListTemplates(ctx context.Context) ([]models.Template, error)
}

// QueueRepo is the persistence contract for the background job queue.
type QueueRepo interface {
	Enqueue(ctx context.Context, j *models.BackgroundJob) (int64, error)
	FetchNext(ctx context.Context) (*models.BackgroundJob, error)
	UpdateJob(ctx context.Context, j *models.BackgroundJob) error
	MoveToDeadLetter(ctx context.Context, j *models.BackgroundJob) error
}

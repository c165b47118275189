// Package persistence provides the data storage abstraction for workflows
// and their execution ledger.
package persistence

import (
	"context"

	"github.com/cascadehq/cascade/pkg/models"
)

// Persistence is the storage entry point. Implementations own connection
// lifecycle; serialization of graph columns stays with the models package.
type Persistence interface {
	WorkflowRepository() WorkflowRepository
	InstanceRepository() InstanceRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// WorkflowRepository stores workflow records.
type WorkflowRepository interface {
	// GetAll returns workflows, optionally filtered by sub-account,
	// most recently updated first.
	GetAll(ctx context.Context, subAccountID string) ([]*models.Workflow, error)

	// GetByID returns nil, nil when no workflow exists with the id.
	GetByID(ctx context.Context, id string) (*models.Workflow, error)

	Save(ctx context.Context, workflow *models.Workflow) error

	// Delete removes the workflow and, by cascade, its instances.
	Delete(ctx context.Context, id string) error
}

// InstanceRepository stores the run ledger. Entries are never deleted
// individually; they go away only when their workflow is deleted.
type InstanceRepository interface {
	Create(ctx context.Context, instance *models.WorkflowInstance) error

	// GetByID returns nil, nil when no instance exists with the id.
	GetByID(ctx context.Context, id string) (*models.WorkflowInstance, error)

	Update(ctx context.Context, instance *models.WorkflowInstance) error

	// ListByWorkflow returns up to limit instances, most recent first.
	ListByWorkflow(ctx context.Context, workflowID string, limit int) ([]*models.WorkflowInstance, error)

	// DeleteByWorkflow implements the cascade for stores without
	// referential integrity.
	DeleteByWorkflow(ctx context.Context, workflowID string) error
}

// DefaultInstanceLimit bounds ledger reads when the caller supplies no
// limit.
const DefaultInstanceLimit = 20

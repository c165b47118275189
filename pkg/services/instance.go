package services

import (
	"context"
	"fmt"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/persistence"
)

// ErrInstanceNotFound is returned when a ledger entry is not found.
var ErrInstanceNotFound = persistence.ErrInstanceNotFound

// Instance provides read access to the run ledger.
type Instance struct {
	persistence persistence.Persistence
}

// NewInstance creates a new instance service.
func NewInstance(persistence persistence.Persistence) *Instance {
	return &Instance{persistence: persistence}
}

// FetchByID retrieves a ledger entry by its ID.
func (s *Instance) FetchByID(ctx context.Context, id string) (*models.WorkflowInstance, error) {
	instance, err := s.persistence.InstanceRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if instance == nil {
		return nil, ErrInstanceNotFound
	}

	return instance, nil
}

// ListByWorkflow returns the most recent runs of a workflow, newest
// first, capped at the ledger retention limit. The workflow must exist.
func (s *Instance) ListByWorkflow(ctx context.Context, workflowID string, limit int) ([]*models.WorkflowInstance, error) {
	workflow, err := s.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if workflow == nil {
		return nil, ErrWorkflowNotFound
	}

	if limit <= 0 || limit > persistence.DefaultInstanceLimit {
		limit = persistence.DefaultInstanceLimit
	}

	instances, err := s.persistence.InstanceRepository().ListByWorkflow(ctx, workflowID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}

	return instances, nil
}

// Package file provides file-based persistence for workflows and the run
// ledger, used for local development and tests.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/cascadehq/cascade/pkg/persistence"
)

// Persistence implements persistence.Persistence on the file system. Each
// workflow and instance is one JSON document under the root directory.
type Persistence struct {
	root         string
	workflowRepo *WorkflowRepository
	instanceRepo *InstanceRepository
}

// NewPersistence creates a file persistence rooted at the given directory.
// A "file://" prefix is accepted and stripped.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.TrimPrefix(root, "file://")

	instanceRepo := NewInstanceRepository(cleanRoot)

	return &Persistence{
		root:         cleanRoot,
		workflowRepo: NewWorkflowRepository(cleanRoot, instanceRepo),
		instanceRepo: instanceRepo,
	}
}

// WorkflowRepository returns the workflow repository implementation.
func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return p.workflowRepo
}

// InstanceRepository returns the run ledger repository implementation.
func (p *Persistence) InstanceRepository() persistence.InstanceRepository {
	return p.instanceRepo
}

// HealthCheck verifies the root directory exists.
func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. For file-based persistence there
// is nothing to clean up.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}

package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/persistence"
)

// InstanceRepository stores the run ledger as one JSON document per
// instance.
type InstanceRepository struct {
	root string
}

// NewInstanceRepository creates a new ledger repository.
func NewInstanceRepository(root string) *InstanceRepository {
	return &InstanceRepository{root: root}
}

func (r *InstanceRepository) dir() string {
	return path.Join(r.root, "instances")
}

// Create writes a new ledger entry.
func (r *InstanceRepository) Create(_ context.Context, instance *models.WorkflowInstance) error {
	err := os.MkdirAll(r.dir(), 0750)
	if err != nil {
		return fmt.Errorf("failed to create instances directory: %w", err)
	}

	return r.write(instance)
}

// GetByID retrieves an instance by its ID.
func (r *InstanceRepository) GetByID(_ context.Context, id string) (*models.WorkflowInstance, error) {
	filePath := filepath.Clean(path.Join(r.dir(), id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch instance %s: %w", id, err)
	}

	var instance models.WorkflowInstance

	err = json.Unmarshal(body, &instance)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal instance %s: %w", id, err)
	}

	return &instance, nil
}

// Update overwrites an existing ledger entry.
func (r *InstanceRepository) Update(ctx context.Context, instance *models.WorkflowInstance) error {
	existing, err := r.GetByID(ctx, instance.ID)
	if err != nil {
		return err
	}

	if existing == nil {
		return persistence.NewInstanceError("Update", instance.ID, persistence.ErrInstanceNotFound)
	}

	return r.write(instance)
}

// ListByWorkflow returns up to limit instances for the workflow, most
// recent first.
func (r *InstanceRepository) ListByWorkflow(ctx context.Context, workflowID string, limit int) ([]*models.WorkflowInstance, error) {
	if limit <= 0 {
		limit = persistence.DefaultInstanceLimit
	}

	instances, err := r.loadByWorkflow(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	sort.Slice(instances, func(i, j int) bool {
		return instances[i].StartedAt.After(instances[j].StartedAt)
	})

	if len(instances) > limit {
		instances = instances[:limit]
	}

	return instances, nil
}

// DeleteByWorkflow removes every ledger entry belonging to the workflow.
func (r *InstanceRepository) DeleteByWorkflow(ctx context.Context, workflowID string) error {
	instances, err := r.loadByWorkflow(ctx, workflowID)
	if err != nil {
		return err
	}

	for _, instance := range instances {
		filePath := path.Join(r.dir(), instance.ID+".json")
		if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete instance %s: %w", instance.ID, err)
		}
	}

	return nil
}

func (r *InstanceRepository) loadByWorkflow(ctx context.Context, workflowID string) ([]*models.WorkflowInstance, error) {
	root := os.DirFS(r.dir())

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list instance files: %w", err)
	}

	instances := make([]*models.WorkflowInstance, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		instanceID := file[:len(file)-len(".json")]

		instance, err := r.GetByID(ctx, instanceID)
		if err != nil {
			return nil, err
		}

		if instance != nil && instance.WorkflowID == workflowID {
			instances = append(instances, instance)
		}
	}

	return instances, nil
}

func (r *InstanceRepository) write(instance *models.WorkflowInstance) error {
	data, err := json.MarshalIndent(instance, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal instance %s: %w", instance.ID, err)
	}

	filePath := path.Join(r.dir(), instance.ID+".json")

	return os.WriteFile(filePath, data, 0600)
}

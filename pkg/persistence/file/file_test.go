package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/persistence"
)

func TestNewPersistence_StripsScheme(t *testing.T) {
	p := NewPersistence("file:///tmp/cascade-test")
	assert.Equal(t, "/tmp/cascade-test", p.root)

	p = NewPersistence("/tmp/cascade-test")
	assert.Equal(t, "/tmp/cascade-test", p.root)
}

func TestWorkflowRepository_SaveAndGet(t *testing.T) {
	testDir := t.TempDir()
	p := NewPersistence(testDir)
	repo := p.WorkflowRepository()

	workflow := &models.Workflow{
		ID:           "wf-1",
		Name:         "Welcome flow",
		Nodes:        `[]`,
		Edges:        `[]`,
		FlowPath:     `[]`,
		SubAccountID: "sub-1",
	}

	require.NoError(t, repo.Save(t.Context(), workflow))
	assert.FileExists(t, filepath.Join(testDir, "workflows", "wf-1.json"))
	assert.False(t, workflow.CreatedAt.IsZero())

	loaded, err := repo.GetByID(t.Context(), "wf-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Welcome flow", loaded.Name)
	assert.Equal(t, "sub-1", loaded.SubAccountID)
}

func TestWorkflowRepository_GetByID_Missing(t *testing.T) {
	p := NewPersistence(t.TempDir())

	loaded, err := p.WorkflowRepository().GetByID(t.Context(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestWorkflowRepository_GetAll_FiltersAndSorts(t *testing.T) {
	p := NewPersistence(t.TempDir())
	repo := p.WorkflowRepository()

	first := &models.Workflow{ID: "wf-1", Name: "First", SubAccountID: "sub-1"}
	require.NoError(t, repo.Save(t.Context(), first))

	time.Sleep(10 * time.Millisecond)

	second := &models.Workflow{ID: "wf-2", Name: "Second", SubAccountID: "sub-2"}
	require.NoError(t, repo.Save(t.Context(), second))

	all, err := repo.GetAll(t.Context(), "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "wf-2", all[0].ID)

	filtered, err := repo.GetAll(t.Context(), "sub-1")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "wf-1", filtered[0].ID)
}

func TestWorkflowRepository_DeleteCascades(t *testing.T) {
	p := NewPersistence(t.TempDir())

	workflow := &models.Workflow{ID: "wf-1", Name: "Doomed"}
	require.NoError(t, p.WorkflowRepository().Save(t.Context(), workflow))

	instance := &models.WorkflowInstance{
		ID:         "inst-1",
		WorkflowID: "wf-1",
		Status:     models.InstanceStatusCompleted,
		StartedAt:  time.Now().UTC(),
	}
	require.NoError(t, p.InstanceRepository().Create(t.Context(), instance))

	require.NoError(t, p.WorkflowRepository().Delete(t.Context(), "wf-1"))

	gone, err := p.WorkflowRepository().GetByID(t.Context(), "wf-1")
	require.NoError(t, err)
	assert.Nil(t, gone)

	instances, err := p.InstanceRepository().ListByWorkflow(t.Context(), "wf-1", 0)
	require.NoError(t, err)
	assert.Empty(t, instances)
}

func TestInstanceRepository_UpdateMissing(t *testing.T) {
	p := NewPersistence(t.TempDir())

	err := p.InstanceRepository().Update(t.Context(), &models.WorkflowInstance{ID: "ghost"})
	require.Error(t, err)
	assert.True(t, persistence.IsInstanceNotFound(err))
}

func TestInstanceRepository_ListByWorkflow_LimitAndOrder(t *testing.T) {
	p := NewPersistence(t.TempDir())
	repo := p.InstanceRepository()

	base := time.Now().UTC().Add(-time.Hour)

	for i := 0; i < persistence.DefaultInstanceLimit+5; i++ {
		instance := &models.WorkflowInstance{
			ID:         "inst-" + string(rune('a'+i)),
			WorkflowID: "wf-1",
			Status:     models.InstanceStatusCompleted,
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(t.Context(), instance))
	}

	instances, err := repo.ListByWorkflow(t.Context(), "wf-1", 0)
	require.NoError(t, err)
	require.Len(t, instances, persistence.DefaultInstanceLimit)

	// Newest first.
	assert.True(t, instances[0].StartedAt.After(instances[1].StartedAt))

	limited, err := repo.ListByWorkflow(t.Context(), "wf-1", 3)
	require.NoError(t, err)
	assert.Len(t, limited, 3)
}

func TestPersistence_HealthCheck(t *testing.T) {
	testDir := t.TempDir()
	p := NewPersistence(testDir)

	require.NoError(t, p.HealthCheck(t.Context()))

	require.NoError(t, os.RemoveAll(testDir))
	assert.Error(t, p.HealthCheck(t.Context()))
}

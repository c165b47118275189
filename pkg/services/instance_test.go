package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/persistence"
	"github.com/cascadehq/cascade/pkg/persistence/file"
)

func TestInstance_FetchByID(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	service := NewInstance(p)

	instance := &models.WorkflowInstance{
		ID:         "inst-1",
		WorkflowID: "wf-1",
		Status:     models.InstanceStatusCompleted,
		StartedAt:  time.Now().UTC(),
	}
	require.NoError(t, p.InstanceRepository().Create(t.Context(), instance))

	loaded, err := service.FetchByID(t.Context(), "inst-1")
	require.NoError(t, err)
	assert.Equal(t, models.InstanceStatusCompleted, loaded.Status)

	_, err = service.FetchByID(t.Context(), "ghost")
	assert.ErrorIs(t, err, ErrInstanceNotFound)
}

func TestInstance_ListByWorkflow(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	workflowService := NewWorkflow(p)
	service := NewInstance(p)

	created, err := workflowService.Create(t.Context(), CreateWorkflowRequest{Name: "Flow"})
	require.NoError(t, err)

	base := time.Now().UTC().Add(-time.Hour)

	for i := 0; i < persistence.DefaultInstanceLimit+3; i++ {
		instance := &models.WorkflowInstance{
			ID:         created.ID + "-" + string(rune('a'+i)),
			WorkflowID: created.ID,
			Status:     models.InstanceStatusCompleted,
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, p.InstanceRepository().Create(t.Context(), instance))
	}

	instances, err := service.ListByWorkflow(t.Context(), created.ID, 0)
	require.NoError(t, err)
	assert.Len(t, instances, persistence.DefaultInstanceLimit)

	// A request above the retention cap is clamped to it.
	instances, err = service.ListByWorkflow(t.Context(), created.ID, 1000)
	require.NoError(t, err)
	assert.Len(t, instances, persistence.DefaultInstanceLimit)
}

func TestInstance_ListByWorkflow_MissingWorkflow(t *testing.T) {
	service := NewInstance(file.NewPersistence(t.TempDir()))

	_, err := service.ListByWorkflow(t.Context(), "ghost", 0)
	assert.ErrorIs(t, err, ErrWorkflowNotFound)
}

package postgresql

import (
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/persistence"
)

// newTestPersistence connects to the database named by DATABASE_URL, or
// skips the test when none is configured.
func newTestPersistence(t *testing.T) *Persistence {
	t.Helper()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		t.Skip("DATABASE_URL not set, skipping PostgreSQL integration test")
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	p, err := NewPersistence(t.Context(), logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = p.Close(t.Context())
	})

	return p
}

func TestPersistence_WorkflowRoundTrip(t *testing.T) {
	p := newTestPersistence(t)
	repo := p.WorkflowRepository()

	workflow := &models.Workflow{
		Name:         "Integration flow",
		Nodes:        `[]`,
		Edges:        `[]`,
		FlowPath:     `[]`,
		SubAccountID: "sub-" + uuid.NewString(),
	}
	require.NoError(t, repo.Save(t.Context(), workflow))
	require.NotEmpty(t, workflow.ID)

	t.Cleanup(func() {
		_ = repo.Delete(t.Context(), workflow.ID)
	})

	loaded, err := repo.GetByID(t.Context(), workflow.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Integration flow", loaded.Name)
	assert.False(t, loaded.Published)

	loaded.Published = true
	require.NoError(t, repo.Save(t.Context(), loaded))

	reloaded, err := repo.GetByID(t.Context(), workflow.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Published)

	filtered, err := repo.GetAll(t.Context(), workflow.SubAccountID)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, workflow.ID, filtered[0].ID)
}

func TestPersistence_GetByID_Missing(t *testing.T) {
	p := newTestPersistence(t)

	loaded, err := p.WorkflowRepository().GetByID(t.Context(), uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestPersistence_InstanceLedger(t *testing.T) {
	p := newTestPersistence(t)

	workflow := &models.Workflow{
		Name:     "Ledger flow",
		Nodes:    `[]`,
		Edges:    `[]`,
		FlowPath: `[]`,
	}
	require.NoError(t, p.WorkflowRepository().Save(t.Context(), workflow))

	t.Cleanup(func() {
		_ = p.WorkflowRepository().Delete(t.Context(), workflow.ID)
	})

	instance := &models.WorkflowInstance{
		ID:          uuid.NewString(),
		WorkflowID:  workflow.ID,
		Status:      models.InstanceStatusPending,
		TriggerType: "MANUAL",
		TriggerData: map[string]any{"source": "integration"},
		Logs:        []models.ExecutionLogEntry{},
		StartedAt:   time.Now().UTC(),
	}
	require.NoError(t, p.InstanceRepository().Create(t.Context(), instance))

	instance.Status = models.InstanceStatusCompleted
	instance.Logs = append(instance.Logs, models.ExecutionLogEntry{
		Timestamp: time.Now().UTC(),
		NodeID:    "t",
		NodeKind:  models.NodeKindTrigger,
		Status:    models.LogStatusCompleted,
	})
	require.NoError(t, p.InstanceRepository().Update(t.Context(), instance))

	loaded, err := p.InstanceRepository().GetByID(t.Context(), instance.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InstanceStatusCompleted, loaded.Status)
	require.Len(t, loaded.Logs, 1)
	assert.Equal(t, "integration", loaded.TriggerData["source"])

	listed, err := p.InstanceRepository().ListByWorkflow(t.Context(), workflow.ID, persistence.DefaultInstanceLimit)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	// The FK cascade clears the ledger with the workflow.
	require.NoError(t, p.WorkflowRepository().Delete(t.Context(), workflow.ID))

	gone, err := p.InstanceRepository().GetByID(t.Context(), instance.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestPersistence_UpdateMissingInstance(t *testing.T) {
	p := newTestPersistence(t)

	err := p.InstanceRepository().Update(t.Context(), &models.WorkflowInstance{
		ID:         uuid.NewString(),
		WorkflowID: uuid.NewString(),
		Status:     models.InstanceStatusFailed,
		StartedAt:  time.Now().UTC(),
	})
	assert.True(t, persistence.IsInstanceNotFound(err))
}

package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/persistence/file"
)

func TestDispatcher_RunsQueuedJobs(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	e := NewEngine(p, testLogger())

	workflow := saveWorkflow(t, p, true, []models.Node{
		contentNode(t, "t", models.TriggerContent{TriggerType: models.TriggerManual}),
	}, nil)

	d := NewDispatcher(e, testLogger(), 2, 10)
	d.Start(t.Context())

	require.NoError(t, d.Dispatch(workflow.ID, "MANUAL", nil))
	require.NoError(t, d.Dispatch(workflow.ID, "MANUAL", nil))

	d.Stop()

	instances, err := p.InstanceRepository().ListByWorkflow(t.Context(), workflow.ID, 0)
	require.NoError(t, err)
	require.Len(t, instances, 2)

	for _, instance := range instances {
		assert.Equal(t, models.InstanceStatusCompleted, instance.Status)
	}
}

func TestDispatcher_QueueFull(t *testing.T) {
	e := NewEngine(file.NewPersistence(t.TempDir()), testLogger())

	// Never started: nothing drains the queue.
	d := NewDispatcher(e, testLogger(), 1, 1)

	require.NoError(t, d.Dispatch("wf-1", "MANUAL", nil))
	assert.ErrorIs(t, d.Dispatch("wf-2", "MANUAL", nil), ErrQueueFull)
}

func TestDispatcher_StopWaitsForInFlightRuns(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	e := NewEngine(p, testLogger())

	workflow := saveWorkflow(t, p, true, []models.Node{
		contentNode(t, "t", models.TriggerContent{TriggerType: models.TriggerManual}),
		contentNode(t, "n", models.NotificationContent{Config: &models.NotificationConfig{Message: "hi"}}),
	}, chainEdges("t", "n"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := NewDispatcher(e, testLogger(), 1, 5)
	d.Start(ctx)

	for i := 0; i < 3; i++ {
		require.NoError(t, d.Dispatch(workflow.ID, "MANUAL", nil))
	}

	done := make(chan struct{})

	go func() {
		d.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return after the queue drained")
	}

	instances, err := p.InstanceRepository().ListByWorkflow(ctx, workflow.ID, 0)
	require.NoError(t, err)
	assert.Len(t, instances, 3)
}

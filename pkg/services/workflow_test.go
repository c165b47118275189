package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascadehq/cascade/pkg/graph"
	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/persistence/file"
)

func newWorkflowService(t *testing.T) *Workflow {
	t.Helper()

	return NewWorkflow(file.NewPersistence(t.TempDir()))
}

func TestWorkflow_Create_SeedsTriggerNode(t *testing.T) {
	service := newWorkflowService(t)

	created, err := service.Create(t.Context(), CreateWorkflowRequest{
		Name:         "Lead capture",
		Description:  "Creates a contact from form submissions",
		SubAccountID: "sub-1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.Published)

	nodes, err := models.ParseNodes(created.Nodes)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.True(t, nodes[0].IsTrigger())
	assert.Equal(t, models.Position{X: 250, Y: 100}, nodes[0].Position)

	path, err := models.ParseFlowPath(created.FlowPath)
	require.NoError(t, err)
	assert.Equal(t, []string{nodes[0].ID}, path)

	assert.Equal(t, graph.Hash(created.Nodes, created.Edges), created.GraphHash)
}

func TestWorkflow_Create_RequiresName(t *testing.T) {
	service := newWorkflowService(t)

	_, err := service.Create(t.Context(), CreateWorkflowRequest{Name: ""})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestWorkflow_Update(t *testing.T) {
	service := newWorkflowService(t)

	created, err := service.Create(t.Context(), CreateWorkflowRequest{Name: "Old name"})
	require.NoError(t, err)

	updated, err := service.Update(t.Context(), created.ID, UpdateWorkflowRequest{
		Name:        "New name",
		Description: "Now with a description",
	})
	require.NoError(t, err)
	assert.Equal(t, "New name", updated.Name)

	// The graph is untouched by metadata updates.
	assert.Equal(t, created.Nodes, updated.Nodes)
}

func TestWorkflow_Update_NotFound(t *testing.T) {
	service := newWorkflowService(t)

	_, err := service.Update(t.Context(), "ghost", UpdateWorkflowRequest{Name: "x"})
	assert.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestWorkflow_SaveGraph_RecomputesPathAndHash(t *testing.T) {
	service := newWorkflowService(t)

	created, err := service.Create(t.Context(), CreateWorkflowRequest{Name: "Flow"})
	require.NoError(t, err)

	existing, err := models.ParseNodes(created.Nodes)
	require.NoError(t, err)
	trigger := existing[0]

	action, err := models.NewNode(models.NodeKindAction, models.Position{X: 400, Y: 100}, "action-1")
	require.NoError(t, err)

	saved, err := service.SaveGraph(t.Context(), created.ID, SaveGraphRequest{
		Nodes: []models.Node{trigger, action},
		Edges: []models.Edge{{ID: "e1", Source: trigger.ID, Target: action.ID}},
	})
	require.NoError(t, err)

	path, err := models.ParseFlowPath(saved.FlowPath)
	require.NoError(t, err)
	assert.Equal(t, []string{trigger.ID, "action-1"}, path)

	assert.NotEqual(t, created.GraphHash, saved.GraphHash)
	assert.Equal(t, graph.Hash(saved.Nodes, saved.Edges), saved.GraphHash)
}

func TestWorkflow_SaveGraph_RejectsSecondTrigger(t *testing.T) {
	service := newWorkflowService(t)

	created, err := service.Create(t.Context(), CreateWorkflowRequest{Name: "Flow"})
	require.NoError(t, err)

	first, err := models.NewNode(models.NodeKindTrigger, models.Position{}, "t1")
	require.NoError(t, err)
	second, err := models.NewNode(models.NodeKindTrigger, models.Position{}, "t2")
	require.NoError(t, err)

	_, err = service.SaveGraph(t.Context(), created.ID, SaveGraphRequest{
		Nodes: []models.Node{first, second},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidGraph)
	assert.True(t, IsValidationError(err))
}

func TestWorkflow_Publish_GateOnTrigger(t *testing.T) {
	service := newWorkflowService(t)

	created, err := service.Create(t.Context(), CreateWorkflowRequest{Name: "Flow"})
	require.NoError(t, err)

	// Strip the trigger node: publishing must fail and the flag stay off.
	action, err := models.NewNode(models.NodeKindAction, models.Position{}, "a1")
	require.NoError(t, err)

	_, err = service.SaveGraph(t.Context(), created.ID, SaveGraphRequest{
		Nodes: []models.Node{action},
	})
	require.NoError(t, err)

	_, err = service.Publish(t.Context(), created.ID, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTriggerNodeRequired)

	current, err := service.FetchByID(t.Context(), created.ID)
	require.NoError(t, err)
	assert.False(t, current.Published)
}

func TestWorkflow_Publish_EmptyGraph(t *testing.T) {
	service := newWorkflowService(t)

	created, err := service.Create(t.Context(), CreateWorkflowRequest{Name: "Flow"})
	require.NoError(t, err)

	_, err = service.SaveGraph(t.Context(), created.ID, SaveGraphRequest{})
	require.NoError(t, err)

	_, err = service.Publish(t.Context(), created.ID, true)
	assert.ErrorIs(t, err, ErrNodesRequired)
}

func TestWorkflow_PublishAndUnpublish(t *testing.T) {
	service := newWorkflowService(t)

	created, err := service.Create(t.Context(), CreateWorkflowRequest{Name: "Flow"})
	require.NoError(t, err)

	published, err := service.Publish(t.Context(), created.ID, true)
	require.NoError(t, err)
	assert.True(t, published.Published)

	// Unpublishing has no gate.
	unpublished, err := service.Publish(t.Context(), created.ID, false)
	require.NoError(t, err)
	assert.False(t, unpublished.Published)
}

func TestWorkflow_List(t *testing.T) {
	service := newWorkflowService(t)

	created, err := service.Create(t.Context(), CreateWorkflowRequest{Name: "Flow", SubAccountID: "sub-1"})
	require.NoError(t, err)

	_, err = service.Create(t.Context(), CreateWorkflowRequest{Name: "Other", SubAccountID: "sub-2"})
	require.NoError(t, err)

	summaries, err := service.List(t.Context(), "sub-1")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, created.ID, summaries[0].ID)
	assert.Equal(t, 1, summaries[0].NodeCount)
	assert.Equal(t, 0, summaries[0].InstanceCount)
}

func TestWorkflow_Delete(t *testing.T) {
	service := newWorkflowService(t)

	created, err := service.Create(t.Context(), CreateWorkflowRequest{Name: "Flow"})
	require.NoError(t, err)

	require.NoError(t, service.Delete(t.Context(), created.ID))

	_, err = service.FetchByID(t.Context(), created.ID)
	assert.ErrorIs(t, err, ErrWorkflowNotFound)

	assert.ErrorIs(t, service.Delete(t.Context(), created.ID), ErrWorkflowNotFound)
}

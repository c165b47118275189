package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascadehq/cascade/pkg/models"
)

func makeNode(t *testing.T, kind models.NodeKind, id string) models.Node {
	t.Helper()

	node, err := models.NewNode(kind, models.Position{}, id)
	require.NoError(t, err)

	return node
}

func edge(source, target string) models.Edge {
	return models.Edge{ID: models.EdgeID(source, target), Source: source, Target: target}
}

func TestComputeFlowPath_NoTrigger(t *testing.T) {
	nodes := []models.Node{
		makeNode(t, models.NodeKindAction, "a"),
		makeNode(t, models.NodeKindEmail, "b"),
	}

	path := ComputeFlowPath(nodes, []models.Edge{edge("a", "b")})
	assert.Empty(t, path)
}

func TestComputeFlowPath_TriggerOnly(t *testing.T) {
	nodes := []models.Node{makeNode(t, models.NodeKindTrigger, "t")}

	path := ComputeFlowPath(nodes, nil)
	assert.Equal(t, []string{"t"}, path)
}

func TestComputeFlowPath_Chain(t *testing.T) {
	nodes := []models.Node{
		makeNode(t, models.NodeKindTrigger, "t"),
		makeNode(t, models.NodeKindAction, "a"),
		makeNode(t, models.NodeKindWait, "w"),
		makeNode(t, models.NodeKindEmail, "e"),
	}
	edges := []models.Edge{
		edge("t", "a"),
		edge("a", "w"),
		edge("w", "e"),
	}

	path := ComputeFlowPath(nodes, edges)
	assert.Equal(t, []string{"t", "a", "w", "e"}, path)
}

func TestComputeFlowPath_DiamondVisitsMergeOnce(t *testing.T) {
	nodes := []models.Node{
		makeNode(t, models.NodeKindTrigger, "t"),
		makeNode(t, models.NodeKindCondition, "c"),
		makeNode(t, models.NodeKindAction, "left"),
		makeNode(t, models.NodeKindAction, "right"),
		makeNode(t, models.NodeKindEmail, "merge"),
	}
	edges := []models.Edge{
		edge("t", "c"),
		edge("c", "left"),
		edge("c", "right"),
		edge("left", "merge"),
		edge("right", "merge"),
	}

	path := ComputeFlowPath(nodes, edges)

	// Depth-first in edge order: merge is reached through left first and
	// never revisited through right.
	assert.Equal(t, []string{"t", "c", "left", "merge", "right"}, path)
}

func TestComputeFlowPath_CycleTerminates(t *testing.T) {
	nodes := []models.Node{
		makeNode(t, models.NodeKindTrigger, "t"),
		makeNode(t, models.NodeKindAction, "a"),
		makeNode(t, models.NodeKindAction, "b"),
	}
	edges := []models.Edge{
		edge("t", "a"),
		edge("a", "b"),
		edge("b", "a"),
	}

	path := ComputeFlowPath(nodes, edges)
	assert.Equal(t, []string{"t", "a", "b"}, path)
}

func TestComputeFlowPath_UnreachableNodeExcluded(t *testing.T) {
	nodes := []models.Node{
		makeNode(t, models.NodeKindTrigger, "t"),
		makeNode(t, models.NodeKindAction, "a"),
		makeNode(t, models.NodeKindAction, "orphan"),
	}

	path := ComputeFlowPath(nodes, []models.Edge{edge("t", "a")})
	assert.Equal(t, []string{"t", "a"}, path)
}

func TestValidate(t *testing.T) {
	trigger := makeNode(t, models.NodeKindTrigger, "t")
	action := makeNode(t, models.NodeKindAction, "a")

	err := Validate([]models.Node{trigger, action}, []models.Edge{edge("t", "a")})
	require.NoError(t, err)
}

func TestValidate_MultipleTriggers(t *testing.T) {
	nodes := []models.Node{
		makeNode(t, models.NodeKindTrigger, "t1"),
		makeNode(t, models.NodeKindTrigger, "t2"),
	}

	err := Validate(nodes, nil)
	assert.ErrorIs(t, err, ErrMultipleTriggerNodes)
}

func TestValidate_SelfLoop(t *testing.T) {
	nodes := []models.Node{
		makeNode(t, models.NodeKindTrigger, "t"),
		makeNode(t, models.NodeKindAction, "a"),
	}

	err := Validate(nodes, []models.Edge{edge("a", "a")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "self-loop")
}

func TestValidate_UnknownEdgeEndpoint(t *testing.T) {
	nodes := []models.Node{makeNode(t, models.NodeKindTrigger, "t")}

	err := Validate(nodes, []models.Edge{edge("t", "ghost")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown target")
}

func TestValidate_DuplicateNodeID(t *testing.T) {
	nodes := []models.Node{
		makeNode(t, models.NodeKindTrigger, "dup"),
		makeNode(t, models.NodeKindAction, "dup"),
	}

	err := Validate(nodes, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate node id")
}

func TestValidateForPublishing(t *testing.T) {
	err := ValidateForPublishing([]models.Node{makeNode(t, models.NodeKindAction, "a")})
	assert.ErrorIs(t, err, ErrNoTriggerNode)

	err = ValidateForPublishing([]models.Node{makeNode(t, models.NodeKindTrigger, "t")})
	assert.NoError(t, err)
}

func TestHash(t *testing.T) {
	first := Hash(`[{"id":"a"}]`, `[]`)
	same := Hash(`[{"id":"a"}]`, `[]`)
	different := Hash(`[{"id":"b"}]`, `[]`)

	assert.Equal(t, first, same)
	assert.NotEqual(t, first, different)

	// The separator keeps node and edge content from colliding.
	assert.NotEqual(t, Hash("ab", "c"), Hash("a", "bc"))
}

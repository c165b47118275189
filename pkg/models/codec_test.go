package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNodes_Empty(t *testing.T) {
	nodes, err := ParseNodes("")
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestParseNodes_Valid(t *testing.T) {
	payload := `[{
		"id": "trigger-1",
		"type": "WorkflowNode",
		"position": {"x": 250, "y": 100},
		"data": {
			"title": "Trigger",
			"description": "Start the workflow",
			"content": {"nodeType": "Trigger", "triggerType": "MANUAL"}
		}
	}]`

	nodes, err := ParseNodes(payload)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "trigger-1", nodes[0].ID)
	assert.True(t, nodes[0].IsTrigger())
}

func TestParseNodes_MalformedFailsOpen(t *testing.T) {
	nodes, err := ParseNodes("{not json")
	require.Error(t, err)
	assert.NotNil(t, nodes)
	assert.Empty(t, nodes)
}

func TestParseNodes_SchemaRejection(t *testing.T) {
	// Node without the required data field.
	nodes, err := ParseNodes(`[{"id": "n-1", "position": {"x": 0, "y": 0}}]`)
	require.Error(t, err)
	assert.Empty(t, nodes)

	// Content with an unknown discriminant.
	nodes, err = ParseNodes(`[{
		"id": "n-1",
		"position": {"x": 0, "y": 0},
		"data": {"title": "x", "content": {"nodeType": "Robot"}}
	}]`)
	require.Error(t, err)
	assert.Empty(t, nodes)
}

func TestParseEdges(t *testing.T) {
	edges, err := ParseEdges(`[{"id": "a-b", "source": "a", "target": "b", "sourceHandle": "out"}]`)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "out", edges[0].SourceHandle)

	edges, err = ParseEdges(`[{"id": "a-b"}]`)
	require.Error(t, err)
	assert.Empty(t, edges)
}

func TestParseFlowPath(t *testing.T) {
	path, err := ParseFlowPath(`["a", "b", "c"]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, path)

	path, err = ParseFlowPath(`[1, 2]`)
	require.Error(t, err)
	assert.Empty(t, path)
}

func TestStringify_NilCollections(t *testing.T) {
	nodesJSON, err := StringifyNodes(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", nodesJSON)

	edgesJSON, err := StringifyEdges(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", edgesJSON)

	pathJSON, err := StringifyFlowPath(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", pathJSON)
}

func TestStringifyParse_RoundTrip(t *testing.T) {
	node, err := NewNode(NodeKindEmail, Position{X: 10, Y: 20}, "email-1")
	require.NoError(t, err)

	nodesJSON, err := StringifyNodes([]Node{node})
	require.NoError(t, err)

	parsed, err := ParseNodes(nodesJSON)
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, node.ID, parsed[0].ID)
	assert.Equal(t, NodeKindEmail, parsed[0].Kind())
}

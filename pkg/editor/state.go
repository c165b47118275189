// Package editor implements the undo/redo-capable authoring state machine
// for workflow graphs as a pure reducer over immutable snapshots.
package editor

import "github.com/cascadehq/cascade/pkg/models"

// EditorState is one authoring snapshot: the live graph plus the current
// selection. It only ever lives in memory; the graph itself is serialized
// separately for persistence.
type EditorState struct {
	Elements     []models.Node
	Edges        []models.Edge
	SelectedNode *models.Node
}

// clone copies the snapshot's slices so a stored history entry can never
// be mutated through a later edit of the present state.
func (s EditorState) clone() EditorState {
	out := EditorState{
		Elements: make([]models.Node, len(s.Elements)),
		Edges:    make([]models.Edge, len(s.Edges)),
	}

	copy(out.Elements, s.Elements)
	copy(out.Edges, s.Edges)

	if s.SelectedNode != nil {
		node := *s.SelectedNode
		out.SelectedNode = &node
	}

	return out
}

// Node returns the node with the given id from the snapshot.
func (s EditorState) Node(id string) (models.Node, bool) {
	for _, node := range s.Elements {
		if node.ID == id {
			return node, true
		}
	}

	return models.Node{}, false
}

// ConnectedNodes returns the nodes joined to nodeID by any edge, in
// element order.
func (s EditorState) ConnectedNodes(nodeID string) []models.Node {
	connected := make(map[string]bool)

	for _, edge := range s.Edges {
		if edge.Source == nodeID {
			connected[edge.Target] = true
		}

		if edge.Target == nodeID {
			connected[edge.Source] = true
		}
	}

	nodes := make([]models.Node, 0, len(connected))

	for _, node := range s.Elements {
		if connected[node.ID] {
			nodes = append(nodes, node)
		}
	}

	return nodes
}

// HistoryState is the bounded undo/redo container around the present
// snapshot. Past holds up to MaxHistory previous snapshots, oldest first.
type HistoryState struct {
	Past    []EditorState
	Present EditorState
	Future  []EditorState
}

// MaxHistory bounds the undo stack; the oldest snapshot is dropped first.
const MaxHistory = 50

// NewHistory builds the initial history around a loaded graph.
func NewHistory(nodes []models.Node, edges []models.Edge) HistoryState {
	if nodes == nil {
		nodes = []models.Node{}
	}

	if edges == nil {
		edges = []models.Edge{}
	}

	return HistoryState{
		Past: []EditorState{},
		Present: EditorState{
			Elements: nodes,
			Edges:    edges,
		},
		Future: []EditorState{},
	}
}

// CanUndo reports whether an UNDO would change state.
func (h HistoryState) CanUndo() bool { return len(h.Past) > 0 }

// CanRedo reports whether a REDO would change state.
func (h HistoryState) CanRedo() bool { return len(h.Future) > 0 }

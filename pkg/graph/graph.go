// Package graph validates workflow graphs and compiles them into a
// deterministic linear execution order.
package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/cascadehq/cascade/pkg/models"
)

var (
	// ErrNoTriggerNode indicates the graph has no entry point and cannot
	// be compiled or published.
	ErrNoTriggerNode = errors.New("workflow has no trigger node")

	// ErrMultipleTriggerNodes indicates the single-trigger invariant was
	// violated at authoring time.
	ErrMultipleTriggerNodes = errors.New("workflow has more than one trigger node")
)

// TriggerNode returns the graph's trigger node. A graph contains at most
// one; when several are present the first in node order wins, matching
// traversal determinism.
func TriggerNode(nodes []models.Node) (models.Node, bool) {
	for _, node := range nodes {
		if node.IsTrigger() {
			return node, true
		}
	}

	return models.Node{}, false
}

// ComputeFlowPath derives the linear execution order: a depth-first walk
// from the trigger node, following outgoing edges in edge-array order. A
// visited set guarantees termination on cycles and that a node reachable
// through multiple edges (diamond merges) appears exactly once, at the
// position of its first-listed predecessor.
//
// Condition branches get no special ordering here; both branches are
// visited in edge order, and branch selection is an execution-time
// concern.
//
// A graph with no trigger compiles to an empty path, which callers must
// treat as "not executable".
func ComputeFlowPath(nodes []models.Node, edges []models.Edge) []string {
	trigger, ok := TriggerNode(nodes)
	if !ok {
		return []string{}
	}

	visited := make(map[string]bool, len(nodes))
	path := make([]string, 0, len(nodes))

	var visit func(nodeID string)
	visit = func(nodeID string) {
		if visited[nodeID] {
			return
		}

		visited[nodeID] = true
		path = append(path, nodeID)

		for _, edge := range edges {
			if edge.Source == nodeID {
				visit(edge.Target)
			}
		}
	}

	visit(trigger.ID)

	return path
}

// Hash fingerprints the serialized graph content. The cached flow path on
// a workflow record is only trusted when it was computed from a graph with
// the same hash; otherwise the path is recomputed from the live graph.
func Hash(nodesJSON, edgesJSON string) string {
	h := sha256.New()
	h.Write([]byte(nodesJSON))
	h.Write([]byte{0})
	h.Write([]byte(edgesJSON))

	return hex.EncodeToString(h.Sum(nil))
}

// Validate checks the structural invariants enforced at authoring time:
// at most one trigger node, no self-loops, and no edge referencing a node
// that is not part of the graph. The compiler itself does not re-validate
// these.
func Validate(nodes []models.Node, edges []models.Edge) error {
	triggers := 0
	ids := make(map[string]bool, len(nodes))

	for _, node := range nodes {
		if node.ID == "" {
			return errors.New("found node with empty id")
		}

		if ids[node.ID] {
			return fmt.Errorf("duplicate node id: %s", node.ID)
		}

		ids[node.ID] = true

		if node.IsTrigger() {
			triggers++
		}
	}

	if triggers > 1 {
		return ErrMultipleTriggerNodes
	}

	for _, edge := range edges {
		if edge.Source == edge.Target {
			return fmt.Errorf("edge %s is a self-loop", edge.ID)
		}

		if !ids[edge.Source] {
			return fmt.Errorf("edge %s references unknown source node %s", edge.ID, edge.Source)
		}

		if !ids[edge.Target] {
			return fmt.Errorf("edge %s references unknown target node %s", edge.ID, edge.Target)
		}
	}

	return nil
}

// ValidateForPublishing checks the publish gate: the live node set must
// contain a trigger node. The check always runs against the current nodes,
// never the cached flow path.
func ValidateForPublishing(nodes []models.Node) error {
	if _, ok := TriggerNode(nodes); !ok {
		return ErrNoTriggerNode
	}

	return nil
}

package models

import (
	"encoding/json"
	"fmt"
)

// Graph wire codec. Loading fails open: a malformed payload yields an
// empty collection plus the parse error, so callers degrade to an empty
// graph instead of crashing on bad persisted data.

// ParseNodes decodes a serialized node list. On any parse or validation
// failure it returns an empty slice and the error.
func ParseNodes(nodesJSON string) ([]Node, error) {
	if nodesJSON == "" {
		return []Node{}, nil
	}

	if err := validateAgainst(nodeListValidator, nodesJSON); err != nil {
		return []Node{}, fmt.Errorf("invalid nodes payload: %w", err)
	}

	var nodes []Node
	if err := json.Unmarshal([]byte(nodesJSON), &nodes); err != nil {
		return []Node{}, fmt.Errorf("failed to decode nodes: %w", err)
	}

	return nodes, nil
}

// ParseEdges decodes a serialized edge list, failing open to empty.
func ParseEdges(edgesJSON string) ([]Edge, error) {
	if edgesJSON == "" {
		return []Edge{}, nil
	}

	if err := validateAgainst(edgeListValidator, edgesJSON); err != nil {
		return []Edge{}, fmt.Errorf("invalid edges payload: %w", err)
	}

	var edges []Edge
	if err := json.Unmarshal([]byte(edgesJSON), &edges); err != nil {
		return []Edge{}, fmt.Errorf("failed to decode edges: %w", err)
	}

	return edges, nil
}

// ParseFlowPath decodes a serialized flow path, failing open to empty.
func ParseFlowPath(pathJSON string) ([]string, error) {
	if pathJSON == "" {
		return []string{}, nil
	}

	if err := validateAgainst(flowPathValidator, pathJSON); err != nil {
		return []string{}, fmt.Errorf("invalid flow path payload: %w", err)
	}

	var path []string
	if err := json.Unmarshal([]byte(pathJSON), &path); err != nil {
		return []string{}, fmt.Errorf("failed to decode flow path: %w", err)
	}

	return path, nil
}

// StringifyNodes encodes a node list for persistence.
func StringifyNodes(nodes []Node) (string, error) {
	if nodes == nil {
		nodes = []Node{}
	}

	data, err := json.Marshal(nodes)
	if err != nil {
		return "", fmt.Errorf("failed to encode nodes: %w", err)
	}

	return string(data), nil
}

// StringifyEdges encodes an edge list for persistence.
func StringifyEdges(edges []Edge) (string, error) {
	if edges == nil {
		edges = []Edge{}
	}

	data, err := json.Marshal(edges)
	if err != nil {
		return "", fmt.Errorf("failed to encode edges: %w", err)
	}

	return string(data), nil
}

// StringifyFlowPath encodes a flow path for persistence.
func StringifyFlowPath(path []string) (string, error) {
	if path == nil {
		path = []string{}
	}

	data, err := json.Marshal(path)
	if err != nil {
		return "", fmt.Errorf("failed to encode flow path: %w", err)
	}

	return string(data), nil
}

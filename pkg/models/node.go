// Package models defines the core domain models for node-based workflow automation.
package models

import (
	"encoding/json"
	"fmt"
)

// NodeKind discriminates the closed set of node types a workflow graph
// may contain.
type NodeKind string

const (
	NodeKindTrigger      NodeKind = "Trigger"
	NodeKindAction       NodeKind = "Action"
	NodeKindCondition    NodeKind = "Condition"
	NodeKindWait         NodeKind = "Wait"
	NodeKindEmail        NodeKind = "Email"
	NodeKindNotification NodeKind = "Notification"
)

// Valid reports whether the kind is one of the known node kinds.
func (k NodeKind) Valid() bool {
	switch k {
	case NodeKindTrigger, NodeKindAction, NodeKindCondition,
		NodeKindWait, NodeKindEmail, NodeKindNotification:
		return true
	default:
		return false
	}
}

// NodeWireType is the canvas node type every graph node carries on the wire.
const NodeWireType = "WorkflowNode"

// Position is the authoring-surface placement of a node. It carries no
// execution semantics.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeData holds the user-visible node attributes plus the kind-specific
// content payload.
type NodeData struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Completed   bool        `json:"completed"`
	Current     bool        `json:"current"`
	Content     NodeContent `json:"content"`
}

type nodeDataWire struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Completed   bool            `json:"completed"`
	Current     bool            `json:"current"`
	Content     json.RawMessage `json:"content"`
}

// UnmarshalJSON decodes node data, dispatching the content payload on its
// nodeType discriminant. Unknown or missing discriminants are an error;
// a partially typed content payload is never accepted.
func (d *NodeData) UnmarshalJSON(data []byte) error {
	var wire nodeDataWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	if len(wire.Content) == 0 {
		return fmt.Errorf("node data has no content payload")
	}

	content, err := UnmarshalContent(wire.Content)
	if err != nil {
		return err
	}

	d.Title = wire.Title
	d.Description = wire.Description
	d.Completed = wire.Completed
	d.Current = wire.Current
	d.Content = content

	return nil
}

// MarshalJSON encodes node data with the content discriminant included.
func (d NodeData) MarshalJSON() ([]byte, error) {
	content, err := MarshalContent(d.Content)
	if err != nil {
		return nil, err
	}

	return json.Marshal(nodeDataWire{
		Title:       d.Title,
		Description: d.Description,
		Completed:   d.Completed,
		Current:     d.Current,
		Content:     content,
	})
}

// Node is a vertex in the workflow graph. The ID is opaque and stable
// across edits.
type Node struct {
	ID       string   `json:"id"       validate:"required"`
	Type     string   `json:"type"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// Kind returns the node kind carried by the content payload.
func (n Node) Kind() NodeKind {
	if n.Data.Content == nil {
		return ""
	}

	return n.Data.Content.Kind()
}

// IsTrigger reports whether the node is the workflow's entry point.
func (n Node) IsTrigger() bool {
	return n.Kind() == NodeKindTrigger
}

package models

import "time"

// Workflow is the persisted workflow entity. Nodes, Edges and FlowPath are
// stored as serialized JSON text; this package owns the serialization
// logic, the store treats the columns as opaque.
//
// FlowPath is a derived cache recomputed whenever the graph is saved.
// GraphHash records the graph content the cached path was computed from so
// consumers can detect a stale cache instead of trusting it.
type Workflow struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"        validate:"required,min=1,max=100"`
	Description  string    `json:"description" validate:"max=500"`
	Nodes        string    `json:"nodes"`
	Edges        string    `json:"edges"`
	FlowPath     string    `json:"flow_path,omitempty"`
	GraphHash    string    `json:"graph_hash,omitempty"`
	Published    bool      `json:"published"`
	SubAccountID string    `json:"sub_account_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

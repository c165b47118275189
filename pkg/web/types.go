// Package web provides the REST API for workflow management and
// execution.
package web

import "github.com/cascadehq/cascade/pkg/models"

// CreateWorkflowRequest is the request body for creating a workflow.
type CreateWorkflowRequest struct {
	Name         string `json:"name"                   validate:"required,min=1,max=100"`
	Description  string `json:"description"            validate:"max=500"`
	SubAccountID string `json:"subAccountId,omitempty"`
}

// UpdateWorkflowRequest is the request body for renaming a workflow. The
// graph is updated through the graph endpoint only.
type UpdateWorkflowRequest struct {
	Name        string `json:"name"        validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// SaveGraphRequest replaces the workflow graph wholesale.
type SaveGraphRequest struct {
	Nodes []models.Node `json:"nodes"`
	Edges []models.Edge `json:"edges"`
}

// PublishRequest toggles the published flag.
type PublishRequest struct {
	Published bool `json:"published"`
}

// ExecuteRequest starts a run.
type ExecuteRequest struct {
	TriggerType string         `json:"triggerType" validate:"omitempty,oneof=CONTACT_FORM PIPELINE_STAGE_CHANGE TICKET_CREATED MANUAL"`
	TriggerData map[string]any `json:"triggerData"`
	Async       bool           `json:"async"`
}

// ExecuteAcceptedResponse is returned for async runs, before any ledger
// entry exists.
type ExecuteAcceptedResponse struct {
	WorkflowID string `json:"workflowId"`
	Queued     bool   `json:"queued"`
}

// PaletteItemResponse describes one node kind available to the authoring
// surface, with its default content.
type PaletteItemResponse struct {
	Kind        models.NodeKind    `json:"kind"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Icon        string             `json:"icon"`
	Default     models.NodeContent `json:"default"`
}

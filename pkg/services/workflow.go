package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/cascadehq/cascade/pkg/eventbus"
	"github.com/cascadehq/cascade/pkg/events"
	"github.com/cascadehq/cascade/pkg/graph"
	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/persistence"
)

// ErrWorkflowNotFound is returned when a workflow is not found.
var ErrWorkflowNotFound = persistence.ErrWorkflowNotFound

// Position of the trigger node seeded into every new workflow.
var defaultTriggerPosition = models.Position{X: 250, Y: 100}

// Workflow provides workflow CRUD, graph persistence and publishing.
type Workflow struct {
	persistence persistence.Persistence
	validator   *validator.Validate
	publisher   eventbus.EventPublisher
}

// WorkflowOption configures a Workflow service.
type WorkflowOption func(*Workflow)

// WithEventPublisher enables lifecycle event publication on publish state
// changes.
func WithEventPublisher(publisher eventbus.EventPublisher) WorkflowOption {
	return func(w *Workflow) { w.publisher = publisher }
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(persistence persistence.Persistence, opts ...WorkflowOption) *Workflow {
	workflow := &Workflow{
		persistence: persistence,
		validator:   validator.New(),
	}

	for _, opt := range opts {
		opt(workflow)
	}

	return workflow
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// WorkflowSummary is a workflow plus the counts the listing surface shows.
type WorkflowSummary struct {
	*models.Workflow

	NodeCount     int `json:"nodeCount"`
	InstanceCount int `json:"instanceCount"`
}

// List retrieves workflows, most recently updated first, optionally
// filtered by sub-account. Counts are derived per workflow; a workflow
// whose graph column is corrupt lists with zero nodes rather than
// failing the whole listing.
func (w *Workflow) List(ctx context.Context, subAccountID string) ([]*WorkflowSummary, error) {
	workflows, err := w.persistence.WorkflowRepository().GetAll(ctx, subAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	summaries := make([]*WorkflowSummary, 0, len(workflows))

	for _, workflow := range workflows {
		nodes, _ := models.ParseNodes(workflow.Nodes)

		instances, err := w.persistence.InstanceRepository().ListByWorkflow(ctx, workflow.ID, persistence.DefaultInstanceLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to count instances for workflow %s: %w", workflow.ID, err)
		}

		summaries = append(summaries, &WorkflowSummary{
			Workflow:      workflow,
			NodeCount:     len(nodes),
			InstanceCount: len(instances),
		})
	}

	return summaries, nil
}

// FetchByID retrieves a workflow by its ID.
func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	workflow, err := w.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if workflow == nil {
		return nil, ErrWorkflowNotFound
	}

	return workflow, nil
}

// CreateWorkflowRequest contains the fields for creating a workflow.
type CreateWorkflowRequest struct {
	Name         string `validate:"required,min=1,max=100"`
	Description  string `validate:"max=500"`
	SubAccountID string
}

// Create adds a new workflow seeded with a manual trigger node, so a
// fresh workflow is immediately editable and compilable.
func (w *Workflow) Create(ctx context.Context, req CreateWorkflowRequest) (*models.Workflow, error) {
	if err := w.validator.Struct(req); err != nil {
		return nil, NewValidationError("Create", "INVALID_WORKFLOW", err.Error(), ErrWorkflowNameRequired)
	}

	trigger, err := models.NewNode(models.NodeKindTrigger, defaultTriggerPosition, "")
	if err != nil {
		return nil, fmt.Errorf("failed to build trigger node: %w", err)
	}

	nodes := []models.Node{trigger}

	nodesJSON, err := models.StringifyNodes(nodes)
	if err != nil {
		return nil, err
	}

	edgesJSON, err := models.StringifyEdges(nil)
	if err != nil {
		return nil, err
	}

	flowPathJSON, err := models.StringifyFlowPath(graph.ComputeFlowPath(nodes, nil))
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate workflow ID: %w", err)
	}

	now := time.Now().UTC()
	workflow := &models.Workflow{
		ID:           id.String(),
		Name:         req.Name,
		Description:  req.Description,
		Nodes:        nodesJSON,
		Edges:        edgesJSON,
		FlowPath:     flowPathJSON,
		GraphHash:    graph.Hash(nodesJSON, edgesJSON),
		Published:    false,
		SubAccountID: req.SubAccountID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = w.persistence.WorkflowRepository().Save(ctx, workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	return workflow, nil
}

// UpdateWorkflowRequest contains the metadata fields that Update may
// change. The graph itself is only changed through SaveGraph.
type UpdateWorkflowRequest struct {
	Name        string `validate:"required,min=1,max=100"`
	Description string `validate:"max=500"`
}

// Update modifies a workflow's name and description.
func (w *Workflow) Update(ctx context.Context, workflowID string, req UpdateWorkflowRequest) (*models.Workflow, error) {
	if err := w.validator.Struct(req); err != nil {
		return nil, NewValidationError("Update", "INVALID_WORKFLOW", err.Error(), ErrWorkflowNameRequired)
	}

	existing, err := w.FetchByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	existing.Name = req.Name
	existing.Description = req.Description

	err = w.persistence.WorkflowRepository().Save(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	return existing, nil
}

// Delete removes a workflow and, by cascade, its run ledger.
func (w *Workflow) Delete(ctx context.Context, workflowID string) error {
	existing, err := w.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return err
	}

	if existing == nil {
		return ErrWorkflowNotFound
	}

	err = w.persistence.WorkflowRepository().Delete(ctx, workflowID)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	return nil
}

// SaveGraphRequest carries the full replacement graph.
type SaveGraphRequest struct {
	Nodes []models.Node
	Edges []models.Edge
}

// SaveGraph replaces the workflow's graph wholesale. The flow path and
// graph hash are always recomputed from the submitted graph, never
// trusted from the client.
func (w *Workflow) SaveGraph(ctx context.Context, workflowID string, req SaveGraphRequest) (*models.Workflow, error) {
	existing, err := w.FetchByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if err := graph.Validate(req.Nodes, req.Edges); err != nil {
		return nil, NewValidationError("SaveGraph", "INVALID_GRAPH", err.Error(), ErrInvalidGraph)
	}

	nodesJSON, err := models.StringifyNodes(req.Nodes)
	if err != nil {
		return nil, err
	}

	edgesJSON, err := models.StringifyEdges(req.Edges)
	if err != nil {
		return nil, err
	}

	flowPathJSON, err := models.StringifyFlowPath(graph.ComputeFlowPath(req.Nodes, req.Edges))
	if err != nil {
		return nil, err
	}

	existing.Nodes = nodesJSON
	existing.Edges = edgesJSON
	existing.FlowPath = flowPathJSON
	existing.GraphHash = graph.Hash(nodesJSON, edgesJSON)

	err = w.persistence.WorkflowRepository().Save(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("failed to save workflow graph: %w", err)
	}

	return existing, nil
}

// Publish toggles the published flag. Publishing is gated on the live
// node set: the graph must be non-empty and contain a trigger node.
// Unpublishing has no gate.
func (w *Workflow) Publish(ctx context.Context, workflowID string, published bool) (*models.Workflow, error) {
	existing, err := w.FetchByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if published {
		nodes, err := models.ParseNodes(existing.Nodes)
		if err != nil {
			return nil, NewValidationError("Publish", "INVALID_GRAPH", err.Error(), ErrInvalidGraph)
		}

		if len(nodes) == 0 {
			return nil, ErrNodesRequired
		}

		if err := graph.ValidateForPublishing(nodes); err != nil {
			return nil, NewValidationError("Publish", "TRIGGER_REQUIRED", err.Error(), ErrTriggerNodeRequired)
		}
	}

	existing.Published = published

	err = w.persistence.WorkflowRepository().Save(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("failed to update published state: %w", err)
	}

	if w.publisher != nil {
		// Event delivery is best effort; the state change already
		// happened.
		var event eventbus.Event
		if published {
			event = events.WorkflowPublished{BaseEvent: events.NewBaseEvent(events.WorkflowPublishedEvent, workflowID)}
		} else {
			event = events.WorkflowUnpublished{BaseEvent: events.NewBaseEvent(events.WorkflowUnpublishedEvent, workflowID)}
		}

		_ = w.publisher.Publish(ctx, workflowID, event)
	}

	return existing, nil
}

// Package events defines event types for workflow and run lifecycle
// notifications.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/cascadehq/cascade/pkg/models"
)

type EventType string

// Topic carries every lifecycle event.
const Topic = "cascade.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Workflow lifecycle events.
	WorkflowPublishedEvent   EventType = "workflow.published"
	WorkflowUnpublishedEvent EventType = "workflow.unpublished"

	// Run lifecycle events.
	RunStartedEvent   EventType = "run.started"
	RunCompletedEvent EventType = "run.completed"
	RunFailedEvent    EventType = "run.failed"
	NodeExecutedEvent EventType = "run.node.executed"
)

type BaseEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	WorkflowID string    `json:"workflow_id"`
}

// NewBaseEvent creates the common event envelope.
func NewBaseEvent(eventType EventType, workflowID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
	}
}

type WorkflowPublished struct {
	BaseEvent
}

func (w WorkflowPublished) GetType() EventType {
	return WorkflowPublishedEvent
}

type WorkflowUnpublished struct {
	BaseEvent
}

func (w WorkflowUnpublished) GetType() EventType {
	return WorkflowUnpublishedEvent
}

type RunStarted struct {
	BaseEvent

	InstanceID  string         `json:"instance_id"`
	TriggerType string         `json:"trigger_type"`
	TriggerData map[string]any `json:"trigger_data,omitempty"`
}

func (r RunStarted) GetType() EventType {
	return RunStartedEvent
}

type RunCompleted struct {
	BaseEvent

	InstanceID string        `json:"instance_id"`
	Duration   time.Duration `json:"duration"`
}

func (r RunCompleted) GetType() EventType {
	return RunCompletedEvent
}

type RunFailed struct {
	BaseEvent

	InstanceID string        `json:"instance_id"`
	Error      string        `json:"error"`
	Duration   time.Duration `json:"duration"`
}

func (r RunFailed) GetType() EventType {
	return RunFailedEvent
}

type NodeExecuted struct {
	BaseEvent

	InstanceID string           `json:"instance_id"`
	NodeID     string           `json:"node_id"`
	NodeKind   models.NodeKind  `json:"node_kind"`
	Status     models.LogStatus `json:"status"`
	DurationMs int64            `json:"duration_ms"`
}

func (n NodeExecuted) GetType() EventType {
	return NodeExecutedEvent
}

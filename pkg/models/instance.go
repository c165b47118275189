package models

import "time"

// InstanceStatus is the lifecycle state of one execution attempt.
type InstanceStatus string

const (
	InstanceStatusPending   InstanceStatus = "pending"
	InstanceStatusRunning   InstanceStatus = "running"
	InstanceStatusCompleted InstanceStatus = "completed"
	InstanceStatusFailed    InstanceStatus = "failed"

	// InstanceStatusCancelled is a defined terminal state with no producer:
	// no cancellation entry point exists for an in-flight run. It is kept in
	// the taxonomy so ledger consumers handle it if one is ever added.
	InstanceStatusCancelled InstanceStatus = "cancelled"
)

func (s InstanceStatus) Valid() bool {
	switch s {
	case InstanceStatusPending, InstanceStatusRunning, InstanceStatusCompleted,
		InstanceStatusFailed, InstanceStatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transitions are possible.
func (s InstanceStatus) Terminal() bool {
	switch s {
	case InstanceStatusCompleted, InstanceStatusFailed, InstanceStatusCancelled:
		return true
	default:
		return false
	}
}

// LogStatus is the per-node outcome recorded in the execution log.
type LogStatus string

const (
	LogStatusStarted   LogStatus = "started"
	LogStatusCompleted LogStatus = "completed"
	LogStatusFailed    LogStatus = "failed"
	LogStatusSkipped   LogStatus = "skipped"
)

// ExecutionLogEntry is one line of a run's structured log. Entries are
// append-only within a run.
type ExecutionLogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	NodeID    string         `json:"nodeId"`
	NodeKind  NodeKind       `json:"nodeType"`
	Status    LogStatus      `json:"status"`
	Message   string         `json:"message,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// WorkflowInstance is the ledger record of one execution attempt: created
// pending, moved to running, then to exactly one terminal state. Instances
// are never deleted on their own, only through workflow deletion.
type WorkflowInstance struct {
	ID          string              `json:"id"`
	WorkflowID  string              `json:"workflow_id"`
	Status      InstanceStatus      `json:"status"`
	TriggerType string              `json:"trigger_type"`
	TriggerData map[string]any      `json:"trigger_data"`
	Logs        []ExecutionLogEntry `json:"logs"`
	Error       string              `json:"error,omitempty"`
	StartedAt   time.Time           `json:"started_at"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
}

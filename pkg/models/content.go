package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// NodeContent is the kind-specific configuration payload of a node. The
// set of implementations is closed; consumers dispatch with an exhaustive
// type switch so that adding a kind is a compile-time-visible change.
type NodeContent interface {
	Kind() NodeKind
}

// TriggerType enumerates the external events that can start a workflow.
type TriggerType string

const (
	TriggerContactForm         TriggerType = "CONTACT_FORM"
	TriggerPipelineStageChange TriggerType = "PIPELINE_STAGE_CHANGE"
	TriggerTicketCreated       TriggerType = "TICKET_CREATED"
	TriggerManual              TriggerType = "MANUAL"
)

func (t TriggerType) Valid() bool {
	switch t {
	case TriggerContactForm, TriggerPipelineStageChange, TriggerTicketCreated, TriggerManual:
		return true
	default:
		return false
	}
}

// TriggerConfig points the trigger at the business object that fires it.
type TriggerConfig struct {
	FunnelPageID string `json:"funnelPageId,omitempty"`
	PipelineID   string `json:"pipelineId,omitempty"`
	LaneID       string `json:"laneId,omitempty"`
}

type TriggerContent struct {
	TriggerType TriggerType    `json:"triggerType" validate:"required"`
	Config      *TriggerConfig `json:"config,omitempty"`
}

func (TriggerContent) Kind() NodeKind { return NodeKindTrigger }

// ActionType enumerates what an action node can do.
type ActionType string

const (
	ActionCreateContact     ActionType = "CREATE_CONTACT"
	ActionUpdateContact     ActionType = "UPDATE_CONTACT"
	ActionMovePipelineStage ActionType = "MOVE_PIPELINE_STAGE"
	ActionSendEmail         ActionType = "SEND_EMAIL"
	ActionSendNotification  ActionType = "SEND_NOTIFICATION"
	ActionWebhook           ActionType = "WEBHOOK"
)

func (a ActionType) Valid() bool {
	switch a {
	case ActionCreateContact, ActionUpdateContact, ActionMovePipelineStage,
		ActionSendEmail, ActionSendNotification, ActionWebhook:
		return true
	default:
		return false
	}
}

// ActionConfig carries the action-specific settings. Only the fields
// relevant to the selected ActionType are populated.
type ActionConfig struct {
	ContactFields       map[string]string `json:"contactFields,omitempty"`
	TargetPipelineID    string            `json:"targetPipelineId,omitempty"`
	TargetLaneID        string            `json:"targetLaneId,omitempty"`
	EmailTemplate       string            `json:"emailTemplate,omitempty"`
	EmailSubject        string            `json:"emailSubject,omitempty"`
	NotificationMessage string            `json:"notificationMessage,omitempty"`
	WebhookURL          string            `json:"webhookUrl,omitempty"`
	WebhookMethod       string            `json:"webhookMethod,omitempty"`
	WebhookHeaders      map[string]string `json:"webhookHeaders,omitempty"`
	WebhookBody         string            `json:"webhookBody,omitempty"`
}

type ActionContent struct {
	ActionType ActionType    `json:"actionType" validate:"required"`
	Config     *ActionConfig `json:"config,omitempty"`
}

func (ActionContent) Kind() NodeKind { return NodeKindAction }

// ConditionOperator enumerates the comparison operators a condition node
// supports.
type ConditionOperator string

const (
	OperatorEquals      ConditionOperator = "equals"
	OperatorNotEquals   ConditionOperator = "not_equals"
	OperatorContains    ConditionOperator = "contains"
	OperatorNotContains ConditionOperator = "not_contains"
	OperatorGreaterThan ConditionOperator = "greater_than"
	OperatorLessThan    ConditionOperator = "less_than"
	OperatorIsEmpty     ConditionOperator = "is_empty"
	OperatorIsNotEmpty  ConditionOperator = "is_not_empty"
)

func (o ConditionOperator) Valid() bool {
	switch o {
	case OperatorEquals, OperatorNotEquals, OperatorContains, OperatorNotContains,
		OperatorGreaterThan, OperatorLessThan, OperatorIsEmpty, OperatorIsNotEmpty:
		return true
	default:
		return false
	}
}

type ConditionConfig struct {
	Field    string            `json:"field"`
	Operator ConditionOperator `json:"operator"`
	Value    string            `json:"value"`
}

type ConditionContent struct {
	Config *ConditionConfig `json:"config,omitempty"`
}

func (ConditionContent) Kind() NodeKind { return NodeKindCondition }

// WaitUnit is the time unit of a wait node's duration.
type WaitUnit string

const (
	WaitSeconds WaitUnit = "seconds"
	WaitMinutes WaitUnit = "minutes"
	WaitHours   WaitUnit = "hours"
	WaitDays    WaitUnit = "days"
)

func (u WaitUnit) Valid() bool {
	switch u {
	case WaitSeconds, WaitMinutes, WaitHours, WaitDays:
		return true
	default:
		return false
	}
}

type WaitConfig struct {
	Duration int      `json:"duration"`
	Unit     WaitUnit `json:"unit"`
}

// Delay converts the configured duration and unit to a time.Duration.
func (c WaitConfig) Delay() time.Duration {
	switch c.Unit {
	case WaitSeconds:
		return time.Duration(c.Duration) * time.Second
	case WaitMinutes:
		return time.Duration(c.Duration) * time.Minute
	case WaitHours:
		return time.Duration(c.Duration) * time.Hour
	case WaitDays:
		return time.Duration(c.Duration) * 24 * time.Hour
	default:
		return 0
	}
}

type WaitContent struct {
	Config *WaitConfig `json:"config,omitempty"`
}

func (WaitContent) Kind() NodeKind { return NodeKindWait }

// EmailConfig supports template variables in its fields, e.g.
// "{{contact.email}}" in To.
type EmailConfig struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	FromName string `json:"fromName,omitempty"`
}

type EmailContent struct {
	Config *EmailConfig `json:"config,omitempty"`
}

func (EmailContent) Kind() NodeKind { return NodeKindEmail }

// NotificationConfig targets a single user, or the whole team when UserID
// is blank.
type NotificationConfig struct {
	Message string `json:"message"`
	UserID  string `json:"userId,omitempty"`
}

type NotificationContent struct {
	Config *NotificationConfig `json:"config,omitempty"`
}

func (NotificationContent) Kind() NodeKind { return NodeKindNotification }

type contentDiscriminant struct {
	NodeType NodeKind `json:"nodeType"`
}

// UnmarshalContent decodes a content payload by its nodeType discriminant.
// Wrong discriminants and malformed per-kind payloads are rejected.
func UnmarshalContent(data []byte) (NodeContent, error) {
	var disc contentDiscriminant
	if err := json.Unmarshal(data, &disc); err != nil {
		return nil, fmt.Errorf("failed to read node content discriminant: %w", err)
	}

	switch disc.NodeType {
	case NodeKindTrigger:
		var content TriggerContent
		if err := json.Unmarshal(data, &content); err != nil {
			return nil, fmt.Errorf("failed to decode trigger content: %w", err)
		}

		if !content.TriggerType.Valid() {
			return nil, fmt.Errorf("invalid trigger type: %q", content.TriggerType)
		}

		return content, nil
	case NodeKindAction:
		var content ActionContent
		if err := json.Unmarshal(data, &content); err != nil {
			return nil, fmt.Errorf("failed to decode action content: %w", err)
		}

		if !content.ActionType.Valid() {
			return nil, fmt.Errorf("invalid action type: %q", content.ActionType)
		}

		return content, nil
	case NodeKindCondition:
		var content ConditionContent
		if err := json.Unmarshal(data, &content); err != nil {
			return nil, fmt.Errorf("failed to decode condition content: %w", err)
		}

		if content.Config != nil && !content.Config.Operator.Valid() {
			return nil, fmt.Errorf("invalid condition operator: %q", content.Config.Operator)
		}

		return content, nil
	case NodeKindWait:
		var content WaitContent
		if err := json.Unmarshal(data, &content); err != nil {
			return nil, fmt.Errorf("failed to decode wait content: %w", err)
		}

		if content.Config != nil && !content.Config.Unit.Valid() {
			return nil, fmt.Errorf("invalid wait unit: %q", content.Config.Unit)
		}

		return content, nil
	case NodeKindEmail:
		var content EmailContent
		if err := json.Unmarshal(data, &content); err != nil {
			return nil, fmt.Errorf("failed to decode email content: %w", err)
		}

		return content, nil
	case NodeKindNotification:
		var content NotificationContent
		if err := json.Unmarshal(data, &content); err != nil {
			return nil, fmt.Errorf("failed to decode notification content: %w", err)
		}

		return content, nil
	default:
		return nil, fmt.Errorf("unknown node type: %q", disc.NodeType)
	}
}

// MarshalContent encodes a content payload with its nodeType discriminant.
func MarshalContent(content NodeContent) ([]byte, error) {
	if content == nil {
		return nil, fmt.Errorf("node content is nil")
	}

	body, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("failed to encode node content: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("failed to re-read node content: %w", err)
	}

	kind, err := json.Marshal(content.Kind())
	if err != nil {
		return nil, err
	}

	fields["nodeType"] = kind

	return json.Marshal(fields)
}

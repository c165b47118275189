package models

import (
	"fmt"

	"github.com/google/uuid"
)

// PaletteItem describes one node kind available to the authoring surface,
// with the defaults used to instantiate a new node of that kind.
type PaletteItem struct {
	Kind        NodeKind
	Title       string
	Description string
	Icon        string
	Default     func() NodeContent
}

// Palette returns the available node kinds in display order.
func Palette() []PaletteItem {
	return []PaletteItem{
		{
			Kind:        NodeKindTrigger,
			Title:       "Trigger",
			Description: "Start the workflow",
			Icon:        "Zap",
			Default: func() NodeContent {
				return TriggerContent{TriggerType: TriggerManual}
			},
		},
		{
			Kind:        NodeKindAction,
			Title:       "Action",
			Description: "Perform an action",
			Icon:        "Play",
			Default: func() NodeContent {
				return ActionContent{ActionType: ActionSendNotification}
			},
		},
		{
			Kind:        NodeKindCondition,
			Title:       "Condition",
			Description: "Branch based on criteria",
			Icon:        "GitBranch",
			Default: func() NodeContent {
				return ConditionContent{}
			},
		},
		{
			Kind:        NodeKindWait,
			Title:       "Wait",
			Description: "Delay execution",
			Icon:        "Clock",
			Default: func() NodeContent {
				return WaitContent{Config: &WaitConfig{Duration: 1, Unit: WaitHours}}
			},
		},
		{
			Kind:        NodeKindEmail,
			Title:       "Send Email",
			Description: "Send an email",
			Icon:        "Mail",
			Default: func() NodeContent {
				return EmailContent{}
			},
		},
		{
			Kind:        NodeKindNotification,
			Title:       "Notification",
			Description: "Send in-app notification",
			Icon:        "Bell",
			Default: func() NodeContent {
				return NotificationContent{}
			},
		},
	}
}

// NewNode builds a node of the given kind with palette defaults. The id is
// generated when empty.
func NewNode(kind NodeKind, position Position, id string) (Node, error) {
	for _, item := range Palette() {
		if item.Kind != kind {
			continue
		}

		if id == "" {
			id = uuid.New().String()
		}

		return Node{
			ID:       id,
			Type:     NodeWireType,
			Position: position,
			Data: NodeData{
				Title:       item.Title,
				Description: item.Description,
				Content:     item.Default(),
			},
		}, nil
	}

	return Node{}, fmt.Errorf("unknown node kind: %q", kind)
}

package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalContent_Trigger(t *testing.T) {
	payload := []byte(`{"nodeType":"Trigger","triggerType":"CONTACT_FORM","config":{"funnelPageId":"fp-1"}}`)

	content, err := UnmarshalContent(payload)
	require.NoError(t, err)

	trigger, ok := content.(TriggerContent)
	require.True(t, ok)
	assert.Equal(t, TriggerContactForm, trigger.TriggerType)
	require.NotNil(t, trigger.Config)
	assert.Equal(t, "fp-1", trigger.Config.FunnelPageID)
	assert.Equal(t, NodeKindTrigger, content.Kind())
}

func TestUnmarshalContent_Action(t *testing.T) {
	payload := []byte(`{"nodeType":"Action","actionType":"WEBHOOK","config":{"webhookUrl":"https://example.com/hook","webhookMethod":"PUT"}}`)

	content, err := UnmarshalContent(payload)
	require.NoError(t, err)

	action, ok := content.(ActionContent)
	require.True(t, ok)
	assert.Equal(t, ActionWebhook, action.ActionType)
	assert.Equal(t, "https://example.com/hook", action.Config.WebhookURL)
}

func TestUnmarshalContent_Wait(t *testing.T) {
	payload := []byte(`{"nodeType":"Wait","config":{"duration":2,"unit":"hours"}}`)

	content, err := UnmarshalContent(payload)
	require.NoError(t, err)

	wait, ok := content.(WaitContent)
	require.True(t, ok)
	assert.Equal(t, 2, wait.Config.Duration)
	assert.Equal(t, WaitHours, wait.Config.Unit)
}

func TestUnmarshalContent_UnknownKind(t *testing.T) {
	_, err := UnmarshalContent([]byte(`{"nodeType":"Robot"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown node type")
}

func TestUnmarshalContent_InvalidEnum(t *testing.T) {
	_, err := UnmarshalContent([]byte(`{"nodeType":"Trigger","triggerType":"NOT_A_TRIGGER"}`))
	require.Error(t, err)

	_, err = UnmarshalContent([]byte(`{"nodeType":"Action","actionType":"NOT_AN_ACTION"}`))
	require.Error(t, err)

	_, err = UnmarshalContent([]byte(`{"nodeType":"Wait","config":{"duration":1,"unit":"fortnights"}}`))
	require.Error(t, err)
}

func TestMarshalContent_RoundTrip(t *testing.T) {
	original := ActionContent{
		ActionType: ActionCreateContact,
		Config:     &ActionConfig{ContactFields: map[string]string{"source": "form"}},
	}

	data, err := MarshalContent(original)
	require.NoError(t, err)

	var raw map[string]any

	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "Action", raw["nodeType"])

	decoded, err := UnmarshalContent(data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestNode_JSONRoundTrip(t *testing.T) {
	node := Node{
		ID:       "n-1",
		Type:     NodeWireType,
		Position: Position{X: 250, Y: 100},
		Data: NodeData{
			Title:       "Wait",
			Description: "Delay execution",
			Content:     WaitContent{Config: &WaitConfig{Duration: 30, Unit: WaitMinutes}},
		},
	}

	data, err := json.Marshal(node)
	require.NoError(t, err)

	var decoded Node

	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, node, decoded)
	assert.Equal(t, NodeKindWait, decoded.Kind())
}

func TestWaitConfig_Delay(t *testing.T) {
	assert.Equal(t, "10s", WaitConfig{Duration: 10, Unit: WaitSeconds}.Delay().String())
	assert.Equal(t, "5m0s", WaitConfig{Duration: 5, Unit: WaitMinutes}.Delay().String())
	assert.Equal(t, "2h0m0s", WaitConfig{Duration: 2, Unit: WaitHours}.Delay().String())
	assert.Equal(t, "48h0m0s", WaitConfig{Duration: 2, Unit: WaitDays}.Delay().String())
}

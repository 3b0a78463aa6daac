package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNode_IsTrigger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		node Node
		want bool
	}{
		{
			name: "explicit trigger type",
			node: Node{ID: "n1", Name: "Start", Type: NodeTypeTrigger},
			want: true,
		},
		{
			name: "triggerType config entry",
			node: Node{ID: "n1", Name: "Start", Type: NodeTypeAction, Config: map[string]any{"triggerType": "webhook"}},
			want: true,
		},
		{
			name: "trigger substring in name",
			node: Node{ID: "n1", Name: "Chat Trigger Node", Type: NodeTypeAction},
			want: true,
		},
		{
			name: "trigger substring case insensitive",
			node: Node{ID: "n1", Name: "CHAT-TRIGGER", Type: NodeTypeAction},
			want: true,
		},
		{
			name: "plain action",
			node: Node{ID: "n1", Name: "Send Reply", Type: NodeTypeAction},
			want: false,
		},
		{
			name: "plain agent",
			node: Node{ID: "n1", Name: "Responder", Type: NodeTypeAIAgent},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.node.IsTrigger())
		})
	}
}

func TestNode_TriggerType(t *testing.T) {
	t.Parallel()

	withType := Node{Config: map[string]any{"triggerType": "webhook"}}
	assert.Equal(t, "webhook", withType.TriggerType())

	empty := Node{Config: map[string]any{"triggerType": ""}}
	assert.Equal(t, "manual", empty.TriggerType())

	none := Node{}
	assert.Equal(t, "manual", none.TriggerType())

	nonString := Node{Config: map[string]any{"triggerType": 42}}
	assert.Equal(t, "manual", nonString.TriggerType())
}

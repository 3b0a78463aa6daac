package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowgrid/flowgrid/pkg/models"
)

func TestResolveTemplate(t *testing.T) {
	t.Parallel()

	ectx := models.NewExecutionContext("exec-1", "wf-1", "agent-1", "tenant-1")
	ectx.NodeData["Trigger"] = map[string]any{
		"message": "hello there",
		"count":   float64(3),
		"flag":    true,
		"empty":   nil,
	}
	ectx.NodeData["node-1"] = map[string]any{
		"output": "agent said hi",
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple hit",
			input:    "User said: {{$json.Trigger.message}}",
			expected: "User said: hello there",
		},
		{
			name:     "whitespace inside braces",
			input:    "{{  $json.Trigger.message  }}",
			expected: "hello there",
		},
		{
			name:     "multiple tokens",
			input:    "{{$json.Trigger.message}} / {{$json.node-1.output}}",
			expected: "hello there / agent said hi",
		},
		{
			name:     "unknown node left verbatim",
			input:    "before {{$json.missing.message}} after",
			expected: "before {{$json.missing.message}} after",
		},
		{
			name:     "unknown field left verbatim",
			input:    "{{$json.Trigger.nope}}",
			expected: "{{$json.Trigger.nope}}",
		},
		{
			name:     "non-string values stringified",
			input:    "count={{$json.Trigger.count}} flag={{$json.Trigger.flag}}",
			expected: "count=3 flag=true",
		},
		{
			name:     "nil value renders empty",
			input:    "[{{$json.Trigger.empty}}]",
			expected: "[]",
		},
		{
			name:     "malformed token untouched",
			input:    "{{$json.Trigger}} and {{json.Trigger.message}}",
			expected: "{{$json.Trigger}} and {{json.Trigger.message}}",
		},
		{
			name:     "no tokens",
			input:    "plain text",
			expected: "plain text",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, resolveTemplate(tt.input, ectx))
		})
	}
}

package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExecutionContext(t *testing.T) {
	t.Parallel()

	ectx := NewExecutionContext("exec-1", "wf-1", "agent-1", "tenant-1")

	assert.Equal(t, ExecutionStatusRunning, ectx.Status)
	assert.NotNil(t, ectx.NodeData)
	assert.False(t, ectx.StartedAt.IsZero())

	ns := ectx.JSONVariables()
	require.NotNil(t, ns)

	ns["node"] = map[string]any{"k": "v"}
	assert.Equal(t, ns, ectx.JSONVariables(), "namespace is shared, not recreated")
}

func TestExecutionContext_JSONVariablesRecreatesWhenMissing(t *testing.T) {
	t.Parallel()

	ectx := &ExecutionContext{Variables: map[string]any{}}

	ns := ectx.JSONVariables()
	require.NotNil(t, ns)
	assert.Equal(t, any(ns), ectx.Variables["json"])
}

func TestExecutionContext_MarshalsCamelCase(t *testing.T) {
	t.Parallel()

	ectx := NewExecutionContext("exec-1", "wf-1", "agent-1", "tenant-1")
	ectx.NodeData["n1"] = map[string]any{"output": "x"}

	raw, err := json.Marshal(ectx)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "exec-1", decoded["executionId"])
	assert.Equal(t, "wf-1", decoded["workflowId"])
	assert.Contains(t, decoded, "nodeData")
}

package engine

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgrid/flowgrid/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestResultStore(cfg Config) *resultStore {
	return newResultStore(cfg.withDefaults(), testLogger())
}

func TestResultStore_AliasBackfill(t *testing.T) {
	t.Parallel()

	store := newTestResultStore(Config{})
	ectx := models.NewExecutionContext("exec-1", "wf-1", "agent-1", "tenant-1")

	node := &models.Node{ID: "n1", Name: "Greeter", Type: models.NodeTypeAIAgent}
	err := store.Store(node, ectx, models.NodeResult{JSON: map[string]any{"text": "hello"}}, time.Now())
	require.NoError(t, err)

	data, ok := store.Get("n1", ectx)
	require.True(t, ok)

	for _, field := range []string{"message", "text", "content", "response", "output", "result"} {
		assert.Equal(t, "hello", data[field], "alias %s", field)
	}

	// Stored under display name too.
	named, ok := store.Get("Greeter", ectx)
	require.True(t, ok)
	assert.Equal(t, "hello", named["output"])
}

func TestResultStore_AliasDoesNotOverwrite(t *testing.T) {
	t.Parallel()

	store := newTestResultStore(Config{})
	ectx := models.NewExecutionContext("exec-1", "wf-1", "agent-1", "tenant-1")

	payload := map[string]any{
		"message": "primary",
		"output":  "already set",
	}
	require.NoError(t, store.StoreKeyed("n1", "Node", ectx, payload))

	data, ok := store.Get("n1", ectx)
	require.True(t, ok)
	assert.Equal(t, "primary", data["message"])
	assert.Equal(t, "already set", data["output"])
	assert.Equal(t, "primary", data["text"])
}

func TestResultStore_ReservedKeyRejected(t *testing.T) {
	t.Parallel()

	store := newTestResultStore(Config{})
	ectx := models.NewExecutionContext("exec-1", "wf-1", "agent-1", "tenant-1")

	err := store.StoreKeyed("n1", "Node", ectx, map[string]any{"__proto__": "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReservedResultKey)
	assert.Empty(t, ectx.NodeData)

	err = store.StoreKeyed("constructor", "Node", ectx, map[string]any{"ok": true})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReservedResultKey)
}

func TestResultStore_OversizedResultTruncated(t *testing.T) {
	t.Parallel()

	store := newTestResultStore(Config{MaxResultSize: 128})
	ectx := models.NewExecutionContext("exec-1", "wf-1", "agent-1", "tenant-1")

	big := strings.Repeat("x", 4096)
	require.NoError(t, store.StoreKeyed("n1", "Node", ectx, map[string]any{"output": big}))

	data, ok := store.Get("n1", ectx)
	require.True(t, ok)
	assert.Equal(t, true, data["success"])
	assert.Equal(t, "truncated", data["error"])
	assert.NotContains(t, data, "output")
}

func TestResultStore_JSONVariablesMirror(t *testing.T) {
	t.Parallel()

	store := newTestResultStore(Config{})
	ectx := models.NewExecutionContext("exec-1", "wf-1", "agent-1", "tenant-1")

	require.NoError(t, store.StoreKeyed("n1", "Node", ectx, map[string]any{"text": "hi"}))

	vars := ectx.JSONVariables()
	mirrored, ok := vars["n1"].(map[string]any)
	require.True(t, ok)

	// The mirror holds the raw payload, before alias backfill.
	assert.Equal(t, "hi", mirrored["text"])
	assert.NotContains(t, mirrored, "output")
}

func TestResultStore_ResolvePrompt(t *testing.T) {
	t.Parallel()

	store := newTestResultStore(Config{})
	ectx := models.NewExecutionContext("exec-1", "wf-1", "agent-1", "tenant-1")

	require.NoError(t, store.StoreKeyed("t1", "Trigger", ectx, map[string]any{"message": "ping"}))

	resolved := store.ResolvePrompt("got: {{$json.Trigger.message}}", ectx)
	assert.Equal(t, "got: ping", resolved)
}

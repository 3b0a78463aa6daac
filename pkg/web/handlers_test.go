package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgrid/flowgrid/pkg/actions/webchat"
	"github.com/flowgrid/flowgrid/pkg/engine"
	"github.com/flowgrid/flowgrid/pkg/llm"
	"github.com/flowgrid/flowgrid/pkg/registry"
	"github.com/flowgrid/flowgrid/pkg/web"
)

type stubGenerator struct {
	output string
	err    error
}

func (g *stubGenerator) Generate(_ context.Context, req llm.Request) (*llm.Response, error) {
	if g.err != nil {
		return nil, g.err
	}

	return &llm.Response{
		Output:    g.output,
		Model:     req.Model,
		Timestamp: time.Now().UTC(),
		Success:   true,
	}, nil
}

func setupTestApp(t *testing.T, generator llm.Generator) *fiber.App {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := engine.NewExecutionStore(engine.Config{}, logger)

	reg := registry.NewRegistry(logger)
	reg.RegisterAction(webchat.NewFactory())

	eng := engine.New(engine.Config{}, generator, store, reg, logger)

	handlers := web.NewAPIHandlers(eng, validator.New(validator.WithRequiredStructEnabled()), logger)

	app := fiber.New()
	app.Post("/executions", handlers.ExecuteWorkflow)
	app.Get("/executions", handlers.GetActiveExecutions)
	app.Get("/health", handlers.HealthCheck)

	return app
}

func executePayload(t *testing.T, body map[string]any) *http.Request {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/executions", bytes.NewBuffer(raw))
	req.Header.Set("Content-Type", "application/json")

	return req
}

func chatWorkflowDocument() map[string]any {
	return map[string]any{
		"id":   "wf-chat",
		"name": "Chat Workflow",
		"nodes": []map[string]any{
			{"id": "t1", "name": "Chat-Trigger", "type": "trigger"},
			{
				"id": "a1", "name": "Responder", "type": "ai_agent",
				"agentConfig": map[string]any{
					"model":      "gpt-4o-mini",
					"userPrompt": "User says: {{$json.Chat-Trigger.message}}",
				},
			},
			{
				"id": "w1", "name": "Reply", "type": "action",
				"config": map[string]any{"integration": "webchat", "function": "execute"},
			},
		},
		"edges": []map[string]any{
			{"id": "e1", "source": "t1", "target": "a1"},
			{"id": "e2", "source": "a1", "target": "w1"},
		},
	}
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func TestExecuteWorkflow_Success(t *testing.T) {
	app := setupTestApp(t, &stubGenerator{output: "hello back"})

	req := executePayload(t, map[string]any{
		"workflow": chatWorkflowDocument(),
		"agentId":  "agent-1",
		"tenantId": "tenant-1",
		"triggerData": []map[string]any{
			{"nodeId": "t1", "nodeName": "Chat-Trigger", "triggerType": "chat", "data": map[string]any{"message": "hi"}},
		},
	})

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body web.ExecuteResponse

	decodeBody(t, resp, &body)
	assert.NotEmpty(t, body.ExecutionID)
	assert.Equal(t, "completed", string(body.Status))
	assert.Equal(t, "hello back", body.NodeData["a1"]["output"])
	assert.Equal(t, true, body.NodeData["w1"]["success"])
}

func TestExecuteWorkflow_ValidationErrors(t *testing.T) {
	app := setupTestApp(t, &stubGenerator{output: "ok"})

	tests := []struct {
		name string
		body map[string]any
	}{
		{
			name: "missing workflow",
			body: map[string]any{"agentId": "agent-1", "tenantId": "tenant-1"},
		},
		{
			name: "workflow without nodes",
			body: map[string]any{
				"workflow": map[string]any{"id": "wf-1", "nodes": []map[string]any{}},
				"agentId":  "agent-1",
				"tenantId": "tenant-1",
			},
		},
		{
			name: "node with bad type",
			body: map[string]any{
				"workflow": map[string]any{
					"id": "wf-1",
					"nodes": []map[string]any{
						{"id": "n1", "name": "Node", "type": "teleport"},
					},
				},
				"agentId":  "agent-1",
				"tenantId": "tenant-1",
			},
		},
		{
			name: "missing agent id",
			body: map[string]any{
				"workflow": chatWorkflowDocument(),
				"tenantId": "tenant-1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(executePayload(t, tt.body))
			require.NoError(t, err)

			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestExecuteWorkflow_CycleRejected(t *testing.T) {
	app := setupTestApp(t, &stubGenerator{output: "ok"})

	doc := chatWorkflowDocument()
	doc["edges"] = append(doc["edges"].([]map[string]any), map[string]any{
		"id": "back", "source": "w1", "target": "a1",
	})

	resp, err := app.Test(executePayload(t, map[string]any{
		"workflow": doc,
		"agentId":  "agent-1",
		"tenantId": "tenant-1",
	}))
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestExecuteWorkflow_NodeFailureAnswersWithApology(t *testing.T) {
	app := setupTestApp(t, &stubGenerator{err: errors.New("secret internal detail")})

	resp, err := app.Test(executePayload(t, map[string]any{
		"workflow": chatWorkflowDocument(),
		"agentId":  "agent-1",
		"tenantId": "tenant-1",
	}))
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(raw), engine.Apology)
	assert.NotContains(t, string(raw), "secret internal detail")
}

func TestGetActiveExecutions(t *testing.T) {
	app := setupTestApp(t, &stubGenerator{output: "ok"})

	req := httptest.NewRequest(http.MethodGet, "/executions", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body web.ActiveExecutionsResponse

	decodeBody(t, resp, &body)
	assert.Equal(t, 0, body.Count)
	assert.Empty(t, body.Executions)
}

func TestHealthCheck(t *testing.T) {
	app := setupTestApp(t, &stubGenerator{output: "ok"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any

	decodeBody(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
}

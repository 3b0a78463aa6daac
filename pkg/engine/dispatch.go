package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/flowgrid/flowgrid/pkg/llm"
	"github.com/flowgrid/flowgrid/pkg/models"
	"github.com/flowgrid/flowgrid/pkg/registry"
)

// DispatchResult is the outcome of one node handler invocation.
type DispatchResult struct {
	Success  bool
	Result   models.NodeResult
	Err      error
	Duration time.Duration
}

// dispatcher executes single nodes by kind. Failures are returned, never
// panicked; the supervisor decides what a failure means for the run.
type dispatcher struct {
	generator llm.Generator
	registry  *registry.Registry
	results   *resultStore
	logger    *slog.Logger
}

func newDispatcher(generator llm.Generator, reg *registry.Registry, results *resultStore, logger *slog.Logger) *dispatcher {
	return &dispatcher{
		generator: generator,
		registry:  reg,
		results:   results,
		logger:    logger.With("module", "dispatcher"),
	}
}

// Execute runs one node against the current context.
func (d *dispatcher) Execute(ctx context.Context, node *models.Node, ectx *models.ExecutionContext) DispatchResult {
	start := time.Now()

	var (
		payload map[string]any
		err     error
	)

	switch node.Type {
	case models.NodeTypeTrigger:
		payload = d.executeTrigger(node, ectx)
	case models.NodeTypeAIAgent:
		payload, err = d.executeAgent(ctx, node, ectx)
	case models.NodeTypeAction:
		payload, err = d.executeAction(ctx, node, ectx)
	case models.NodeTypeTool:
		err = newError("engine.dispatch", "UNKNOWN_NODE_TYPE",
			fmt.Sprintf("node %s has non-executable type %q", node.ID, node.Type),
			ErrUnknownNodeType)
	default:
		d.logger.Error("unknown node type",
			"node_id", node.ID,
			"node_type", string(node.Type))

		err = newError("engine.dispatch", "UNKNOWN_NODE_TYPE",
			fmt.Sprintf("node %s has unknown type %q", node.ID, node.Type),
			ErrUnknownNodeType)
	}

	if err != nil {
		return DispatchResult{
			Success:  false,
			Err:      err,
			Duration: time.Since(start),
		}
	}

	return DispatchResult{
		Success:  true,
		Result:   models.NodeResult{JSON: payload},
		Duration: time.Since(start),
	}
}

// executeTrigger always succeeds. Injected trigger data, when present, is
// reused untouched; otherwise a default payload marks the node as triggered.
func (d *dispatcher) executeTrigger(node *models.Node, ectx *models.ExecutionContext) map[string]any {
	if existing, ok := d.results.Get(node.Name, ectx); ok {
		return existing
	}

	if existing, ok := d.results.Get(node.ID, ectx); ok {
		return existing
	}

	return map[string]any{
		"triggerType": node.TriggerType(),
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"status":      "triggered",
	}
}

// executeAgent resolves the node's prompt template and delegates to the
// generation capability. Transport errors fail the node; a provider-reported
// soft failure degrades to the apology text instead.
func (d *dispatcher) executeAgent(ctx context.Context, node *models.Node, ectx *models.ExecutionContext) (map[string]any, error) {
	const op = "engine.dispatch.agent"

	cfg := node.AgentConfig
	if cfg == nil {
		return nil, newError(op, "MISSING_AGENT_CONFIG",
			fmt.Sprintf("ai_agent node %s has no agent config", node.ID),
			ErrMissingAgentConfig)
	}

	userPrompt := d.results.ResolvePrompt(cfg.UserPrompt, ectx)

	req := llm.Request{
		SystemPrompt: cfg.SystemPrompt,
		UserPrompt:   userPrompt,
		Model:        cfg.Model,
		Temperature:  cfg.Temperature,
		MaxTokens:    cfg.MaxTokens,
		Tools:        cfg.Tools,
		Credentials:  cfg.Credentials,
		Metadata: map[string]string{
			"execution_id": ectx.ExecutionID,
			"workflow_id":  ectx.WorkflowID,
			"tenant_id":    ectx.TenantID,
			"node_id":      node.ID,
		},
	}

	resp, err := d.generator.Generate(ctx, req)
	if err != nil {
		d.logger.Error("generation call failed",
			"execution_id", ectx.ExecutionID,
			"node_id", node.ID,
			"error", sanitizeMessage(err.Error()))

		return nil, newError(op, "NODE_FAILED",
			fmt.Sprintf("node %s generation failed: %v", node.ID, err),
			fmt.Errorf("%w: %w", ErrNodeFailed, err))
	}

	output := resp.Output
	if !resp.Success {
		output = Apology
	}

	payload := map[string]any{
		"output":      output,
		"agentOutput": output,
		"response":    output,
		"result":      output,
		"model":       resp.Model,
		"timestamp":   resp.Timestamp.Format(time.RFC3339),
		"success":     resp.Success,
	}

	if resp.Usage != nil {
		payload["usage"] = map[string]any{
			"promptTokens":     resp.Usage.PromptTokens,
			"completionTokens": resp.Usage.CompletionTokens,
			"totalTokens":      resp.Usage.TotalTokens,
		}
	}

	return payload, nil
}

// executeAction resolves the node's integration/function pair through the
// action registry. Unregistered combinations are a node failure naming both.
func (d *dispatcher) executeAction(ctx context.Context, node *models.Node, ectx *models.ExecutionContext) (map[string]any, error) {
	const op = "engine.dispatch.action"

	integration := configString(node.Config, "integration", "webchat")
	function := configString(node.Config, "function", "execute")

	action, err := d.registry.CreateAction(integration, function, node.Config)
	if err != nil {
		return nil, newError(op, "UNSUPPORTED_ACTION",
			fmt.Sprintf("node %s: unsupported action %s/%s", node.ID, integration, function),
			ErrUnsupportedAction)
	}

	payload, err := action.Execute(ctx, ectx, d.logger)
	if err != nil {
		return nil, newError(op, "NODE_FAILED",
			fmt.Sprintf("node %s action %s/%s failed: %v", node.ID, integration, function, err),
			fmt.Errorf("%w: %w", ErrNodeFailed, err))
	}

	return payload, nil
}

func configString(config map[string]any, key, fallback string) string {
	if config != nil {
		if v, ok := config[key].(string); ok && v != "" {
			return v
		}
	}

	return fallback
}

package models

import "time"

// ExecutionStatus represents the lifecycle state of a single run.
type ExecutionStatus string

const (
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
)

// ExecutionContext holds the full mutable state of one workflow run: the
// per-node outputs and the variables namespace used for template resolution.
// It is created at run start and discarded once the caller consumes it.
type ExecutionContext struct {
	ExecutionID string                    `json:"executionId"`
	WorkflowID  string                    `json:"workflowId"`
	AgentID     string                    `json:"agentId"`
	TenantID    string                    `json:"tenantId"`
	Status      ExecutionStatus           `json:"status"`
	NodeData    map[string]map[string]any `json:"nodeData"`
	Variables   map[string]any            `json:"variables"`
	StartedAt   time.Time                 `json:"startedAt"`
}

// NewExecutionContext builds an empty running context with the json variables
// namespace initialized.
func NewExecutionContext(executionID, workflowID, agentID, tenantID string) *ExecutionContext {
	return &ExecutionContext{
		ExecutionID: executionID,
		WorkflowID:  workflowID,
		AgentID:     agentID,
		TenantID:    tenantID,
		Status:      ExecutionStatusRunning,
		NodeData:    make(map[string]map[string]any),
		Variables: map[string]any{
			"json": make(map[string]any),
		},
		StartedAt: time.Now().UTC(),
	}
}

// JSONVariables returns the "json" namespace of the variables map, creating it
// when absent.
func (c *ExecutionContext) JSONVariables() map[string]any {
	ns, ok := c.Variables["json"].(map[string]any)
	if !ok {
		ns = make(map[string]any)
		c.Variables["json"] = ns
	}

	return ns
}

// ExecutionTracker is the lightweight registry record kept per in-flight run,
// used for capacity accounting and stale-run eviction. It deliberately holds
// no payloads.
type ExecutionTracker struct {
	ExecutionID  string          `json:"executionId"`
	WorkflowID   string          `json:"workflowId"`
	WorkflowName string          `json:"workflowName,omitempty"`
	AgentID      string          `json:"agentId"`
	TenantID     string          `json:"tenantId"`
	Status       ExecutionStatus `json:"status"`
	StartTime    time.Time       `json:"startTime"`
}

// NodeResult is the unit of output a node handler produces.
type NodeResult struct {
	JSON map[string]any `json:"json"`
}

// TriggerDataInjection is a caller-supplied payload seeded into the context
// before dispatch begins, realizing the trigger node's output.
type TriggerDataInjection struct {
	NodeID      string         `json:"nodeId,omitempty"`
	NodeName    string         `json:"nodeName" validate:"required"`
	TriggerType string         `json:"triggerType"`
	Data        map[string]any `json:"data"`
}

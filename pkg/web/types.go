// Package web provides the HTTP entry point for executing workflow graphs.
package web

import (
	"github.com/flowgrid/flowgrid/pkg/models"
)

// ExecuteRequest is the request body for running a workflow graph once.
type ExecuteRequest struct {
	Workflow    *models.WorkflowGraph         `json:"workflow"              validate:"required"`
	AgentID     string                        `json:"agentId"               validate:"required"`
	TenantID    string                        `json:"tenantId"              validate:"required"`
	TriggerData []models.TriggerDataInjection `json:"triggerData,omitempty" validate:"omitempty,dive"`
}

// ExecuteResponse returns the run outcome to the caller.
type ExecuteResponse struct {
	ExecutionID string                    `json:"executionId"`
	Status      models.ExecutionStatus    `json:"status"`
	NodeData    map[string]map[string]any `json:"nodeData"`
}

// ActiveExecutionsResponse lists in-flight runs.
type ActiveExecutionsResponse struct {
	Executions []*models.ExecutionTracker `json:"executions"`
	Count      int                        `json:"count"`
}

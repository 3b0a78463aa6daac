package engine

import (
	"fmt"
	"log/slog"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/flowgrid/flowgrid/pkg/models"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// validIdentifier reports whether s is a bounded-length alphanumeric,
// hyphen or underscore identifier.
func validIdentifier(s string, maxLen int) bool {
	return s != "" && len(s) <= maxLen && identifierPattern.MatchString(s)
}

// validateGraph rejects malformed graphs and enforces the hard size ceilings
// before any execution state is created. It is synchronous and side-effect
// free apart from warn logs for dangling edges, which are tolerated during
// leveling but worth observing.
func validateGraph(v *validator.Validate, graph *models.WorkflowGraph, init ExecuteInit, cfg Config, logger *slog.Logger) error {
	const op = "engine.validateGraph"

	if graph == nil || len(graph.Nodes) == 0 {
		return newError(op, "EMPTY_WORKFLOW", "workflow has no nodes", ErrEmptyWorkflow)
	}

	if !validIdentifier(graph.ID, cfg.MaxNameLength) {
		return newError(op, "INVALID_IDENTIFIER",
			fmt.Sprintf("invalid workflow id %q", graph.ID), ErrInvalidIdentifier)
	}

	if !validIdentifier(init.AgentID, cfg.MaxNameLength) {
		return newError(op, "INVALID_IDENTIFIER",
			fmt.Sprintf("invalid agent id %q", init.AgentID), ErrInvalidIdentifier)
	}

	if !validIdentifier(init.TenantID, cfg.MaxNameLength) {
		return newError(op, "INVALID_IDENTIFIER",
			fmt.Sprintf("invalid tenant id %q", init.TenantID), ErrInvalidIdentifier)
	}

	if len(graph.Nodes) > cfg.MaxWorkflowNodes {
		return newError(op, "TOO_MANY_NODES",
			fmt.Sprintf("workflow has %d nodes, limit is %d", len(graph.Nodes), cfg.MaxWorkflowNodes),
			ErrTooManyNodes)
	}

	if len(graph.Edges) > cfg.MaxWorkflowEdges {
		return newError(op, "TOO_MANY_EDGES",
			fmt.Sprintf("workflow has %d edges, limit is %d", len(graph.Edges), cfg.MaxWorkflowEdges),
			ErrTooManyEdges)
	}

	if err := v.Struct(graph); err != nil {
		return newError(op, "INVALID_WORKFLOW", err.Error(), ErrInvalidIdentifier)
	}

	for _, node := range graph.Nodes {
		if node.Type == models.NodeTypeAIAgent && node.AgentConfig == nil {
			return newError(op, "MISSING_AGENT_CONFIG",
				fmt.Sprintf("ai_agent node %s has no agent config", node.ID),
				ErrMissingAgentConfig)
		}
	}

	warnDanglingEdges(graph, logger)

	return nil
}

// warnDanglingEdges logs edges whose endpoints reference unknown node ids.
// Leveling skips them silently; the warning keeps the discrepancy observable.
func warnDanglingEdges(graph *models.WorkflowGraph, logger *slog.Logger) {
	known := make(map[string]bool, len(graph.Nodes))
	for _, node := range graph.Nodes {
		known[node.ID] = true
	}

	for _, edge := range graph.Edges {
		if !known[edge.Source] || !known[edge.Target] {
			logger.Warn("dangling edge references unknown node",
				"workflow_id", graph.ID,
				"edge_id", edge.ID,
				"source", edge.Source,
				"target", edge.Target)
		}
	}
}

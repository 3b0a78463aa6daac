// Package models defines the core domain models for agent workflow execution.
package models

import "strings"

// NodeType represents the kind of a workflow node.
type NodeType string

const (
	NodeTypeTrigger NodeType = "trigger"  // Entry node, pre-completed before dispatch
	NodeTypeAIAgent NodeType = "ai_agent" // Delegates to the LLM generation capability
	NodeTypeAction  NodeType = "action"   // Integration/function action
	NodeTypeTool    NodeType = "tool"     // Tool declaration attached to agents
)

// WorkflowGraph is the persisted DAG of nodes and edges an agent executes per
// trigger. The engine treats it as immutable input and never mutates it.
type WorkflowGraph struct {
	ID       string         `json:"id"       validate:"required"`
	Name     string         `json:"name"`
	AgentID  string         `json:"agentId"`
	Nodes    []*Node        `json:"nodes"    validate:"required,min=1,dive"`
	Edges    []*Edge        `json:"edges"    validate:"dive"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Node represents a single node instance in a workflow graph.
type Node struct {
	ID          string         `json:"id"   validate:"required"`
	Name        string         `json:"name" validate:"required,min=1"`
	Type        NodeType       `json:"type" validate:"required,oneof=trigger ai_agent action tool"`
	Disabled    bool           `json:"disabled,omitempty"`
	Config      map[string]any `json:"config,omitempty"`
	AgentConfig *AgentConfig   `json:"agentConfig,omitempty"`
}

// IsTrigger reports whether the node starts a run. The check is deliberately
// permissive: an explicit trigger type, a triggerType config entry, or a
// "trigger" substring in the display name all qualify.
func (n *Node) IsTrigger() bool {
	if n.Type == NodeTypeTrigger {
		return true
	}

	if n.Config != nil {
		if _, ok := n.Config["triggerType"]; ok {
			return true
		}
	}

	return strings.Contains(strings.ToLower(n.Name), "trigger")
}

// TriggerType returns the configured trigger type, defaulting to "manual".
func (n *Node) TriggerType() string {
	if n.Config != nil {
		if t, ok := n.Config["triggerType"].(string); ok && t != "" {
			return t
		}
	}

	return "manual"
}

// Edge is a directed dependency between two nodes: the target depends on the
// source. Endpoints referencing unknown node ids are tolerated and skipped
// during leveling.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// AgentConfig carries the LLM target configuration required by ai_agent nodes.
type AgentConfig struct {
	Model        string         `json:"model"`
	Temperature  float32        `json:"temperature,omitempty"`
	MaxTokens    int            `json:"maxTokens,omitempty"`
	SystemPrompt string         `json:"systemPrompt,omitempty"`
	UserPrompt   string         `json:"userPrompt,omitempty"`
	Tools        []ToolDecl     `json:"tools,omitempty"`
	Credentials  map[string]any `json:"credentials,omitempty"`
}

// ToolDecl declares a tool made available to an agent node.
type ToolDecl struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// Package events defines the execution lifecycle event types published by
// the engine.
package events

import (
	"time"
)

type EventType string

// Topic carries all execution lifecycle events.
const Topic = "flowgrid.executions"

const EventKeyMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	ExecutionStartedEvent   EventType = "execution.started"
	ExecutionCompletedEvent EventType = "execution.completed"
	ExecutionFailedEvent    EventType = "execution.failed"
	ExecutionTimedOutEvent  EventType = "execution.timeout"

	NodeFinishedEvent EventType = "node.finished"
	NodeFailedEvent   EventType = "node.failed"
)

// Event is anything the bus can carry.
type Event interface {
	GetType() EventType
}

type BaseEvent struct {
	ID          string         `json:"id"`
	Type        EventType      `json:"type"`
	Timestamp   time.Time      `json:"timestamp"`
	WorkflowID  string         `json:"workflow_id"`
	ExecutionID string         `json:"execution_id"`
	TenantID    string         `json:"tenant_id,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type ExecutionStarted struct {
	BaseEvent

	AgentID     string `json:"agent_id"`
	TriggerType string `json:"trigger_type,omitempty"`
}

func (e ExecutionStarted) GetType() EventType {
	return ExecutionStartedEvent
}

type ExecutionCompleted struct {
	BaseEvent

	Duration time.Duration `json:"duration"`
	Nodes    int           `json:"nodes"`
}

func (e ExecutionCompleted) GetType() EventType {
	return ExecutionCompletedEvent
}

type ExecutionFailed struct {
	BaseEvent

	Error    string        `json:"error"`
	Code     string        `json:"code,omitempty"`
	Duration time.Duration `json:"duration"`
}

func (e ExecutionFailed) GetType() EventType {
	return ExecutionFailedEvent
}

type ExecutionTimedOut struct {
	BaseEvent

	Budget time.Duration `json:"budget"`
}

func (e ExecutionTimedOut) GetType() EventType {
	return ExecutionTimedOutEvent
}

type NodeFinished struct {
	BaseEvent

	NodeID   string        `json:"node_id"`
	NodeName string        `json:"node_name"`
	NodeType string        `json:"node_type"`
	Duration time.Duration `json:"duration"`
}

func (e NodeFinished) GetType() EventType {
	return NodeFinishedEvent
}

type NodeFailed struct {
	BaseEvent

	NodeID   string        `json:"node_id"`
	NodeName string        `json:"node_name"`
	NodeType string        `json:"node_type"`
	Error    string        `json:"error"`
	Duration time.Duration `json:"duration"`
}

func (e NodeFailed) GetType() EventType {
	return NodeFailedEvent
}

// Package webchat provides the webchat response acknowledgement action, the
// one concrete action the engine currently ships. Delivery back to the
// channel is the caller's concern; this action only acknowledges.
package webchat

import (
	"context"
	"log/slog"
	"time"

	"github.com/flowgrid/flowgrid/pkg/models"
	"github.com/flowgrid/flowgrid/pkg/protocol"
)

const (
	Integration = "webchat"
	Function    = "execute"
)

type Action struct{}

func NewAction(_ map[string]any) (*Action, error) {
	return &Action{}, nil
}

// Execute always succeeds with a static acknowledgement payload.
func (a *Action) Execute(_ context.Context, ectx *models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	logger.Debug("webchat action acknowledged",
		"execution_id", ectx.ExecutionID,
		"workflow_id", ectx.WorkflowID)

	return map[string]any{
		"success":     true,
		"integration": Integration,
		"function":    Function,
		"message":     "response queued for delivery",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	}, nil
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(config map[string]any) (protocol.Action, error) {
	return NewAction(config)
}

func (f *Factory) ID() string {
	return Integration + "/" + Function
}

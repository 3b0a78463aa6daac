// Package protocol defines the contracts for pluggable action integrations.
package protocol

import (
	"context"
	"log/slog"

	"github.com/flowgrid/flowgrid/pkg/models"
)

// Action executes one integration/function combination for an action node.
// Implementations must not mutate the execution context; they return a
// payload the engine stores.
type Action interface {
	Execute(ctx context.Context, ectx *models.ExecutionContext, logger *slog.Logger) (map[string]any, error)
}

// ActionFactory creates action instances for a single integration/function
// pair.
type ActionFactory interface {
	// Create builds an action from the node's config.
	Create(config map[string]any) (Action, error)

	// ID returns the "integration/function" key this factory serves.
	ID() string
}

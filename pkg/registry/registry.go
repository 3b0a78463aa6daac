// Package registry maps integration/function pairs to action factories.
package registry

import (
	"fmt"
	"log/slog"

	"github.com/flowgrid/flowgrid/pkg/protocol"
)

type Registry struct {
	logger          *slog.Logger
	actionFactories map[string]protocol.ActionFactory
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:          logger,
		actionFactories: make(map[string]protocol.ActionFactory),
	}
}

func (r *Registry) RegisterAction(factory protocol.ActionFactory) {
	r.actionFactories[factory.ID()] = factory
}

// CreateAction builds the action serving integration/function, or reports
// the combination as unregistered.
func (r *Registry) CreateAction(integration, function string, config map[string]any) (protocol.Action, error) {
	key := ActionKey(integration, function)

	factory, ok := r.actionFactories[key]
	if !ok {
		return nil, fmt.Errorf("action %q not registered", key)
	}

	return factory.Create(config)
}

// HasAction reports whether integration/function has a registered factory.
func (r *Registry) HasAction(integration, function string) bool {
	_, ok := r.actionFactories[ActionKey(integration, function)]

	return ok
}

// ActionKey builds the registry key for an integration/function pair.
func ActionKey(integration, function string) string {
	return integration + "/" + function
}

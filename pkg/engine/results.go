package engine

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/flowgrid/flowgrid/pkg/models"
)

// reservedKeys are property names that must never be used to index into the
// shared context. Go maps carry no prototype surface, but caller-controlled
// graphs travel through JSON consumers that do, so writes using these names
// are treated as an attack signal rather than data.
var reservedKeys = map[string]bool{
	"__proto__":        true,
	"constructor":      true,
	"prototype":        true,
	"__defineGetter__": true,
	"__defineSetter__": true,
	"__lookupGetter__": true,
	"__lookupSetter__": true,
}

// aliasFields is the canonical "primary text" alias set, in lookup order.
var aliasFields = []string{"message", "text", "content", "response", "output", "result"}

// resultStore merges node outputs into the shared execution context. All
// nodes of a level write concurrently, so access is serialized here; the
// containing ExecutionContext itself stays a plain value the caller can
// marshal after the run.
type resultStore struct {
	mu     sync.RWMutex
	cfg    Config
	logger *slog.Logger
}

func newResultStore(cfg Config, logger *slog.Logger) *resultStore {
	return &resultStore{cfg: cfg, logger: logger}
}

// Store merges result into ectx under both the node's id and display name,
// capping oversized payloads and backfilling the primary-text aliases.
func (s *resultStore) Store(node *models.Node, ectx *models.ExecutionContext, result models.NodeResult, startTime time.Time) error {
	err := s.StoreKeyed(node.ID, node.Name, ectx, result.JSON)
	if err != nil {
		return err
	}

	s.logger.Debug("stored node result",
		"execution_id", ectx.ExecutionID,
		"node_id", node.ID,
		"duration_ms", time.Since(startTime).Milliseconds())

	return nil
}

// StoreKeyed writes payload under the given id and name keys. Trigger data
// injection uses it directly, before any node has run.
func (s *resultStore) StoreKeyed(id, name string, ectx *models.ExecutionContext, payload map[string]any) error {
	const op = "engine.resultStore"

	for key := range payload {
		if reservedKeys[key] {
			return newError(op, "RESERVED_KEY",
				fmt.Sprintf("reserved key %q in node result", key), ErrReservedResultKey)
		}
	}

	if reservedKeys[id] || reservedKeys[name] {
		return newError(op, "RESERVED_KEY",
			fmt.Sprintf("reserved node key %q", id), ErrReservedResultKey)
	}

	payload = s.capPayload(id, ectx.ExecutionID, payload)
	aliased := withAliases(payload)

	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		ectx.NodeData[id] = aliased
	}

	if name != "" {
		ectx.NodeData[name] = aliased
	}

	// Pre-alias payload mirrored for template resolution.
	vars := ectx.JSONVariables()
	if id != "" {
		vars[id] = payload
	}

	if name != "" {
		vars[name] = payload
	}

	return nil
}

// Get reads a stored result under the read lock.
func (s *resultStore) Get(key string, ectx *models.ExecutionContext) (map[string]any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := ectx.NodeData[key]

	return data, ok
}

// ResolvePrompt resolves template tokens against the context under the read
// lock, so same-level writers cannot race the lookup.
func (s *resultStore) ResolvePrompt(input string, ectx *models.ExecutionContext) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return resolveTemplate(input, ectx)
}

// Snapshot returns ectx serialized under the read lock, for callers that want
// the context while the run may still be mutating it.
func (s *resultStore) Snapshot(ectx *models.ExecutionContext) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return json.Marshal(ectx)
}

// capPayload replaces payloads over the size ceiling with a minimal
// placeholder. The run continues; only the oversized data is dropped.
func (s *resultStore) capPayload(nodeID, executionID string, payload map[string]any) map[string]any {
	raw, err := json.Marshal(payload)
	if err != nil || len(raw) <= s.cfg.MaxResultSize {
		return payload
	}

	s.logger.Warn("node result exceeds size limit, storing placeholder",
		"execution_id", executionID,
		"node_id", nodeID,
		"size", len(raw),
		"limit", s.cfg.MaxResultSize)

	return map[string]any{
		"success":   true,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"error":     "truncated",
	}
}

// withAliases copies payload and backfills the primary-text alias fields from
// the first alias that already holds a non-empty string.
func withAliases(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload)+len(aliasFields))
	for k, v := range payload {
		out[k] = v
	}

	primary := ""

	for _, field := range aliasFields {
		if v, ok := out[field].(string); ok && v != "" {
			primary = v

			break
		}
	}

	if primary == "" {
		return out
	}

	for _, field := range aliasFields {
		if v, ok := out[field].(string); ok && v != "" {
			continue
		}

		out[field] = primary
	}

	return out
}

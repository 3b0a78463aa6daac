package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/flowgrid/flowgrid/pkg/eventbus"
	"github.com/flowgrid/flowgrid/pkg/events"
	"github.com/flowgrid/flowgrid/pkg/llm"
	"github.com/flowgrid/flowgrid/pkg/models"
	"github.com/flowgrid/flowgrid/pkg/otelhelper"
	"github.com/flowgrid/flowgrid/pkg/registry"
)

// ExecuteInit carries the caller-supplied run parameters.
type ExecuteInit struct {
	AgentID     string
	TenantID    string
	TriggerData []models.TriggerDataInjection
}

// Engine is the run supervisor: it validates a workflow graph, registers the
// run, injects trigger data, and drives the leveled dispatch to completion or
// a typed failure. One engine instance serves many concurrent runs.
type Engine struct {
	cfg        Config
	logger     *slog.Logger
	validate   *validator.Validate
	store      *ExecutionStore
	results    *resultStore
	dispatcher *dispatcher
	bus        eventbus.EventBus
	tracer     trace.Tracer
}

// New creates an engine. The execution store is injected so callers can share
// it across engines and own its sweep lifecycle.
func New(cfg Config, generator llm.Generator, store *ExecutionStore, reg *registry.Registry, logger *slog.Logger) *Engine {
	cfg = cfg.withDefaults()
	results := newResultStore(cfg, logger)

	return &Engine{
		cfg:        cfg,
		logger:     logger.With("module", "engine"),
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		store:      store,
		results:    results,
		dispatcher: newDispatcher(generator, reg, results, logger),
	}
}

// SetEventBus enables lifecycle event publishing. Optional.
func (e *Engine) SetEventBus(bus eventbus.EventBus) {
	e.bus = bus
}

// SetTracer enables run and node spans. Optional.
func (e *Engine) SetTracer(tracer trace.Tracer) {
	e.tracer = tracer
}

// Execute runs the workflow graph against the initial parameters and returns
// the per-run context, or a typed error. The whole run races a wall-clock
// deadline; the deadline context reaches every node handler, so in-flight
// generation calls are cancelled rather than abandoned.
func (e *Engine) Execute(ctx context.Context, graph *models.WorkflowGraph, init ExecuteInit) (*models.ExecutionContext, error) {
	const op = "engine.Execute"

	if err := validateGraph(e.validate, graph, init, e.cfg, e.logger); err != nil {
		return nil, err
	}

	executionID := newExecutionID(graph.ID)
	logger := e.logger.With(
		"workflow_id", graph.ID,
		"execution_id", executionID,
	)

	ectx := models.NewExecutionContext(executionID, graph.ID, init.AgentID, init.TenantID)

	tracker := &models.ExecutionTracker{
		ExecutionID:  executionID,
		WorkflowID:   graph.ID,
		WorkflowName: graph.Name,
		AgentID:      init.AgentID,
		TenantID:     init.TenantID,
		Status:       models.ExecutionStatusRunning,
		StartTime:    ectx.StartedAt,
	}

	if err := e.store.Register(tracker); err != nil {
		return nil, err
	}

	start := time.Now()

	var runErr error

	defer func() {
		status := models.ExecutionStatusCompleted
		if runErr != nil {
			status = models.ExecutionStatusFailed
		}

		e.store.UpdateStatus(executionID, status)
		e.store.Remove(executionID)
	}()

	runCtx, cancel := context.WithTimeout(ctx, e.cfg.MaxExecutionTime)
	defer cancel()

	if e.tracer != nil {
		var span trace.Span

		runCtx, span = otelhelper.StartSpan(runCtx, e.tracer, "workflow.execute",
			attribute.String(otelhelper.WorkflowIDKey, graph.ID),
			attribute.String(otelhelper.ExecutionIDKey, executionID),
			attribute.String(otelhelper.AgentIDKey, init.AgentID),
			attribute.String(otelhelper.TenantIDKey, init.TenantID),
		)
		defer span.End()

		defer func() {
			if runErr != nil {
				otelhelper.SetError(span, runErr)
			}
		}()
	}

	logger.Info("starting workflow execution", "nodes", len(graph.Nodes), "edges", len(graph.Edges))
	e.publish(runCtx, executionID, events.ExecutionStarted{
		BaseEvent: e.baseEvent(events.ExecutionStartedEvent, ectx),
		AgentID:   init.AgentID,
	})

	runErr = e.run(runCtx, graph, init, ectx, logger)

	if runErr != nil {
		// The deadline firing surfaces as context errors out of node
		// handlers; report those as the run timing out.
		if runCtx.Err() == context.DeadlineExceeded {
			runErr = newError(op, "EXECUTION_TIMEOUT",
				fmt.Sprintf("workflow %s exceeded execution budget %s", graph.ID, e.cfg.MaxExecutionTime),
				ErrExecutionTimeout)

			e.publish(context.WithoutCancel(runCtx), executionID, events.ExecutionTimedOut{
				BaseEvent: e.baseEvent(events.ExecutionTimedOutEvent, ectx),
				Budget:    e.cfg.MaxExecutionTime,
			})
		}

		ectx.Status = models.ExecutionStatusFailed

		logger.Error("workflow execution failed",
			"error", sanitizeMessage(runErr.Error()),
			"duration", time.Since(start))
		e.publish(context.WithoutCancel(runCtx), executionID, events.ExecutionFailed{
			BaseEvent: e.baseEvent(events.ExecutionFailedEvent, ectx),
			Error:     sanitizeMessage(runErr.Error()),
			Code:      errorCode(runErr),
			Duration:  time.Since(start),
		})

		return nil, runErr
	}

	ectx.Status = models.ExecutionStatusCompleted

	logger.Info("workflow execution completed", "duration", time.Since(start))
	e.publish(runCtx, executionID, events.ExecutionCompleted{
		BaseEvent: e.baseEvent(events.ExecutionCompletedEvent, ectx),
		Duration:  time.Since(start),
		Nodes:     len(graph.Nodes),
	})

	return ectx, nil
}

// Store exposes the execution store for observability endpoints.
func (e *Engine) Store() *ExecutionStore {
	return e.store
}

// run performs trigger injection, leveling, and per-level fan-out.
func (e *Engine) run(ctx context.Context, graph *models.WorkflowGraph, init ExecuteInit, ectx *models.ExecutionContext, logger *slog.Logger) error {
	if err := e.injectTriggerData(init, ectx, logger); err != nil {
		return err
	}

	completed := e.preCompleteTriggers(graph, ectx, logger)

	levels, err := buildLevels(graph)
	if err != nil {
		return err
	}

	nodesByID := make(map[string]*models.Node, len(graph.Nodes))
	for _, node := range graph.Nodes {
		nodesByID[node.ID] = node
	}

	for levelIdx, level := range levels {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := e.runLevel(ctx, levelIdx, level, nodesByID, completed, ectx, logger); err != nil {
			return err
		}
	}

	return nil
}

// runLevel fans out every runnable node of one level and waits for all of
// them. The first failure wins; the level is still fully awaited so no
// goroutine outlives the barrier.
func (e *Engine) runLevel(ctx context.Context, levelIdx int, level []string, nodesByID map[string]*models.Node, completed map[string]bool, ectx *models.ExecutionContext, logger *slog.Logger) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	record := func(err error) {
		mu.Lock()
		defer mu.Unlock()

		if firstErr == nil {
			firstErr = err
		}
	}

	for _, id := range level {
		node := nodesByID[id]
		if node == nil || node.Disabled || completed[id] {
			continue
		}

		wg.Add(1)

		go func(node *models.Node) {
			defer wg.Done()

			if err := ctx.Err(); err != nil {
				record(err)

				return
			}

			nodeCtx := ctx

			if e.tracer != nil {
				var span trace.Span

				nodeCtx, span = otelhelper.StartSpan(ctx, e.tracer, "node.execute",
					attribute.String(otelhelper.ExecutionIDKey, ectx.ExecutionID),
					attribute.String(otelhelper.NodeIDKey, node.ID),
					attribute.String(otelhelper.NodeTypeKey, string(node.Type)),
					attribute.Int(otelhelper.LevelKey, levelIdx),
				)
				defer span.End()
			}

			start := time.Now()
			res := e.dispatcher.Execute(nodeCtx, node, ectx)

			if res.Err != nil {
				logger.Error("node execution failed",
					"node_id", node.ID,
					"node_type", string(node.Type),
					"level", levelIdx,
					"error", sanitizeMessage(res.Err.Error()),
					"duration_ms", res.Duration.Milliseconds())
				e.publish(context.WithoutCancel(nodeCtx), ectx.ExecutionID, events.NodeFailed{
					BaseEvent: e.baseEvent(events.NodeFailedEvent, ectx),
					NodeID:    node.ID,
					NodeName:  node.Name,
					NodeType:  string(node.Type),
					Error:     sanitizeMessage(res.Err.Error()),
					Duration:  res.Duration,
				})
				record(res.Err)

				return
			}

			if err := e.results.Store(node, ectx, res.Result, start); err != nil {
				record(err)

				return
			}

			logger.Debug("node executed",
				"node_id", node.ID,
				"node_type", string(node.Type),
				"level", levelIdx,
				"duration_ms", res.Duration.Milliseconds())
			e.publish(nodeCtx, ectx.ExecutionID, events.NodeFinished{
				BaseEvent: e.baseEvent(events.NodeFinishedEvent, ectx),
				NodeID:    node.ID,
				NodeName:  node.Name,
				NodeType:  string(node.Type),
				Duration:  res.Duration,
			})
		}(node)
	}

	wg.Wait()

	if firstErr != nil {
		return firstErr
	}

	for _, id := range level {
		completed[id] = true
	}

	return nil
}

// injectTriggerData seeds caller-supplied trigger payloads into the context,
// enriched with run metadata. Invalid node names are skipped with a warning;
// reserved keys abort the run.
func (e *Engine) injectTriggerData(init ExecuteInit, ectx *models.ExecutionContext, logger *slog.Logger) error {
	for _, injection := range init.TriggerData {
		if !validIdentifier(injection.NodeName, e.cfg.MaxNameLength) {
			logger.Warn("skipping trigger data injection with invalid node name",
				"node_name", injection.NodeName)

			continue
		}

		data := make(map[string]any, len(injection.Data)+4)
		for k, v := range injection.Data {
			data[k] = v
		}

		data["workflowId"] = ectx.WorkflowID
		data["executionId"] = ectx.ExecutionID
		data["source"] = "trigger"

		if injection.TriggerType != "" {
			data["triggerType"] = injection.TriggerType
		}

		if err := e.results.StoreKeyed(injection.NodeID, injection.NodeName, ectx, data); err != nil {
			return err
		}
	}

	return nil
}

// preCompleteTriggers marks every trigger node completed so it never occupies
// a scheduling slot, storing the default triggered payload for trigger nodes
// that received no injection.
func (e *Engine) preCompleteTriggers(graph *models.WorkflowGraph, ectx *models.ExecutionContext, logger *slog.Logger) map[string]bool {
	completed := make(map[string]bool)

	for _, node := range graph.Nodes {
		if !node.IsTrigger() {
			continue
		}

		completed[node.ID] = true

		payload := e.dispatcher.executeTrigger(node, ectx)
		if err := e.results.StoreKeyed(node.ID, node.Name, ectx, payload); err != nil {
			// Reserved keys in a trigger node's identity; leave the node
			// completed but unpopulated.
			logger.Warn("could not store trigger payload",
				"node_id", node.ID,
				"error", err.Error())
		}
	}

	return completed
}

func (e *Engine) baseEvent(eventType events.EventType, ectx *models.ExecutionContext) events.BaseEvent {
	id := uuid.New().String()
	if e.bus != nil {
		id = e.bus.GenerateID()
	}

	return events.BaseEvent{
		ID:          id,
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		WorkflowID:  ectx.WorkflowID,
		ExecutionID: ectx.ExecutionID,
		TenantID:    ectx.TenantID,
	}
}

// publish is best effort: a missing bus is fine and a publish error never
// fails the run.
func (e *Engine) publish(ctx context.Context, key string, event events.Event) {
	if e.bus == nil {
		return
	}

	if err := e.bus.Publish(ctx, key, event); err != nil {
		e.logger.Warn("failed to publish event",
			"event_type", string(event.GetType()),
			"error", err.Error())
	}
}

// newExecutionID derives a globally unique id from the workflow id, the
// current time, and a random suffix.
func newExecutionID(workflowID string) string {
	return fmt.Sprintf("%s-%d-%s", workflowID, time.Now().UnixMilli(), uuid.New().String()[:8])
}

func errorCode(err error) string {
	var engineErr *Error
	if ok := asEngineError(err, &engineErr); ok {
		return engineErr.Code
	}

	return "INTERNAL"
}

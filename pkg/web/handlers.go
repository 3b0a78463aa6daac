package web

import (
	"encoding/json"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/flowgrid/flowgrid/pkg/engine"
)

type APIHandlers struct {
	engine    *engine.Engine
	validator *validator.Validate
	logger    *slog.Logger
}

func NewAPIHandlers(eng *engine.Engine, validate *validator.Validate, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		engine:    eng,
		validator: validate,
		logger:    logger.With("module", "web"),
	}
}

// ExecuteWorkflow runs a workflow graph once with the supplied trigger data
// and returns the per-node results.
func (h *APIHandlers) ExecuteWorkflow(c fiber.Ctx) error {
	body := c.Body()

	// The workflow document is validated as raw JSON first so shape errors
	// come back as schema violations, not unmarshalling noise.
	var envelope struct {
		Workflow json.RawMessage `json:"workflow"`
	}

	if err := json.Unmarshal(body, &envelope); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}

	if len(envelope.Workflow) == 0 {
		return badRequest(c, "workflow document is required")
	}

	if err := validateWorkflowDocument(envelope.Workflow); err != nil {
		return badRequest(c, err.Error())
	}

	var req ExecuteRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, "invalid request: "+err.Error())
	}

	ectx, err := h.engine.Execute(c.Context(), req.Workflow, engine.ExecuteInit{
		AgentID:     req.AgentID,
		TenantID:    req.TenantID,
		TriggerData: req.TriggerData,
	})
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(ExecuteResponse{
		ExecutionID: ectx.ExecutionID,
		Status:      ectx.Status,
		NodeData:    ectx.NodeData,
	})
}

// GetActiveExecutions lists the in-flight execution trackers.
func (h *APIHandlers) GetActiveExecutions(c fiber.Ctx) error {
	active := h.engine.Store().Active()

	return c.JSON(ActiveExecutionsResponse{
		Executions: active,
		Count:      len(active),
	})
}

// HealthCheck reports liveness.
func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":            "ok",
		"active_executions": h.engine.Store().Count(),
	})
}

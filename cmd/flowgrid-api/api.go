package main

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/flowgrid/flowgrid/pkg/actions/webchat"
	pkgcmd "github.com/flowgrid/flowgrid/pkg/cmd"
	"github.com/flowgrid/flowgrid/pkg/engine"
	"github.com/flowgrid/flowgrid/pkg/llm"
	"github.com/flowgrid/flowgrid/pkg/otelhelper"
	"github.com/flowgrid/flowgrid/pkg/registry"
	"github.com/flowgrid/flowgrid/pkg/web"
)

// APIConfig selects the server's collaborators.
type APIConfig struct {
	EventBus     string
	OpenAIAPIKey string
	DefaultModel string
	Tracing      bool
}

type API struct {
	logger   *slog.Logger
	engine   *engine.Engine
	store    *engine.ExecutionStore
	validate *validator.Validate
}

// NewAPI wires the engine with its store, action registry, generator, event
// bus, and optional tracer.
func NewAPI(ctx context.Context, logger *slog.Logger, cfg APIConfig) (*API, error) {
	engineCfg := engine.DefaultConfig()

	store := engine.NewExecutionStore(engineCfg, logger)
	store.Start()

	reg := registry.NewRegistry(logger)
	reg.RegisterAction(webchat.NewFactory())

	generator := llm.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.DefaultModel)

	eng := engine.New(engineCfg, generator, store, reg, logger)

	bus, err := pkgcmd.NewEventBus(cfg.EventBus, logger)
	if err != nil {
		store.Shutdown()

		return nil, err
	}

	eng.SetEventBus(bus)

	if cfg.Tracing {
		tracer, err := otelhelper.NewTracer(ctx, "flowgrid-api")
		if err != nil {
			store.Shutdown()

			return nil, err
		}

		eng.SetTracer(tracer)
	}

	return &API{
		logger:   logger,
		engine:   eng,
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.engine, a.validate, a.logger)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Flowgrid API")
	})

	app.Post("/executions", handlers.ExecuteWorkflow)
	app.Get("/executions", handlers.GetActiveExecutions)
	app.Get("/health", handlers.HealthCheck)

	return app
}

// Shutdown stops the tracker sweep.
func (a *API) Shutdown() {
	a.store.Shutdown()
}

// Package main provides a one-shot workflow runner for local development:
// load a workflow graph from a JSON file, inject trigger data, execute it,
// and print the resulting node data.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v3"

	"github.com/flowgrid/flowgrid/pkg/actions/webchat"
	"github.com/flowgrid/flowgrid/pkg/engine"
	"github.com/flowgrid/flowgrid/pkg/llm"
	"github.com/flowgrid/flowgrid/pkg/log"
	"github.com/flowgrid/flowgrid/pkg/models"
	"github.com/flowgrid/flowgrid/pkg/registry"
)

func main() {
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:  "flowgrid-run",
		Usage: "Execute a workflow graph from a JSON file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "workflow",
				Aliases:  []string{"w"},
				Usage:    "Path to the workflow graph JSON file",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "agent-id",
				Usage: "Agent id for the run",
				Value: "local-agent",
			},
			&cli.StringFlag{
				Name:  "tenant-id",
				Usage: "Tenant id for the run",
				Value: "local-tenant",
			},
			&cli.StringFlag{
				Name:  "trigger-node",
				Usage: "Node name to inject trigger data into",
			},
			&cli.StringFlag{
				Name:  "trigger-data",
				Usage: "Trigger data as a JSON object",
				Value: "{}",
			},
			&cli.StringFlag{
				Name:    "openai-api-key",
				Usage:   "OpenAI API key; without one agent nodes echo their prompt",
				Sources: cli.EnvVars("OPENAI_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.WithModule("flowgrid-run").Error("run failed", "error", err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))

	logger := log.WithModule("flowgrid-run")

	raw, err := os.ReadFile(command.String("workflow"))
	if err != nil {
		return fmt.Errorf("failed to read workflow file: %w", err)
	}

	var graph models.WorkflowGraph
	if err := json.Unmarshal(raw, &graph); err != nil {
		return fmt.Errorf("failed to parse workflow file: %w", err)
	}

	init := engine.ExecuteInit{
		AgentID:  command.String("agent-id"),
		TenantID: command.String("tenant-id"),
	}

	if nodeName := command.String("trigger-node"); nodeName != "" {
		var data map[string]any
		if err := json.Unmarshal([]byte(command.String("trigger-data")), &data); err != nil {
			return fmt.Errorf("failed to parse trigger data: %w", err)
		}

		init.TriggerData = []models.TriggerDataInjection{
			{
				NodeName:    nodeName,
				TriggerType: "manual",
				Data:        data,
			},
		}
	}

	cfg := engine.DefaultConfig()

	store := engine.NewExecutionStore(cfg, logger)
	store.Start()
	defer store.Shutdown()

	reg := registry.NewRegistry(logger)
	reg.RegisterAction(webchat.NewFactory())

	var generator llm.Generator
	if key := command.String("openai-api-key"); key != "" {
		generator = llm.NewOpenAIGenerator(key, "")
	} else {
		logger.Warn("no API key provided, agent nodes will echo their prompts")

		generator = echoGenerator{}
	}

	eng := engine.New(cfg, generator, store, reg, logger)

	ectx, err := eng.Execute(ctx, &graph, init)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(ectx.NodeData, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(out))

	return nil
}

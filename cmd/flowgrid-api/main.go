// Package main provides the flowgrid API server: an HTTP entry point that
// executes workflow graphs on behalf of channel callers.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v3"

	"github.com/flowgrid/flowgrid/pkg/log"
)

func main() {
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:                  "flowgrid-api",
		EnableShellCompletion: true,
		Usage:                 "Start the workflow execution API server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Usage:   "Port to listen on",
				Value:   8080,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus transport (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "openai-api-key",
				Usage:   "OpenAI API key for agent node generation",
				Sources: cli.EnvVars("OPENAI_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "model",
				Usage:   "Default model for agent nodes that do not set one",
				Value:   "",
				Sources: cli.EnvVars("FLOWGRID_DEFAULT_MODEL"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OpenTelemetry tracing",
				Sources: cli.EnvVars("FLOWGRID_TRACING"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("flowgrid-api")

			api, err := NewAPI(ctx, logger, APIConfig{
				EventBus:     command.String("event-bus"),
				OpenAIAPIKey: command.String("openai-api-key"),
				DefaultModel: command.String("model"),
				Tracing:      command.Bool("tracing"),
			})
			if err != nil {
				return err
			}
			defer api.Shutdown()

			addr := fmt.Sprintf(":%d", command.Int("port"))
			logger.Info("starting API server", "addr", addr)

			return api.App().Listen(addr)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.WithModule("flowgrid-api").Error("server failed", "error", err.Error())
		os.Exit(1)
	}
}

package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/propsheet/propsheet/pkg/cmd"
	"github.com/propsheet/propsheet/pkg/log"
	"github.com/propsheet/propsheet/pkg/otelhelper"
)

const defaultPort = 9094

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "propsheet-api",
		Usage:                 "Create and manage property inspector sessions",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "group-state-url",
				Usage:   "Group expand-state store URL (memory://, file://dir, redis://host, sqlite://path)",
				Value:   "memory://",
				Sources: cli.EnvVars("GROUP_STATE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider for session lifecycle events (kafka, gochannel, none)",
				Value:   "none",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
			&cli.StringFlag{
				Name:     "plugins-path",
				Usage:    "Path to the directory containing editor plugins",
				Value:    "./plugins",
				Required: false,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OpenTelemetry tracing (exports spans over OTLP)",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing Propsheet API")

			registry := cmd.NewRegistry(logger, command.String("plugins-path"))

			store, err := cmd.NewGroupStore(command.String("group-state-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := store.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close group state store", "error", err)
				}
			}()

			api := NewAPI(logger, store, registry)

			if provider := command.String("event-bus"); provider != "none" {
				eventBus := cmd.NewEventBus(provider, logger)

				defer func() {
					if err := eventBus.Close(); err != nil {
						logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
					}
				}()

				api = api.WithEventBus(eventBus)
			}

			if command.Bool("tracing") {
				tracer, err := otelhelper.NewTracer(ctx, "propsheet-api")
				if err != nil {
					return err
				}

				api = api.WithTracer(tracer)
			}

			err = api.Start(command.Int("port"))
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}

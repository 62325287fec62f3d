package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/concierge/cmd/app/commands"
	"github.com/allisson/concierge/internal/app"
	"github.com/allisson/concierge/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "worker",
			Usage: "Start the sync scheduler and run due sync workers",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunWorker(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			},
		},
		{
			Name:  "list-external-errors",
			Usage: "List the most recent supplier failures",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "supplier",
					Aliases: []string{"s"},
					Usage:   "Only show failures of this supplier",
				},
				&cli.StringFlag{
					Name:    "code",
					Aliases: []string{"c"},
					Usage:   "Only show failures with this error code (e.g., connection_timeout)",
				},
				&cli.IntFlag{
					Name:    "limit",
					Aliases: []string{"l"},
					Value:   50,
					Usage:   "Maximum number of failures to show",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				externalErrorUseCase, err := container.ExternalErrorUseCase()
				if err != nil {
					return err
				}

				return commands.RunListExternalErrors(
					ctx,
					externalErrorUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("supplier"),
					cmd.String("code"),
					int(cmd.Int("limit")),
					cmd.String("format"),
				)
			},
		},
	}
}

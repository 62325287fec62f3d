package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/concierge/cmd/app/commands"
	"github.com/allisson/concierge/internal/app"
	"github.com/allisson/concierge/internal/config"
)

func getSyncCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-sync-worker",
			Usage: "Register a sync worker for a supplier host",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "supplier",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Supplier name (kigo, saw, waytostay)",
				},
				&cli.StringFlag{
					Name:     "host",
					Required: true,
					Usage:    "Host identifier at the supplier",
				},
				&cli.StringFlag{
					Name:     "type",
					Aliases:  []string{"t"},
					Required: true,
					Usage:    "Worker type: 'metadata' or 'availabilities'",
				},
				&cli.IntFlag{
					Name:    "interval",
					Aliases: []string{"i"},
					Value:   0,
					Usage:   "Minutes between scheduled runs (0 uses SYNC_DEFAULT_INTERVAL_MINUTES)",
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

				syncUseCase, err := container.SyncUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateSyncWorker(
					ctx,
					syncUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("supplier"),
					cmd.String("host"),
					cmd.String("type"),
					int(cmd.Int("interval")),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "resync",
			Usage: "Queue a sync worker and run it in the foreground",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "id",
					Aliases:  []string{"i"},
					Required: true,
					Usage:    "Sync worker ID (UUID)",
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

				syncUseCase, err := container.SyncUseCase()
				if err != nil {
					return err
				}

				return commands.RunResync(
					ctx,
					syncUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("id"),
					cmd.String("format"),
				)
			},
		},
	}
}

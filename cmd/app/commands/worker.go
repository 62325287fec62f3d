package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/allisson/concierge/internal/app"
	"github.com/allisson/concierge/internal/config"
)

// RunWorker starts the sync scheduler and runs due workers until SIGINT/SIGTERM.
// Runs started before the signal are awaited during container shutdown.
func RunWorker(ctx context.Context, version string) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting sync worker", slog.String("version", version))

	// Building the scheduler registers the sync handlers on the announcer
	scheduler, err := container.Scheduler()
	if err != nil {
		closeContainer(container, logger)
		return fmt.Errorf("failed to initialize sync scheduler: %w", err)
	}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		closeContainer(container, logger)
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if metricsServer != nil {
		go func() {
			if err := metricsServer.Start(ctx); err != nil {
				logger.Error("metrics server error", slog.Any("error", err))
				cancel()
			}
		}()
	}

	runErr := scheduler.Start(ctx)
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}

	logger.Info("shutdown signal received, waiting for running syncs")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.DBConnMaxLifetime)
	defer shutdownCancel()

	if err := container.Shutdown(shutdownCtx); err != nil {
		return errors.Join(runErr, err)
	}
	if runErr != nil {
		return fmt.Errorf("sync scheduler error: %w", runErr)
	}
	return nil
}

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	syncDomain "github.com/allisson/concierge/internal/sync/domain"
	syncUseCase "github.com/allisson/concierge/internal/sync/usecase"
)

// RunCreateSyncWorker registers a sync worker for a supplier host. Creating a worker
// that already exists returns the existing one. A zero interval uses the configured default.
func RunCreateSyncWorker(
	ctx context.Context,
	useCase syncUseCase.SyncUseCase,
	logger *slog.Logger,
	writer io.Writer,
	supplier, hostID, workerType string,
	intervalMinutes int,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if intervalMinutes < 0 {
		return fmt.Errorf("interval must be a positive number of minutes, got: %d", intervalMinutes)
	}

	parsedType, err := syncDomain.ParseWorkerType(workerType)
	if err != nil {
		return err
	}

	worker, err := useCase.CreateWorker(
		ctx,
		supplier,
		hostID,
		parsedType,
		time.Duration(intervalMinutes)*time.Minute,
	)
	if err != nil {
		return fmt.Errorf("failed to create sync worker: %w", err)
	}

	logger.Info("sync worker ready",
		slog.String("id", worker.ID.String()),
		slog.String("supplier", worker.Supplier),
		slog.String("host_id", worker.HostID),
		slog.String("type", string(worker.Type)),
	)

	if format == "json" {
		return writeJSON(writer, map[string]any{
			"id":               worker.ID.String(),
			"supplier":         worker.Supplier,
			"host_id":          worker.HostID,
			"type":             string(worker.Type),
			"status":           string(worker.Status),
			"interval_minutes": int(worker.Interval / time.Minute),
			"next_run_at":      worker.NextRunAt,
		})
	}

	_, err = fmt.Fprintf(writer, "Sync worker %s (%s %s %s) status %s, next run at %s\n",
		worker.ID,
		worker.Supplier,
		worker.HostID,
		worker.Type,
		worker.Status,
		worker.NextRunAt.Format(time.RFC3339),
	)
	return err
}
